// Package validator implements condensedb's structural validators: a flat
// interned pool of primitive and container validators, a set-intersection
// algebra used to compose a query validator against a schema validator,
// and the cross-document checklist produced by Hash `link`/`schema`
// fields. Grounded on the original schema/ module's per-type validator
// split (object.rs, array.rs, multi.rs, ...), reshaped into Go's flat
// Kind-tagged struct idiom the way codec.Value merges a tagged union into
// one type instead of an interface hierarchy.
package validator

type errorType string

func (e errorType) Error() string { return string(e) }

const (
	// ErrUnknownField names a validator field the validator's type doesn't
	// recognize. No function in this package returns it.
	ErrUnknownField = errorType("validator: unknown field")

	// ErrBadField is returned when a recognized field's value has the
	// wrong shape (e.g. "min" that isn't numeric for an Int validator).
	ErrBadField = errorType("validator: bad field value")

	// ErrCapabilityDenied is returned during query-mode intersection
	// when the query validator exercises a capability
	// (bit/regex/link_ok/schema_ok/contains_ok/array/unknown_ok)
	// the schema validator's flags disallow; see Pool.IntersectQuery.
	ErrCapabilityDenied = errorType("validator: capability denied by schema")

	// ErrUnknownType names a Type(name) validator whose type is absent
	// from the pool's type dictionary. No function in this package returns
	// it: Validate and Finalize report false for such a validator and
	// Intersect yields Invalid.
	ErrUnknownType = errorType("validator: unknown named type")
)
