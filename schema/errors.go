// Package schema decodes a Document body into a Schema — a name→Validator
// mapping plus an entries dictionary — and validates other documents'
// bodies against it. Grounded on schema/mod.rs's Schema::from_raw/
// validate_doc field-matching loop, reshaped around the pool-indexed
// validator.Pool instead of owned Validator trees.
package schema

type errorType string

func (e errorType) Error() string { return string(e) }

const (
	// ErrNotAnObject is returned when a schema document's body isn't a
	// Value::Map.
	ErrNotAnObject = errorType("schema: body must be a map")

	// ErrUnknownField is returned decoding a schema object with a field
	// name outside the recognized top-level set, or a validator whose
	// "type" names no known validator kind.
	ErrUnknownField = errorType("schema: unknown top-level field")

	// ErrFailedCheck is returned by ValidateDoc when the document fails
	// structural validation: missing required field, unknown field with
	// unknown_ok false, field count out of [min_fields,max_fields], or a
	// field failing its validator.
	ErrFailedCheck = errorType("schema: document failed schema check")

	// ErrBadFieldOrder names fields that are not in strict lexicographic
	// order, or repeat a key. ValidateDoc does not return it: it works on
	// already-decoded values, and codec decoding rejects such maps with
	// codec.ErrBadFormat.
	ErrBadFieldOrder = errorType("schema: fields out of order or duplicated")
)
