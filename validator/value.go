package validator

import (
	"regexp"

	"github.com/cognoscan/condensedb/cobj"
)

// V is the tagged union of validator variants, flat-struct'd the same
// way codec.Value merges a closed tagged union into one type instead of
// an interface hierarchy. Fields outside the active Kind are zero.
type V struct {
	Kind Kind

	TypeName string // KindType: name looked up in the pool's type dictionary

	BoolConst    *bool // KindBool: exact-value constraint, nil = unconstrained
	BoolQueryCap bool  // KindBool: whether a query validator may use this field

	Int IntV
	F32 F32V
	F64 F64V
	Str StringV
	Bin BinaryV
	Time TimeV

	Arr  ArrayV
	Obj  ObjectV
	Hash HashV

	Multi MultiV

	// Capability flags shared by numeric/ordered validators, consulted
	// during query-mode intersection (spec.md §4.5's "query-mode
	// intersection... fails when a query validator tries to use
	// capabilities the schema validator disallows").
	QueryOk bool
	OrdOk   bool
	BitOk   bool
}

// IntV is the Int validator: bounds plus bitmask constraints.
type IntV struct {
	B         Bounds[int64]
	BitsSet   uint64
	BitsClr   uint64
	HasBitsSet bool
	HasBitsClr bool
}

// F32V is the F32 validator: bounds plus NaN handling. NaN is permitted
// only if NanOk is set and no numeric bound (min/max/in/nin) was ever set,
// per spec.md §4.5.
type F32V struct {
	B      Bounds[float32]
	NanOk  bool
}

// F64V mirrors F32V for float64.
type F64V struct {
	B     Bounds[float64]
	NanOk bool
}

// StringV is the String validator: bounds over the string's own
// ordering, length bounds, and a compiled regex allow-list.
type StringV struct {
	B         Bounds[string]
	MinLen    *int
	MaxLen    *int
	Regex     []*regexp.Regexp
	RegexOk   bool // capability flag: may a query validator add regexes
}

// BinaryV is the Binary validator. Min/max/in/nin compare byte strings
// lexicographically, which Go's native string ordering already
// implements, so binary bounds reuse the same Bounds[string] type with
// byte slices converted at the boundary.
type BinaryV struct {
	B          Bounds[string]
	MinLen     *int
	MaxLen     *int
	BitsSet    []byte
	BitsClr    []byte
	HasBitsSet bool
	HasBitsClr bool
}

// TimeV is the Timestamp validator. Bounds compare on a flattened
// nanosecond count (Sec*1e9+Nsec); this cannot represent timestamps
// outside +/-292 years from the epoch, a limitation documented rather
// than worked around since no realistic schema bound approaches it.
type TimeV struct {
	B Bounds[int64]
}

// HashV is the Hash validator: a set constraint plus the two
// cross-document reference mechanisms.
type HashV struct {
	In, Nin []cobj.Hash

	HasLink    bool
	Link       int // validator index to apply to the referenced document
	LinkOk     bool

	Schema   []cobj.Hash // allowed schema-hash set, empty means "any"
	SchemaOk bool
}

// ArrayV is the Array validator.
type ArrayV struct {
	Items      []int // positional validator indices
	ExtraItems int    // fallback validator index for items past len(Items)
	Contains   []int  // each index must match at least one element, unordered
	Unique     bool
	MinLen     *int
	MaxLen     *int
	In, Nin    [][]byte // raw canonical encodings of whole arrays
	ContainsOk bool
	ArrayOk    bool // capability flag: may a query validator tighten array shape
}

// ObjectV is the Object validator.
type ObjectV struct {
	Required  map[string]int // name -> validator index
	Optional  map[string]int
	MinFields *int
	MaxFields *int
	UnknownOk bool
	FieldType int // fallback validator index for unrecognized fields, 0 if none
	In, Nin   [][]byte // raw canonical encodings of whole object values
}

// MultiV is the Multi validator: a list of disjunction groups. A value
// passes iff, for every group, at least one validator index in that
// group accepts it (spec.md §4.5, grounded on ValidMulti.any_of in
// schema/multi.rs).
type MultiV struct {
	AnyOf [][]int
}
