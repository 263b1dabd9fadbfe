// Package codec implements the canonical self-describing binary wire format:
// a strict, shortest-form, MessagePack-shaped encoding closed over a small
// set of typed extensions (Hash, Identity, Lockbox, Timestamp). It is the
// format every Document, Entry, and Schema in condensedb is serialized
// through, grounded on the teacher's CBOR/IPLD decoding style in
// iplddecoders/decoders.go (a flat Kind enum plus fast positional decode).
package codec

import (
	"bytes"
	"sort"

	"github.com/cognoscan/condensedb/cobj"
)

// Kind enumerates the closed set of Value variants. Mirrors the teacher's
// iplddecoders.Kind pattern (an int enum with a String method).
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt // the full integer family; see Value.Neg
	KindF32
	KindF64
	KindString
	KindBinary
	KindArray
	KindMap
	KindHash
	KindIdentity
	KindLockbox
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindF32:
		return "F32"
	case KindF64:
		return "F64"
	case KindString:
		return "String"
	case KindBinary:
		return "Binary"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	case KindHash:
		return "Hash"
	case KindIdentity:
		return "Identity"
	case KindLockbox:
		return "Lockbox"
	case KindTimestamp:
		return "Timestamp"
	default:
		return "Unknown"
	}
}

// MapEntry is a single key/value pair of a Value::Map. Map encodings MUST
// carry entries in strictly ascending byte order of Key with no duplicates;
// builders are responsible for that ordering (see NewMap).
type MapEntry struct {
	Key string
	Val Value
}

// Value is the tagged union described in spec.md §3 ("Value"). A single
// struct carries every variant rather than an interface hierarchy: most
// fields are zero for any given Kind, which keeps encode/decode a flat
// switch instead of a type-assertion chain, matching the flat positional
// field layout the teacher uses for its IPLD bound types
// (ipld/ipldbindcode/types.go).
//
// The integer family follows the original Rust source's IntPriv split
// (src/integer.rs: PosInt(u64) | NegInt(i64)) rather than exposing
// separate signed/unsigned Kinds: on the wire, a nonnegative integer is
// always encoded via fixint/uintN and a negative one via the intN family,
// so there is exactly one canonical encoding per value regardless of
// which Go constructor (Int or Uint) produced it.
type Value struct {
	Kind Kind

	Bool   bool
	Neg    bool   // true iff this Int is negative (uses NegVal, not PosVal)
	PosVal uint64 // valid when Kind==KindInt && !Neg
	NegVal int64  // valid when Kind==KindInt && Neg (always < 0)
	F32    float32
	F64    float64
	Str    string
	Bin    []byte
	Arr    []Value
	Map    []MapEntry

	Hash     *cobj.Hash
	Identity *cobj.Identity
	Lockbox  *cobj.Lockbox
	Time     Timestamp
}

func Null() Value          { return Value{Kind: KindNull} }
func Bool(b bool) Value    { return Value{Kind: KindBool, Bool: b} }
func F32(f float32) Value  { return Value{Kind: KindF32, F32: f} }
func F64(f float64) Value  { return Value{Kind: KindF64, F64: f} }
func String(s string) Value { return Value{Kind: KindString, Str: s} }
func Binary(b []byte) Value { return Value{Kind: KindBinary, Bin: b} }
func Array(v []Value) Value { return Value{Kind: KindArray, Arr: v} }

func HashVal(h cobj.Hash) Value         { return Value{Kind: KindHash, Hash: &h} }
func IdentityVal(i cobj.Identity) Value { return Value{Kind: KindIdentity, Identity: &i} }
func LockboxVal(l cobj.Lockbox) Value   { return Value{Kind: KindLockbox, Lockbox: &l} }
func TimeVal(t Timestamp) Value         { return Value{Kind: KindTimestamp, Time: t} }

// Int builds an integer Value from a signed int64 of either sign.
func Int(i int64) Value {
	if i < 0 {
		return Value{Kind: KindInt, Neg: true, NegVal: i}
	}
	return Value{Kind: KindInt, Neg: false, PosVal: uint64(i)}
}

// Uint builds an integer Value from an unsigned int64, including values
// beyond math.MaxInt64.
func Uint(u uint64) Value { return Value{Kind: KindInt, Neg: false, PosVal: u} }

// AsInt64 returns v's integer value as an int64 and whether it fits
// (NegInt always fits; PosInt fits iff <= math.MaxInt64).
func (v Value) AsInt64() (int64, bool) {
	if v.Kind != KindInt {
		return 0, false
	}
	if v.Neg {
		return v.NegVal, true
	}
	if v.PosVal > 1<<63-1 {
		return 0, false
	}
	return int64(v.PosVal), true
}

// AsUint64 returns v's integer value as a uint64 and whether it fits
// (PosInt always fits; NegInt never fits).
func (v Value) AsUint64() (uint64, bool) {
	if v.Kind != KindInt || v.Neg {
		return 0, false
	}
	return v.PosVal, true
}

// CmpInt orders two integer Values the way the original Rust Integer's Ord
// impl does: any NegInt < any PosInt; within the same sign, compare
// magnitude.
func (a Value) CmpInt(b Value) int {
	switch {
	case a.Neg && !b.Neg:
		return -1
	case !a.Neg && b.Neg:
		return 1
	case a.Neg && b.Neg:
		switch {
		case a.NegVal < b.NegVal:
			return -1
		case a.NegVal > b.NegVal:
			return 1
		default:
			return 0
		}
	default:
		switch {
		case a.PosVal < b.PosVal:
			return -1
		case a.PosVal > b.PosVal:
			return 1
		default:
			return 0
		}
	}
}

// NewMap builds a Value::Map, sorting entries into the canonical
// strictly-ascending key order and rejecting duplicate keys by panicking —
// callers construct documents programmatically, so a duplicate key is a
// caller bug, not recoverable input.
func NewMap(entries []MapEntry) Value {
	sorted := append([]MapEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Key == sorted[i-1].Key {
			panic("codec: duplicate map key " + sorted[i].Key)
		}
	}
	return Value{Kind: KindMap, Map: sorted}
}

// Field looks up a key in a Value::Map; ok is false if v is not a Map or
// the key is absent.
func (v Value) Field(key string) (Value, bool) {
	if v.Kind != KindMap {
		return Value{}, false
	}
	// Keys are sorted ascending, so this could binary-search; fields/maps
	// in practice are small enough that linear scan is simpler and just
	// as fast.
	for _, e := range v.Map {
		if e.Key == key {
			return e.Val, true
		}
	}
	return Value{}, false
}

// IsNull reports whether v is the Null variant.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Equal reports deep structural equality using the codec's total float
// order (so two NaN bit patterns with the same bits compare equal) per
// spec.md §4.1's "total ordering including NaN" guarantee.
func (a Value) Equal(b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindInt:
		return a.CmpInt(b) == 0
	case KindF32:
		return f32TotalOrder(a.F32, b.F32) == 0
	case KindF64:
		return f64TotalOrder(a.F64, b.F64) == 0
	case KindString:
		return a.Str == b.Str
	case KindBinary:
		return bytes.Equal(a.Bin, b.Bin)
	case KindArray:
		if len(a.Arr) != len(b.Arr) {
			return false
		}
		for i := range a.Arr {
			if !a.Arr[i].Equal(b.Arr[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.Map) != len(b.Map) {
			return false
		}
		for i := range a.Map {
			if a.Map[i].Key != b.Map[i].Key || !a.Map[i].Val.Equal(b.Map[i].Val) {
				return false
			}
		}
		return true
	case KindHash:
		return a.Hash.Equal(*b.Hash)
	case KindIdentity:
		return a.Identity.Equal(*b.Identity)
	case KindLockbox:
		return a.Lockbox.Equal(*b.Lockbox)
	case KindTimestamp:
		return a.Time == b.Time
	default:
		return false
	}
}
