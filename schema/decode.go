package schema

import (
	"regexp"

	"github.com/cognoscan/condensedb/cobj"
	"github.com/cognoscan/condensedb/codec"
	"github.com/cognoscan/condensedb/validator"
)

// decodeValidator reads one validator object — a Value::Map with a
// required "type" string field naming the variant — and interns it into
// pool, returning its index. A Type(name) validator is interned by name
// only; the pool resolves it through ResolveType when it is validated or
// finalized, so forward references to later `types` entries work.
func decodeValidator(pool *validator.Pool, val codec.Value) (int, error) {
	if val.Kind != codec.KindMap {
		return 0, ErrNotAnObject
	}
	tv, ok := val.Field("type")
	if !ok || tv.Kind != codec.KindString {
		return 0, validator.ErrBadField
	}

	switch tv.Str {
	case "Invalid":
		return validator.IdxInvalid, nil
	case "Valid", "Any":
		return validator.IdxValid, nil
	case "Null":
		return pool.Intern(validator.V{Kind: validator.KindNull}), nil
	case "Type":
		nameV, ok := val.Field("name")
		if !ok || nameV.Kind != codec.KindString {
			return 0, validator.ErrBadField
		}
		return pool.Intern(validator.V{Kind: validator.KindType, TypeName: nameV.Str}), nil
	case "Bool":
		v := validator.V{Kind: validator.KindBool}
		if c, ok := val.Field("in"); ok && c.Kind == codec.KindBool {
			b := c.Bool
			v.BoolConst = &b
		}
		if c, ok := val.Field("nin"); ok && c.Kind == codec.KindBool {
			b := !c.Bool
			v.BoolConst = &b
		}
		return pool.Intern(v), nil
	case "Int":
		return decodeInt(pool, val)
	case "F32":
		return decodeF32(pool, val)
	case "F64":
		return decodeF64(pool, val)
	case "String":
		return decodeString(pool, val)
	case "Binary":
		return decodeBinary(pool, val)
	case "Timestamp":
		return decodeTimestamp(pool, val)
	case "Hash":
		return decodeHash(pool, val)
	case "Identity":
		return pool.Intern(validator.V{Kind: validator.KindIdentity}), nil
	case "Lockbox":
		return pool.Intern(validator.V{Kind: validator.KindLockbox}), nil
	case "Array":
		return decodeArray(pool, val)
	case "Object":
		return decodeObject(pool, val)
	case "Multi":
		return decodeMulti(pool, val)
	default:
		return 0, ErrUnknownField
	}
}

func decodeInt(pool *validator.Pool, val codec.Value) (int, error) {
	iv := validator.IntV{}
	if c, ok := val.Field("min"); ok {
		n, ok := c.AsInt64()
		if !ok {
			return 0, validator.ErrBadField
		}
		iv.B.SetMin(n)
	}
	if c, ok := val.Field("max"); ok {
		n, ok := c.AsInt64()
		if !ok {
			return 0, validator.ErrBadField
		}
		iv.B.SetMax(n)
	}
	if c, ok := val.Field("in"); ok {
		vals, err := intSet(c)
		if err != nil {
			return 0, err
		}
		iv.B.SetIn(vals)
	}
	if c, ok := val.Field("nin"); ok {
		vals, err := intSet(c)
		if err != nil {
			return 0, err
		}
		iv.B.SetNin(vals)
	}
	if c, ok := val.Field("bits_set"); ok {
		n, ok := c.AsUint64()
		if !ok {
			return 0, validator.ErrBadField
		}
		iv.HasBitsSet, iv.BitsSet = true, n
	}
	if c, ok := val.Field("bits_clr"); ok {
		n, ok := c.AsUint64()
		if !ok {
			return 0, validator.ErrBadField
		}
		iv.HasBitsClr, iv.BitsClr = true, n
	}
	return pool.Intern(validator.V{Kind: validator.KindInt, Int: iv}), nil
}

func intSet(v codec.Value) ([]int64, error) {
	if v.Kind != codec.KindArray {
		return nil, validator.ErrBadField
	}
	out := make([]int64, 0, len(v.Arr))
	for _, e := range v.Arr {
		n, ok := e.AsInt64()
		if !ok {
			return nil, validator.ErrBadField
		}
		out = append(out, n)
	}
	return out, nil
}

func decodeF32(pool *validator.Pool, val codec.Value) (int, error) {
	fv := validator.F32V{}
	if c, ok := val.Field("min"); ok && c.Kind == codec.KindF32 {
		fv.B.SetMin(c.F32)
	}
	if c, ok := val.Field("max"); ok && c.Kind == codec.KindF32 {
		fv.B.SetMax(c.F32)
	}
	if c, ok := val.Field("nan_ok"); ok && c.Kind == codec.KindBool {
		fv.NanOk = c.Bool
	}
	return pool.Intern(validator.V{Kind: validator.KindF32, F32: fv}), nil
}

func decodeF64(pool *validator.Pool, val codec.Value) (int, error) {
	fv := validator.F64V{}
	if c, ok := val.Field("min"); ok && c.Kind == codec.KindF64 {
		fv.B.SetMin(c.F64)
	}
	if c, ok := val.Field("max"); ok && c.Kind == codec.KindF64 {
		fv.B.SetMax(c.F64)
	}
	if c, ok := val.Field("nan_ok"); ok && c.Kind == codec.KindBool {
		fv.NanOk = c.Bool
	}
	return pool.Intern(validator.V{Kind: validator.KindF64, F64: fv}), nil
}

func decodeString(pool *validator.Pool, val codec.Value) (int, error) {
	sv := validator.StringV{}
	if c, ok := val.Field("min_len"); ok {
		n, ok := c.AsInt64()
		if !ok {
			return 0, validator.ErrBadField
		}
		i := int(n)
		sv.MinLen = &i
	}
	if c, ok := val.Field("max_len"); ok {
		n, ok := c.AsInt64()
		if !ok {
			return 0, validator.ErrBadField
		}
		i := int(n)
		sv.MaxLen = &i
	}
	if c, ok := val.Field("regex"); ok {
		pats, err := stringArray(c)
		if err != nil {
			return 0, err
		}
		for _, pat := range pats {
			re, err := regexp.Compile(pat)
			if err != nil {
				return 0, validator.ErrBadField
			}
			sv.Regex = append(sv.Regex, re)
		}
		sv.RegexOk = true
	}
	return pool.Intern(validator.V{Kind: validator.KindString, Str: sv}), nil
}

func stringArray(v codec.Value) ([]string, error) {
	if v.Kind != codec.KindArray {
		return nil, validator.ErrBadField
	}
	out := make([]string, 0, len(v.Arr))
	for _, e := range v.Arr {
		if e.Kind != codec.KindString {
			return nil, validator.ErrBadField
		}
		out = append(out, e.Str)
	}
	return out, nil
}

func decodeBinary(pool *validator.Pool, val codec.Value) (int, error) {
	bv := validator.BinaryV{}
	if c, ok := val.Field("min_len"); ok {
		n, _ := c.AsInt64()
		i := int(n)
		bv.MinLen = &i
	}
	if c, ok := val.Field("max_len"); ok {
		n, _ := c.AsInt64()
		i := int(n)
		bv.MaxLen = &i
	}
	if c, ok := val.Field("bits_set"); ok && c.Kind == codec.KindBinary {
		bv.HasBitsSet, bv.BitsSet = true, c.Bin
	}
	if c, ok := val.Field("bits_clr"); ok && c.Kind == codec.KindBinary {
		bv.HasBitsClr, bv.BitsClr = true, c.Bin
	}
	return pool.Intern(validator.V{Kind: validator.KindBinary, Bin: bv}), nil
}

func decodeTimestamp(pool *validator.Pool, val codec.Value) (int, error) {
	tv := validator.TimeV{}
	if c, ok := val.Field("min"); ok && c.Kind == codec.KindTimestamp {
		tv.B.SetMin(c.Time.Sec*1_000_000_000 + int64(c.Time.Nsec))
	}
	if c, ok := val.Field("max"); ok && c.Kind == codec.KindTimestamp {
		tv.B.SetMax(c.Time.Sec*1_000_000_000 + int64(c.Time.Nsec))
	}
	return pool.Intern(validator.V{Kind: validator.KindTimestamp, Time: tv}), nil
}

func decodeHash(pool *validator.Pool, val codec.Value) (int, error) {
	hv := validator.HashV{}
	if c, ok := val.Field("in"); ok {
		hs, err := hashArray(c)
		if err != nil {
			return 0, err
		}
		hv.In = hs
	}
	if c, ok := val.Field("nin"); ok {
		hs, err := hashArray(c)
		if err != nil {
			return 0, err
		}
		hv.Nin = hs
	}
	if c, ok := val.Field("link"); ok {
		idx, err := decodeValidator(pool, c)
		if err != nil {
			return 0, err
		}
		hv.HasLink, hv.Link, hv.LinkOk = true, idx, true
	}
	if c, ok := val.Field("schema"); ok {
		hs, err := hashArray(c)
		if err != nil {
			return 0, err
		}
		hv.Schema, hv.SchemaOk = hs, true
	}
	return pool.Intern(validator.V{Kind: validator.KindHash, Hash: hv}), nil
}

func hashArray(v codec.Value) ([]cobj.Hash, error) {
	if v.Kind != codec.KindArray {
		return nil, validator.ErrBadField
	}
	out := make([]cobj.Hash, 0, len(v.Arr))
	for _, e := range v.Arr {
		if e.Kind != codec.KindHash {
			return nil, validator.ErrBadField
		}
		out = append(out, *e.Hash)
	}
	return out, nil
}

func decodeArray(pool *validator.Pool, val codec.Value) (int, error) {
	av := validator.ArrayV{}
	if c, ok := val.Field("items"); ok {
		if c.Kind != codec.KindArray {
			return 0, validator.ErrBadField
		}
		for _, e := range c.Arr {
			idx, err := decodeValidator(pool, e)
			if err != nil {
				return 0, err
			}
			av.Items = append(av.Items, idx)
		}
	}
	if c, ok := val.Field("extra_items"); ok {
		idx, err := decodeValidator(pool, c)
		if err != nil {
			return 0, err
		}
		av.ExtraItems = idx
	}
	if c, ok := val.Field("contains"); ok {
		if c.Kind != codec.KindArray {
			return 0, validator.ErrBadField
		}
		for _, e := range c.Arr {
			idx, err := decodeValidator(pool, e)
			if err != nil {
				return 0, err
			}
			av.Contains = append(av.Contains, idx)
		}
		av.ContainsOk = true
	}
	if c, ok := val.Field("unique"); ok && c.Kind == codec.KindBool {
		av.Unique = c.Bool
		av.ArrayOk = true
	}
	if c, ok := val.Field("min_len"); ok {
		n, _ := c.AsInt64()
		i := int(n)
		av.MinLen = &i
	}
	if c, ok := val.Field("max_len"); ok {
		n, _ := c.AsInt64()
		i := int(n)
		av.MaxLen = &i
	}
	if c, ok := val.Field("in"); ok {
		enc, err := encodedArray(c)
		if err != nil {
			return 0, err
		}
		av.In = enc
	}
	if c, ok := val.Field("nin"); ok {
		enc, err := encodedArray(c)
		if err != nil {
			return 0, err
		}
		av.Nin = enc
	}
	return pool.Intern(validator.V{Kind: validator.KindArray, Arr: av}), nil
}

// encodedArray canonical-encodes each element of v (itself an array of
// whole values), for use as an Array/Object validator's In/Nin set.
func encodedArray(v codec.Value) ([][]byte, error) {
	if v.Kind != codec.KindArray {
		return nil, validator.ErrBadField
	}
	out := make([][]byte, len(v.Arr))
	for i, e := range v.Arr {
		out[i] = codec.Encode(e)
	}
	return out, nil
}

func decodeObject(pool *validator.Pool, val codec.Value) (int, error) {
	ov := validator.ObjectV{Required: map[string]int{}, Optional: map[string]int{}}
	if c, ok := val.Field("required"); ok {
		fields, err := decodeFieldMap(pool, c)
		if err != nil {
			return 0, err
		}
		ov.Required = fields
	}
	if c, ok := val.Field("optional"); ok {
		fields, err := decodeFieldMap(pool, c)
		if err != nil {
			return 0, err
		}
		ov.Optional = fields
	}
	if c, ok := val.Field("unknown_ok"); ok && c.Kind == codec.KindBool {
		ov.UnknownOk = c.Bool
	}
	if c, ok := val.Field("field_type"); ok {
		idx, err := decodeValidator(pool, c)
		if err != nil {
			return 0, err
		}
		ov.FieldType = idx
	}
	if c, ok := val.Field("min_fields"); ok {
		n, _ := c.AsInt64()
		i := int(n)
		ov.MinFields = &i
	}
	if c, ok := val.Field("max_fields"); ok {
		n, _ := c.AsInt64()
		i := int(n)
		ov.MaxFields = &i
	}
	if c, ok := val.Field("in"); ok {
		enc, err := encodedArray(c)
		if err != nil {
			return 0, err
		}
		ov.In = enc
	}
	if c, ok := val.Field("nin"); ok {
		enc, err := encodedArray(c)
		if err != nil {
			return 0, err
		}
		ov.Nin = enc
	}
	return pool.Intern(validator.V{Kind: validator.KindObject, Obj: ov}), nil
}

func decodeFieldMap(pool *validator.Pool, v codec.Value) (map[string]int, error) {
	if v.Kind != codec.KindMap {
		return nil, validator.ErrBadField
	}
	out := make(map[string]int, len(v.Map))
	for _, e := range v.Map {
		idx, err := decodeValidator(pool, e.Val)
		if err != nil {
			return nil, err
		}
		out[e.Key] = idx
	}
	return out, nil
}

func decodeMulti(pool *validator.Pool, val codec.Value) (int, error) {
	mv := validator.MultiV{}
	c, ok := val.Field("any_of")
	if !ok || c.Kind != codec.KindArray {
		return 0, validator.ErrBadField
	}
	var group []int
	for _, e := range c.Arr {
		idx, err := decodeValidator(pool, e)
		if err != nil {
			return 0, err
		}
		group = append(group, idx)
	}
	mv.AnyOf = [][]int{group}
	return pool.Intern(validator.V{Kind: validator.KindMulti, Multi: mv}), nil
}
