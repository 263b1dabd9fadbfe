package validator

import (
	"regexp"
	"slices"

	"github.com/cognoscan/condensedb/cobj"
	"github.com/cognoscan/condensedb/codec"
)

// Validate checks val against the validator at idx, appending any
// cross-document obligations (Hash `link`/`schema` fields) to list.
func (p *Pool) Validate(idx int, val codec.Value, list *Checklist) bool {
	v := p.Get(idx)
	switch v.Kind {
	case KindInvalid:
		return false
	case KindValid:
		return true
	case KindNull:
		return val.Kind == codec.KindNull
	case KindType:
		target, ok := p.ResolveType(v.TypeName)
		if !ok {
			return false
		}
		return p.Validate(target, val, list)
	case KindBool:
		if val.Kind != codec.KindBool {
			return false
		}
		return v.BoolConst == nil || *v.BoolConst == val.Bool
	case KindInt:
		return p.validateInt(v, val)
	case KindF32:
		return p.validateF32(v, val)
	case KindF64:
		return p.validateF64(v, val)
	case KindString:
		return p.validateString(v, val)
	case KindBinary:
		return p.validateBinary(v, val)
	case KindTimestamp:
		return p.validateTimestamp(v, val)
	case KindHash:
		return p.validateHash(v, val, list)
	case KindIdentity:
		return val.Kind == codec.KindIdentity
	case KindLockbox:
		return val.Kind == codec.KindLockbox
	case KindArray:
		return p.validateArray(v, val, list)
	case KindObject:
		return p.validateObject(v, val, list)
	case KindMulti:
		return p.validateMulti(v, val, list)
	default:
		return false
	}
}

func (p *Pool) validateInt(v V, val codec.Value) bool {
	if val.Kind != codec.KindInt {
		return false
	}
	n, ok := val.AsInt64()
	if !ok {
		// value exceeds int64 range (a very large PosInt); bounds still
		// apply via unsigned comparison against math.MaxInt64-and-up,
		// which Bounds[int64] cannot express, so treat as out-of-range.
		return false
	}
	if !v.Int.B.accepts(n) {
		return false
	}
	u := uint64(n)
	if v.Int.HasBitsSet && u&v.Int.BitsSet != v.Int.BitsSet {
		return false
	}
	if v.Int.HasBitsClr && u&v.Int.BitsClr != 0 {
		return false
	}
	return true
}

func (p *Pool) validateF32(v V, val codec.Value) bool {
	if val.Kind != codec.KindF32 {
		return false
	}
	if val.F32 != val.F32 { // NaN
		b := v.F32.B
		return v.F32.NanOk && !b.HasMin && !b.HasMax && len(b.In) == 0 && len(b.Nin) == 0
	}
	return v.F32.B.accepts(val.F32)
}

func (p *Pool) validateF64(v V, val codec.Value) bool {
	if val.Kind != codec.KindF64 {
		return false
	}
	if val.F64 != val.F64 {
		b := v.F64.B
		return v.F64.NanOk && !b.HasMin && !b.HasMax && len(b.In) == 0 && len(b.Nin) == 0
	}
	return v.F64.B.accepts(val.F64)
}

func (p *Pool) validateString(v V, val codec.Value) bool {
	if val.Kind != codec.KindString {
		return false
	}
	if !v.Str.B.accepts(val.Str) {
		return false
	}
	if v.Str.MinLen != nil && len(val.Str) < *v.Str.MinLen {
		return false
	}
	if v.Str.MaxLen != nil && len(val.Str) > *v.Str.MaxLen {
		return false
	}
	for _, re := range v.Str.Regex {
		if !regexMatches(re, val.Str) {
			return false
		}
	}
	return true
}

func regexMatches(re *regexp.Regexp, s string) bool { return re.MatchString(s) }

func (p *Pool) validateBinary(v V, val codec.Value) bool {
	if val.Kind != codec.KindBinary {
		return false
	}
	if !v.Bin.B.accepts(string(val.Bin)) {
		return false
	}
	if v.Bin.MinLen != nil && len(val.Bin) < *v.Bin.MinLen {
		return false
	}
	if v.Bin.MaxLen != nil && len(val.Bin) > *v.Bin.MaxLen {
		return false
	}
	if v.Bin.HasBitsSet && !bytesSatisfySet(val.Bin, v.Bin.BitsSet) {
		return false
	}
	if v.Bin.HasBitsClr && !bytesSatisfyClr(val.Bin, v.Bin.BitsClr) {
		return false
	}
	return true
}

func bytesSatisfySet(data, set []byte) bool {
	for i, b := range set {
		if i >= len(data) || data[i]&b != b {
			return false
		}
	}
	return true
}

func bytesSatisfyClr(data, clr []byte) bool {
	for i, b := range clr {
		if i < len(data) && data[i]&b != 0 {
			return false
		}
	}
	return true
}

func (p *Pool) validateTimestamp(v V, val codec.Value) bool {
	if val.Kind != codec.KindTimestamp {
		return false
	}
	flat := val.Time.Sec*1_000_000_000 + int64(val.Time.Nsec)
	return v.Time.B.accepts(flat)
}

func (p *Pool) validateHash(v V, val codec.Value, list *Checklist) bool {
	if val.Kind != codec.KindHash {
		return false
	}
	h := *val.Hash
	if len(v.Hash.In) > 0 && !containsHash(v.Hash.In, h) {
		return false
	}
	if containsHash(v.Hash.Nin, h) {
		return false
	}
	if v.Hash.HasLink || len(v.Hash.Schema) > 0 {
		item := ChecklistItem{Target: h, SchemaSet: v.Hash.Schema}
		if v.Hash.HasLink {
			item.HasValidatorIndex = true
			item.ValidatorIndex = v.Hash.Link
		}
		list.Push(item)
	}
	return true
}

func containsHash(set []cobj.Hash, h cobj.Hash) bool { return slices.ContainsFunc(set, h.Equal) }

func (p *Pool) validateArray(v V, val codec.Value, list *Checklist) bool {
	if val.Kind != codec.KindArray {
		return false
	}
	if v.Arr.MinLen != nil && len(val.Arr) < *v.Arr.MinLen {
		return false
	}
	if v.Arr.MaxLen != nil && len(val.Arr) > *v.Arr.MaxLen {
		return false
	}
	if v.Arr.Unique && hasDuplicateElements(val.Arr) {
		return false
	}
	if len(v.Arr.In) > 0 || len(v.Arr.Nin) > 0 {
		enc := codec.Encode(val)
		if len(v.Arr.In) > 0 && !containsBytes(v.Arr.In, enc) {
			return false
		}
		if containsBytes(v.Arr.Nin, enc) {
			return false
		}
	}
	for i, elem := range val.Arr {
		idx := v.Arr.ExtraItems
		if i < len(v.Arr.Items) {
			idx = v.Arr.Items[i]
		}
		if idx == 0 {
			idx = IdxValid
		}
		if !p.Validate(idx, elem, list) {
			return false
		}
	}
	for _, reqIdx := range v.Arr.Contains {
		found := false
		for _, elem := range val.Arr {
			temp := &Checklist{}
			if p.Validate(reqIdx, elem, temp) {
				list.Merge(*temp)
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func hasDuplicateElements(arr []codec.Value) bool {
	for i := range arr {
		for j := i + 1; j < len(arr); j++ {
			if arr[i].Equal(arr[j]) {
				return true
			}
		}
	}
	return false
}

func (p *Pool) validateObject(v V, val codec.Value, list *Checklist) bool {
	if val.Kind != codec.KindMap {
		return false
	}
	if len(v.Obj.In) > 0 || len(v.Obj.Nin) > 0 {
		enc := codec.Encode(val)
		if len(v.Obj.In) > 0 && !containsBytes(v.Obj.In, enc) {
			return false
		}
		if containsBytes(v.Obj.Nin, enc) {
			return false
		}
	}
	seen := 0
	for _, e := range val.Map {
		if e.Key == "" {
			continue // schema-hash field, not part of the schema's own shape
		}
		seen++
		if idx, ok := v.Obj.Required[e.Key]; ok {
			if !p.Validate(idx, e.Val, list) {
				return false
			}
			continue
		}
		if idx, ok := v.Obj.Optional[e.Key]; ok {
			if !p.Validate(idx, e.Val, list) {
				return false
			}
			continue
		}
		if v.Obj.FieldType != 0 {
			if !p.Validate(v.Obj.FieldType, e.Val, list) {
				return false
			}
			continue
		}
		if !v.Obj.UnknownOk {
			return false
		}
	}
	for name := range v.Obj.Required {
		if _, present := val.Field(name); !present {
			return false
		}
	}
	if v.Obj.MinFields != nil && seen < *v.Obj.MinFields {
		return false
	}
	if v.Obj.MaxFields != nil && seen > *v.Obj.MaxFields {
		return false
	}
	return true
}

func (p *Pool) validateMulti(v V, val codec.Value, list *Checklist) bool {
	for _, group := range v.Multi.AnyOf {
		passed := false
		for _, idx := range group {
			temp := &Checklist{}
			if p.Validate(idx, val, temp) {
				list.Merge(*temp)
				passed = true
				break
			}
		}
		if !passed {
			return false
		}
	}
	return true
}
