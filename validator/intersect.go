package validator

import (
	"regexp"

	"github.com/cognoscan/condensedb/cobj"
)

func setOfHash(a, b []cobj.Hash) []cobj.Hash {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	var out []cobj.Hash
	for _, h := range a {
		for _, o := range b {
			if h.Equal(o) {
				out = append(out, h)
				break
			}
		}
	}
	if out == nil {
		out = []cobj.Hash{}
	}
	return out
}

func unionOfHash(a, b []cobj.Hash) []cobj.Hash {
	out := append([]cobj.Hash(nil), a...)
	for _, h := range b {
		found := false
		for _, o := range out {
			if h.Equal(o) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, h)
		}
	}
	return out
}

// setOfBytes and unionOfBytes are setOfHash/unionOfHash's counterparts for
// Array/Object In/Nin lists, which store raw canonical encodings of whole
// values rather than cobj.Hash.
func setOfBytes(a, b [][]byte) [][]byte {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	var out [][]byte
	for _, x := range a {
		for _, y := range b {
			if bytesEqual(x, y) {
				out = append(out, x)
				break
			}
		}
	}
	if out == nil {
		out = [][]byte{}
	}
	return out
}

func unionOfBytes(a, b [][]byte) [][]byte {
	out := append([][]byte(nil), a...)
	for _, x := range b {
		found := false
		for _, y := range out {
			if bytesEqual(x, y) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, x)
		}
	}
	return out
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func containsBytes(set [][]byte, v []byte) bool {
	for _, s := range set {
		if bytesEqual(s, v) {
			return true
		}
	}
	return false
}

// Intersect composes the validators at a and b into a new validator that
// accepts exactly the values both would accept, interning the result into
// pool and returning its index (spec.md §4.5). Valid is the identity
// element and Invalid the absorbing element; two validators of different,
// non-Valid/Invalid kinds are provably disjoint and intersect to Invalid.
func (p *Pool) Intersect(a, b int) int {
	return p.intersect(a, b, nil)
}

// IntersectQuery is Intersect with the query-capability check spec.md
// §4.5 describes: query is the incoming query validator, schema is the
// validator the schema itself declared for that field. The result is the
// plain intersection, but construction fails with ErrCapabilityDenied if
// query exercises a capability that schema disallows. The checks made are:
// bit (Int: query's BitOk without schema's BitOk; Binary: query bit masks
// where schema has none), regex, link_ok, schema_ok, contains_ok, array
// (a query `unique`) and unknown_ok. The query and ord flags (V.QueryOk,
// V.OrdOk) are not consulted, so bounds and set constraints in a query are
// never denied.
func (p *Pool) IntersectQuery(schema, query int) (int, error) {
	var capErr error
	idx := p.intersect(schema, query, &capErr)
	if capErr != nil {
		return IdxInvalid, capErr
	}
	return idx, nil
}

func (p *Pool) intersect(a, b int, capErr *error) int {
	av, bv := p.Get(a), p.Get(b)

	switch {
	case av.Kind == KindInvalid || bv.Kind == KindInvalid:
		return IdxInvalid
	case av.Kind == KindValid:
		return b
	case bv.Kind == KindValid:
		return a
	}

	if av.Kind != bv.Kind {
		return IdxInvalid
	}

	switch av.Kind {
	case KindNull:
		return p.Intern(V{Kind: KindNull})
	case KindBool:
		return p.intersectBool(av, bv)
	case KindInt:
		return p.intersectInt(av, bv, capErr)
	case KindF32:
		return p.intersectF32(av, bv)
	case KindF64:
		return p.intersectF64(av, bv)
	case KindString:
		return p.intersectString(av, bv, capErr)
	case KindBinary:
		return p.intersectBinary(av, bv, capErr)
	case KindTimestamp:
		return p.Intern(V{Kind: KindTimestamp, Time: TimeV{B: av.Time.B.tighten(bv.Time.B)}})
	case KindHash:
		return p.intersectHash(av, bv, capErr)
	case KindIdentity:
		return p.Intern(V{Kind: KindIdentity})
	case KindLockbox:
		return p.Intern(V{Kind: KindLockbox})
	case KindArray:
		return p.intersectArray(av, bv, capErr)
	case KindObject:
		return p.intersectObject(av, bv, capErr)
	case KindMulti:
		return p.intersectMulti(av, bv)
	case KindType:
		ra, aok := p.ResolveType(av.TypeName)
		rb, bok := p.ResolveType(bv.TypeName)
		if !aok || !bok {
			return IdxInvalid
		}
		return p.intersect(ra, rb, capErr)
	default:
		return IdxInvalid
	}
}

func denyIf(capErr *error, queryWants, schemaAllows bool) {
	if capErr != nil && *capErr == nil && queryWants && !schemaAllows {
		*capErr = ErrCapabilityDenied
	}
}

func (p *Pool) intersectBool(a, b V) int {
	out := V{Kind: KindBool}
	switch {
	case a.BoolConst == nil:
		out.BoolConst = b.BoolConst
	case b.BoolConst == nil:
		out.BoolConst = a.BoolConst
	case *a.BoolConst == *b.BoolConst:
		out.BoolConst = a.BoolConst
	default:
		return IdxInvalid
	}
	return p.Intern(out)
}

func (p *Pool) intersectInt(a, b V, capErr *error) int {
	denyIf(capErr, b.BitOk, a.BitOk)
	combined := IntV{B: a.Int.B.tighten(b.Int.B)}
	if a.Int.HasBitsSet || b.Int.HasBitsSet {
		combined.HasBitsSet = true
		combined.BitsSet = a.Int.BitsSet | b.Int.BitsSet
	}
	if a.Int.HasBitsClr || b.Int.HasBitsClr {
		combined.HasBitsClr = true
		combined.BitsClr = a.Int.BitsClr | b.Int.BitsClr
	}
	if combined.HasBitsSet && combined.HasBitsClr && combined.BitsSet&combined.BitsClr != 0 {
		return IdxInvalid
	}
	return p.Intern(V{Kind: KindInt, Int: combined})
}

func (p *Pool) intersectF32(a, b V) int {
	return p.Intern(V{Kind: KindF32, F32: F32V{
		B:     a.F32.B.tighten(b.F32.B),
		NanOk: a.F32.NanOk && b.F32.NanOk,
	}})
}

func (p *Pool) intersectF64(a, b V) int {
	return p.Intern(V{Kind: KindF64, F64: F64V{
		B:     a.F64.B.tighten(b.F64.B),
		NanOk: a.F64.NanOk && b.F64.NanOk,
	}})
}

func (p *Pool) intersectString(a, b V, capErr *error) int {
	denyIf(capErr, len(b.Str.Regex) > 0, a.Str.RegexOk)
	out := StringV{
		B:     a.Str.B.tighten(b.Str.B),
		Regex: append(append([]*regexp.Regexp(nil), a.Str.Regex...), b.Str.Regex...),
	}
	out.MinLen = maxLenPtr(a.Str.MinLen, b.Str.MinLen, true)
	out.MaxLen = maxLenPtr(a.Str.MaxLen, b.Str.MaxLen, false)
	return p.Intern(V{Kind: KindString, Str: out})
}

func (p *Pool) intersectBinary(a, b V, capErr *error) int {
	denyIf(capErr, b.Bin.HasBitsSet || b.Bin.HasBitsClr, a.Bin.BitsSet != nil || a.Bin.BitsClr != nil)
	out := BinaryV{B: a.Bin.B.tighten(b.Bin.B)}
	out.MinLen = maxLenPtr(a.Bin.MinLen, b.Bin.MinLen, true)
	out.MaxLen = maxLenPtr(a.Bin.MaxLen, b.Bin.MaxLen, false)
	if a.Bin.HasBitsSet || b.Bin.HasBitsSet {
		out.HasBitsSet = true
		out.BitsSet = orBytes(a.Bin.BitsSet, b.Bin.BitsSet)
	}
	if a.Bin.HasBitsClr || b.Bin.HasBitsClr {
		out.HasBitsClr = true
		out.BitsClr = orBytes(a.Bin.BitsClr, b.Bin.BitsClr)
	}
	if out.HasBitsSet && out.HasBitsClr && bitsConflict(out.BitsSet, out.BitsClr) {
		return IdxInvalid
	}
	return p.Intern(V{Kind: KindBinary, Bin: out})
}

func (p *Pool) intersectHash(a, b V, capErr *error) int {
	denyIf(capErr, b.Hash.HasLink, a.Hash.LinkOk)
	denyIf(capErr, len(b.Hash.Schema) > 0, a.Hash.SchemaOk)
	out := HashV{
		In:  setOfHash(a.Hash.In, b.Hash.In),
		Nin: unionOfHash(a.Hash.Nin, b.Hash.Nin),
	}
	if a.Hash.HasLink && b.Hash.HasLink {
		out.HasLink, out.Link = true, p.intersect(a.Hash.Link, b.Hash.Link, capErr)
	} else if a.Hash.HasLink {
		out.HasLink, out.Link = true, a.Hash.Link
	} else if b.Hash.HasLink {
		out.HasLink, out.Link = true, b.Hash.Link
	}
	out.Schema = setOfHash(a.Hash.Schema, b.Hash.Schema)
	return p.Intern(V{Kind: KindHash, Hash: out})
}

func (p *Pool) intersectArray(a, b V, capErr *error) int {
	denyIf(capErr, len(b.Arr.Contains) > 0, a.Arr.ContainsOk)
	denyIf(capErr, b.Arr.Unique, a.Arr.ArrayOk)
	n := len(a.Arr.Items)
	if len(b.Arr.Items) > n {
		n = len(b.Arr.Items)
	}
	items := make([]int, n)
	for i := 0; i < n; i++ {
		ai, bi := orValid(a.Arr.ExtraItems), orValid(b.Arr.ExtraItems)
		if i < len(a.Arr.Items) {
			ai = a.Arr.Items[i]
		}
		if i < len(b.Arr.Items) {
			bi = b.Arr.Items[i]
		}
		items[i] = p.intersect(ai, bi, capErr)
	}
	extra := p.intersect(orValid(a.Arr.ExtraItems), orValid(b.Arr.ExtraItems), capErr)
	out := ArrayV{
		Items:      items,
		ExtraItems: extra,
		Contains:   append(append([]int(nil), a.Arr.Contains...), b.Arr.Contains...),
		Unique:     a.Arr.Unique || b.Arr.Unique,
	}
	out.MinLen = maxLenPtr(a.Arr.MinLen, b.Arr.MinLen, true)
	out.MaxLen = maxLenPtr(a.Arr.MaxLen, b.Arr.MaxLen, false)
	out.In = setOfBytes(a.Arr.In, b.Arr.In)
	out.Nin = unionOfBytes(a.Arr.Nin, b.Arr.Nin)
	return p.Intern(V{Kind: KindArray, Arr: out})
}

func (p *Pool) intersectObject(a, b V, capErr *error) int {
	denyIf(capErr, b.Obj.UnknownOk, a.Obj.UnknownOk)
	req := map[string]int{}
	for name, idx := range a.Obj.Required {
		req[name] = idx
	}
	opt := map[string]int{}
	for name, idx := range a.Obj.Optional {
		opt[name] = idx
	}
	for name, bidx := range b.Obj.Required {
		if aidx, ok := req[name]; ok {
			req[name] = p.intersect(aidx, bidx, capErr)
		} else if aidx, ok := opt[name]; ok {
			req[name] = p.intersect(aidx, bidx, capErr)
			delete(opt, name)
		} else {
			req[name] = bidx
		}
	}
	for name, bidx := range b.Obj.Optional {
		if _, already := req[name]; already {
			continue
		}
		if aidx, ok := opt[name]; ok {
			opt[name] = p.intersect(aidx, bidx, capErr)
		} else {
			opt[name] = bidx
		}
	}
	out := ObjectV{
		Required:  req,
		Optional:  opt,
		UnknownOk: a.Obj.UnknownOk && b.Obj.UnknownOk,
	}
	out.MinFields = maxLenPtr(a.Obj.MinFields, b.Obj.MinFields, true)
	out.MaxFields = maxLenPtr(a.Obj.MaxFields, b.Obj.MaxFields, false)
	// Each side's rule for unknown fields: its FieldType if set, else Valid
	// when UnknownOk, else none (index 0).
	fa, fb := a.Obj.FieldType, b.Obj.FieldType
	if fa == 0 && a.Obj.UnknownOk {
		fa = IdxValid
	}
	if fb == 0 && b.Obj.UnknownOk {
		fb = IdxValid
	}
	out.FieldType = p.intersect(fa, fb, capErr)
	if out.FieldType == IdxInvalid {
		out.UnknownOk = false
	}
	out.In = setOfBytes(a.Obj.In, b.Obj.In)
	out.Nin = unionOfBytes(a.Obj.Nin, b.Obj.Nin)
	return p.Intern(V{Kind: KindObject, Obj: out})
}

func (p *Pool) intersectMulti(a, b V) int {
	out := MultiV{AnyOf: append(append([][]int(nil), a.Multi.AnyOf...), b.Multi.AnyOf...)}
	return p.Intern(V{Kind: KindMulti, Multi: out})
}

func orValid(idx int) int {
	if idx == 0 {
		return IdxValid
	}
	return idx
}

func maxLenPtr(a, b *int, wantMax bool) *int {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if wantMax {
		v := *a
		if *b > v {
			v = *b
		}
		return &v
	}
	v := *a
	if *b < v {
		v = *b
	}
	return &v
}

func orBytes(a, b []byte) []byte {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		var av, bv byte
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		out[i] = av | bv
	}
	return out
}
