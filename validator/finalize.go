package validator

// Finalize walks the validator at idx (and everything it references),
// trimming in/nin/bounds into a self-consistent normal form and reporting
// whether the validator can still accept at least one value (spec.md
// §4.5 "Finalize"). Named-type references can be recursive, so a visited
// set guards against infinite recursion; a validator already being
// finalized on the call stack is optimistically treated as satisfiable,
// matching the usual meet-semilattice fixpoint treatment of recursive
// schemas.
func (p *Pool) Finalize(idx int) bool {
	return p.finalize(idx, make(map[int]bool))
}

func (p *Pool) finalize(idx int, visiting map[int]bool) bool {
	if visiting[idx] {
		return true
	}
	visiting[idx] = true
	defer delete(visiting, idx)

	v := p.Get(idx)
	ok := true
	switch v.Kind {
	case KindInvalid:
		ok = false
	case KindValid, KindNull:
		ok = true
	case KindType:
		target, found := p.ResolveType(v.TypeName)
		if !found {
			return false
		}
		ok = p.finalize(target, visiting)
	case KindBool:
		ok = true
	case KindInt:
		ok = v.Int.B.finalize()
		if ok && v.Int.HasBitsSet && v.Int.HasBitsClr && v.Int.BitsSet&v.Int.BitsClr != 0 {
			ok = false
		}
	case KindF32:
		ok = v.F32.B.finalize()
	case KindF64:
		ok = v.F64.B.finalize()
	case KindString:
		ok = v.Str.B.finalize()
		if ok && v.Str.MinLen != nil && v.Str.MaxLen != nil && *v.Str.MinLen > *v.Str.MaxLen {
			ok = false
		}
	case KindBinary:
		ok = v.Bin.B.finalize()
		if ok && v.Bin.HasBitsSet && v.Bin.HasBitsClr {
			ok = !bitsConflict(v.Bin.BitsSet, v.Bin.BitsClr)
		}
	case KindTimestamp:
		ok = v.Time.B.finalize()
	case KindHash:
		ok = true
	case KindIdentity, KindLockbox:
		ok = true
	case KindArray:
		ok = p.finalizeArray(&v, visiting)
	case KindObject:
		ok = p.finalizeObject(&v, visiting)
	case KindMulti:
		ok = p.finalizeMulti(&v, visiting)
	}
	p.Set(idx, v)
	if !ok {
		p.Set(idx, V{Kind: KindInvalid})
	}
	return ok
}

func (p *Pool) finalizeArray(v *V, visiting map[int]bool) bool {
	for _, item := range v.Arr.Items {
		if !p.finalize(item, visiting) {
			return false
		}
	}
	if v.Arr.ExtraItems != 0 {
		p.finalize(v.Arr.ExtraItems, visiting)
	}
	for _, c := range v.Arr.Contains {
		if !p.finalize(c, visiting) {
			return false
		}
	}
	if v.Arr.MinLen != nil && v.Arr.MaxLen != nil && *v.Arr.MinLen > *v.Arr.MaxLen {
		return false
	}
	return true
}

func (p *Pool) finalizeObject(v *V, visiting map[int]bool) bool {
	for _, idx := range v.Obj.Required {
		if !p.finalize(idx, visiting) {
			return false
		}
	}
	for _, idx := range v.Obj.Optional {
		// An optional field that can never pass simply can never be
		// present; that does not invalidate the object as a whole.
		p.finalize(idx, visiting)
	}
	if v.Obj.FieldType != 0 {
		p.finalize(v.Obj.FieldType, visiting)
	}
	if v.Obj.MinFields != nil && v.Obj.MaxFields != nil && *v.Obj.MinFields > *v.Obj.MaxFields {
		return false
	}
	if v.Obj.MinFields != nil && *v.Obj.MinFields > len(v.Obj.Required)+len(v.Obj.Optional) && !v.Obj.UnknownOk {
		return false
	}
	return true
}

func (p *Pool) finalizeMulti(v *V, visiting map[int]bool) bool {
	var kept [][]int
	for _, group := range v.Multi.AnyOf {
		var live []int
		for _, idx := range group {
			if p.finalize(idx, visiting) {
				live = append(live, idx)
			}
		}
		if len(live) == 0 {
			return false // this group can never be satisfied: whole Multi fails
		}
		kept = append(kept, live)
	}
	v.Multi.AnyOf = kept
	return true
}

func bitsConflict(set, clr []byte) bool {
	n := len(set)
	if len(clr) < n {
		n = len(clr)
	}
	for i := 0; i < n; i++ {
		if set[i]&clr[i] != 0 {
			return true
		}
	}
	return false
}
