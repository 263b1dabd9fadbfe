package validator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cognoscan/condensedb/cobj"
	"github.com/cognoscan/condensedb/codec"
)

func TestValidIntAcceptsAny(t *testing.T) {
	p := NewPool()
	list := &Checklist{}
	require.True(t, p.Validate(IdxValid, codec.Int(5), list))
}

func TestInvalidRejectsAny(t *testing.T) {
	p := NewPool()
	list := &Checklist{}
	require.False(t, p.Validate(IdxInvalid, codec.Int(5), list))
}

func TestIntBoundsValidate(t *testing.T) {
	p := NewPool()
	min, max := int64(0), int64(10)
	idx := p.Intern(V{Kind: KindInt, Int: IntV{B: Bounds[int64]{HasMin: true, Min: min, HasMax: true, Max: max}}})
	require.True(t, p.Finalize(idx))

	list := &Checklist{}
	require.True(t, p.Validate(idx, codec.Int(5), list))
	require.False(t, p.Validate(idx, codec.Int(11), list))
	require.False(t, p.Validate(idx, codec.Int(-1), list))
}

func TestIntersectBoundsTightens(t *testing.T) {
	p := NewPool()
	a := p.Intern(V{Kind: KindInt, Int: IntV{B: Bounds[int64]{HasMin: true, Min: 0, HasMax: true, Max: 10}}})
	b := p.Intern(V{Kind: KindInt, Int: IntV{B: Bounds[int64]{HasMin: true, Min: 5, HasMax: true, Max: 20}}})
	c := p.Intersect(a, b)
	require.True(t, p.Finalize(c))

	list := &Checklist{}
	require.True(t, p.Validate(c, codec.Int(7), list))
	require.False(t, p.Validate(c, codec.Int(3), list))
	require.False(t, p.Validate(c, codec.Int(15), list))
}

func TestIntersectDisjointBoundsInvalid(t *testing.T) {
	p := NewPool()
	a := p.Intern(V{Kind: KindInt, Int: IntV{B: Bounds[int64]{HasMax: true, Max: 5, HasMin: true, Min: 0}}})
	b := p.Intern(V{Kind: KindInt, Int: IntV{B: Bounds[int64]{HasMin: true, Min: 10, HasMax: true, Max: 20}}})
	c := p.Intersect(a, b)
	require.False(t, p.Finalize(c))
}

func TestIntersectValidIsIdentity(t *testing.T) {
	p := NewPool()
	a := p.Intern(V{Kind: KindBool, BoolConst: boolPtr(true)})
	c := p.Intersect(IdxValid, a)
	require.Equal(t, a, c)
}

func TestIntersectDifferentKindsIsInvalid(t *testing.T) {
	p := NewPool()
	a := p.Intern(V{Kind: KindBool})
	b := p.Intern(V{Kind: KindString})
	require.Equal(t, IdxInvalid, p.Intersect(a, b))
}

func TestObjectValidateRequiredOptionalUnknown(t *testing.T) {
	p := NewPool()
	reqIdx := p.Intern(V{Kind: KindInt, Int: IntV{}})
	objIdx := p.Intern(V{Kind: KindObject, Obj: ObjectV{
		Required: map[string]int{"a": reqIdx},
		Optional: map[string]int{"b": IdxValid},
	}})

	list := &Checklist{}
	good := codec.NewMap([]codec.MapEntry{
		{Key: "a", Val: codec.Int(1)},
	})
	require.True(t, p.Validate(objIdx, good, list))

	missing := codec.NewMap([]codec.MapEntry{{Key: "b", Val: codec.Int(1)}})
	require.False(t, p.Validate(objIdx, missing, list))

	unknown := codec.NewMap([]codec.MapEntry{
		{Key: "a", Val: codec.Int(1)},
		{Key: "z", Val: codec.Int(1)},
	})
	require.False(t, p.Validate(objIdx, unknown, list))
}

func TestArrayItemsAndLength(t *testing.T) {
	p := NewPool()
	intIdx := p.Intern(V{Kind: KindInt})
	strIdx := p.Intern(V{Kind: KindString})
	two := 2
	arrIdx := p.Intern(V{Kind: KindArray, Arr: ArrayV{
		Items:  []int{intIdx, strIdx},
		MinLen: &two,
	}})

	list := &Checklist{}
	ok := codec.Array([]codec.Value{codec.Int(1), codec.String("x")})
	require.True(t, p.Validate(arrIdx, ok, list))

	short := codec.Array([]codec.Value{codec.Int(1)})
	require.False(t, p.Validate(arrIdx, short, list))
}

func TestArrayInNinMatchesWholeValue(t *testing.T) {
	p := NewPool()
	allowed := codec.Array([]codec.Value{codec.Int(1), codec.Int(2)})
	denied := codec.Array([]codec.Value{codec.Int(3)})
	arrIdx := p.Intern(V{Kind: KindArray, Arr: ArrayV{
		In:  [][]byte{codec.Encode(allowed)},
		Nin: [][]byte{codec.Encode(denied)},
	}})

	list := &Checklist{}
	require.True(t, p.Validate(arrIdx, allowed, list))
	require.False(t, p.Validate(arrIdx, codec.Array([]codec.Value{codec.Int(9)}), list))
	require.False(t, p.Validate(arrIdx, denied, list))
}

func TestObjectInNinMatchesWholeValue(t *testing.T) {
	p := NewPool()
	allowed := codec.NewMap([]codec.MapEntry{{Key: "a", Val: codec.Int(1)}})
	objIdx := p.Intern(V{Kind: KindObject, Obj: ObjectV{
		UnknownOk: true,
		In:        [][]byte{codec.Encode(allowed)},
	}})

	list := &Checklist{}
	require.True(t, p.Validate(objIdx, allowed, list))
	other := codec.NewMap([]codec.MapEntry{{Key: "a", Val: codec.Int(2)}})
	require.False(t, p.Validate(objIdx, other, list))
}

func TestIntersectArrayInNarrows(t *testing.T) {
	p := NewPool()
	v1 := codec.Array([]codec.Value{codec.Int(1)})
	v2 := codec.Array([]codec.Value{codec.Int(2)})
	a := p.Intern(V{Kind: KindArray, Arr: ArrayV{In: [][]byte{codec.Encode(v1), codec.Encode(v2)}}})
	b := p.Intern(V{Kind: KindArray, Arr: ArrayV{In: [][]byte{codec.Encode(v1)}}})

	merged := p.Intersect(a, b)
	list := &Checklist{}
	require.True(t, p.Validate(merged, v1, list))
	require.False(t, p.Validate(merged, v2, list))
}

func TestMultiAnyOf(t *testing.T) {
	p := NewPool()
	intIdx := p.Intern(V{Kind: KindInt})
	strIdx := p.Intern(V{Kind: KindString})
	multiIdx := p.Intern(V{Kind: KindMulti, Multi: MultiV{AnyOf: [][]int{{intIdx, strIdx}}}})

	list := &Checklist{}
	require.True(t, p.Validate(multiIdx, codec.Int(1), list))
	require.True(t, p.Validate(multiIdx, codec.String("x"), list))
	require.False(t, p.Validate(multiIdx, codec.Bool(true), list))
}

func TestHashLinkPushesChecklistItem(t *testing.T) {
	p := NewPool()
	hashIdx := p.Intern(V{Kind: KindHash, Hash: HashV{HasLink: true, Link: IdxValid}})

	var zero [64]byte
	h := cobj.Hash{Version: cobj.Version1, Digest: zero}
	list := &Checklist{}
	require.True(t, p.Validate(hashIdx, codec.HashVal(h), list))
	require.Len(t, list.Items, 1)
	require.True(t, list.Items[0].HasValidatorIndex)
}

func boolPtr(b bool) *bool { return &b }
