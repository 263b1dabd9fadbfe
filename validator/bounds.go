package validator

import (
	"cmp"
	"slices"
)

// Bounds captures the min/max/in/nin shape shared by Int, F32, F64,
// String, Binary, and Timestamp validators. The original Rust source cut
// this repetition with declarative macros (macros.rs); Go has no macros,
// so a generic helper plays the same role. Exported so package schema can
// build validators directly from decoded fields.
type Bounds[T cmp.Ordered] struct {
	HasMin, HasMax bool
	Min, Max       T
	In, Nin        []T // always sorted ascending, deduplicated once Finalize runs
}

// SetMin, SetMax, SetIn, and SetNin are the schema decoder's entry points
// for populating a Bounds from a decoded validator field.
func (b *Bounds[T]) SetMin(v T)    { b.HasMin, b.Min = true, v }
func (b *Bounds[T]) SetMax(v T)    { b.HasMax, b.Max = true, v }
func (b *Bounds[T]) SetIn(v []T)   { b.In = v }
func (b *Bounds[T]) SetNin(v []T)  { b.Nin = v }

// tighten combines two bounds the way Intersect combines Int/F32/F64/
// String/Binary/Timestamp fields: max of the two mins, min of the two
// maxes, set-intersection of `in`, set-union of `nin`.
func (b Bounds[T]) tighten(o Bounds[T]) Bounds[T] {
	out := Bounds[T]{}
	switch {
	case b.HasMin && o.HasMin:
		out.HasMin, out.Min = true, max(b.Min, o.Min)
	case b.HasMin:
		out.HasMin, out.Min = true, b.Min
	case o.HasMin:
		out.HasMin, out.Min = true, o.Min
	}
	switch {
	case b.HasMax && o.HasMax:
		out.HasMax, out.Max = true, min(b.Max, o.Max)
	case b.HasMax:
		out.HasMax, out.Max = true, b.Max
	case o.HasMax:
		out.HasMax, out.Max = true, o.Max
	}
	out.In = setOf(b.In, o.In)
	out.Nin = unionOf(b.Nin, o.Nin)
	return out
}

// accepts reports whether v passes this bound set: within [min,max] (where
// set), present in `in` (if nonempty), and absent from `nin`.
func (b Bounds[T]) accepts(v T) bool {
	if b.HasMin && v < b.Min {
		return false
	}
	if b.HasMax && v > b.Max {
		return false
	}
	if len(b.In) > 0 && !slices.Contains(b.In, v) {
		return false
	}
	if slices.Contains(b.Nin, v) {
		return false
	}
	return true
}

// finalize dedupes and sorts in/nin, then drops nin entries that bounds or
// `in` already exclude (spec.md §4.5 "Finalize") and filters `in` against
// `nin`/bounds. Returns false if nothing could pass.
func (b *Bounds[T]) finalize() bool {
	b.In = sortDedup(b.In)
	b.Nin = sortDedup(b.Nin)

	filteredIn := b.In[:0:0]
	for _, v := range b.In {
		if b.withinBoundsOnly(v) && !slices.Contains(b.Nin, v) {
			filteredIn = append(filteredIn, v)
		}
	}
	if b.In != nil {
		b.In = filteredIn
	}

	var filteredNin []T
	for _, v := range b.Nin {
		if b.withinBoundsOnly(v) && (b.In == nil || slices.Contains(b.In, v)) {
			filteredNin = append(filteredNin, v)
		}
	}
	b.Nin = filteredNin

	if b.In != nil && len(b.In) == 0 {
		return false
	}
	if b.HasMin && b.HasMax && b.Min > b.Max {
		return false
	}
	return true
}

// withinBoundsOnly checks min/max without consulting in/nin, used while
// finalize is deciding which in/nin entries remain relevant.
func (b Bounds[T]) withinBoundsOnly(v T) bool {
	if b.HasMin && v < b.Min {
		return false
	}
	if b.HasMax && v > b.Max {
		return false
	}
	return true
}

func sortDedup[T cmp.Ordered](in []T) []T {
	if in == nil {
		return nil
	}
	out := append([]T(nil), in...)
	slices.Sort(out)
	return slices.Compact(out)
}

// setOf intersects two sorted sets; an empty-but-non-nil slice on either
// side (meaning "no values allowed") propagates. A nil slice means
// "unconstrained" and is the identity element.
func setOf[T cmp.Ordered](a, b []T) []T {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	var out []T
	for _, v := range a {
		if slices.Contains(b, v) {
			out = append(out, v)
		}
	}
	if out == nil {
		out = []T{}
	}
	return out
}

// unionOf unions two nin sets.
func unionOf[T cmp.Ordered](a, b []T) []T {
	out := append([]T(nil), a...)
	out = append(out, b...)
	return sortDedup(out)
}
