package codec

import "math"

// f64TotalOrder implements IEEE 754's totalOrder predicate for float64,
// returning -1/0/1. NaN values sort deterministically by their raw bit
// pattern (a quiet NaN such as math.NaN() sorts after +Inf), satisfying
// spec.md §4.1/§9's "floats use a total ordering including NaN" guarantee.
// This is the only equality used by validator `in`/`nin` set membership.
func f64TotalOrder(a, b float64) int {
	ka, kb := f64orderKey(a), f64orderKey(b)
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	default:
		return 0
	}
}

func f64orderKey(f float64) uint64 {
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		return ^bits
	}
	return bits | (1 << 63)
}

// f32TotalOrder is the float32 analogue of f64TotalOrder.
func f32TotalOrder(a, b float32) int {
	ka, kb := f32orderKey(a), f32orderKey(b)
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	default:
		return 0
	}
}

func f32orderKey(f float32) uint32 {
	bits := math.Float32bits(f)
	if bits&(1<<31) != 0 {
		return ^bits
	}
	return bits | (1 << 31)
}
