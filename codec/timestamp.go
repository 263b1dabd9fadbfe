package codec

// Timestamp is the extension-type -1 value: seconds since the Unix epoch
// plus a nanosecond fraction, matching the msgpack timestamp extension's
// three encoded widths (spec.md §4.1). Sec may be negative (pre-1970);
// Nsec is always in [0, 1e9).
type Timestamp struct {
	Sec  int64
	Nsec uint32
}

const nanosPerSec = 1_000_000_000

// fits32 reports whether the timestamp encodes in the 4-byte form: no
// fractional seconds and an unsigned 32-bit second count.
func (t Timestamp) fits32() bool {
	return t.Nsec == 0 && t.Sec >= 0 && t.Sec <= 0xffffffff
}

// fits64 reports whether the timestamp encodes in the 8-byte form: 30-bit
// nanoseconds and an unsigned 34-bit second count.
func (t Timestamp) fits64() bool {
	return t.Nsec < nanosPerSec && t.Sec >= 0 && t.Sec <= 0x3ffffffff
}
