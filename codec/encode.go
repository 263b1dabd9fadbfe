package codec

import (
	"encoding/binary"
	"math"
)

// markers, named after the MessagePack spec this format is shaped on.
const (
	mNil     = 0xc0
	mFalse   = 0xc2
	mTrue    = 0xc3
	mBin8    = 0xc4
	mBin16   = 0xc5
	mBin32   = 0xc6
	mExt8    = 0xc7
	mExt16   = 0xc8
	mExt32   = 0xc9
	mFloat32 = 0xca
	mFloat64 = 0xcb
	mUint8   = 0xcc
	mUint16  = 0xcd
	mUint32  = 0xce
	mUint64  = 0xcf
	mInt8    = 0xd0
	mInt16   = 0xd1
	mInt32   = 0xd2
	mInt64   = 0xd3
	mFixExt1 = 0xd4
	mFixExt2 = 0xd5
	mFixExt4 = 0xd6
	mFixExt8 = 0xd7
	mFixExt16 = 0xd8
	mStr8    = 0xd9
	mStr16   = 0xda
	mStr32   = 0xdb
	mArray16 = 0xdc
	mArray32 = 0xdd
	mMap16   = 0xde
	mMap32   = 0xdf
)

const (
	extTimestamp int8 = -1
	extHash      int8 = 1
	extIdentity  int8 = 2
	extLockbox   int8 = 3
)

// fixintMax is the largest value the positive-fixint marker range covers.
const fixintMax = 0x7f

// negFixintMin is the smallest (most negative) value the negative-fixint
// marker range covers.
const negFixintMin = -32

// Encode writes v's canonical shortest-form encoding.
func Encode(v Value) []byte {
	buf := make([]byte, 0, 64)
	return appendValue(buf, v)
}

func appendValue(buf []byte, v Value) []byte {
	switch v.Kind {
	case KindNull:
		return append(buf, mNil)
	case KindBool:
		if v.Bool {
			return append(buf, mTrue)
		}
		return append(buf, mFalse)
	case KindInt:
		return appendInt(buf, v)
	case KindF32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, math.Float32bits(v.F32))
		buf = append(buf, mFloat32)
		return append(buf, b...)
	case KindF64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, math.Float64bits(v.F64))
		buf = append(buf, mFloat64)
		return append(buf, b...)
	case KindString:
		return appendStr(buf, v.Str)
	case KindBinary:
		return appendBin(buf, v.Bin)
	case KindArray:
		buf = appendArrayHeader(buf, len(v.Arr))
		for _, e := range v.Arr {
			buf = appendValue(buf, e)
		}
		return buf
	case KindMap:
		buf = appendMapHeader(buf, len(v.Map))
		for _, e := range v.Map {
			buf = appendStr(buf, e.Key)
			buf = appendValue(buf, e.Val)
		}
		return buf
	case KindHash:
		return appendExt(buf, extHash, v.Hash.Bytes())
	case KindIdentity:
		return appendExt(buf, extIdentity, v.Identity.Bytes())
	case KindLockbox:
		return appendExt(buf, extLockbox, v.Lockbox.Bytes())
	case KindTimestamp:
		return appendExt(buf, extTimestamp, encodeTimestamp(v.Time))
	default:
		panic("codec: unknown Kind in Encode")
	}
}

func appendInt(buf []byte, v Value) []byte {
	if !v.Neg {
		n := v.PosVal
		switch {
		case n <= fixintMax:
			return append(buf, byte(n))
		case n <= math.MaxUint8:
			return append(buf, mUint8, byte(n))
		case n <= math.MaxUint16:
			b := make([]byte, 2)
			binary.BigEndian.PutUint16(b, uint16(n))
			return append(append(buf, mUint16), b...)
		case n <= math.MaxUint32:
			b := make([]byte, 4)
			binary.BigEndian.PutUint32(b, uint32(n))
			return append(append(buf, mUint32), b...)
		default:
			b := make([]byte, 8)
			binary.BigEndian.PutUint64(b, n)
			return append(append(buf, mUint64), b...)
		}
	}
	n := v.NegVal
	switch {
	case n >= negFixintMin:
		return append(buf, byte(int8(n)))
	case n >= math.MinInt8:
		return append(buf, mInt8, byte(int8(n)))
	case n >= math.MinInt16:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(int16(n)))
		return append(append(buf, mInt16), b...)
	case n >= math.MinInt32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(int32(n)))
		return append(append(buf, mInt32), b...)
	default:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(n))
		return append(append(buf, mInt64), b...)
	}
}

func appendStr(buf []byte, s string) []byte {
	n := len(s)
	switch {
	case n <= 31:
		buf = append(buf, byte(0xa0|n))
	case n <= math.MaxUint8:
		buf = append(buf, mStr8, byte(n))
	case n <= math.MaxUint16:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(n))
		buf = append(append(buf, mStr16), b...)
	default:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(n))
		buf = append(append(buf, mStr32), b...)
	}
	return append(buf, s...)
}

func appendBin(buf []byte, b []byte) []byte {
	n := len(b)
	switch {
	case n <= math.MaxUint8:
		buf = append(buf, mBin8, byte(n))
	case n <= math.MaxUint16:
		lb := make([]byte, 2)
		binary.BigEndian.PutUint16(lb, uint16(n))
		buf = append(append(buf, mBin16), lb...)
	default:
		lb := make([]byte, 4)
		binary.BigEndian.PutUint32(lb, uint32(n))
		buf = append(append(buf, mBin32), lb...)
	}
	return append(buf, b...)
}

func appendArrayHeader(buf []byte, n int) []byte {
	switch {
	case n <= 15:
		return append(buf, byte(0x90|n))
	case n <= math.MaxUint16:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(n))
		return append(append(buf, mArray16), b...)
	default:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(n))
		return append(append(buf, mArray32), b...)
	}
}

func appendMapHeader(buf []byte, n int) []byte {
	switch {
	case n <= 15:
		return append(buf, byte(0x80|n))
	case n <= math.MaxUint16:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(n))
		return append(append(buf, mMap16), b...)
	default:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(n))
		return append(append(buf, mMap32), b...)
	}
}

func appendExt(buf []byte, tag int8, payload []byte) []byte {
	n := len(payload)
	switch n {
	case 1:
		return append(append(buf, mFixExt1, byte(tag)), payload...)
	case 2:
		return append(append(buf, mFixExt2, byte(tag)), payload...)
	case 4:
		return append(append(buf, mFixExt4, byte(tag)), payload...)
	case 8:
		return append(append(buf, mFixExt8, byte(tag)), payload...)
	case 16:
		return append(append(buf, mFixExt16, byte(tag)), payload...)
	}
	switch {
	case n <= math.MaxUint8:
		return append(append(buf, mExt8, byte(n), byte(tag)), payload...)
	case n <= math.MaxUint16:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(n))
		buf = append(buf, mExt16)
		buf = append(buf, b...)
		return append(append(buf, byte(tag)), payload...)
	default:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(n))
		buf = append(buf, mExt32)
		buf = append(buf, b...)
		return append(append(buf, byte(tag)), payload...)
	}
}

// encodeTimestamp picks the shortest of the three msgpack timestamp widths.
func encodeTimestamp(t Timestamp) []byte {
	switch {
	case t.fits32():
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(t.Sec))
		return b
	case t.fits64():
		data64 := (uint64(t.Nsec) << 34) | uint64(t.Sec)
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, data64)
		return b
	default:
		b := make([]byte, 12)
		binary.BigEndian.PutUint32(b[0:4], t.Nsec)
		binary.BigEndian.PutUint64(b[4:12], uint64(t.Sec))
		return b
	}
}
