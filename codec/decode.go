package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cognoscan/condensedb/cobj"
)

// Decode parses exactly one canonical value from the front of data and
// returns it along with the number of bytes consumed. Binary payloads are
// returned as slices into data rather than copies (strings are copied) —
// this is the "ValueRef" borrowing mode of spec.md §4.1; call Value.Clone
// if the result must outlive data.
func Decode(data []byte) (Value, int, error) {
	return decodeValue(data)
}

// DecodeAll parses data as exactly one canonical value, failing if any
// trailing bytes remain.
func DecodeAll(data []byte) (Value, error) {
	v, n, err := decodeValue(data)
	if err != nil {
		return Value{}, err
	}
	if n != len(data) {
		return Value{}, fmt.Errorf("%w: %d trailing bytes", ErrBadFormat, len(data)-n)
	}
	return v, nil
}

// Clone deep-copies any borrowed byte slices so v no longer aliases its
// original decode buffer.
func (v Value) Clone() Value {
	switch v.Kind {
	case KindString:
		v.Str = string(append([]byte(nil), v.Str...))
	case KindBinary:
		v.Bin = append([]byte(nil), v.Bin...)
	case KindArray:
		arr := make([]Value, len(v.Arr))
		for i, e := range v.Arr {
			arr[i] = e.Clone()
		}
		v.Arr = arr
	case KindMap:
		m := make([]MapEntry, len(v.Map))
		for i, e := range v.Map {
			m[i] = MapEntry{Key: e.Key, Val: e.Val.Clone()}
		}
		v.Map = m
	case KindLockbox:
		l := *v.Lockbox
		l.Ciphertext = append([]byte(nil), l.Ciphertext...)
		v.Lockbox = &l
	}
	return v
}

func need(data []byte, n int) error {
	if len(data) < n {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrBadLength, n, len(data))
	}
	return nil
}

func decodeValue(data []byte) (Value, int, error) {
	if len(data) < 1 {
		return Value{}, 0, fmt.Errorf("%w: empty input", ErrBadLength)
	}
	m := data[0]
	switch {
	case m <= fixintMax:
		return Uint(uint64(m)), 1, nil
	case m >= 0xe0:
		return Int(int64(int8(m))), 1, nil
	case m&0xe0 == 0xa0: // fixstr
		n := int(m & 0x1f)
		return decodeStrBody(data, 1, n)
	case m&0xf0 == 0x90: // fixarray
		n := int(m & 0x0f)
		return decodeArrayBody(data, 1, n)
	case m&0xf0 == 0x80: // fixmap
		n := int(m & 0x0f)
		return decodeMapBody(data, 1, n)
	}
	switch m {
	case mNil:
		return Null(), 1, nil
	case mFalse:
		return Bool(false), 1, nil
	case mTrue:
		return Bool(true), 1, nil
	case mUint8:
		if err := need(data, 2); err != nil {
			return Value{}, 0, err
		}
		if data[1] <= fixintMax {
			return Value{}, 0, fmt.Errorf("%w: non-shortest uint8", ErrBadFormat)
		}
		return Uint(uint64(data[1])), 2, nil
	case mUint16:
		if err := need(data, 3); err != nil {
			return Value{}, 0, err
		}
		n := binary.BigEndian.Uint16(data[1:3])
		if n <= math.MaxUint8 {
			return Value{}, 0, fmt.Errorf("%w: non-shortest uint16", ErrBadFormat)
		}
		return Uint(uint64(n)), 3, nil
	case mUint32:
		if err := need(data, 5); err != nil {
			return Value{}, 0, err
		}
		n := binary.BigEndian.Uint32(data[1:5])
		if n <= math.MaxUint16 {
			return Value{}, 0, fmt.Errorf("%w: non-shortest uint32", ErrBadFormat)
		}
		return Uint(uint64(n)), 5, nil
	case mUint64:
		if err := need(data, 9); err != nil {
			return Value{}, 0, err
		}
		n := binary.BigEndian.Uint64(data[1:9])
		if n <= math.MaxUint32 {
			return Value{}, 0, fmt.Errorf("%w: non-shortest uint64", ErrBadFormat)
		}
		return Uint(n), 9, nil
	case mInt8:
		if err := need(data, 2); err != nil {
			return Value{}, 0, err
		}
		n := int64(int8(data[1]))
		if n >= negFixintMin {
			return Value{}, 0, fmt.Errorf("%w: non-shortest int8", ErrBadFormat)
		}
		return Int(n), 2, nil
	case mInt16:
		if err := need(data, 3); err != nil {
			return Value{}, 0, err
		}
		n := int64(int16(binary.BigEndian.Uint16(data[1:3])))
		if n >= math.MinInt8 {
			return Value{}, 0, fmt.Errorf("%w: non-shortest int16", ErrBadFormat)
		}
		return Int(n), 3, nil
	case mInt32:
		if err := need(data, 5); err != nil {
			return Value{}, 0, err
		}
		n := int64(int32(binary.BigEndian.Uint32(data[1:5])))
		if n >= math.MinInt16 {
			return Value{}, 0, fmt.Errorf("%w: non-shortest int32", ErrBadFormat)
		}
		return Int(n), 5, nil
	case mInt64:
		if err := need(data, 9); err != nil {
			return Value{}, 0, err
		}
		n := int64(binary.BigEndian.Uint64(data[1:9]))
		if n >= math.MinInt32 {
			return Value{}, 0, fmt.Errorf("%w: non-shortest int64", ErrBadFormat)
		}
		return Int(n), 9, nil
	case mFloat32:
		if err := need(data, 5); err != nil {
			return Value{}, 0, err
		}
		return F32(math.Float32frombits(binary.BigEndian.Uint32(data[1:5]))), 5, nil
	case mFloat64:
		if err := need(data, 9); err != nil {
			return Value{}, 0, err
		}
		return F64(math.Float64frombits(binary.BigEndian.Uint64(data[1:9]))), 9, nil
	case mStr8:
		if err := need(data, 2); err != nil {
			return Value{}, 0, err
		}
		n := int(data[1])
		if n <= 31 {
			return Value{}, 0, fmt.Errorf("%w: non-shortest str8", ErrBadFormat)
		}
		return decodeStrBody(data, 2, n)
	case mStr16:
		if err := need(data, 3); err != nil {
			return Value{}, 0, err
		}
		n := int(binary.BigEndian.Uint16(data[1:3]))
		if n <= math.MaxUint8 {
			return Value{}, 0, fmt.Errorf("%w: non-shortest str16", ErrBadFormat)
		}
		return decodeStrBody(data, 3, n)
	case mStr32:
		if err := need(data, 5); err != nil {
			return Value{}, 0, err
		}
		n := int(binary.BigEndian.Uint32(data[1:5]))
		if n <= math.MaxUint16 {
			return Value{}, 0, fmt.Errorf("%w: non-shortest str32", ErrBadFormat)
		}
		return decodeStrBody(data, 5, n)
	case mBin8:
		if err := need(data, 2); err != nil {
			return Value{}, 0, err
		}
		return decodeBinBody(data, 2, int(data[1]))
	case mBin16:
		if err := need(data, 3); err != nil {
			return Value{}, 0, err
		}
		n := int(binary.BigEndian.Uint16(data[1:3]))
		if n <= math.MaxUint8 {
			return Value{}, 0, fmt.Errorf("%w: non-shortest bin16", ErrBadFormat)
		}
		return decodeBinBody(data, 3, n)
	case mBin32:
		if err := need(data, 5); err != nil {
			return Value{}, 0, err
		}
		n := int(binary.BigEndian.Uint32(data[1:5]))
		if n <= math.MaxUint16 {
			return Value{}, 0, fmt.Errorf("%w: non-shortest bin32", ErrBadFormat)
		}
		return decodeBinBody(data, 5, n)
	case mArray16:
		if err := need(data, 3); err != nil {
			return Value{}, 0, err
		}
		n := int(binary.BigEndian.Uint16(data[1:3]))
		if n <= 15 {
			return Value{}, 0, fmt.Errorf("%w: non-shortest array16", ErrBadFormat)
		}
		return decodeArrayBody(data, 3, n)
	case mArray32:
		if err := need(data, 5); err != nil {
			return Value{}, 0, err
		}
		n := int(binary.BigEndian.Uint32(data[1:5]))
		if n <= math.MaxUint16 {
			return Value{}, 0, fmt.Errorf("%w: non-shortest array32", ErrBadFormat)
		}
		return decodeArrayBody(data, 5, n)
	case mMap16:
		if err := need(data, 3); err != nil {
			return Value{}, 0, err
		}
		n := int(binary.BigEndian.Uint16(data[1:3]))
		if n <= 15 {
			return Value{}, 0, fmt.Errorf("%w: non-shortest map16", ErrBadFormat)
		}
		return decodeMapBody(data, 3, n)
	case mMap32:
		if err := need(data, 5); err != nil {
			return Value{}, 0, err
		}
		n := int(binary.BigEndian.Uint32(data[1:5]))
		if n <= math.MaxUint16 {
			return Value{}, 0, fmt.Errorf("%w: non-shortest map32", ErrBadFormat)
		}
		return decodeMapBody(data, 5, n)
	case mFixExt1:
		return decodeExtBody(data, 1, 1)
	case mFixExt2:
		return decodeExtBody(data, 1, 2)
	case mFixExt4:
		return decodeExtBody(data, 1, 4)
	case mFixExt8:
		return decodeExtBody(data, 1, 8)
	case mFixExt16:
		return decodeExtBody(data, 1, 16)
	case mExt8:
		if err := need(data, 2); err != nil {
			return Value{}, 0, err
		}
		n := int(data[1])
		if n == 1 || n == 2 || n == 4 || n == 8 || n == 16 {
			return Value{}, 0, fmt.Errorf("%w: non-shortest ext8", ErrBadFormat)
		}
		return decodeExtBody(data, 2, n)
	case mExt16:
		if err := need(data, 3); err != nil {
			return Value{}, 0, err
		}
		n := int(binary.BigEndian.Uint16(data[1:3]))
		if n <= math.MaxUint8 {
			return Value{}, 0, fmt.Errorf("%w: non-shortest ext16", ErrBadFormat)
		}
		return decodeExtBody(data, 3, n)
	case mExt32:
		if err := need(data, 5); err != nil {
			return Value{}, 0, err
		}
		n := int(binary.BigEndian.Uint32(data[1:5]))
		if n <= math.MaxUint16 {
			return Value{}, 0, fmt.Errorf("%w: non-shortest ext32", ErrBadFormat)
		}
		return decodeExtBody(data, 5, n)
	}
	return Value{}, 0, fmt.Errorf("%w: unknown marker 0x%02x", ErrBadFormat, m)
}

func decodeStrBody(data []byte, headerLen, n int) (Value, int, error) {
	if err := need(data, headerLen+n); err != nil {
		return Value{}, 0, err
	}
	return String(string(data[headerLen : headerLen+n])), headerLen + n, nil
}

func decodeBinBody(data []byte, headerLen, n int) (Value, int, error) {
	if err := need(data, headerLen+n); err != nil {
		return Value{}, 0, err
	}
	return Binary(data[headerLen : headerLen+n]), headerLen + n, nil
}

func decodeArrayBody(data []byte, headerLen, n int) (Value, int, error) {
	off := headerLen
	arr := make([]Value, n)
	for i := 0; i < n; i++ {
		v, used, err := decodeValue(data[off:])
		if err != nil {
			return Value{}, 0, err
		}
		arr[i] = v
		off += used
	}
	return Array(arr), off, nil
}

func decodeMapBody(data []byte, headerLen, n int) (Value, int, error) {
	off := headerLen
	entries := make([]MapEntry, n)
	for i := 0; i < n; i++ {
		kv, used, err := decodeValue(data[off:])
		if err != nil {
			return Value{}, 0, err
		}
		if kv.Kind != KindString {
			return Value{}, 0, fmt.Errorf("%w: map key must be a string", ErrBadFormat)
		}
		off += used
		if i > 0 && kv.Str <= entries[i-1].Key {
			return Value{}, 0, fmt.Errorf("%w: map keys out of order", ErrBadFormat)
		}
		v, used2, err := decodeValue(data[off:])
		if err != nil {
			return Value{}, 0, err
		}
		entries[i] = MapEntry{Key: kv.Str, Val: v}
		off += used2
	}
	return Value{Kind: KindMap, Map: entries}, off, nil
}

func decodeExtBody(data []byte, headerLen, n int) (Value, int, error) {
	if err := need(data, headerLen+1+n); err != nil {
		return Value{}, 0, err
	}
	tag := int8(data[headerLen])
	payload := data[headerLen+1 : headerLen+1+n]
	total := headerLen + 1 + n
	switch tag {
	case extTimestamp:
		t, err := decodeTimestamp(payload)
		if err != nil {
			return Value{}, 0, err
		}
		return TimeVal(t), total, nil
	case extHash:
		h, err := cobj.DecodeHash(payload)
		if err != nil {
			return Value{}, 0, err
		}
		return HashVal(h), total, nil
	case extIdentity:
		id, err := cobj.DecodeIdentity(payload)
		if err != nil {
			return Value{}, 0, err
		}
		return IdentityVal(id), total, nil
	case extLockbox:
		lb, err := cobj.DecodeLockbox(payload)
		if err != nil {
			return Value{}, 0, err
		}
		return LockboxVal(lb), total, nil
	default:
		return Value{}, 0, fmt.Errorf("%w: tag %d", ErrUnknownExtType, tag)
	}
}

func decodeTimestamp(payload []byte) (Timestamp, error) {
	switch len(payload) {
	case 4:
		return Timestamp{Sec: int64(binary.BigEndian.Uint32(payload))}, nil
	case 8:
		data64 := binary.BigEndian.Uint64(payload)
		sec := int64(data64 & 0x3ffffffff)
		nsec := uint32(data64 >> 34)
		t := Timestamp{Sec: sec, Nsec: nsec}
		if t.fits32() {
			return Timestamp{}, fmt.Errorf("%w: non-shortest timestamp64", ErrBadFormat)
		}
		return t, nil
	case 12:
		nsec := binary.BigEndian.Uint32(payload[0:4])
		sec := int64(binary.BigEndian.Uint64(payload[4:12]))
		t := Timestamp{Sec: sec, Nsec: nsec}
		if t.fits32() || t.fits64() {
			return Timestamp{}, fmt.Errorf("%w: non-shortest timestamp96", ErrBadFormat)
		}
		return t, nil
	default:
		return Timestamp{}, fmt.Errorf("%w: timestamp payload must be 4, 8, or 12 bytes, got %d", ErrBadLength, len(payload))
	}
}
