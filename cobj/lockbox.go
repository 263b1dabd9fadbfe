package cobj

import "fmt"

// LockType distinguishes the two ways a Lockbox may be addressed
// (spec.md §3).
type LockType uint8

const (
	LockForIdentity LockType = 0
	LockForStream   LockType = 1
)

// NonceSize is the XChaCha20-Poly1305-IETF nonce width.
const NonceSize = 24

// StreamIDSize is a StreamKey's derived id width.
const StreamIDSize = 32

// Lockbox is a sealed container: `{version, type, nonce, ciphertext+tag}`
// (spec.md §3). For LockForIdentity, RecipientPk/EphemeralPk are the
// recipient's static Curve25519 public key and the sender's fresh
// ephemeral Curve25519 public key; for LockForStream, StreamID identifies
// the symmetric StreamKey used.
type Lockbox struct {
	Version     Version
	Type        LockType
	RecipientPk [CurvePkSize]byte // LockForIdentity only
	EphemeralPk [CurvePkSize]byte // LockForIdentity only
	StreamID    [StreamIDSize]byte // LockForStream only
	Nonce       [NonceSize]byte
	Ciphertext  []byte // includes the Poly1305 tag
}

// Equal does a plain structural comparison; Lockboxes carry no secret
// material themselves (the key that opens them lives in the Vault), so
// constant-time comparison is not required here.
func (l Lockbox) Equal(o Lockbox) bool {
	if l.Version != o.Version || l.Type != o.Type || l.Nonce != o.Nonce {
		return false
	}
	if len(l.Ciphertext) != len(o.Ciphertext) {
		return false
	}
	for i := range l.Ciphertext {
		if l.Ciphertext[i] != o.Ciphertext[i] {
			return false
		}
	}
	switch l.Type {
	case LockForIdentity:
		return l.RecipientPk == o.RecipientPk && l.EphemeralPk == o.EphemeralPk
	case LockForStream:
		return l.StreamID == o.StreamID
	default:
		return false
	}
}

// Bytes returns the extension-type-3 payload: version, lock-type, the
// lock-type payload, nonce, then ciphertext+tag.
func (l Lockbox) Bytes() []byte {
	out := make([]byte, 0, 2+2*CurvePkSize+NonceSize+len(l.Ciphertext))
	out = append(out, byte(l.Version), byte(l.Type))
	switch l.Type {
	case LockForIdentity:
		out = append(out, l.RecipientPk[:]...)
		out = append(out, l.EphemeralPk[:]...)
	case LockForStream:
		out = append(out, l.StreamID[:]...)
	}
	out = append(out, l.Nonce[:]...)
	out = append(out, l.Ciphertext...)
	return out
}

// DecodeLockbox parses the extension-type-3 payload produced by Bytes.
func DecodeLockbox(payload []byte) (Lockbox, error) {
	var l Lockbox
	if len(payload) < 2 {
		return l, fmt.Errorf("%w: lockbox payload too short", ErrBadLength)
	}
	l.Version = Version(payload[0])
	if err := checkVersion1(l.Version); err != nil {
		return Lockbox{}, err
	}
	l.Type = LockType(payload[1])
	off := 2
	switch l.Type {
	case LockForIdentity:
		if len(payload) < off+2*CurvePkSize {
			return Lockbox{}, fmt.Errorf("%w: lockbox identity payload too short", ErrBadLength)
		}
		copy(l.RecipientPk[:], payload[off:off+CurvePkSize])
		off += CurvePkSize
		copy(l.EphemeralPk[:], payload[off:off+CurvePkSize])
		off += CurvePkSize
	case LockForStream:
		if len(payload) < off+StreamIDSize {
			return Lockbox{}, fmt.Errorf("%w: lockbox stream payload too short", ErrBadLength)
		}
		copy(l.StreamID[:], payload[off:off+StreamIDSize])
		off += StreamIDSize
	default:
		return Lockbox{}, fmt.Errorf("%w: unknown lock type %d", ErrBadFormat, l.Type)
	}
	if len(payload) < off+NonceSize {
		return Lockbox{}, fmt.Errorf("%w: lockbox missing nonce", ErrBadLength)
	}
	copy(l.Nonce[:], payload[off:off+NonceSize])
	off += NonceSize
	l.Ciphertext = append([]byte(nil), payload[off:]...)
	return l, nil
}

// ErrBadFormat mirrors codec.ErrBadFormat for lockbox-local structural
// errors (unknown lock type), kept local so cobj has no import on codec.
const ErrBadFormat = errorType("cobj: bad format")
