package vault

import "crypto/subtle"

// KeyHandle identifies a signing/unsealing Key by its Ed25519 public key
// bytes — the same bytes that make up the Identity's Ed25519Pk.
type KeyHandle [32]byte

// Equal compares two KeyHandles in constant time, per spec.md §4.3.
func (h KeyHandle) Equal(o KeyHandle) bool {
	return subtle.ConstantTimeCompare(h[:], o[:]) == 1
}

// StreamHandle identifies a StreamKey by its derived public id
// (crypto.DeriveStreamID of the secret), never by the secret itself.
type StreamHandle [32]byte

// Equal compares two StreamHandles in constant time.
func (h StreamHandle) Equal(o StreamHandle) bool {
	return subtle.ConstantTimeCompare(h[:], o[:]) == 1
}
