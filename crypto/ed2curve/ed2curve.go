// Package ed2curve converts Ed25519 signing keys into their Curve25519
// encryption-key counterparts, the way spec.md §3 requires ("Curve25519
// encryption key derived from the same seed"). It has no dependency on
// cobj or crypto so that both of those packages can import it without a
// cycle.
//
// The private-key conversion is the standard Ed25519 scalar derivation
// (clamp(SHA-512(seed)[:32])), grounded on the scalar/clamping math in
// zoobc-zed25519's SecretFromSeed. The public-key conversion is the
// birational map between the Edwards and Montgomery curves, computed with
// filippo.io/edwards25519 (the library FiloSottile/age uses for the same
// X25519-from-Ed25519 conversion).
package ed2curve

import (
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"
)

// PrivateToCurve25519 derives the Curve25519 (X25519) secret scalar from an
// Ed25519 seed. The returned 32 bytes are already clamped per RFC 7748 and
// usable directly with golang.org/x/crypto/curve25519.
func PrivateToCurve25519(seed []byte) [32]byte {
	h := sha512.Sum512(seed)
	var out [32]byte
	copy(out[:], h[:32])
	out[0] &= 248
	out[31] &= 127
	out[31] |= 64
	return out
}

// PublicToCurve25519 maps an Ed25519 public key (a compressed Edwards
// point) to its Curve25519 (Montgomery u-coordinate) counterpart.
func PublicToCurve25519(edPub []byte) ([32]byte, error) {
	var out [32]byte
	if len(edPub) != 32 {
		return out, fmt.Errorf("ed2curve: public key must be 32 bytes, got %d", len(edPub))
	}
	p, err := new(edwards25519.Point).SetBytes(edPub)
	if err != nil {
		return out, fmt.Errorf("ed2curve: invalid Edwards point: %w", err)
	}
	copy(out[:], p.BytesMontgomery())
	return out, nil
}
