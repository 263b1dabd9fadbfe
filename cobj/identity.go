package cobj

import (
	"crypto/subtle"
	"fmt"

	"github.com/cognoscan/condensedb/crypto/ed2curve"
)

// EdPkSize/CurvePkSize are the Version1 public-key widths: Ed25519 and
// Curve25519 public keys are both 32 bytes.
const (
	EdPkSize    = 32
	CurvePkSize = 32
)

// Identity is the public half of a signing+encrypting keypair (spec.md
// §3). Only the Ed25519 key is carried on the wire; Curve25519Pk is
// derived on load via crypto/ed2curve, mirroring libsodium's
// crypto_sign_ed25519_pk_to_curve25519.
type Identity struct {
	Version      Version
	Ed25519Pk    [EdPkSize]byte
	Curve25519Pk [CurvePkSize]byte
}

// NewIdentity builds an Identity from a raw Ed25519 public key, deriving
// the Curve25519 key as a side effect.
func NewIdentity(version Version, edPk [EdPkSize]byte) (Identity, error) {
	if err := checkVersion1(version); err != nil {
		return Identity{}, err
	}
	curvePk, err := ed2curve.PublicToCurve25519(edPk[:])
	if err != nil {
		return Identity{}, fmt.Errorf("cobj: deriving curve25519 key: %w", err)
	}
	return Identity{Version: version, Ed25519Pk: edPk, Curve25519Pk: curvePk}, nil
}

// Equal compares two Identities in constant time over their Ed25519 keys
// (the Curve25519 key is a pure function of it, so comparing it too would
// be redundant).
func (id Identity) Equal(o Identity) bool {
	if id.Version != o.Version {
		return false
	}
	return subtle.ConstantTimeCompare(id.Ed25519Pk[:], o.Ed25519Pk[:]) == 1
}

// Bytes returns the extension-type-2 payload: version + Ed25519 public key.
func (id Identity) Bytes() []byte {
	out := make([]byte, 1+EdPkSize)
	out[0] = byte(id.Version)
	copy(out[1:], id.Ed25519Pk[:])
	return out
}

// DecodeIdentity parses the extension-type-2 payload and derives the
// Curve25519 key.
func DecodeIdentity(payload []byte) (Identity, error) {
	if len(payload) != 1+EdPkSize {
		return Identity{}, fmt.Errorf("%w: identity payload must be %d bytes, got %d", ErrBadLength, 1+EdPkSize, len(payload))
	}
	var edPk [EdPkSize]byte
	copy(edPk[:], payload[1:])
	return NewIdentity(Version(payload[0]), edPk)
}

func (id Identity) String() string {
	return fmt.Sprintf("identity:v%d:%x", id.Version, id.Ed25519Pk[:])
}
