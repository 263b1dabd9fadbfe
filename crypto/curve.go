package crypto

import "github.com/cognoscan/condensedb/crypto/ed2curve"

// CurveSecretFromSeed converts an Ed25519 seed into the Curve25519 secret
// scalar used to open Lockboxes addressed to the Identity derived from
// that same seed. Package vault calls this once per Key and keeps the
// result alongside the seed rather than recomputing it per Open.
func CurveSecretFromSeed(seed [32]byte) [32]byte {
	return ed2curve.PrivateToCurve25519(seed[:])
}
