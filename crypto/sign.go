package crypto

import (
	stded25519 "crypto/ed25519"

	"github.com/cognoscan/condensedb/cobj"
)

// Sign signs a content Hash with the Ed25519 seed belonging to signer,
// producing a Signature object. The hash's own Version travels with the
// signature (HashVersion) alongside the signer identity's Version, since
// either one could in principle evolve independently (spec.md §4.4).
func Sign(h cobj.Hash, seed [32]byte, signer cobj.Identity) (cobj.Signature, error) {
	if h.Version != cobj.Version1 || signer.Version != cobj.Version1 {
		return cobj.Signature{}, ErrUnsupportedVersion
	}
	priv := stded25519.NewKeyFromSeed(seed[:])
	sig := stded25519.Sign(priv, h.Digest[:])
	var out [cobj.SigSize]byte
	copy(out[:], sig)
	return cobj.Signature{
		HashVersion:     h.Version,
		IdentityVersion: signer.Version,
		Signer:          signer,
		Sig:             out,
	}, nil
}

// Verify checks a Signature against the content Hash it claims to cover.
// It never returns a reason beyond true/false: a bad signature and a
// malformed one are indistinguishable to the caller, matching the way
// AEAD failures are reported (ErrDecryptFailed).
func Verify(h cobj.Hash, sig cobj.Signature) bool {
	if h.Version != cobj.Version1 || sig.Signer.Version != cobj.Version1 {
		return false
	}
	return stded25519.Verify(sig.Signer.Ed25519Pk[:], h.Digest[:], sig.Sig[:])
}
