package cobj

import "fmt"

// SigSize is the raw Ed25519 signature width.
const SigSize = 64

// Signature carries both the hashed object's algorithm version and the
// signer identity's version alongside the signer Identity and the raw
// Ed25519 signature bytes (spec.md §3). It is not a codec.Value variant —
// Documents and Entries append its raw encoding directly to their body
// bytes (spec.md §4.4), which is what feeds the incremental hash.
type Signature struct {
	HashVersion     Version
	IdentityVersion Version
	Signer          Identity
	Sig             [SigSize]byte
}

// Bytes returns the signature's wire encoding:
// hash-version(1) || identity-version(1) || signer identity(33) || raw sig(64).
func (s Signature) Bytes() []byte {
	out := make([]byte, 0, 2+1+EdPkSize+SigSize)
	out = append(out, byte(s.HashVersion), byte(s.IdentityVersion))
	out = append(out, s.Signer.Bytes()...)
	out = append(out, s.Sig[:]...)
	return out
}

// DecodeSignature parses a Signature written by Bytes, returning the
// signature and the number of bytes consumed.
func DecodeSignature(b []byte) (Signature, int, error) {
	const fixedPrefix = 2
	if len(b) < fixedPrefix+1+EdPkSize {
		return Signature{}, 0, fmt.Errorf("%w: truncated signature header", ErrBadLength)
	}
	hashVer := Version(b[0])
	idVer := Version(b[1])
	signer, err := DecodeIdentity(b[fixedPrefix : fixedPrefix+1+EdPkSize])
	if err != nil {
		return Signature{}, 0, err
	}
	off := fixedPrefix + 1 + EdPkSize
	if len(b) < off+SigSize {
		return Signature{}, 0, fmt.Errorf("%w: truncated signature body", ErrBadLength)
	}
	var sig Signature
	sig.HashVersion = hashVer
	sig.IdentityVersion = idVer
	sig.Signer = signer
	copy(sig.Sig[:], b[off:off+SigSize])
	return sig, off + SigSize, nil
}
