package crypto

import (
	"golang.org/x/crypto/blake2b"

	"github.com/cognoscan/condensedb/cobj"
)

// HashBytes computes the content hash of data under the given object
// version in one shot. Version1 is pinned to unkeyed BLAKE2b-512.
func HashBytes(version cobj.Version, data []byte) (cobj.Hash, error) {
	st, err := NewHashState(version)
	if err != nil {
		return cobj.Hash{}, err
	}
	st.Write(data)
	return st.Sum(), nil
}

// HashState accumulates bytes incrementally and produces a Hash on Sum,
// the way a Document's body is hashed piecewise as it is assembled rather
// than copied into one buffer first (spec.md §4.4).
type HashState struct {
	version cobj.Version
	h       interface {
		Write([]byte) (int, error)
		Sum([]byte) []byte
	}
}

// NewHashState starts an incremental hash for the given object version.
func NewHashState(version cobj.Version) (*HashState, error) {
	if version != cobj.Version1 {
		return nil, ErrUnsupportedVersion
	}
	h, err := blake2b.New512(nil)
	if err != nil {
		return nil, err
	}
	return &HashState{version: version, h: h}, nil
}

// Write feeds more bytes into the running digest.
func (s *HashState) Write(p []byte) { s.h.Write(p) }

// Sum finalizes the digest into a Hash. Safe to call multiple times.
func (s *HashState) Sum() cobj.Hash {
	var digest [cobj.DigestSize]byte
	copy(digest[:], s.h.Sum(nil))
	return cobj.Hash{Version: s.version, Digest: digest}
}
