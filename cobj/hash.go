package cobj

import (
	"crypto/subtle"
	"fmt"
)

// DigestSize is the BLAKE2b-512 digest length used by Version1.
const DigestSize = 64

// Hash is `{version, digest}` (spec.md §3). The zero Hash is VersionBlank
// with an all-zero digest and is never produced by Hash(); it exists only
// as a typed "no hash" placeholder (e.g. an absent schema_hash field).
type Hash struct {
	Version Version
	Digest  [DigestSize]byte
}

// Equal compares two Hashes in constant time, per spec.md §3's "Equality is
// constant-time" and testable-property 4.
func (h Hash) Equal(o Hash) bool {
	if h.Version != o.Version {
		return false
	}
	return subtle.ConstantTimeCompare(h.Digest[:], o.Digest[:]) == 1
}

// IsBlank reports whether h is the VersionBlank placeholder.
func (h Hash) IsBlank() bool { return h.Version == VersionBlank }

// Bytes returns the extension-type-1 payload: version byte followed by the
// digest (spec.md §4.1's extension table).
func (h Hash) Bytes() []byte {
	out := make([]byte, 1+DigestSize)
	out[0] = byte(h.Version)
	copy(out[1:], h.Digest[:])
	return out
}

// DecodeHash parses the extension-type-1 payload produced by Bytes.
func DecodeHash(payload []byte) (Hash, error) {
	var h Hash
	if len(payload) != 1+DigestSize {
		return h, fmt.Errorf("%w: hash payload must be %d bytes, got %d", ErrBadLength, 1+DigestSize, len(payload))
	}
	h.Version = Version(payload[0])
	if h.Version != VersionBlank {
		if err := checkVersion1(h.Version); err != nil {
			return Hash{}, err
		}
	}
	copy(h.Digest[:], payload[1:])
	return h, nil
}

// String renders the version and a hex digest, useful for logs and test
// failure messages (the teacher's CIDs print similarly via .String()).
func (h Hash) String() string {
	return fmt.Sprintf("hash:v%d:%x", h.Version, h.Digest[:])
}

// Less gives Hash a total order for use as a sorted-set element (the
// validator's Hash `in`/`nin` sets, and the engine's deterministic
// iteration over schema reference counts).
func (h Hash) Less(o Hash) bool {
	if h.Version != o.Version {
		return h.Version < o.Version
	}
	for i := range h.Digest {
		if h.Digest[i] != o.Digest[i] {
			return h.Digest[i] < o.Digest[i]
		}
	}
	return false
}
