// Package crypto implements condensedb's pure cryptographic primitives
// (spec.md §4.2): hashing, identity generation, signing/verification, and
// sealed-container seal/open. It holds no state and never caches secret
// material — callers (chiefly package vault) own keys and pass them in.
package crypto

// errorType mirrors the teacher's store/types sentinel-error idiom.
type errorType string

func (e errorType) Error() string { return string(e) }

const (
	// ErrUnsupportedVersion is returned when asked to operate on an
	// object of a version this package does not implement.
	ErrUnsupportedVersion = errorType("crypto: unsupported version")

	// ErrDecryptFailed is returned indistinguishably for any AEAD
	// failure: wrong key, truncated ciphertext, or tampered tag. Per
	// spec.md §7, callers must not be able to tell these apart.
	ErrDecryptFailed = errorType("crypto: decryption failed")

	// ErrBadKey is returned for structurally invalid key material (wrong
	// length, all-zero where that is disallowed).
	ErrBadKey = errorType("crypto: bad key")
)
