package vault

type errorType string

func (e errorType) Error() string { return string(e) }

const (
	// ErrNotInStorage is returned when an operation names a handle the
	// Vault has never seen, in either tier.
	ErrNotInStorage = errorType("vault: handle not in storage")

	// ErrBadLockbox is returned when open is asked to unseal a Lockbox
	// whose addressed key/stream this Vault has no way to resolve.
	ErrBadLockbox = errorType("vault: lockbox addresses unknown recipient or stream")

	// ErrDecryptFailed surfaces crypto.ErrDecryptFailed without importing
	// that sentinel directly into callers that only depend on vault.
	ErrDecryptFailed = errorType("vault: decryption failed")
)
