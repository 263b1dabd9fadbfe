package crypto

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// kdfContext fixes the personalization string mixed into every subkey
// derivation so that ids and sealing keys drawn from the same secret never
// collide even though they're both "subkey 0/1 of this secret".
const kdfContext = "cndbkdf1"

// deriveSubkey derives an outLen-byte subkey from secret, the way
// libsodium's crypto_kdf_derive_from_key mixes a context and numeric index
// into a keyed hash. condensedb uses plain keyed BLAKE2b rather than
// libsodium's exact construction (golang.org/x/crypto/blake2b does not
// expose the salt/personal parameters libsodium's KDF relies on), but the
// determinism and domain-separation properties spec.md §4.3 needs —
// same secret and index always derive the same subkey, different indices
// never collide — hold either way.
func deriveSubkey(secret [32]byte, index uint64, outLen int) []byte {
	h, err := blake2b.New(outLen, secret[:])
	if err != nil {
		// outLen out of [1,64] or key too long; both are programmer errors
		// for the fixed call sites in this package.
		panic("crypto: bad deriveSubkey params: " + err.Error())
	}
	h.Write([]byte(kdfContext))
	var idxb [8]byte
	binary.LittleEndian.PutUint64(idxb[:], index)
	h.Write(idxb[:])
	return h.Sum(nil)
}

// subkey indices. 0 names the symmetric key derived from an ECDH shared
// secret in SealForIdentity; 1 names the public StreamID derived from any
// StreamKey's secret, random or ECDH-derived alike.
const (
	subkeySealKey  = 0
	subkeyStreamID = 1
)

// DeriveStreamID computes the public identifier of a stream-keyed
// Lockbox family from its 32-byte secret. Two different secrets are
// vanishingly unlikely to collide; the same secret always derives the
// same id, letting a Vault index StreamKeys by id instead of secret.
func DeriveStreamID(secret [32]byte) [32]byte {
	var id [32]byte
	copy(id[:], deriveSubkey(secret, subkeyStreamID, 32))
	return id
}
