package crypto

import (
	"crypto/rand"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"

	"github.com/cognoscan/condensedb/cobj"
)

// SealForIdentity seals plaintext for recipient using a fresh ephemeral
// Curve25519 keypair and XChaCha20-Poly1305-IETF, per spec.md §4.3's
// "ForIdentity" Lockbox. It returns both the Lockbox and the derived
// StreamKey secret, since the sealer is also the first holder of that
// stream and may want to seal further messages under it with
// SealWithStream without repeating the ECDH.
func SealForIdentity(recipient cobj.Identity, plaintext []byte) (cobj.Lockbox, [32]byte, error) {
	if recipient.Version != cobj.Version1 {
		return cobj.Lockbox{}, [32]byte{}, ErrUnsupportedVersion
	}

	var ephSecret [32]byte
	if _, err := rand.Read(ephSecret[:]); err != nil {
		return cobj.Lockbox{}, [32]byte{}, err
	}
	ephPubSlice, err := curve25519.X25519(ephSecret[:], curve25519.Basepoint)
	if err != nil {
		return cobj.Lockbox{}, [32]byte{}, err
	}
	shared, err := curve25519.X25519(ephSecret[:], recipient.Curve25519Pk[:])
	if err != nil {
		return cobj.Lockbox{}, [32]byte{}, ErrBadKey
	}

	var sharedArr, streamSecret [32]byte
	copy(sharedArr[:], shared)
	copy(streamSecret[:], deriveSubkey(sharedArr, subkeySealKey, 32))

	lb, err := sealWithKey(streamSecret, plaintext)
	if err != nil {
		return cobj.Lockbox{}, [32]byte{}, err
	}
	lb.Type = cobj.LockForIdentity
	copy(lb.RecipientPk[:], recipient.Curve25519Pk[:])
	copy(lb.EphemeralPk[:], ephPubSlice)
	return lb, streamSecret, nil
}

// SealWithStream seals plaintext under an existing StreamKey secret,
// producing a "ForStream" Lockbox addressed by that key's derived id.
func SealWithStream(secret [32]byte, plaintext []byte) (cobj.Lockbox, error) {
	lb, err := sealWithKey(secret, plaintext)
	if err != nil {
		return cobj.Lockbox{}, err
	}
	lb.Type = cobj.LockForStream
	lb.StreamID = DeriveStreamID(secret)
	return lb, nil
}

func sealWithKey(key [32]byte, plaintext []byte) (cobj.Lockbox, error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return cobj.Lockbox{}, err
	}
	var nonce [cobj.NonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return cobj.Lockbox{}, err
	}
	ct := aead.Seal(nil, nonce[:], plaintext, nil)
	return cobj.Lockbox{
		Version:    cobj.Version1,
		Nonce:      nonce,
		Ciphertext: ct,
	}, nil
}

// OpenForIdentity opens a "ForIdentity" Lockbox using the recipient's
// Curve25519 secret scalar (derived from their Ed25519 seed by package
// vault). Any failure — wrong key, tampered ciphertext, truncated input —
// returns ErrDecryptFailed without distinguishing the cause.
func OpenForIdentity(lb cobj.Lockbox, recipientCurveSecret [32]byte) ([]byte, error) {
	if lb.Version != cobj.Version1 || lb.Type != cobj.LockForIdentity {
		return nil, ErrDecryptFailed
	}
	key, err := SharedSealKey(recipientCurveSecret, lb.EphemeralPk)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return openWithKey(key, lb)
}

// SharedSealKey recomputes the symmetric key a ForIdentity Lockbox was
// sealed under from the recipient's Curve25519 secret and the Lockbox's
// ephemeral public key, without decrypting anything. Package vault uses
// this to re-derive and cache the StreamKey for a stream whose first
// message it has already opened, so later messages on the same stream
// can be opened without repeating the ECDH.
func SharedSealKey(recipientCurveSecret, ephemeralPk [32]byte) ([32]byte, error) {
	shared, err := curve25519.X25519(recipientCurveSecret[:], ephemeralPk[:])
	if err != nil {
		return [32]byte{}, ErrBadKey
	}
	var sharedArr, key [32]byte
	copy(sharedArr[:], shared)
	copy(key[:], deriveSubkey(sharedArr, subkeySealKey, 32))
	return key, nil
}

// OpenWithStream opens a "ForStream" Lockbox using the StreamKey secret a
// Vault looked up by lb's StreamID.
func OpenWithStream(lb cobj.Lockbox, secret [32]byte) ([]byte, error) {
	if lb.Version != cobj.Version1 || lb.Type != cobj.LockForStream {
		return nil, ErrDecryptFailed
	}
	return openWithKey(secret, lb)
}

func openWithKey(key [32]byte, lb cobj.Lockbox) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, ErrDecryptFailed
	}
	pt, err := aead.Open(nil, lb.Nonce[:], lb.Ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return pt, nil
}
