package crypto

import (
	stded25519 "crypto/ed25519"
	"crypto/rand"

	"github.com/cognoscan/condensedb/cobj"
)

// NewIdentity generates a fresh Ed25519 seed and the Identity derived from
// it. The seed is the only secret; callers (package vault) are responsible
// for storing it and never returning it to a caller that isn't the vault
// itself.
func NewIdentity(version cobj.Version) (seed [32]byte, id cobj.Identity, err error) {
	if version != cobj.Version1 {
		return seed, id, ErrUnsupportedVersion
	}
	if _, err = rand.Read(seed[:]); err != nil {
		return seed, id, err
	}
	id, err = IdentityFromSeed(version, seed)
	return seed, id, err
}

// IdentityFromSeed re-derives the public Identity for a known seed, used
// when loading a Key back out of permanent storage.
func IdentityFromSeed(version cobj.Version, seed [32]byte) (cobj.Identity, error) {
	if version != cobj.Version1 {
		return cobj.Identity{}, ErrUnsupportedVersion
	}
	priv := stded25519.NewKeyFromSeed(seed[:])
	var edPk [32]byte
	copy(edPk[:], priv[32:])
	return cobj.NewIdentity(version, edPk)
}
