// Package vault is the sole owner of secret key material: Ed25519 signing
// seeds and symmetric stream secrets. Everything else in condensedb only
// ever holds opaque handles (spec.md §4.3); a Vault is what turns a handle
// back into something that can sign, seal, or open.
package vault

import (
	"crypto/rand"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/jellydator/ttlcache/v3"

	"github.com/cognoscan/condensedb/cobj"
	"github.com/cognoscan/condensedb/crypto"
)

var log = logging.Logger("vault")

// DefaultTempTTL bounds how long a StreamKey derived as a side effect of
// opening a received Lockbox stays usable before it is evicted from the
// temporary store.
const DefaultTempTTL = 10 * time.Minute

type keyEntry struct {
	seed        [32]byte
	curveSecret [32]byte
	identity    cobj.Identity
}

// Vault holds permanent and temporary key material behind a single lock,
// the way the teacher's Store guards its index state with one RWMutex
// (store/store.go). Key lookups are rare enough relative to document
// throughput that a single lock is not a bottleneck.
type Vault struct {
	mu sync.RWMutex

	permKeys    map[KeyHandle]*keyEntry
	permStreams map[StreamHandle][32]byte

	tempStreams *ttlcache.Cache[StreamHandle, [32]byte]
}

// New constructs an empty Vault. Callers that need to restore keys from a
// prior run re-insert them with LoadKey/LoadStream after construction.
func New() *Vault {
	tc := ttlcache.New[StreamHandle, [32]byte](
		ttlcache.WithTTL[StreamHandle, [32]byte](DefaultTempTTL),
	)
	go tc.Start()
	return &Vault{
		permKeys:    make(map[KeyHandle]*keyEntry),
		permStreams: make(map[StreamHandle][32]byte),
		tempStreams: tc,
	}
}

// Close stops the temporary store's eviction loop. The Vault must not be
// used afterward.
func (v *Vault) Close() {
	v.tempStreams.Stop()
}

// NewKey generates a fresh Ed25519 identity and adds it to the permanent
// store, returning the handle callers use to reference it thereafter.
func (v *Vault) NewKey() (KeyHandle, cobj.Identity, error) {
	seed, id, err := crypto.NewIdentity(cobj.Version1)
	if err != nil {
		return KeyHandle{}, cobj.Identity{}, err
	}
	handle := KeyHandle(id.Ed25519Pk)

	v.mu.Lock()
	v.permKeys[handle] = &keyEntry{
		seed:        seed,
		curveSecret: crypto.CurveSecretFromSeed(seed),
		identity:    id,
	}
	v.mu.Unlock()

	log.Debugw("new key", "handle", handle)
	return handle, id, nil
}

// LoadKey re-inserts a previously generated seed into the permanent store,
// for startup restoration from external storage the engine doesn't own.
func (v *Vault) LoadKey(seed [32]byte) (KeyHandle, cobj.Identity, error) {
	id, err := crypto.IdentityFromSeed(cobj.Version1, seed)
	if err != nil {
		return KeyHandle{}, cobj.Identity{}, err
	}
	handle := KeyHandle(id.Ed25519Pk)
	v.mu.Lock()
	v.permKeys[handle] = &keyEntry{
		seed:        seed,
		curveSecret: crypto.CurveSecretFromSeed(seed),
		identity:    id,
	}
	v.mu.Unlock()
	return handle, id, nil
}

// NewStream generates a fresh random StreamKey secret and adds it to the
// permanent store.
func (v *Vault) NewStream() (StreamHandle, error) {
	var secret [32]byte
	if _, err := rand.Read(secret[:]); err != nil {
		return StreamHandle{}, err
	}
	handle := StreamHandle(crypto.DeriveStreamID(secret))

	v.mu.Lock()
	v.permStreams[handle] = secret
	v.mu.Unlock()

	log.Debugw("new stream", "handle", handle)
	return handle, nil
}

// LoadStream re-inserts a previously generated stream secret into the
// permanent store.
func (v *Vault) LoadStream(secret [32]byte) StreamHandle {
	handle := StreamHandle(crypto.DeriveStreamID(secret))
	v.mu.Lock()
	v.permStreams[handle] = secret
	v.mu.Unlock()
	return handle
}

// Sign signs h with the Key named by handle.
func (v *Vault) Sign(h cobj.Hash, handle KeyHandle) (cobj.Signature, error) {
	v.mu.RLock()
	entry, ok := v.permKeys[handle]
	v.mu.RUnlock()
	if !ok {
		return cobj.Signature{}, ErrNotInStorage
	}
	return crypto.Sign(h, entry.seed, entry.identity)
}

// SealFor seals plaintext for recipient, inserting the newly derived
// StreamKey into the temporary store and returning its handle alongside
// the Lockbox.
func (v *Vault) SealFor(recipient cobj.Identity, plaintext []byte) (StreamHandle, cobj.Lockbox, error) {
	lb, secret, err := crypto.SealForIdentity(recipient, plaintext)
	if err != nil {
		return StreamHandle{}, cobj.Lockbox{}, err
	}
	handle := StreamHandle(crypto.DeriveStreamID(secret))
	v.tempStreams.Set(handle, secret, ttlcache.DefaultTTL)
	return handle, lb, nil
}

// SealWith seals plaintext under the StreamKey named by handle.
func (v *Vault) SealWith(handle StreamHandle, plaintext []byte) (cobj.Lockbox, error) {
	secret, ok := v.lookupStream(handle)
	if !ok {
		return cobj.Lockbox{}, ErrNotInStorage
	}
	return crypto.SealWithStream(secret, plaintext)
}

// Open unseals lb, resolving whichever Key or StreamKey it is addressed
// to. For a ForIdentity Lockbox the consumed recipient Key handle is
// returned and the derived StreamKey is inserted into the temporary
// store; for a ForStream Lockbox only the stream handle is meaningful and
// keyHandle is the zero value.
func (v *Vault) Open(lb cobj.Lockbox) (keyHandle KeyHandle, hasKey bool, streamHandle StreamHandle, plaintext []byte, err error) {
	switch lb.Type {
	case cobj.LockForStream:
		handle := StreamHandle(lb.StreamID)
		secret, ok := v.lookupStream(handle)
		if !ok {
			return KeyHandle{}, false, StreamHandle{}, nil, ErrBadLockbox
		}
		pt, err := crypto.OpenWithStream(lb, secret)
		if err != nil {
			return KeyHandle{}, false, StreamHandle{}, nil, ErrDecryptFailed
		}
		return KeyHandle{}, false, handle, pt, nil

	case cobj.LockForIdentity:
		// RecipientPk is the Curve25519 key, while handles are Ed25519 keys.
		var kh KeyHandle
		var entry *keyEntry
		v.mu.RLock()
		for h, e := range v.permKeys {
			if e.identity.Curve25519Pk == lb.RecipientPk {
				kh, entry = h, e
				break
			}
		}
		v.mu.RUnlock()
		if entry == nil {
			return KeyHandle{}, false, StreamHandle{}, nil, ErrBadLockbox
		}
		pt, err := crypto.OpenForIdentity(lb, entry.curveSecret)
		if err != nil {
			return KeyHandle{}, false, StreamHandle{}, nil, ErrDecryptFailed
		}
		// Re-derive the same shared-secret-derived StreamKey so later
		// messages on this stream can be opened via the temporary store
		// without repeating the ECDH. We don't have the secret itself
		// here (only the plaintext), so re-seal isn't an option; instead
		// we recompute it the same way SealForIdentity did.
		secret, sErr := crypto.SharedSealKey(entry.curveSecret, lb.EphemeralPk)
		if sErr != nil {
			return kh, true, StreamHandle{}, pt, nil
		}
		sh := StreamHandle(crypto.DeriveStreamID(secret))
		v.tempStreams.Set(sh, secret, ttlcache.DefaultTTL)
		return kh, true, sh, pt, nil

	default:
		return KeyHandle{}, false, StreamHandle{}, nil, ErrBadLockbox
	}
}

func (v *Vault) lookupStream(handle StreamHandle) ([32]byte, bool) {
	v.mu.RLock()
	secret, ok := v.permStreams[handle]
	v.mu.RUnlock()
	if ok {
		return secret, true
	}
	if item := v.tempStreams.Get(handle); item != nil {
		return item.Value(), true
	}
	return [32]byte{}, false
}
