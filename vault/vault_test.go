package vault

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cognoscan/condensedb/crypto"
)

func TestNewKeySignVerify(t *testing.T) {
	v := New()
	defer v.Close()

	handle, id, err := v.NewKey()
	require.NoError(t, err)

	h, err := crypto.HashBytes(1, []byte("document body"))
	require.NoError(t, err)

	sig, err := v.Sign(h, handle)
	require.NoError(t, err)
	require.True(t, crypto.Verify(h, sig))
	require.Equal(t, id.Ed25519Pk, sig.Signer.Ed25519Pk)
}

func TestSignUnknownHandleFails(t *testing.T) {
	v := New()
	defer v.Close()

	h, err := crypto.HashBytes(1, []byte("x"))
	require.NoError(t, err)
	_, err = v.Sign(h, KeyHandle{})
	require.ErrorIs(t, err, ErrNotInStorage)
}

func TestSealForThenOpen(t *testing.T) {
	sender := New()
	defer sender.Close()
	recipient := New()
	defer recipient.Close()

	_, recipientID, err := recipient.NewKey()
	require.NoError(t, err)

	streamHandle, lb, err := sender.SealFor(recipientID, []byte("hello recipient"))
	require.NoError(t, err)
	require.NotEqual(t, StreamHandle{}, streamHandle)

	kh, hasKey, sh, pt, err := recipient.Open(lb)
	require.NoError(t, err)
	require.True(t, hasKey)
	require.Equal(t, recipientID.Ed25519Pk, [32]byte(kh))
	require.NotEqual(t, StreamHandle{}, sh)
	require.Equal(t, []byte("hello recipient"), pt)

	// a follow-up message on the same stream opens via the cached handle.
	lb2, err := recipient.SealWith(sh, []byte("reply"))
	require.NoError(t, err)
	_, _, _, pt2, err := recipient.Open(lb2)
	require.NoError(t, err)
	require.Equal(t, []byte("reply"), pt2)
}

func TestNewStreamSealWithOpen(t *testing.T) {
	v := New()
	defer v.Close()

	handle, err := v.NewStream()
	require.NoError(t, err)

	lb, err := v.SealWith(handle, []byte("stream payload"))
	require.NoError(t, err)

	_, _, sh, pt, err := v.Open(lb)
	require.NoError(t, err)
	require.Equal(t, handle, sh)
	require.Equal(t, []byte("stream payload"), pt)
}

func TestOpenUnknownLockboxFails(t *testing.T) {
	v := New()
	defer v.Close()
	other := New()
	defer other.Close()

	handle, err := other.NewStream()
	require.NoError(t, err)
	lb, err := other.SealWith(handle, []byte("x"))
	require.NoError(t, err)

	_, _, _, _, err = v.Open(lb)
	require.ErrorIs(t, err, ErrBadLockbox)
}

func TestKeyHandleConstantTimeEqual(t *testing.T) {
	a := KeyHandle{1, 2, 3}
	b := KeyHandle{1, 2, 3}
	c := KeyHandle{1, 2, 4}
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}
