package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cognoscan/condensedb/cobj"
)

func TestHashBytesDeterministic(t *testing.T) {
	h1, err := HashBytes(cobj.Version1, []byte("hello"))
	require.NoError(t, err)
	h2, err := HashBytes(cobj.Version1, []byte("hello"))
	require.NoError(t, err)
	require.True(t, h1.Equal(h2))

	h3, err := HashBytes(cobj.Version1, []byte("goodbye"))
	require.NoError(t, err)
	require.False(t, h1.Equal(h3))
}

func TestHashStateIncremental(t *testing.T) {
	st, err := NewHashState(cobj.Version1)
	require.NoError(t, err)
	st.Write([]byte("hel"))
	st.Write([]byte("lo"))
	whole, err := HashBytes(cobj.Version1, []byte("hello"))
	require.NoError(t, err)
	require.True(t, st.Sum().Equal(whole))
}

func TestSignVerify(t *testing.T) {
	seed, id, err := NewIdentity(cobj.Version1)
	require.NoError(t, err)

	h, err := HashBytes(cobj.Version1, []byte("a document body"))
	require.NoError(t, err)

	sig, err := Sign(h, seed, id)
	require.NoError(t, err)
	require.True(t, Verify(h, sig))

	other, err := HashBytes(cobj.Version1, []byte("a different body"))
	require.NoError(t, err)
	require.False(t, Verify(other, sig))
}

func TestSignVerifyWrongSigner(t *testing.T) {
	_, id1, err := NewIdentity(cobj.Version1)
	require.NoError(t, err)
	seed2, _, err := NewIdentity(cobj.Version1)
	require.NoError(t, err)

	h, err := HashBytes(cobj.Version1, []byte("body"))
	require.NoError(t, err)

	sig, err := Sign(h, seed2, id1) // signed with the wrong seed for id1
	require.NoError(t, err)
	require.False(t, Verify(h, sig))
}

func TestSealForIdentityRoundTrip(t *testing.T) {
	seed, id, err := NewIdentity(cobj.Version1)
	require.NoError(t, err)
	curveSecret := CurveSecretFromSeed(seed)

	plaintext := []byte("a secret message")
	lb, streamSecret, err := SealForIdentity(id, plaintext)
	require.NoError(t, err)
	require.Equal(t, cobj.LockForIdentity, lb.Type)

	got, err := OpenForIdentity(lb, curveSecret)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)

	// the same shared secret opens a stream-sealed message too.
	lb2, err := SealWithStream(streamSecret, []byte("second message"))
	require.NoError(t, err)
	got2, err := OpenWithStream(lb2, streamSecret)
	require.NoError(t, err)
	require.Equal(t, []byte("second message"), got2)
}

func TestOpenForIdentityWrongRecipientFails(t *testing.T) {
	_, id, err := NewIdentity(cobj.Version1)
	require.NoError(t, err)
	wrongSeed, _, err := NewIdentity(cobj.Version1)
	require.NoError(t, err)

	lb, _, err := SealForIdentity(id, []byte("hidden"))
	require.NoError(t, err)

	_, err = OpenForIdentity(lb, CurveSecretFromSeed(wrongSeed))
	require.ErrorIs(t, err, ErrDecryptFailed)
}

func TestOpenWithStreamTamperedCiphertextFails(t *testing.T) {
	var secret [32]byte
	copy(secret[:], []byte("0123456789abcdef0123456789abcde"))
	lb, err := SealWithStream(secret, []byte("payload"))
	require.NoError(t, err)
	lb.Ciphertext[0] ^= 0xff
	_, err = OpenWithStream(lb, secret)
	require.ErrorIs(t, err, ErrDecryptFailed)
}

func TestDeriveStreamIDDeterministic(t *testing.T) {
	var secret [32]byte
	copy(secret[:], []byte("0123456789abcdef0123456789abcde"))
	id1 := DeriveStreamID(secret)
	id2 := DeriveStreamID(secret)
	require.Equal(t, id1, id2)

	var other [32]byte
	copy(other[:], []byte("fedcba9876543210fedcba9876543210"))
	require.NotEqual(t, id1, DeriveStreamID(other))
}
