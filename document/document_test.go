package document

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cognoscan/condensedb/cobj"
	"github.com/cognoscan/condensedb/codec"
	"github.com/cognoscan/condensedb/crypto"
	"github.com/cognoscan/condensedb/vault"
)

func TestNewRejectsNonMap(t *testing.T) {
	_, err := New(codec.Int(5))
	require.ErrorIs(t, err, ErrNotAMap)
}

func TestDocumentSignChangesHash(t *testing.T) {
	v := vault.New()
	defer v.Close()
	handle, _, err := v.NewKey()
	require.NoError(t, err)

	doc, err := New(codec.NewMap([]codec.MapEntry{
		{Key: "a", Val: codec.Int(1)},
	}))
	require.NoError(t, err)

	before := doc.Hash()
	require.NoError(t, doc.Sign(v, handle))
	after := doc.Hash()
	require.False(t, before.Equal(after))
	require.Len(t, doc.Signatures(), 1)
}

func TestDocumentEncodeDecodeRoundTrip(t *testing.T) {
	v := vault.New()
	defer v.Close()
	handle, _, err := v.NewKey()
	require.NoError(t, err)

	doc, err := New(codec.NewMap([]codec.MapEntry{
		{Key: "x", Val: codec.String("hello")},
	}))
	require.NoError(t, err)
	require.NoError(t, doc.Sign(v, handle))

	enc := doc.Encode()
	back, err := Decode(enc)
	require.NoError(t, err)
	require.True(t, doc.Hash().Equal(back.Hash()))
	require.Len(t, back.Signatures(), 1)
}

func TestDocumentSchemaField(t *testing.T) {
	schemaDoc, err := New(codec.NewMap([]codec.MapEntry{{Key: "name", Val: codec.String("s")}}))
	require.NoError(t, err)
	schemaHash := schemaDoc.Hash()

	doc, err := New(codec.NewMap([]codec.MapEntry{
		{Key: "", Val: codec.HashVal(schemaHash)},
		{Key: "field", Val: codec.Int(1)},
	}))
	require.NoError(t, err)

	got, ok := doc.SchemaHash()
	require.True(t, ok)
	require.True(t, got.Equal(schemaHash))
}

func TestDocumentBadSchemaFieldRejected(t *testing.T) {
	_, err := New(codec.NewMap([]codec.MapEntry{
		{Key: "", Val: codec.Int(1)},
	}))
	require.ErrorIs(t, err, ErrBadSchemaField)
}

func TestEntryHashAndSign(t *testing.T) {
	v := vault.New()
	defer v.Close()
	handle, _, err := v.NewKey()
	require.NoError(t, err)

	docHash, err := crypto.HashBytes(cobj.Version1, []byte("doc body"))
	require.NoError(t, err)

	e, err := NewEntry(docHash, "count", codec.Int(42))
	require.NoError(t, err)
	require.NoError(t, e.Sign(v, handle))
	require.Len(t, e.Signatures(), 1)

	enc := e.Encode()
	back, err := DecodeEntry(enc)
	require.NoError(t, err)
	require.True(t, e.Hash().Equal(back.Hash()))
	require.Equal(t, "count", back.Field())
}

func TestEntryTooManySignatures(t *testing.T) {
	v := vault.New()
	defer v.Close()
	handle, _, err := v.NewKey()
	require.NoError(t, err)

	docHash, err := crypto.HashBytes(cobj.Version1, []byte("doc body"))
	require.NoError(t, err)
	e, err := NewEntry(docHash, "f", codec.Bool(true))
	require.NoError(t, err)

	for i := 0; i < maxSignatures; i++ {
		require.NoError(t, e.Sign(v, handle))
	}
	require.ErrorIs(t, e.Sign(v, handle), ErrTooManySignatures)
}
