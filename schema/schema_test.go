package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cognoscan/condensedb/codec"
)

func intValidator(min, max int64) codec.Value {
	return codec.NewMap([]codec.MapEntry{
		{Key: "type", Val: codec.String("Int")},
		{Key: "min", Val: codec.Int(min)},
		{Key: "max", Val: codec.Int(max)},
	})
}

func TestDecodeSimpleSchema(t *testing.T) {
	doc := codec.NewMap([]codec.MapEntry{
		{Key: "name", Val: codec.String("example")},
		{Key: "req", Val: codec.NewMap([]codec.MapEntry{
			{Key: "age", Val: intValidator(0, 130)},
		})},
		{Key: "opt", Val: codec.NewMap([]codec.MapEntry{
			{Key: "nickname", Val: codec.NewMap([]codec.MapEntry{
				{Key: "type", Val: codec.String("String")},
			})},
		})},
	})

	s, err := Decode(doc)
	require.NoError(t, err)
	require.Equal(t, "example", s.Name)
	require.Contains(t, s.Required, "age")
	require.Contains(t, s.Optional, "nickname")
}

func TestDecodeRejectsUnknownTopField(t *testing.T) {
	doc := codec.NewMap([]codec.MapEntry{
		{Key: "bogus", Val: codec.Int(1)},
	})
	_, err := Decode(doc)
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestValidateDocRequiredRangeUnknown(t *testing.T) {
	doc := codec.NewMap([]codec.MapEntry{
		{Key: "req", Val: codec.NewMap([]codec.MapEntry{
			{Key: "age", Val: intValidator(0, 130)},
		})},
	})
	s, err := Decode(doc)
	require.NoError(t, err)

	good := codec.NewMap([]codec.MapEntry{{Key: "age", Val: codec.Int(30)}})
	_, err = s.ValidateDoc(good)
	require.NoError(t, err)

	missing := codec.NewMap(nil)
	_, err = s.ValidateDoc(missing)
	require.ErrorIs(t, err, ErrFailedCheck)

	outOfRange := codec.NewMap([]codec.MapEntry{{Key: "age", Val: codec.Int(200)}})
	_, err = s.ValidateDoc(outOfRange)
	require.ErrorIs(t, err, ErrFailedCheck)

	unknownField := codec.NewMap([]codec.MapEntry{
		{Key: "age", Val: codec.Int(30)},
		{Key: "extra", Val: codec.Int(1)},
	})
	_, err = s.ValidateDoc(unknownField)
	require.ErrorIs(t, err, ErrFailedCheck)
}

func TestValidateDocUnknownOkAllowsExtraFields(t *testing.T) {
	doc := codec.NewMap([]codec.MapEntry{
		{Key: "req", Val: codec.NewMap([]codec.MapEntry{
			{Key: "age", Val: intValidator(0, 130)},
		})},
		{Key: "unknown_ok", Val: codec.Bool(true)},
	})
	s, err := Decode(doc)
	require.NoError(t, err)

	withExtra := codec.NewMap([]codec.MapEntry{
		{Key: "age", Val: codec.Int(30)},
		{Key: "extra", Val: codec.Int(1)},
	})
	_, err = s.ValidateDoc(withExtra)
	require.NoError(t, err)
}

func TestValidateDocIgnoresSchemaHashField(t *testing.T) {
	doc := codec.NewMap([]codec.MapEntry{
		{Key: "req", Val: codec.NewMap([]codec.MapEntry{
			{Key: "age", Val: intValidator(0, 130)},
		})},
	})
	s, err := Decode(doc)
	require.NoError(t, err)

	withSchemaField := codec.NewMap([]codec.MapEntry{
		{Key: "", Val: codec.Int(0)},
		{Key: "age", Val: codec.Int(30)},
	})
	_, err = s.ValidateDoc(withSchemaField)
	require.NoError(t, err)
}

func TestValidateEntryUsesEntriesDict(t *testing.T) {
	doc := codec.NewMap([]codec.MapEntry{
		{Key: "entries", Val: codec.NewMap([]codec.MapEntry{
			{Key: "comment", Val: codec.NewMap([]codec.MapEntry{
				{Key: "type", Val: codec.String("String")},
			})},
		})},
	})
	s, err := Decode(doc)
	require.NoError(t, err)

	_, err = s.ValidateEntry("comment", codec.String("hi"))
	require.NoError(t, err)

	_, err = s.ValidateEntry("comment", codec.Int(1))
	require.ErrorIs(t, err, ErrFailedCheck)

	_, err = s.ValidateEntry("nonexistent", codec.String("hi"))
	require.ErrorIs(t, err, ErrFailedCheck)
}

func TestDecodeTypesDictionaryAllowsForwardReference(t *testing.T) {
	doc := codec.NewMap([]codec.MapEntry{
		{Key: "types", Val: codec.NewMap([]codec.MapEntry{
			{Key: "positiveInt", Val: intValidator(0, 1_000_000)},
		})},
		{Key: "req", Val: codec.NewMap([]codec.MapEntry{
			{Key: "count", Val: codec.NewMap([]codec.MapEntry{
				{Key: "type", Val: codec.String("Type")},
				{Key: "name", Val: codec.String("positiveInt")},
			})},
		})},
	})
	s, err := Decode(doc)
	require.NoError(t, err)

	good := codec.NewMap([]codec.MapEntry{{Key: "count", Val: codec.Int(5)}})
	_, err = s.ValidateDoc(good)
	require.NoError(t, err)

	bad := codec.NewMap([]codec.MapEntry{{Key: "count", Val: codec.Int(-1)}})
	_, err = s.ValidateDoc(bad)
	require.ErrorIs(t, err, ErrFailedCheck)
}
