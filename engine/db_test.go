package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cognoscan/condensedb/codec"
	"github.com/cognoscan/condensedb/document"
	"github.com/cognoscan/condensedb/permission"
	"github.com/cognoscan/condensedb/vault"
)

func newTestDb(t *testing.T) *Db {
	t.Helper()
	db, err := New(context.Background(), vault.New())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func mustAddDoc(t *testing.T, db *Db, doc *document.Document, perm permission.Permission, ttl time.Duration) ChangeResult {
	t.Helper()
	select {
	case r := <-db.AddDoc(doc, perm, ttl):
		return r
	case <-time.After(time.Second):
		t.Fatal("AddDoc timed out")
		return Failed
	}
}

func intField(min, max int64) codec.Value {
	return codec.NewMap([]codec.MapEntry{
		{Key: "type", Val: codec.String("Int")},
		{Key: "min", Val: codec.Int(min)},
		{Key: "max", Val: codec.Int(max)},
	})
}

func schemaBody(req map[string]codec.Value) codec.Value {
	entries := make([]codec.MapEntry, 0, len(req))
	for k, v := range req {
		entries = append(entries, codec.MapEntry{Key: k, Val: v})
	}
	return codec.NewMap([]codec.MapEntry{
		{Key: "req", Val: codec.NewMap(entries)},
	})
}

var fullPerm = permission.Permission{Advertise: true, MachineLocal: true, Direct: true, LocalNet: true, Global: true, Anonymous: true}

// TestAddDocWithoutSchema covers a bare document with no schema field.
func TestAddDocWithoutSchema(t *testing.T) {
	db := newTestDb(t)

	val := codec.NewMap([]codec.MapEntry{{Key: "x", Val: codec.Int(1)}})
	doc, err := document.New(val)
	require.NoError(t, err)

	require.Equal(t, Ok, mustAddDoc(t, db, doc, fullPerm, 0))
	// Re-adding the same document is idempotent.
	require.Equal(t, Ok, mustAddDoc(t, db, doc, fullPerm, 0))
}

// TestAddDocWithSchemaRoundTrip covers adding a schema document, then a
// document that validates against it.
func TestAddDocWithSchemaRoundTrip(t *testing.T) {
	db := newTestDb(t)

	schemaVal := schemaBody(map[string]codec.Value{"age": intField(0, 130)})
	schemaDoc, err := document.New(schemaVal)
	require.NoError(t, err)
	require.Equal(t, Ok, mustAddDoc(t, db, schemaDoc, fullPerm, 0))

	docVal := codec.NewMap([]codec.MapEntry{
		{Key: "", Val: codec.HashVal(schemaDoc.Hash())},
		{Key: "age", Val: codec.Int(30)},
	})
	doc, err := document.New(docVal)
	require.NoError(t, err)
	require.Equal(t, Ok, mustAddDoc(t, db, doc, fullPerm, 0))
}

// TestAddDocUnknownSchema covers a document referencing a schema hash the
// engine has never seen.
func TestAddDocUnknownSchema(t *testing.T) {
	db := newTestDb(t)

	ghost, err := document.New(codec.NewMap([]codec.MapEntry{{Key: "z", Val: codec.Int(0)}}))
	require.NoError(t, err)

	docVal := codec.NewMap([]codec.MapEntry{
		{Key: "", Val: codec.HashVal(ghost.Hash())},
		{Key: "age", Val: codec.Int(30)},
	})
	doc, err := document.New(docVal)
	require.NoError(t, err)
	require.Equal(t, SchemaNotFound, mustAddDoc(t, db, doc, fullPerm, 0))
}

// TestAddDocFailsSchemaCheck covers a document that violates its schema's
// bounds.
func TestAddDocFailsSchemaCheck(t *testing.T) {
	db := newTestDb(t)

	schemaVal := schemaBody(map[string]codec.Value{"age": intField(0, 130)})
	schemaDoc, err := document.New(schemaVal)
	require.NoError(t, err)
	require.Equal(t, Ok, mustAddDoc(t, db, schemaDoc, fullPerm, 0))

	docVal := codec.NewMap([]codec.MapEntry{
		{Key: "", Val: codec.HashVal(schemaDoc.Hash())},
		{Key: "age", Val: codec.Int(999)},
	})
	doc, err := document.New(docVal)
	require.NoError(t, err)
	require.Equal(t, FailedSchemaCheck, mustAddDoc(t, db, doc, fullPerm, 0))
}

// TestDelDocSchemaInUse covers refusing to delete a schema document that a
// stored document still depends on.
func TestDelDocSchemaInUse(t *testing.T) {
	db := newTestDb(t)

	schemaVal := schemaBody(map[string]codec.Value{"age": intField(0, 130)})
	schemaDoc, err := document.New(schemaVal)
	require.NoError(t, err)
	require.Equal(t, Ok, mustAddDoc(t, db, schemaDoc, fullPerm, 0))

	docVal := codec.NewMap([]codec.MapEntry{
		{Key: "", Val: codec.HashVal(schemaDoc.Hash())},
		{Key: "age", Val: codec.Int(30)},
	})
	doc, err := document.New(docVal)
	require.NoError(t, err)
	require.Equal(t, Ok, mustAddDoc(t, db, doc, fullPerm, 0))

	res := <-db.DelDoc(schemaDoc.Hash())
	require.Equal(t, SchemaInUse, res)

	res = <-db.DelDoc(doc.Hash())
	require.Equal(t, Ok, res)
	res = <-db.DelDoc(schemaDoc.Hash())
	require.Equal(t, Ok, res)
}

// TestAddEntryValidated covers an entry accepted under a schema's entries
// dictionary, and one rejected for naming an undeclared field.
func TestAddEntryValidated(t *testing.T) {
	db := newTestDb(t)

	schemaVal := codec.NewMap([]codec.MapEntry{
		{Key: "entries", Val: codec.NewMap([]codec.MapEntry{
			{Key: "comment", Val: codec.NewMap([]codec.MapEntry{
				{Key: "type", Val: codec.String("String")},
			})},
		})},
	})
	schemaDoc, err := document.New(schemaVal)
	require.NoError(t, err)
	require.Equal(t, Ok, mustAddDoc(t, db, schemaDoc, fullPerm, 0))

	docVal := codec.NewMap([]codec.MapEntry{{Key: "", Val: codec.HashVal(schemaDoc.Hash())}})
	doc, err := document.New(docVal)
	require.NoError(t, err)
	require.Equal(t, Ok, mustAddDoc(t, db, doc, fullPerm, 0))

	good, err := document.NewEntry(doc.Hash(), "comment", codec.String("hi"))
	require.NoError(t, err)
	require.Equal(t, Ok, <-db.AddEntry(good, 0))

	bad, err := document.NewEntry(doc.Hash(), "nonexistent", codec.String("hi"))
	require.NoError(t, err)
	require.Equal(t, FailedSchemaCheck, <-db.AddEntry(bad, 0))
}

// TestDelQueryUnknownID covers DelQuery against an id the engine never
// registered.
func TestDelQueryUnknownID(t *testing.T) {
	db := newTestDb(t)
	require.Equal(t, InvalidQuery, <-db.DelQuery(newQueryGroupID()))
}

// TestSetTtl covers SetTtlDoc/SetTtlEntry against missing and present
// targets.
func TestSetTtl(t *testing.T) {
	db := newTestDb(t)

	doc, err := document.New(codec.NewMap(nil))
	require.NoError(t, err)
	require.Equal(t, NoSuchDoc, <-db.SetTtlDoc(doc.Hash(), time.Second))

	require.Equal(t, Ok, mustAddDoc(t, db, doc, fullPerm, 0))
	require.Equal(t, Ok, <-db.SetTtlDoc(doc.Hash(), time.Hour))

	entry, err := document.NewEntry(doc.Hash(), "f", codec.Int(1))
	require.NoError(t, err)
	require.Equal(t, NoSuchEntry, <-db.SetTtlEntry(doc.Hash(), entry.Hash(), time.Second))

	require.Equal(t, Ok, <-db.AddEntry(entry, 0))
	require.Equal(t, Ok, <-db.SetTtlEntry(doc.Hash(), entry.Hash(), time.Hour))
}

// TestQueryRootPresentAndWaiting covers a query submitted before its root
// exists (it waits), then flips to delivering the root once AddDoc lands.
func TestQueryRootPresentAndWaiting(t *testing.T) {
	db := newTestDb(t)

	doc, err := document.New(codec.NewMap([]codec.MapEntry{{Key: "a", Val: codec.Int(1)}}))
	require.NoError(t, err)

	stream := db.Query(Query{Roots: []QueryRoot{{Root: doc.Hash()}}}, fullPerm, 4)

	require.Equal(t, Ok, mustAddDoc(t, db, doc, fullPerm, 0))

	var got []QueryResponse
	for r := range stream.Results() {
		got = append(got, r)
		if r.Terminal() {
			break
		}
	}
	require.NotEmpty(t, got)
	require.Equal(t, RespDoc, got[0].Kind)
	require.True(t, got[0].Doc.Hash().Equal(doc.Hash()))
	require.Equal(t, RespDoneForever, got[len(got)-1].Kind)
}

// TestQueryCancel covers cancelling a stream before its root ever appears;
// the stream must still close rather than hang.
func TestQueryCancel(t *testing.T) {
	db := newTestDb(t)

	ghost, err := document.New(codec.NewMap([]codec.MapEntry{{Key: "a", Val: codec.Int(1)}}))
	require.NoError(t, err)

	stream := db.Query(Query{Roots: []QueryRoot{{Root: ghost.Hash()}}}, fullPerm, 4)
	stream.Cancel()

	select {
	case _, ok := <-stream.Results():
		require.False(t, ok, "stream should close with no items once cancelled")
	case <-time.After(time.Second):
		t.Fatal("cancelled stream never closed")
	}
}

// TestQueryMultiRootSharedChannel covers the channel-close fix directly: two
// roots in one Query() submission share a single results channel, which
// must close exactly once after both finish.
func TestQueryMultiRootSharedChannel(t *testing.T) {
	db := newTestDb(t)

	docA, err := document.New(codec.NewMap([]codec.MapEntry{{Key: "a", Val: codec.Int(1)}}))
	require.NoError(t, err)
	docB, err := document.New(codec.NewMap([]codec.MapEntry{{Key: "b", Val: codec.Int(2)}}))
	require.NoError(t, err)

	require.Equal(t, Ok, mustAddDoc(t, db, docA, fullPerm, 0))
	require.Equal(t, Ok, mustAddDoc(t, db, docB, fullPerm, 0))

	stream := db.Query(Query{Roots: []QueryRoot{
		{Root: docA.Hash()},
		{Root: docB.Hash()},
	}}, fullPerm, 8)

	terminals := 0
	docs := 0
	done := false
	for !done {
		select {
		case r, ok := <-stream.Results():
			if !ok {
				done = true
				break
			}
			if r.Kind == RespDoc {
				docs++
			}
			if r.Terminal() {
				terminals++
			}
		case <-time.After(2 * time.Second):
			t.Fatal("query stream never closed")
		}
	}
	require.Equal(t, 2, docs)
	require.Equal(t, 2, terminals)
}

// TestQueryPermissionDenied covers a root stored under a permission that
// shares nothing with the requester: the stream closes with no doc.
func TestQueryPermissionDenied(t *testing.T) {
	db := newTestDb(t)

	doc, err := document.New(codec.NewMap([]codec.MapEntry{{Key: "a", Val: codec.Int(1)}}))
	require.NoError(t, err)
	require.Equal(t, Ok, mustAddDoc(t, db, doc, permission.Permission{MachineLocal: true}, 0))

	stream := db.Query(Query{Roots: []QueryRoot{{Root: doc.Hash()}}}, permission.Permission{Global: true}, 4)

	var got []QueryResponse
	for r := range stream.Results() {
		got = append(got, r)
	}
	for _, r := range got {
		require.NotEqual(t, RespDoc, r.Kind)
	}
}
