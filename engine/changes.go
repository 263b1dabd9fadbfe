package engine

import (
	"time"

	"github.com/cognoscan/condensedb/cobj"
	"github.com/cognoscan/condensedb/codec"
	"github.com/cognoscan/condensedb/document"
	"github.com/cognoscan/condensedb/permission"
	"github.com/cognoscan/condensedb/schema"
)

func (db *Db) handleChange(msg changeMsg) {
	switch msg.op {
	case opAddDoc:
		db.handleAddDoc(msg)
	case opDelDoc:
		db.handleDelDoc(msg)
	case opAddEntry:
		db.handleAddEntry(msg)
	case opDelEntry:
		db.handleDelEntry(msg)
	case opDelQuery:
		db.handleDelQuery(msg)
	case opSetTtlDoc:
		db.handleSetTtlDoc(msg)
	case opSetTtlEntry:
		db.handleSetTtlEntry(msg)
	}
}

func sendResult(ch chan ChangeResult, r ChangeResult) {
	ch <- r
	close(ch)
}

func (db *Db) requestTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return db.cfg.RequestTTL
	}
	return ttl
}

// handleAddDoc implements spec.md §4.7's AddDoc semantics: hash, dedupe,
// load+decode the referenced schema, structurally validate, then either
// finalize immediately or defer on outstanding Hash-validator checklist
// items.
func (db *Db) handleAddDoc(msg changeMsg) {
	h := msg.doc.Hash()
	if _, ok := db.docs[h]; ok {
		sendResult(msg.result, Ok)
		return
	}
	if _, pending := db.pendingOps[h]; pending {
		sendResult(msg.result, Ok)
		return
	}

	schemaHash, hasSchema := msg.doc.SchemaHash()
	if !hasSchema {
		db.storeDoc(h, msg.doc, nil, msg.perm, msg.ttl)
		sendResult(msg.result, Ok)
		return
	}

	sd, present := db.docs[schemaHash]
	if !present {
		sendResult(msg.result, SchemaNotFound)
		return
	}
	si, err := db.loadSchema(schemaHash, sd)
	if err != nil {
		sendResult(msg.result, NotValidSchema)
		return
	}

	bodyVal, _, err := codec.Decode(msg.doc.Body())
	if err != nil {
		sendResult(msg.result, Failed)
		return
	}
	list, err := si.schema.ValidateDoc(bodyVal)
	if err != nil {
		sendResult(msg.result, FailedSchemaCheck)
		return
	}

	finalize := func() {
		db.storeDoc(h, msg.doc, &schemaHash, msg.perm, msg.ttl)
		si.refCount++
		sendResult(msg.result, Ok)
	}
	if len(list.Items) == 0 {
		finalize()
		return
	}

	db.pendingOps[h] = &pendingOp{
		onPass: finalize,
		onFail: func(r ChangeResult) { sendResult(msg.result, r) },
	}
	db.checklist.push(h, si.schema.Pool, list.Items, time.Now().Add(db.requestTTL(msg.ttl)))
}

func (db *Db) storeDoc(h cobj.Hash, doc *document.Document, schemaHash *cobj.Hash, perm permission.Permission, ttl time.Duration) {
	expires := time.Time{}
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	db.docs[h] = &storedDoc{
		doc:        doc,
		schemaHash: schemaHash,
		perm:       perm,
		expiresAt:  expires,
		entries:    make(map[cobj.Hash]*entryRecord),
	}
	if err := db.blobs.putDoc(h, doc.Encode()); err != nil {
		log.Warnw("blob cache put failed", "hash", h, "err", err)
	}
}

func (db *Db) loadSchema(hash cobj.Hash, sd *storedDoc) (*schemaInfo, error) {
	if si, ok := db.schemas[hash]; ok {
		return si, nil
	}
	bodyVal, _, err := codec.Decode(sd.doc.Body())
	if err != nil {
		return nil, err
	}
	sch, err := schema.Decode(bodyVal)
	if err != nil {
		return nil, err
	}
	si := &schemaInfo{schema: sch}
	db.schemas[hash] = si
	return si, nil
}

// handleDelDoc implements: refuse with SchemaInUse if hash names a schema
// still in use; otherwise remove and decrement the schema it referenced.
func (db *Db) handleDelDoc(msg changeMsg) {
	sd, ok := db.docs[msg.hash]
	if !ok {
		sendResult(msg.result, NoSuchDoc)
		return
	}
	if si, isSchema := db.schemas[msg.hash]; isSchema && si.refCount > 0 {
		sendResult(msg.result, SchemaInUse)
		return
	}

	delete(db.docs, msg.hash)
	delete(db.schemas, msg.hash)
	db.blobs.delDoc(msg.hash)

	if sd.schemaHash != nil {
		if si, ok := db.schemas[*sd.schemaHash]; ok && si.refCount > 0 {
			si.refCount--
		}
	}
	sendResult(msg.result, Ok)
}

// handleAddEntry checks the entry's owning document exists and, if the
// document has a schema, that the schema declares an `entries` validator
// for this field and the entry's body satisfies it.
func (db *Db) handleAddEntry(msg changeMsg) {
	e := msg.entry
	docHash := e.Doc()
	sd, ok := db.docs[docHash]
	if !ok {
		sendResult(msg.result, NoSuchDoc)
		return
	}

	entryHash := e.Hash()
	if _, exists := sd.entries[entryHash]; exists {
		sendResult(msg.result, Ok)
		return
	}

	expires := time.Time{}
	if msg.ttl > 0 {
		expires = time.Now().Add(msg.ttl)
	}
	finalize := func() {
		sd.entries[entryHash] = &entryRecord{entry: e, expiresAt: expires}
		if err := db.blobs.putEntry(docHash, entryHash, e.Encode()); err != nil {
			log.Warnw("blob cache put failed", "doc", docHash, "entry", entryHash, "err", err)
		}
		sendResult(msg.result, Ok)
	}

	if sd.schemaHash == nil {
		finalize()
		return
	}
	si, err := db.loadSchema(*sd.schemaHash, sd)
	if err != nil {
		sendResult(msg.result, NotValidSchema)
		return
	}

	list, err := si.schema.ValidateEntry(e.Field(), e.Body())
	if err != nil {
		sendResult(msg.result, FailedSchemaCheck)
		return
	}
	if len(list.Items) == 0 {
		finalize()
		return
	}
	db.pendingOps[entryHash] = &pendingOp{
		onPass: finalize,
		onFail: func(r ChangeResult) { sendResult(msg.result, r) },
	}
	db.checklist.push(entryHash, si.schema.Pool, list.Items, time.Now().Add(db.requestTTL(msg.ttl)))
}

func (db *Db) handleDelEntry(msg changeMsg) {
	sd, ok := db.docs[msg.hash]
	if !ok {
		sendResult(msg.result, NoSuchDoc)
		return
	}
	if _, ok := sd.entries[msg.entryHash]; !ok {
		sendResult(msg.result, NoSuchEntry)
		return
	}
	delete(sd.entries, msg.entryHash)
	db.blobs.delEntry(msg.hash, msg.entryHash)
	sendResult(msg.result, Ok)
}

func (db *Db) handleDelQuery(msg changeMsg) {
	found := false
	live := db.openQueries[:0]
	for _, oq := range db.openQueries {
		if oq.id == msg.queryID {
			found = true
			db.finishQuery(oq)
			continue
		}
		live = append(live, oq)
	}
	db.openQueries = live
	if !found {
		sendResult(msg.result, InvalidQuery)
		return
	}
	sendResult(msg.result, Ok)
}

func (db *Db) handleSetTtlDoc(msg changeMsg) {
	sd, ok := db.docs[msg.hash]
	if !ok {
		sendResult(msg.result, NoSuchDoc)
		return
	}
	if msg.ttl <= 0 {
		sd.expiresAt = time.Time{}
	} else {
		sd.expiresAt = time.Now().Add(msg.ttl)
	}
	sendResult(msg.result, Ok)
}

func (db *Db) handleSetTtlEntry(msg changeMsg) {
	sd, ok := db.docs[msg.hash]
	if !ok {
		sendResult(msg.result, NoSuchDoc)
		return
	}
	rec, ok := sd.entries[msg.entryHash]
	if !ok {
		sendResult(msg.result, NoSuchEntry)
		return
	}
	if msg.ttl <= 0 {
		rec.expiresAt = time.Time{}
	} else {
		rec.expiresAt = time.Now().Add(msg.ttl)
	}
	sendResult(msg.result, Ok)
}

// reapExpired drops every document and entry whose TTL has passed. Called
// once per cooperative pass; a document whose own schema use-count is
// still positive is left alone (its deletion would otherwise violate the
// same SchemaInUse invariant DelDoc enforces).
func (db *Db) reapExpired(now time.Time) bool {
	reaped := false
	for hash, sd := range db.docs {
		for entryHash, rec := range sd.entries {
			if !rec.expiresAt.IsZero() && now.After(rec.expiresAt) {
				delete(sd.entries, entryHash)
				db.blobs.delEntry(hash, entryHash)
				reaped = true
			}
		}
		if sd.expiresAt.IsZero() || !now.After(sd.expiresAt) {
			continue
		}
		if si, isSchema := db.schemas[hash]; isSchema && si.refCount > 0 {
			continue
		}
		delete(db.docs, hash)
		delete(db.schemas, hash)
		db.blobs.delDoc(hash)
		if sd.schemaHash != nil {
			if si, ok := db.schemas[*sd.schemaHash]; ok && si.refCount > 0 {
				si.refCount--
			}
		}
		reaped = true
	}
	return reaped
}
