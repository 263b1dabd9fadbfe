package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/cognoscan/condensedb/cobj"
	"github.com/cognoscan/condensedb/document"
	"github.com/cognoscan/condensedb/permission"
)

func (db *Db) submitChange(msg changeMsg) <-chan ChangeResult {
	msg.result = make(chan ChangeResult, 1)
	db.change <- msg
	return msg.result
}

// AddDoc enqueues doc for insertion under perm, expiring after ttl (zero
// means no expiry). The returned channel carries exactly one ChangeResult,
// then closes.
func (db *Db) AddDoc(doc *document.Document, perm permission.Permission, ttl time.Duration) <-chan ChangeResult {
	return db.submitChange(changeMsg{op: opAddDoc, doc: doc, perm: perm, ttl: ttl})
}

// DelDoc enqueues removal of the document named by hash.
func (db *Db) DelDoc(hash cobj.Hash) <-chan ChangeResult {
	return db.submitChange(changeMsg{op: opDelDoc, hash: hash})
}

// AddEntry enqueues entry for insertion, expiring after ttl.
func (db *Db) AddEntry(entry *document.Entry, ttl time.Duration) <-chan ChangeResult {
	return db.submitChange(changeMsg{op: opAddEntry, entry: entry, ttl: ttl})
}

// DelEntry enqueues removal of the entry named by entryHash under docHash.
func (db *Db) DelEntry(docHash, entryHash cobj.Hash) <-chan ChangeResult {
	return db.submitChange(changeMsg{op: opDelEntry, hash: docHash, entryHash: entryHash})
}

// DelQuery enqueues cancellation of every open query belonging to id.
func (db *Db) DelQuery(id uuid.UUID) <-chan ChangeResult {
	return db.submitChange(changeMsg{op: opDelQuery, queryID: id})
}

// SetTtlDoc enqueues a TTL change for the document named by hash.
func (db *Db) SetTtlDoc(hash cobj.Hash, ttl time.Duration) <-chan ChangeResult {
	return db.submitChange(changeMsg{op: opSetTtlDoc, hash: hash, ttl: ttl})
}

// SetTtlEntry enqueues a TTL change for one entry.
func (db *Db) SetTtlEntry(docHash, entryHash cobj.Hash, ttl time.Duration) <-chan ChangeResult {
	return db.submitChange(changeMsg{op: opSetTtlEntry, hash: docHash, entryHash: entryHash, ttl: ttl})
}

// Query submits q, expanding it into one open query per declared root,
// multiplexed onto a single bounded result channel. A non-positive capacity
// falls back to the engine's configured default (config.Config.QueryCapacity).
func (db *Db) Query(q Query, perm permission.Permission, capacity int) *QueryStream {
	if capacity <= 0 {
		capacity = db.cfg.QueryCapacity
	}
	if capacity <= 0 {
		capacity = 1
	}
	results := make(chan QueryResponse, capacity)

	if len(q.Roots) == 0 {
		results <- invalidResponse()
		close(results)
		return &QueryStream{results: results}
	}

	stream := &QueryStream{results: results}
	id := newQueryGroupID()
	batch := make([]*openQuery, 0, len(q.Roots))
	for _, root := range q.Roots {
		cancel := make(chan struct{})
		oq := &openQuery{
			id:      id,
			root:    root,
			perm:    perm,
			results: results,
			cancel:  cancel,
		}
		stream.cancels = append(stream.cancels, cancel)
		batch = append(batch, oq)
	}
	db.queryReg <- batch
	return stream
}

func newQueryGroupID() uuid.UUID { return uuid.New() }
