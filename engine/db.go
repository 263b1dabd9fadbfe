package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cognoscan/condensedb/cobj"
	"github.com/cognoscan/condensedb/codec"
	"github.com/cognoscan/condensedb/config"
	"github.com/cognoscan/condensedb/document"
	"github.com/cognoscan/condensedb/permission"
	"github.com/cognoscan/condensedb/schema"
	"github.com/cognoscan/condensedb/validator"
	"github.com/cognoscan/condensedb/vault"
)

// changeChanCapacity and queryChanCapacity bound how many in-flight
// requests a producer can enqueue before Add*/Query itself starts to
// block; the control loop's own dispatch is always a non-blocking
// try-select regardless of these sizes (spec.md §4.7).
const (
	changeChanCapacity = 64
	queryChanCapacity  = 64

	// idleSleep is the control loop's yield when a pass produces no work,
	// standing in for a blocking select: Go has no portable equivalent of
	// "park this goroutine until any of N channels OR a recomputed
	// condition is ready" without a dedicated wake channel per source, so
	// a short sleep approximates "yield when idle" from spec.md §4.7.
	idleSleep = 2 * time.Millisecond
)

type storedDoc struct {
	doc        *document.Document
	schemaHash *cobj.Hash
	perm       permission.Permission
	expiresAt  time.Time // zero means no expiry
	entries    map[cobj.Hash]*entryRecord
}

type entryRecord struct {
	entry     *document.Entry
	expiresAt time.Time
}

type schemaInfo struct {
	schema   *schema.Schema
	refCount int
}

// pendingOp is a change request whose outcome depends on checklist items
// that haven't discharged yet.
type pendingOp struct {
	onPass func()
	onFail func(ChangeResult)
}

type changeOp int

const (
	opAddDoc changeOp = iota
	opDelDoc
	opAddEntry
	opDelEntry
	opDelQuery
	opSetTtlDoc
	opSetTtlEntry
)

type changeMsg struct {
	op     changeOp
	result chan ChangeResult

	doc  *document.Document
	perm permission.Permission
	ttl  time.Duration

	entry *document.Entry

	hash      cobj.Hash
	entryHash cobj.Hash

	queryID uuid.UUID
}

type controlMsg struct {
	stop bool
}

// Db is the engine's single owning goroutine plus the channels producers
// use to reach it. No field is safe to touch from outside run().
type Db struct {
	control  chan controlMsg
	change   chan changeMsg
	queryReg chan []*openQuery

	vault *vault.Vault
	blobs *blobCache

	docs       map[cobj.Hash]*storedDoc
	schemas    map[cobj.Hash]*schemaInfo
	pendingOps map[cobj.Hash]*pendingOp
	checklist  checklistQueue

	openQueries []*openQuery
	groups      map[uuid.UUID]*queryGroup

	cfg config.Config

	stopped   chan struct{}
	closeOnce sync.Once
}

// queryGroup tracks how many of a single Query() submission's roots are
// still live, since every root in the submission multiplexes onto one
// shared result channel that must be closed exactly once, after the last
// of them finishes.
type queryGroup struct {
	remaining int
	results   chan QueryResponse
}

// New starts the engine's control loop and returns immediately. Options
// follow config.New's functional-options idiom; with none given the engine
// runs under config.Default().
func New(ctx context.Context, v *vault.Vault, opts ...config.Option) (*Db, error) {
	blobs, err := newBlobCache(ctx)
	if err != nil {
		return nil, err
	}
	db := &Db{
		control:    make(chan controlMsg, 1),
		change:     make(chan changeMsg, changeChanCapacity),
		queryReg:   make(chan []*openQuery, queryChanCapacity),
		vault:      v,
		blobs:      blobs,
		docs:       make(map[cobj.Hash]*storedDoc),
		schemas:    make(map[cobj.Hash]*schemaInfo),
		pendingOps: make(map[cobj.Hash]*pendingOp),
		groups:     make(map[uuid.UUID]*queryGroup),
		cfg:        config.New(opts...),
		stopped:    make(chan struct{}),
	}
	go db.run()
	return db, nil
}

// Close signals the control loop to stop after its current pass and blocks
// until it has exited.
func (db *Db) Close() error {
	sent := false
	db.closeOnce.Do(func() {
		db.control <- controlMsg{stop: true}
		sent = true
	})
	if !sent {
		return ErrAlreadyClosed
	}
	<-db.stopped
	return nil
}

func (db *Db) run() {
	defer close(db.stopped)
	for {
		select {
		case msg := <-db.control:
			if msg.stop {
				db.shutdown()
				return
			}
		case msg := <-db.change:
			db.handleChange(msg)
		case batch := <-db.queryReg:
			db.registerQueryBatch(batch)
		default:
			if !db.cooperativePass() {
				time.Sleep(idleSleep)
			}
		}
	}
}

// registerQueryBatch admits every root of one Query() submission
// atomically, so the group's remaining count is never observed at zero
// before all its roots exist.
func (db *Db) registerQueryBatch(batch []*openQuery) {
	if len(batch) == 0 {
		return
	}
	g := &queryGroup{remaining: len(batch), results: batch[0].results}
	db.groups[batch[0].id] = g
	db.openQueries = append(db.openQueries, batch...)
}

// finishQuery retires oq and, once every root sharing its result channel
// has finished, closes that channel exactly once.
func (db *Db) finishQuery(oq *openQuery) {
	g, ok := db.groups[oq.id]
	if !ok {
		return
	}
	g.remaining--
	if g.remaining <= 0 {
		close(g.results)
		delete(db.groups, oq.id)
	}
}

// shutdown drops every open query's result channel, which disconnects any
// blocked receiver, per spec.md §4.7's "Engine shutdown".
func (db *Db) shutdown() {
	for _, g := range db.groups {
		close(g.results)
	}
	db.groups = map[uuid.UUID]*queryGroup{}
	db.openQueries = nil
}

// cooperativePass drives every open query one step and drains the
// checklist queue once. It reports whether any work actually happened, so
// run() knows whether to yield.
func (db *Db) cooperativePass() bool {
	progressed := false

	live := db.openQueries[:0]
	for _, oq := range db.openQueries {
		if db.stepQuery(oq) {
			progressed = true
		}
		if oq.finished {
			db.finishQuery(oq)
			continue
		}
		live = append(live, oq)
	}
	db.openQueries = live

	if len(db.checklist.items) > 0 {
		now := time.Now()
		passed, failed := db.checklist.drain(now, db.resolveDocSchema, db.validateAgainst)
		for owner := range passed {
			if op, ok := db.pendingOps[owner]; ok {
				op.onPass()
				delete(db.pendingOps, owner)
			}
			progressed = true
		}
		for owner := range failed {
			if op, ok := db.pendingOps[owner]; ok {
				op.onFail(FailedSchemaCheck)
				delete(db.pendingOps, owner)
			}
			progressed = true
		}
	}

	if db.reapExpired(time.Now()) {
		progressed = true
	}

	return progressed
}

func (db *Db) resolveDocSchema(h cobj.Hash) (schemaHash cobj.Hash, hasSchema bool, present bool) {
	sd, ok := db.docs[h]
	if !ok {
		return cobj.Hash{}, false, false
	}
	if sd.schemaHash != nil {
		return *sd.schemaHash, true, true
	}
	return cobj.Hash{}, false, true
}

// validateAgainst applies the validator at idx in pool to the stored
// document named by target, discarding any further checklist obligations
// it produces — nested link/schema chains are resolved one hop at a time
// as each owning request's own checklist drains, not transitively here.
func (db *Db) validateAgainst(pool *validator.Pool, idx int, target cobj.Hash) bool {
	sd, ok := db.docs[target]
	if !ok {
		return false
	}
	val, _, err := codec.Decode(sd.doc.Body())
	if err != nil {
		return false
	}
	discard := &validator.Checklist{}
	return pool.Validate(idx, val, discard)
}
