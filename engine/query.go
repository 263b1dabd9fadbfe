package engine

import (
	"github.com/google/uuid"

	"github.com/cognoscan/condensedb/cobj"
	"github.com/cognoscan/condensedb/permission"
	"github.com/cognoscan/condensedb/validator"
)

// QueryRoot names one root hash a Query asks for, with an optional
// validator-intersection restriction and whether to also stream attached
// entries. This completes the stub left in the original source's
// src/query.rs per the Open Questions in spec.md §9.
type QueryRoot struct {
	Root cobj.Hash

	// RestrictPool/RestrictIdx narrow what's accepted beyond the target
	// document's own schema: the document body must also pass
	// RestrictPool.Validate at RestrictIdx, checked on its own rather than
	// intersected with the schema's validator. A nil
	// RestrictPool means no restriction beyond the stored schema check.
	RestrictPool *validator.Pool
	RestrictIdx  int

	Entries bool
}

// Query is a list of root hashes a single submission expands into one open
// query apiece.
type Query struct {
	Roots []QueryRoot
}

// openQuery is one root's worth of state inside the engine's control loop.
// id is shared by every root of one submission and is what DelQuery
// matches on; QueryStream does not expose it.
type openQuery struct {
	id    uuid.UUID
	root  QueryRoot
	perm  permission.Permission
	owner permission.Permission // the permission under which the doc was stored, once known

	results chan QueryResponse
	cancel  chan struct{}

	waiting      bool
	rootSent     bool
	finished     bool
	entriesOrder []cobj.Hash // populated once the root document is sent, if root.Entries
	entriesIdx   int         // how many entries of the root doc have been sent so far
	effort       int
}

// QueryStream is the caller-facing handle for a submitted Query: one stream
// per declared root, multiplexed onto a single result channel in
// submission order of QueryRoot, terminated by DoneForever/Invalid per
// root. Dropping is not observable the way Rust's channel disconnection
// is, so cancellation is explicit: call Cancel.
type QueryStream struct {
	results chan QueryResponse
	cancels []chan struct{}
}

// Results returns the channel callers read QueryResponse values from. It
// closes once every declared root has produced a terminal response or been
// cancelled.
func (q *QueryStream) Results() <-chan QueryResponse { return q.results }

// Cancel stops the engine from producing any further items for this
// stream's open queries. The engine observes the closed cancel channels on
// its next cooperative pass and finalizes them within one loop iteration.
func (q *QueryStream) Cancel() {
	for _, c := range q.cancels {
		closeOnce(c)
	}
}

func closeOnce(c chan struct{}) {
	select {
	case <-c:
		// already closed
	default:
		close(c)
	}
}
