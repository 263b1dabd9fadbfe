package engine

import (
	"time"

	"github.com/cognoscan/condensedb/cobj"
	"github.com/cognoscan/condensedb/validator"
)

// pendingCheck is one checklist obligation produced by validating a
// document's Hash-typed fields (validator.ChecklistItem), deferred because
// its target isn't in the store yet. It is retried on every AddDoc/AddEntry
// whose hash matches Target, exactly like an open query's "waiting" root,
// and dropped once Deadline passes (spec.md's SUPPLEMENTED FEATURES §6).
type pendingCheck struct {
	owner    cobj.Hash // the request (doc or entry hash) this obligation belongs to
	item     validator.ChecklistItem
	pool     *validator.Pool // the schema pool item.ValidatorIndex is an index into
	deadline time.Time
}

// checklistQueue holds every pendingCheck still outstanding across every
// in-flight AddDoc/AddEntry. The control loop drains it on every
// cooperative pass.
type checklistQueue struct {
	items []pendingCheck
}

func (q *checklistQueue) push(owner cobj.Hash, pool *validator.Pool, items []validator.ChecklistItem, deadline time.Time) {
	for _, it := range items {
		q.items = append(q.items, pendingCheck{owner: owner, item: it, pool: pool, deadline: deadline})
	}
}

// drain attempts to discharge every pending check against the current
// store, using resolve to fetch a stored document's schema hash. It
// returns the set of owner hashes whose checks all discharged
// successfully (so AddDoc can be finalized) and the set whose checks
// definitively failed (so the add must be rolled back). Checks still
// outstanding, and not yet expired, remain in the queue.
func (q *checklistQueue) drain(now time.Time, resolve func(h cobj.Hash) (schemaHash cobj.Hash, hasSchema bool, present bool), validate func(pool *validator.Pool, idx int, target cobj.Hash) bool) (passed, failed map[cobj.Hash]bool) {
	passed = map[cobj.Hash]bool{}
	failed = map[cobj.Hash]bool{}

	remaining := q.items[:0:0]
	pendingOwners := map[cobj.Hash]int{}
	for _, it := range q.items {
		if failed[it.owner] {
			continue
		}
		pendingOwners[it.owner]++
	}

	for _, it := range q.items {
		if failed[it.owner] {
			continue
		}
		schemaHash, hasSchema, present := resolve(it.item.Target)
		if !present {
			if now.After(it.deadline) {
				failed[it.owner] = true
				pendingOwners[it.owner] = 0
				continue
			}
			remaining = append(remaining, it)
			continue
		}

		ok := true
		if it.item.HasValidatorIndex {
			ok = validate(it.pool, it.item.ValidatorIndex, it.item.Target)
		}
		if ok && len(it.item.SchemaSet) > 0 {
			ok = hasSchema && containsSchemaHash(it.item.SchemaSet, schemaHash)
		}
		if !ok {
			failed[it.owner] = true
			pendingOwners[it.owner] = 0
			continue
		}
		pendingOwners[it.owner]--
	}

	for owner, n := range pendingOwners {
		if n == 0 && !failed[owner] {
			passed[owner] = true
		}
	}

	q.items = remaining
	return passed, failed
}

func containsSchemaHash(set []cobj.Hash, h cobj.Hash) bool {
	for _, s := range set {
		if s.Equal(h) {
			return true
		}
	}
	return false
}
