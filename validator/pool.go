package validator

import "github.com/tidwall/hashmap"

// Pool is the flat interned vector of validators a Schema decodes into.
// Index 0 is always Invalid, index 1 always Valid. The pool is rebuilt
// per schema and never mutated after Finalize, per spec.md §4.7's
// "Resource ownership" note.
type Pool struct {
	list      []V
	typeNames *hashmap.Map[string, int]
}

// NewPool returns a pool preloaded with the two reserved entries.
func NewPool() *Pool {
	p := &Pool{
		list:      make([]V, 0, 8),
		typeNames: hashmap.New[string, int](8),
	}
	p.list = append(p.list, V{Kind: KindInvalid})
	p.list = append(p.list, V{Kind: KindValid})
	return p
}

// Intern appends v and returns its new index. Unlike a content-addressed
// cache, this does not deduplicate structurally identical validators —
// only the two reserved entries are ever shared — which trades a larger
// pool for simplicity.
func (p *Pool) Intern(v V) int {
	p.list = append(p.list, v)
	return len(p.list) - 1
}

// Get returns the validator at idx.
func (p *Pool) Get(idx int) V { return p.list[idx] }

// Set overwrites the validator at idx, used by Finalize to write back
// trimmed bounds.
func (p *Pool) Set(idx int, v V) { p.list[idx] = v }

// Len reports how many validators are interned, including the two
// reserved entries.
func (p *Pool) Len() int { return len(p.list) }

// DefineType registers name as referring to validator index idx, for
// KindType lookups.
func (p *Pool) DefineType(name string, idx int) { p.typeNames.Set(name, idx) }

// ResolveType looks up a named type.
func (p *Pool) ResolveType(name string) (int, bool) {
	return p.typeNames.Get(name)
}

const (
	// IdxInvalid and IdxValid are the two fixed reserved indices every
	// Pool starts with.
	IdxInvalid = 0
	IdxValid   = 1
)
