package validator

import "github.com/cognoscan/condensedb/cobj"

// ChecklistItem is one deferred cross-document obligation produced by a
// Hash field's `link` or `schema` constraint: the referenced document
// must, once fetched, pass ValidatorIndex (if HasValidatorIndex) and/or
// have its own schema hash be a member of SchemaSet (if non-empty).
type ChecklistItem struct {
	Target           cobj.Hash
	HasValidatorIndex bool
	ValidatorIndex    int
	SchemaSet         []cobj.Hash
}

// Checklist accumulates the obligations produced while validating one
// document or entry body. The engine discharges it after validation
// returns, scheduling a fetch for each Target (spec.md §4.5
// "Checklist").
type Checklist struct {
	Items []ChecklistItem
}

// Push adds one item.
func (c *Checklist) Push(item ChecklistItem) { c.Items = append(c.Items, item) }

// Merge appends another checklist's items, used when a Multi validator's
// winning branch produced its own obligations.
func (c *Checklist) Merge(o Checklist) { c.Items = append(c.Items, o.Items...) }
