package schema

import (
	"github.com/cognoscan/condensedb/codec"
	"github.com/cognoscan/condensedb/validator"
)

// Schema is a decoded schema document: a name/optional-doc pair plus the
// Required/Optional/Entries validators it declares, all interned into a
// single Pool private to this Schema.
type Schema struct {
	Pool *validator.Pool

	Name        string
	Description string

	Required map[string]int
	Optional map[string]int
	Entries  map[string]int

	MinFields int
	MaxFields int
	FieldType int // 0 = none
	UnknownOk bool
}

// recognizedTopFields is the closed set of fields Decode accepts;
// anything else fails with ErrUnknownField (spec.md §4.6 "Decoding
// refuses unknown top-level fields").
var recognizedTopFields = map[string]bool{
	"name": true, "description": true, "version": true,
	"req": true, "opt": true, "entries": true, "types": true,
	"min_fields": true, "max_fields": true, "field_type": true,
	"unknown_ok": true,
}

// Decode parses a schema document body (already decoded to a Value::Map)
// into a Schema with its own validator.Pool.
func Decode(body codec.Value) (*Schema, error) {
	if body.Kind != codec.KindMap {
		return nil, ErrNotAnObject
	}
	for _, e := range body.Map {
		if e.Key == "" {
			continue // the document's own schema-hash field, not ours
		}
		if !recognizedTopFields[e.Key] {
			return nil, ErrUnknownField
		}
	}

	pool := validator.NewPool()
	s := &Schema{
		Pool:      pool,
		Required:  map[string]int{},
		Optional:  map[string]int{},
		Entries:   map[string]int{},
		MaxFields: int(^uint(0) >> 1),
	}

	if v, ok := body.Field("name"); ok && v.Kind == codec.KindString {
		s.Name = v.Str
	}
	if v, ok := body.Field("description"); ok && v.Kind == codec.KindString {
		s.Description = v.Str
	}

	// `types` is registered before `req`/`opt`/`entries` so forward
	// references via Type(name) resolve regardless of declaration order.
	if v, ok := body.Field("types"); ok {
		if v.Kind != codec.KindMap {
			return nil, validator.ErrBadField
		}
		for _, e := range v.Map {
			idx, err := decodeValidator(pool, e.Val)
			if err != nil {
				return nil, err
			}
			pool.DefineType(e.Key, idx)
		}
	}

	if v, ok := body.Field("req"); ok {
		m, err := decodeFieldMap(pool, v)
		if err != nil {
			return nil, err
		}
		s.Required = m
	}
	if v, ok := body.Field("opt"); ok {
		m, err := decodeFieldMap(pool, v)
		if err != nil {
			return nil, err
		}
		s.Optional = m
	}
	if v, ok := body.Field("entries"); ok {
		m, err := decodeFieldMap(pool, v)
		if err != nil {
			return nil, err
		}
		s.Entries = m
	}
	if v, ok := body.Field("min_fields"); ok {
		n, ok := v.AsInt64()
		if !ok {
			return nil, validator.ErrBadField
		}
		s.MinFields = int(n)
	}
	if v, ok := body.Field("max_fields"); ok {
		n, ok := v.AsInt64()
		if !ok {
			return nil, validator.ErrBadField
		}
		s.MaxFields = int(n)
	}
	if v, ok := body.Field("field_type"); ok {
		idx, err := decodeValidator(pool, v)
		if err != nil {
			return nil, err
		}
		s.FieldType = idx
	}
	if v, ok := body.Field("unknown_ok"); ok && v.Kind == codec.KindBool {
		s.UnknownOk = v.Bool
	}

	for _, idx := range s.Required {
		pool.Finalize(idx)
	}
	for _, idx := range s.Optional {
		pool.Finalize(idx)
	}
	for _, idx := range s.Entries {
		pool.Finalize(idx)
	}

	return s, nil
}

// ValidateDoc walks body's fields, matching each against Required, then
// Optional, then FieldType/UnknownOk, in the strict lexicographic field
// order canonical encoding already guarantees. The leading "" schema-hash
// field is skipped (spec.md §4.6).
func (s *Schema) ValidateDoc(body codec.Value) (*validator.Checklist, error) {
	if body.Kind != codec.KindMap {
		return nil, ErrNotAnObject
	}

	list := &validator.Checklist{}
	seen := 0
	matchedRequired := map[string]bool{}

	for _, e := range body.Map {
		if e.Key == "" {
			continue
		}
		seen++
		if idx, ok := s.Required[e.Key]; ok {
			matchedRequired[e.Key] = true
			if !s.Pool.Validate(idx, e.Val, list) {
				return nil, ErrFailedCheck
			}
			continue
		}
		if idx, ok := s.Optional[e.Key]; ok {
			if !s.Pool.Validate(idx, e.Val, list) {
				return nil, ErrFailedCheck
			}
			continue
		}
		if s.FieldType != 0 {
			if !s.Pool.Validate(s.FieldType, e.Val, list) {
				return nil, ErrFailedCheck
			}
			continue
		}
		if !s.UnknownOk {
			return nil, ErrFailedCheck
		}
	}

	if len(matchedRequired) != len(s.Required) {
		return nil, ErrFailedCheck
	}
	if seen < s.MinFields || seen > s.MaxFields {
		return nil, ErrFailedCheck
	}
	return list, nil
}

// ValidateEntry matches a single entry body against the validator
// declared for field in `entries`. A field with no declared entry
// validator fails closed — entries are only accepted for fields the
// schema explicitly names.
func (s *Schema) ValidateEntry(field string, body codec.Value) (*validator.Checklist, error) {
	idx, ok := s.Entries[field]
	if !ok {
		return nil, ErrFailedCheck
	}
	list := &validator.Checklist{}
	if !s.Pool.Validate(idx, body, list) {
		return nil, ErrFailedCheck
	}
	return list, nil
}
