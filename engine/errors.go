// Package engine is the single-goroutine storage core: one control loop
// owns every document, entry, schema reference count, and open query, and
// is reached only through channels (spec.md §4.7, §5). Grounded on the
// teacher's store package for the ambient shape (one logger, one owning
// goroutine, bounded non-blocking sends) but the dispatch itself has no
// teacher equivalent — the teacher's Store is driven by direct method
// calls under a mutex, not a channel-selecting control thread.
package engine

import (
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("condensedb/engine")

// ChangeResult is the closed outcome set for every change request, mirrored
// on the teacher's iplddecoders.Kind enum-with-String() pattern.
type ChangeResult int

const (
	Ok ChangeResult = iota
	Failed
	NoSuchDoc
	NoSuchEntry
	SchemaInUse
	CertInUse
	FailedSchemaCheck
	SchemaNotFound
	NotValidSchema
	InvalidQuery
)

func (r ChangeResult) String() string {
	switch r {
	case Ok:
		return "Ok"
	case Failed:
		return "Failed"
	case NoSuchDoc:
		return "NoSuchDoc"
	case NoSuchEntry:
		return "NoSuchEntry"
	case SchemaInUse:
		return "SchemaInUse"
	case CertInUse:
		return "CertInUse"
	case FailedSchemaCheck:
		return "FailedSchemaCheck"
	case SchemaNotFound:
		return "SchemaNotFound"
	case NotValidSchema:
		return "NotValidSchema"
	case InvalidQuery:
		return "InvalidQuery"
	default:
		return "Unknown"
	}
}

// ErrAlreadyClosed is returned by Close when the engine has already
// stopped.
type errorType string

func (e errorType) Error() string { return string(e) }

const ErrAlreadyClosed = errorType("engine: already closed")
