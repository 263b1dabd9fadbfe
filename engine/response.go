package engine

import (
	"github.com/cognoscan/condensedb/cobj"
	"github.com/cognoscan/condensedb/document"
)

// ResponseKind tags QueryResponse the way QueryResponse is a closed enum
// in spec.md §6; DoneForever and Invalid are terminal.
type ResponseKind int

const (
	RespDoc ResponseKind = iota
	RespEntry
	RespDoneForever
	RespInvalid
	RespBadDoc
	RespUnknownSchema
)

func (k ResponseKind) String() string {
	switch k {
	case RespDoc:
		return "Doc"
	case RespEntry:
		return "Entry"
	case RespDoneForever:
		return "DoneForever"
	case RespInvalid:
		return "Invalid"
	case RespBadDoc:
		return "BadDoc"
	case RespUnknownSchema:
		return "UnknownSchema"
	default:
		return "Unknown"
	}
}

// QueryResponse is one item pushed to a query's result channel.
type QueryResponse struct {
	Kind ResponseKind

	Doc    *document.Document // RespDoc
	Entry  *document.Entry    // RespEntry
	Effort int                // RespDoc/RespEntry: how many items this root's open query pushed before this one

	Hash       cobj.Hash // RespBadDoc: the malformed document's hash
	SchemaHash cobj.Hash // RespUnknownSchema: doc hash
	RefHash    cobj.Hash // RespUnknownSchema: the missing schema hash
}

// Terminal reports whether this response ends the stream.
func (r QueryResponse) Terminal() bool {
	return r.Kind == RespDoneForever || r.Kind == RespInvalid
}

func docResponse(d *document.Document, effort int) QueryResponse {
	return QueryResponse{Kind: RespDoc, Doc: d, Effort: effort}
}

func entryResponse(e *document.Entry, effort int) QueryResponse {
	return QueryResponse{Kind: RespEntry, Entry: e, Effort: effort}
}

func doneForever() QueryResponse { return QueryResponse{Kind: RespDoneForever} }

func invalidResponse() QueryResponse { return QueryResponse{Kind: RespInvalid} }

func badDocResponse(h cobj.Hash) QueryResponse { return QueryResponse{Kind: RespBadDoc, Hash: h} }

func unknownSchemaResponse(docHash, schemaHash cobj.Hash) QueryResponse {
	return QueryResponse{Kind: RespUnknownSchema, SchemaHash: docHash, RefHash: schemaHash}
}
