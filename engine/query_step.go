package engine

import (
	"github.com/cognoscan/condensedb/cobj"
	"github.com/cognoscan/condensedb/codec"
	"github.com/cognoscan/condensedb/validator"
)

// stepQuery drives one open query through spec.md §4.7's five-step
// cooperative pass. It reports whether it made progress (pushed a result
// or observed cancellation), so the control loop knows not to count this
// as an idle tick.
func (db *Db) stepQuery(oq *openQuery) bool {
	select {
	case <-oq.cancel:
		oq.finished = true
		return true
	default:
	}

	if len(oq.results) == cap(oq.results) {
		return false
	}

	sd, present := db.docs[oq.root.Root]
	if !present {
		oq.waiting = true
		return false
	}
	oq.waiting = false

	if !oq.rootSent {
		return db.pushRoot(oq, sd)
	}

	if oq.root.Entries && oq.entriesIdx < len(oq.entriesOrder) {
		return db.pushNextEntry(oq, sd)
	}

	select {
	case oq.results <- doneForever():
		oq.finished = true
		return true
	default:
		return false
	}
}

func (db *Db) pushRoot(oq *openQuery, sd *storedDoc) bool {
	resp, excluded := db.buildDocResponse(oq, sd)
	if excluded {
		select {
		case oq.results <- doneForever():
			oq.finished = true
			return true
		default:
			return false
		}
	}

	select {
	case oq.results <- resp:
		oq.rootSent = true
		oq.effort++
		if resp.Terminal() {
			oq.finished = true
		} else if oq.root.Entries {
			oq.entriesOrder = collectEntryHashes(sd)
		}
		return true
	default:
		return false
	}
}

func (db *Db) pushNextEntry(oq *openQuery, sd *storedDoc) bool {
	eh := oq.entriesOrder[oq.entriesIdx]
	rec, ok := sd.entries[eh]
	if !ok {
		oq.entriesIdx++
		return true
	}
	select {
	case oq.results <- entryResponse(rec.entry, oq.effort):
		oq.entriesIdx++
		oq.effort++
		return true
	default:
		return false
	}
}

// buildDocResponse decides what a root document looks like to this
// particular query: permission-denied or restriction-failed roots are
// excluded (the stream finishes as if the root never arrived, since
// neither case has a dedicated QueryResponse variant in spec.md §6); a
// document whose schema vanished out from under it reports BadDoc/
// UnknownSchema instead of silently succeeding.
func (db *Db) buildDocResponse(oq *openQuery, sd *storedDoc) (resp QueryResponse, excluded bool) {
	if !sd.perm.Allows(oq.perm) {
		return QueryResponse{}, true
	}

	bodyVal, _, err := codec.Decode(sd.doc.Body())
	if err != nil {
		return badDocResponse(oq.root.Root), false
	}

	if sd.schemaHash != nil {
		if _, ok := db.schemas[*sd.schemaHash]; !ok {
			return unknownSchemaResponse(oq.root.Root, *sd.schemaHash), false
		}
	}

	if oq.root.RestrictPool != nil {
		discard := &validator.Checklist{}
		if !oq.root.RestrictPool.Validate(oq.root.RestrictIdx, bodyVal, discard) {
			return QueryResponse{}, true
		}
	}

	return docResponse(sd.doc, oq.effort), false
}

func collectEntryHashes(sd *storedDoc) []cobj.Hash {
	out := make([]cobj.Hash, 0, len(sd.entries))
	for h := range sd.entries {
		out = append(out, h)
	}
	return out
}
