// Package document implements condensedb's two signable object shapes:
// Document (a schema-bound map body) and Entry (an append-only fact
// attached to a Document by hash). Both hash incrementally as signatures
// are appended, grounded on the teacher's incremental accumulator style
// in accum/accum.go (hashing state threaded through as bytes arrive
// rather than buffered and hashed once at the end).
package document

import (
	"github.com/cognoscan/condensedb/cobj"
	"github.com/cognoscan/condensedb/codec"
	"github.com/cognoscan/condensedb/crypto"
	"github.com/cognoscan/condensedb/vault"
)

// Document is a schema-bound Value::Map body plus whatever signatures
// have been appended to it so far.
type Document struct {
	schemaHash *cobj.Hash
	body       []byte // canonical encoding of the Value::Map, body only
	state      *crypto.HashState
	signatures []cobj.Signature
}

// New builds a Document from value, which must be a Value::Map. The
// canonical body bytes are produced once; an incremental hash state is
// seeded from them immediately.
func New(value codec.Value) (*Document, error) {
	if value.Kind != codec.KindMap {
		return nil, ErrNotAMap
	}
	var schemaHash *cobj.Hash
	if sv, ok := value.Field(""); ok {
		if sv.Kind != codec.KindHash {
			return nil, ErrBadSchemaField
		}
		h := *sv.Hash
		schemaHash = &h
	}

	body := codec.Encode(value)
	st, err := crypto.NewHashState(cobj.Version1)
	if err != nil {
		return nil, err
	}
	st.Write(body)

	return &Document{
		schemaHash: schemaHash,
		body:       body,
		state:      st,
	}, nil
}

// SchemaHash reports the document's declared schema, if any.
func (d *Document) SchemaHash() (cobj.Hash, bool) {
	if d.schemaHash == nil {
		return cobj.Hash{}, false
	}
	return *d.schemaHash, true
}

// Body returns the canonical body bytes (signatures excluded).
func (d *Document) Body() []byte { return append([]byte(nil), d.body...) }

// Signatures returns the signatures appended so far, in append order.
func (d *Document) Signatures() []cobj.Signature {
	return append([]cobj.Signature(nil), d.signatures...)
}

// Hash returns the document's current hash: the body bytes followed by
// every signature appended so far, hashed incrementally. Calling Hash
// before and after Sign legitimately yields different values — the
// document only becomes immutable once the caller stops signing it.
func (d *Document) Hash() cobj.Hash { return d.state.Sum() }

// Sign appends a new signature over the document's current hash and
// feeds the signature's own bytes into the running hash state, so the
// next Hash() call reflects this signature too.
func (d *Document) Sign(v *vault.Vault, key vault.KeyHandle) error {
	h := d.Hash()
	sig, err := v.Sign(h, key)
	if err != nil {
		return err
	}
	d.signatures = append(d.signatures, sig)
	d.state.Write(sig.Bytes())
	return nil
}

// Encode serializes the document as body || signature-count || signatures,
// matching Entry's wire shape (spec.md §4.4).
func (d *Document) Encode() []byte {
	out := append([]byte(nil), d.body...)
	out = append(out, byte(len(d.signatures)))
	for _, sig := range d.signatures {
		out = append(out, sig.Bytes()...)
	}
	return out
}

// Decode parses a Document from its wire encoding, recomputing the
// incremental hash state as it replays the signatures.
func Decode(data []byte) (*Document, error) {
	val, bodyLen, err := codec.Decode(data)
	if err != nil {
		return nil, err
	}
	if val.Kind != codec.KindMap {
		return nil, ErrNotAMap
	}
	var schemaHash *cobj.Hash
	if sv, ok := val.Field(""); ok {
		if sv.Kind != codec.KindHash {
			return nil, ErrBadSchemaField
		}
		h := *sv.Hash
		schemaHash = &h
	}

	body := append([]byte(nil), data[:bodyLen]...)
	st, err := crypto.NewHashState(cobj.Version1)
	if err != nil {
		return nil, err
	}
	st.Write(body)

	rest := data[bodyLen:]
	if len(rest) < 1 {
		return nil, codec.ErrBadLength
	}
	count := int(rest[0])
	rest = rest[1:]
	sigs := make([]cobj.Signature, 0, count)
	for i := 0; i < count; i++ {
		sig, n, err := cobj.DecodeSignature(rest)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
		st.Write(rest[:n])
		rest = rest[n:]
	}

	return &Document{
		schemaHash: schemaHash,
		body:       body,
		state:      st,
		signatures: sigs,
	}, nil
}
