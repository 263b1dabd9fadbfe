package document

import (
	"github.com/cognoscan/condensedb/cobj"
	"github.com/cognoscan/condensedb/codec"
	"github.com/cognoscan/condensedb/crypto"
	"github.com/cognoscan/condensedb/vault"
)

// Entry is an append-only fact attached to a Document by hash: the triple
// (doc, field, body) hashed together, plus whatever signatures have been
// appended.
type Entry struct {
	doc   cobj.Hash
	field string
	body  codec.Value

	state      *crypto.HashState
	signatures []cobj.Signature
}

// NewEntry hashes the concatenation of the canonical encodings of doc,
// field, and body.
func NewEntry(doc cobj.Hash, field string, body codec.Value) (*Entry, error) {
	st, err := crypto.NewHashState(cobj.Version1)
	if err != nil {
		return nil, err
	}
	st.Write(codec.Encode(codec.HashVal(doc)))
	st.Write(codec.Encode(codec.String(field)))
	st.Write(codec.Encode(body))

	return &Entry{
		doc:   doc,
		field: field,
		body:  body,
		state: st,
	}, nil
}

// Doc, Field, and Body expose the entry's identifying triple.
func (e *Entry) Doc() cobj.Hash      { return e.doc }
func (e *Entry) Field() string       { return e.field }
func (e *Entry) Body() codec.Value   { return e.body }
func (e *Entry) Hash() cobj.Hash     { return e.state.Sum() }
func (e *Entry) Signatures() []cobj.Signature {
	return append([]cobj.Signature(nil), e.signatures...)
}

// Sign appends a signature over the entry's current hash, failing with
// ErrTooManySignatures past the 127-signature cap (its count is written
// on the wire as a single byte).
func (e *Entry) Sign(v *vault.Vault, key vault.KeyHandle) error {
	if len(e.signatures) >= maxSignatures {
		return ErrTooManySignatures
	}
	h := e.Hash()
	sig, err := v.Sign(h, key)
	if err != nil {
		return err
	}
	e.signatures = append(e.signatures, sig)
	e.state.Write(sig.Bytes())
	return nil
}

// Encode serializes doc || field || body (each canonical-encoded), then a
// 1-byte signature count, then each signature encoding.
func (e *Entry) Encode() []byte {
	out := codec.Encode(codec.HashVal(e.doc))
	out = append(out, codec.Encode(codec.String(e.field))...)
	out = append(out, codec.Encode(e.body)...)
	out = append(out, byte(len(e.signatures)))
	for _, sig := range e.signatures {
		out = append(out, sig.Bytes()...)
	}
	return out
}

// DecodeEntry parses an Entry from its wire encoding, replaying
// signatures into a freshly seeded incremental hash state.
func DecodeEntry(data []byte) (*Entry, error) {
	docVal, n1, err := codec.Decode(data)
	if err != nil {
		return nil, err
	}
	if docVal.Kind != codec.KindHash {
		return nil, codec.ErrBadFormat
	}
	rest := data[n1:]

	fieldVal, n2, err := codec.Decode(rest)
	if err != nil {
		return nil, err
	}
	if fieldVal.Kind != codec.KindString {
		return nil, codec.ErrBadFormat
	}
	rest = rest[n2:]

	bodyVal, n3, err := codec.Decode(rest)
	if err != nil {
		return nil, err
	}
	rest = rest[n3:]

	st, err := crypto.NewHashState(cobj.Version1)
	if err != nil {
		return nil, err
	}
	st.Write(data[:n1+n2+n3])

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

	return &Entry{
		doc:        *docVal.Hash,
		field:      fieldVal.Str,
		body:       bodyVal,
		state:      st,
		signatures: sigs,
	}, nil
}
