// Package permission implements the six-bit sharing-scope record attached
// to documents and entries as they enter the engine.
package permission

// Permission records which sharing scopes a document, entry, or query is
// allowed to cross. Every field defaults to false: a Permission with every
// bit clear permits nothing beyond the local process.
type Permission struct {
	Advertise    bool // advertise the document's existence; ignored for entries/queries
	MachineLocal bool // shareable with other processes on the same machine
	Direct       bool // shareable with a directly-connected peer
	LocalNet     bool // shareable with a peer on the local network
	Global       bool // shareable with a peer anywhere non-local
	Anonymous    bool // only ever shared over anonymizing routes
}

// bit positions used by Encode/Decode, in the order the fields are
// declared.
const (
	bitAdvertise = 1 << iota
	bitMachineLocal
	bitDirect
	bitLocalNet
	bitGlobal
	bitAnonymous
)

// Encode packs the six flags into one byte.
func (p Permission) Encode() byte {
	var b byte
	if p.Advertise {
		b |= bitAdvertise
	}
	if p.MachineLocal {
		b |= bitMachineLocal
	}
	if p.Direct {
		b |= bitDirect
	}
	if p.LocalNet {
		b |= bitLocalNet
	}
	if p.Global {
		b |= bitGlobal
	}
	if p.Anonymous {
		b |= bitAnonymous
	}
	return b
}

// Decode unpacks a byte produced by Encode. Unknown high bits are ignored
// rather than rejected, since this is a local in-process record, not a
// wire format with a canonical-form requirement.
func Decode(b byte) Permission {
	return Permission{
		Advertise:    b&bitAdvertise != 0,
		MachineLocal: b&bitMachineLocal != 0,
		Direct:       b&bitDirect != 0,
		LocalNet:     b&bitLocalNet != 0,
		Global:       b&bitGlobal != 0,
		Anonymous:    b&bitAnonymous != 0,
	}
}

// Allows reports whether a holder of p may release data to a requester
// asking under other. The match is default-deny: at least one scope bit
// must be set in both records, meaning the holder permits the scope and
// the requester is asking under that same scope.
func (p Permission) Allows(other Permission) bool {
	return p.Encode()&other.Encode() != 0
}
