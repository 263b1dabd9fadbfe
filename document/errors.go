package document

type errorType string

func (e errorType) Error() string { return string(e) }

const (
	// ErrNotAMap is returned by New when the supplied Value isn't a
	// Value::Map, the only body shape a Document can carry.
	ErrNotAMap = errorType("document: body must be a map")

	// ErrBadSchemaField is returned when the body's "" field exists but
	// is not a Hash.
	ErrBadSchemaField = errorType("document: \"\" field must be a Hash")

	// ErrTooManySignatures is returned when appending a signature would
	// push an Entry past its 127-signature cap.
	ErrTooManySignatures = errorType("document: too many signatures")
)

// maxSignatures is the hard cap on signatures an Entry may carry; its
// count is serialized as a single byte.
const maxSignatures = 127
