package codec

// errorType mirrors the teacher's store/types sentinel-error pattern
// (a string type implementing error), so these can be compared with ==
// and wrapped with fmt.Errorf("...: %w", err).
type errorType string

func (e errorType) Error() string { return string(e) }

const (
	// ErrBadFormat is returned for any non-shortest, malformed, or
	// structurally invalid encoding (e.g. a length that fits a u8 marker
	// but is written with the u16 marker, or map keys out of order).
	ErrBadFormat = errorType("codec: bad format")

	// ErrBadLength is returned when the input is truncated relative to
	// what a marker declares.
	ErrBadLength = errorType("codec: input truncated")

	// ErrUnsupportedVersion names an extension version byte this codec does
	// not recognize. Decode does not return it: an unknown version inside a
	// hash, identity or lockbox extension fails with the wrapped
	// cobj.ErrUnsupportedVersion instead.
	ErrUnsupportedVersion = errorType("codec: unsupported version")

	// ErrUnknownExtType is returned for an extension tag outside the
	// closed set {-1, 1, 2, 3}.
	ErrUnknownExtType = errorType("codec: unknown extension type")
)
