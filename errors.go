package envfmt

import "errors"

var (
	// ErrMalformedKey is returned when a parameter name does not start with
	// the path it was listed under.
	ErrMalformedKey = errors.New("malformed key")

	// ErrEmptyIdentifier is returned when nothing is left of a parameter name
	// once the path is removed.
	ErrEmptyIdentifier = errors.New("empty identifier")

	// ErrDuplicateIdentifier is returned when two parameter names normalize to
	// the same identifier.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")

	// ErrSourceUnavailable is matched by every error returned from
	// ParamStore.List.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrUnsupportedFormat is returned by ParseFormat for unknown names.
	ErrUnsupportedFormat = errors.New("unsupported format")
)
