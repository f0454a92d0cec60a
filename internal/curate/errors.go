package curate

import "errors"

var (
	// ErrLastRecord means a deletion would empty the catalog, which
	// single-record deletion refuses to do.
	ErrLastRecord = errors.New("cannot delete the last record")

	// ErrInvalidRange means a range reference is non-numeric, longer
	// than six digits, or ends at or before its start.
	ErrInvalidRange = errors.New("invalid range")

	// ErrStartKeyNotFound means no catalog key contains the start
	// reference.
	ErrStartKeyNotFound = errors.New("start key not found")

	// ErrEndKeyNotFound means no catalog key contains the end
	// reference.
	ErrEndKeyNotFound = errors.New("end key not found")

	// ErrAmbiguousRef means a reference matches several catalog keys.
	ErrAmbiguousRef = errors.New("reference matches multiple records")
)
