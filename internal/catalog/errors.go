package catalog

import "errors"

var (
	// ErrNoCatalog means the folder holds no catalog JSON file.
	ErrNoCatalog = errors.New("no catalog file found")

	// ErrAmbiguousCatalog means several JSON files qualify as the
	// catalog and the caller must say which one.
	ErrAmbiguousCatalog = errors.New("multiple catalog files found")

	// ErrIndexOutOfRange means an entry index is outside the catalog.
	ErrIndexOutOfRange = errors.New("record index out of range")

	// ErrKeyNotFound means no record exists for the clip filename.
	ErrKeyNotFound = errors.New("record not found")

	// ErrCatalogModified means the on-disk file changed since it was
	// loaded, so flushing would overwrite someone else's edits.
	ErrCatalogModified = errors.New("catalog changed on disk since load")
)
