package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrOpenCatalog = errors.New("cannot open catalog file")
	ErrBadCatalog  = errors.New("malformed catalog")
	ErrNotFound    = errors.New("job not found")
)
