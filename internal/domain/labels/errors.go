package labels

import "errors"

// Sentinel kinds for label encoding errors.
var (
	ErrNoClasses       = errors.New("no category classes")
	ErrUnknownCategory = errors.New("unknown category")
)
