package recommend

import "errors"

// Sentinel kinds for pipeline errors.
var (
	ErrMissingDependency = errors.New("missing pipeline dependency")
	ErrInvalidRequest    = errors.New("invalid recommendation request")
)
