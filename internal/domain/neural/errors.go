package neural

import "errors"

// Sentinel kinds for model errors.
var (
	ErrInvalidArchitecture = errors.New("invalid network architecture")
	ErrDimensionMismatch   = errors.New("embedding dimension mismatch")
	ErrLoadModel           = errors.New("load model failed")
)
