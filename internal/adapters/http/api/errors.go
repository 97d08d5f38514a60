package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrMissingFile  = errors.New("missing resume file")
	ErrPayloadLimit = errors.New("upload too large")
)
