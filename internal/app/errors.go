package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotStarted  = errors.New("service not started")
	ErrEmptyResume = errors.New("resume contains no usable text")
	ErrBadProvider = errors.New("unknown embedding provider")
)
