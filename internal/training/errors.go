package training

import "errors"

// Sentinel kinds for training errors.
var (
	ErrInsufficientData = errors.New("not enough catalog data to train")
	ErrArtifactsMissing = errors.New("trained model artifacts not found")
)
