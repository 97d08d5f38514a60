package embedding

import "errors"

// Sentinel kinds for embedding errors.
var (
	ErrProviderConfig   = errors.New("invalid embedder configuration")
	ErrProviderResponse = errors.New("malformed embedder response")
)
