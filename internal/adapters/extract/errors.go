package extract

import "errors"

// Sentinel kinds for extraction errors. The HTTP boundary maps these onto
// user-facing responses.
var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrExtraction        = errors.New("document extraction failed")
)
