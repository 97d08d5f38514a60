package extract

import (
	"fmt"
	"io"
)

// PlainTextExtractor passes .txt uploads through unchanged. Useful for
// development and tests where producing a real PDF is overkill.
type PlainTextExtractor struct{}

// NewPlainTextExtractor creates a plain text extractor.
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

// Extensions implements Extractor.
func (e *PlainTextExtractor) Extensions() []string { return []string{".txt"} }

// Extract implements Extractor.
func (e *PlainTextExtractor) Extract(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return string(data), nil
}
