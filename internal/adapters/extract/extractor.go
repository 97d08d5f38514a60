// Package extract pulls raw text out of uploaded resume documents.
//
// Extractors are registered per file extension so the recommendation
// pipeline stays format-agnostic; adding a format means adding one
// Extractor implementation.
package extract

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

// Extractor converts one document format into plain text.
type Extractor interface {
	// Extract reads the whole document and returns its text content.
	Extract(r io.Reader) (string, error)
	// Extensions lists the lowercased file extensions this extractor
	// handles, dot included (".pdf").
	Extensions() []string
}

// Registry dispatches to extractors by file extension.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry builds a registry with the given extractors.
func NewRegistry(extractors ...Extractor) *Registry {
	reg := &Registry{byExt: make(map[string]Extractor)}
	for _, e := range extractors {
		for _, ext := range e.Extensions() {
			reg.byExt[strings.ToLower(ext)] = e
		}
	}
	return reg
}

// DefaultRegistry covers the supported resume formats: PDF, DOCX and
// plain text.
func DefaultRegistry() *Registry {
	return NewRegistry(NewPDFExtractor(), NewDOCXExtractor(), NewPlainTextExtractor())
}

// Supported lists the registered extensions, sorted.
func (reg *Registry) Supported() []string {
	out := make([]string, 0, len(reg.byExt))
	for ext := range reg.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Extract picks the extractor for filename's extension and runs it.
// Unknown extensions yield ErrUnsupportedFormat; extractor failures are
// wrapped in ErrExtraction.
func (reg *Registry) Extract(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	e, ok := reg.byExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	text, err := e.Extract(r)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrExtraction, filename, err)
	}
	return strings.TrimSpace(text), nil
}
