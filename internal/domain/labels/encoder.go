// Package labels maps category names to stable integer indices.
package labels

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Encoder is a bidirectional category/index mapping. Index assignment is
// fixed at construction time and preserved by Save/Load, so indices stay
// stable across process restarts.
type Encoder struct {
	classes []string
	index   map[string]int
}

// NewFromCategories builds an encoder from observed catalog categories.
// Duplicates are collapsed and classes are sorted so the same catalog
// always yields the same assignment.
func NewFromCategories(categories []string) (*Encoder, error) {
	seen := make(map[string]struct{}, len(categories))
	classes := make([]string, 0, len(categories))
	for _, c := range categories {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		classes = append(classes, c)
	}
	if len(classes) == 0 {
		return nil, ErrNoClasses
	}
	sort.Strings(classes)

	return newFromClasses(classes), nil
}

func newFromClasses(classes []string) *Encoder {
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	return &Encoder{classes: classes, index: index}
}

// Encode returns the index for a category.
func (e *Encoder) Encode(category string) (int, error) {
	i, ok := e.index[category]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return i, nil
}

// Decode returns the category for an index.
func (e *Encoder) Decode(index int) (string, error) {
	if index < 0 || index >= len(e.classes) {
		return "", fmt.Errorf("%w: index %d", ErrUnknownCategory, index)
	}
	return e.classes[index], nil
}

// Classes returns the ordered label set. The returned slice is a copy.
func (e *Encoder) Classes() []string {
	out := make([]string, len(e.classes))
	copy(out, e.classes)
	return out
}

// Len returns the number of classes.
func (e *Encoder) Len() int { return len(e.classes) }

type encoderState struct {
	Classes []string `json:"classes"`
}

// Save persists the mapping as JSON.
func (e *Encoder) Save(path string) error {
	data, err := json.MarshalIndent(encoderState{Classes: e.classes}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode label state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write label state: %w", err)
	}
	return nil
}

// Load restores a persisted mapping. The stored class order wins over any
// recomputation, which is what keeps indices stable across restarts.
func Load(path string) (*Encoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read label state: %w", err)
	}
	var st encoderState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode label state: %w", err)
	}
	if len(st.Classes) == 0 {
		return nil, ErrNoClasses
	}
	return newFromClasses(st.Classes), nil
}
