// Package textproc cleans raw resume and posting text before embedding.
package textproc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

var (
	reLowerUpper  = regexp.MustCompile(`([a-z])([A-Z])`)
	reLetterDigit = regexp.MustCompile(`([a-zA-Z])([0-9])`)
	reDigitLetter = regexp.MustCompile(`([0-9])([a-zA-Z])`)
	reInvalid     = regexp.MustCompile(`[^a-z0-9\s]`)
	reSpaces      = regexp.MustCompile(`\s+`)
)

// Normalizer turns extracted document text into the cleaned form the
// embedder was trained on. Safe for concurrent use.
type Normalizer struct {
	lemmas *golem.Lemmatizer
}

// New builds a Normalizer with the English lemma dictionary.
func New() (*Normalizer, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load lemmatizer: %w", err)
	}
	return &Normalizer{lemmas: lem}, nil
}

// RepairSpacing inserts a boundary space at lowercase-to-uppercase and
// letter/digit transitions. PDF extraction often drops the whitespace at
// exactly these boundaries ("SoftwareEngineer2Years").
func RepairSpacing(text string) string {
	text = reLowerUpper.ReplaceAllString(text, "$1 $2")
	text = reLetterDigit.ReplaceAllString(text, "$1 $2")
	text = reDigitLetter.ReplaceAllString(text, "$1 $2")
	return text
}

// Normalize applies the full cleanup chain: spacing repair, lowercasing,
// charset stripping, whitespace collapsing, tokenization, stopword removal
// and lemmatization. Output only ever contains [a-z0-9 ]. Empty input
// yields empty output, and normalizing already-normalized text is a no-op.
func (n *Normalizer) Normalize(text string) string {
	text = RepairSpacing(text)
	text = strings.ToLower(text)
	text = reInvalid.ReplaceAllString(text, "")
	text = strings.TrimSpace(reSpaces.ReplaceAllString(text, " "))
	if text == "" {
		return ""
	}

	tokens := strings.Split(text, " ")
	kept := tokens[:0]
	for _, tok := range tokens {
		if isStopword(tok) {
			continue
		}
		lemma := n.lemmas.Lemma(tok)
		// The lemma dictionary only maps alphabetic forms; anything it
		// returns for an alphanumeric token stays within the alphabet.
		lemma = reInvalid.ReplaceAllString(strings.ToLower(lemma), "")
		// Lemmatization can land on a stopword ("cans" -> "can"); filter
		// again so a second pass has nothing left to remove.
		if lemma != "" && !isStopword(lemma) {
			kept = append(kept, lemma)
		}
	}
	return strings.Join(kept, " ")
}
