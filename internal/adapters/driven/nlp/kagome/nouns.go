// Package kagome extracts Japanese nouns with the kagome morphological analyser.
package kagome

import (
	"fmt"
	"slices"
	"unicode"
	"unicode/utf8"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/custodia-labs/clusterlink/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.NounExtractor = (*Extractor)(nil)

// Noun sub-categories that never make a useful keyword.
var skippedNounKinds = []string{"非自立", "代名詞", "数", "接尾", "副詞可能"}

// Extractor returns the content nouns of a text.
type Extractor struct {
	tok *tokenizer.Tokenizer
}

// NewExtractor loads the IPA dictionary. This takes a moment and a few
// tens of megabytes, so callers create one extractor and share it.
func NewExtractor() (*Extractor, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("init tokenizer: %w", err)
	}
	return &Extractor{tok: t}, nil
}

// Nouns returns nouns in order of appearance, repeats included.
// Single-rune nouns and tokens without letters are dropped.
func (e *Extractor) Nouns(text string) []string {
	var nouns []string
	for _, token := range e.tok.Tokenize(text) {
		pos := token.POS()
		if len(pos) == 0 || pos[0] != "名詞" {
			continue
		}
		if len(pos) > 1 && slices.Contains(skippedNounKinds, pos[1]) {
			continue
		}
		if utf8.RuneCountInString(token.Surface) < 2 || !hasLetter(token.Surface) {
			continue
		}
		nouns = append(nouns, token.Surface)
	}
	return nouns
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
