package services

import (
	"strings"
	"unicode"
)

// ExtractKeywords splits a raw keyword field into distinct tokens.
// Accepted delimiters are the full-width comma (，), the ideographic
// comma (、), the ASCII comma and any whitespace, including the
// full-width space. Order of first appearance is kept.
func ExtractKeywords(raw string) []string {
	fields := strings.FieldsFunc(raw, isKeywordDelimiter)
	keywords := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		keywords = append(keywords, f)
	}
	return keywords
}

func isKeywordDelimiter(r rune) bool {
	switch r {
	case '，', '、', ',':
		return true
	}
	return unicode.IsSpace(r)
}
