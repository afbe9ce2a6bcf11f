package markup

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Pre-compiled regular expressions for elements whose text is never content.
var (
	scriptTag         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag       = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	svgTag            = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements     = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	brTags            = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
)

// strict removes every tag and keeps text nodes.
var strict = bluemonday.StrictPolicy()

// StripTags removes markup and decodes entities. Block boundaries become
// newlines so words from adjacent paragraphs do not run together.
func StripTags(content string) string {
	if content == "" {
		return ""
	}
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = svgTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	content = openBlockElements.ReplaceAllString(content, "\n")
	content = blockElements.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")

	// bluemonday escapes the text it keeps
	return html.UnescapeString(strict.Sanitize(content))
}

// CollapseWhitespace replaces runs of whitespace with a single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// PlainText strips markup, collapses whitespace and truncates to n runes.
// A non-positive n disables truncation.
func PlainText(content string, n int) string {
	text := CollapseWhitespace(StripTags(content))
	if n > 0 {
		text = Truncate(text, n)
	}
	return text
}

// AppendParagraph adds fragment to content as a new paragraph.
func AppendParagraph(content, fragment string) string {
	if content == "" {
		return "<p>" + fragment + "</p>"
	}
	return content + "\n<p>" + fragment + "</p>"
}
