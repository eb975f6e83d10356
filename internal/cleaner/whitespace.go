package cleaner

import (
	"regexp"
	"strings"
)

// blankRuns matches a run of blank lines, however much whitespace they hold.
var blankRuns = regexp.MustCompile(`\n\s*\n+`)

// WhitespaceCleaner collapses blank-line runs into a single paragraph break
// and trims the surrounding whitespace.
type WhitespaceCleaner struct{}

// NewWhitespace creates a whitespace-normalizing cleaner.
func NewWhitespace() *WhitespaceCleaner {
	return &WhitespaceCleaner{}
}

// Clean normalizes the text's whitespace.
func (c *WhitespaceCleaner) Clean(text string) (string, error) {
	return strings.TrimSpace(blankRuns.ReplaceAllString(text, "\n\n")), nil
}

// Name returns the cleaner type for logging/debugging.
func (c *WhitespaceCleaner) Name() string {
	return "whitespace"
}
