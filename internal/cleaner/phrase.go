package cleaner

import "strings"

// DefaultJunkPhrases is the boilerplate stripped when no site-specific
// phrase list is configured. Phrases are matched as plain substrings, so
// entries should be distinctive enough not to appear in real content.
var DefaultJunkPhrases = []string{
	"All Rights Reserved",
	"All rights reserved",
	"Cookie Policy",
	"Privacy Policy",
	"Terms of Service",
	"Skip to main content",
	"Subscribe to our newsletter",
	"©",
}

// PhraseCleaner removes every occurrence of the configured phrases.
type PhraseCleaner struct {
	phrases []string
}

// NewPhrase creates a cleaner that strips the given phrases.
func NewPhrase(phrases ...string) *PhraseCleaner {
	return &PhraseCleaner{
		phrases: phrases,
	}
}

// Clean removes all configured phrases from the text.
func (c *PhraseCleaner) Clean(text string) (string, error) {
	for _, phrase := range c.phrases {
		text = strings.ReplaceAll(text, phrase, "")
	}
	return text, nil
}

// Name returns the cleaner type for logging/debugging.
func (c *PhraseCleaner) Name() string {
	return "phrase"
}
