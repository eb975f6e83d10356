// Package cleaner strips boilerplate from crawled documents and merges
// their paragraphs into retrieval-ready text.
package cleaner

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sitecorpus/sitecorpus/internal/corpus"
)

// Cleaner transforms extracted page text into a cleaner form.
type Cleaner interface {
	// Clean transforms the input text.
	Clean(text string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}

// minMergeRunes is the cutoff below which a paragraph is treated as a
// navigation scrap and excluded from the merged text.
const minMergeRunes = 30

// Clean produces the cleaned record for one crawled page. When the page
// carries substantial paragraphs they are merged and preferred over the
// flattened text field; the cleaner runs on whichever source wins.
func Clean(doc corpus.PageDocument, c Cleaner) (corpus.CleanedPage, error) {
	text := doc.Text
	if merged := mergeParagraphs(doc.Paragraphs); merged != "" {
		text = merged
	}

	cleaned, err := c.Clean(text)
	if err != nil {
		return corpus.CleanedPage{}, fmt.Errorf("cleaner %s: %w", c.Name(), err)
	}

	return corpus.CleanedPage{
		URL:             doc.URL,
		Title:           doc.Title,
		MetaDescription: doc.MetaDescription,
		Text:            cleaned,
	}, nil
}

// CleanAll runs Clean over every document, preserving order.
func CleanAll(docs []corpus.PageDocument, c Cleaner) ([]corpus.CleanedPage, error) {
	pages := make([]corpus.CleanedPage, 0, len(docs))
	for _, doc := range docs {
		page, err := Clean(doc, c)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func mergeParagraphs(paragraphs []string) string {
	kept := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) > minMergeRunes {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
