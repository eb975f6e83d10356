// Package extractor turns rendered pages into structured documents: title,
// meta description, headings, paragraphs, list items, and the links that
// drive crawl expansion.
package extractor

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sitecorpus/sitecorpus/internal/corpus"
	"github.com/sitecorpus/sitecorpus/internal/fetcher"
)

// Candidate caps bound the work done on pathological pages; length
// thresholds drop fragments too short to carry meaning. Lengths are runes.
const (
	maxHeadingCandidates   = 30 // per heading level
	maxParagraphCandidates = 200
	maxListCandidates      = 100
	maxBlockCandidates     = 50
	maxLinkCandidates      = 300

	minHeadingRunes   = 2    // keep headings longer than this
	minParagraphRunes = 20   // keep paragraphs longer than this
	minListItemRunes  = 10   // keep list items longer than this
	minBlockRunes     = 100  // keep content blocks longer than this
	maxBlockRunes     = 5000 // and shorter than this
)

// Document-level caps applied when content becomes a corpus document.
const (
	maxParagraphs = 100
	maxListItems  = 50
	maxTextRunes  = 10000
)

// headingLevels are extracted in order, so all h1 texts precede all h2 texts
// in the text blob regardless of document position.
var headingLevels = []string{"h1", "h2", "h3", "h4"}

// blockSelector matches containers that hold substantial copy on sites that
// never wrap it in paragraph tags.
const blockSelector = "div.content, div.main, article, section"

// Content is the uncapped extraction result for one page.
type Content struct {
	Title           string
	MetaDescription string
	Headings        []corpus.Heading
	Paragraphs      []string
	Lists           []string
	Links           []string
	Text            string
}

// Extract reads the content fields from a rendered page. Candidate caps and
// length thresholds apply here; document-level caps apply in Document.
func Extract(page fetcher.Page) Content {
	var c Content

	c.Title = page.Title()

	if metas := page.QueryAll("meta[name='description']"); len(metas) > 0 {
		if v, ok := metas[0].Attribute("content"); ok {
			c.MetaDescription = v
		}
	}

	for _, tag := range headingLevels {
		for _, el := range capped(page.QueryAll(tag), maxHeadingCandidates) {
			txt := el.Text()
			if utf8.RuneCountInString(txt) > minHeadingRunes {
				c.Headings = append(c.Headings, corpus.Heading{Tag: tag, Text: txt})
			}
		}
	}

	seen := make(map[string]bool)
	for _, el := range capped(page.QueryAll("p"), maxParagraphCandidates) {
		txt := el.Text()
		if utf8.RuneCountInString(txt) > minParagraphRunes {
			c.Paragraphs = append(c.Paragraphs, txt)
			seen[txt] = true
		}
	}

	for _, el := range capped(page.QueryAll("li"), maxListCandidates) {
		txt := el.Text()
		if utf8.RuneCountInString(txt) > minListItemRunes {
			c.Lists = append(c.Lists, txt)
		}
	}

	// Content containers catch copy that never made it into a paragraph
	// tag. Blocks already captured verbatim as paragraphs are skipped.
	for _, el := range capped(page.QueryAll(blockSelector), maxBlockCandidates) {
		txt := el.Text()
		n := utf8.RuneCountInString(txt)
		if n > minBlockRunes && n < maxBlockRunes && !seen[txt] {
			c.Paragraphs = append(c.Paragraphs, txt)
			seen[txt] = true
		}
	}

	for _, el := range capped(page.QueryAll("a[href]"), maxLinkCandidates) {
		if href, ok := el.Attribute("href"); ok && href != "" {
			c.Links = append(c.Links, href)
		}
	}

	parts := make([]string, 0, 2+len(c.Headings)+len(c.Paragraphs)+len(c.Lists))
	if c.Title != "" {
		parts = append(parts, c.Title)
	}
	if c.MetaDescription != "" {
		parts = append(parts, c.MetaDescription)
	}
	for _, h := range c.Headings {
		parts = append(parts, h.Text)
	}
	parts = append(parts, c.Paragraphs...)
	parts = append(parts, c.Lists...)
	c.Text = strings.Join(parts, "\n\n")

	return c
}

// Document converts extracted content into a corpus document, applying the
// page-level caps. TextLength records the uncapped text size.
func (c Content) Document(url string, depth int, crawledAt time.Time) corpus.PageDocument {
	doc := corpus.PageDocument{
		URL:             url,
		Depth:           depth,
		Title:           c.Title,
		MetaDescription: c.MetaDescription,
		Headings:        c.Headings,
		Paragraphs:      c.Paragraphs,
		Lists:           c.Lists,
		Text:            c.Text,
		TextLength:      utf8.RuneCountInString(c.Text),
		CrawledAt:       crawledAt,
	}
	if len(doc.Paragraphs) > maxParagraphs {
		doc.Paragraphs = doc.Paragraphs[:maxParagraphs]
	}
	if len(doc.Lists) > maxListItems {
		doc.Lists = doc.Lists[:maxListItems]
	}
	doc.Text = truncateRunes(doc.Text, maxTextRunes)
	return doc
}

// capped bounds a candidate list without copying.
func capped(els []fetcher.Element, n int) []fetcher.Element {
	if len(els) > n {
		return els[:n]
	}
	return els
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
