// Package corpus defines the document types shared by the crawl, clean,
// and chunk stages. PageDocument field names are the contract with the
// downstream embedding and retrieval pipeline.
package corpus

import (
	"time"
	"unicode/utf8"
)

// Heading is one heading element captured in document order.
type Heading struct {
	Tag  string `json:"tag" yaml:"tag"`
	Text string `json:"text" yaml:"text"`
}

// PageDocument is the durable record produced for one successfully
// crawled page. It is immutable after creation.
type PageDocument struct {
	URL             string    `json:"url" yaml:"url"`
	Depth           int       `json:"depth" yaml:"depth"`
	Title           string    `json:"title" yaml:"title"`
	MetaDescription string    `json:"meta_description" yaml:"meta_description"`
	Headings        []Heading `json:"headings" yaml:"headings"`
	Paragraphs      []string  `json:"paragraphs" yaml:"paragraphs"`
	Lists           []string  `json:"lists" yaml:"lists"`
	Text            string    `json:"text" yaml:"text"`
	TextLength      int       `json:"text_length" yaml:"text_length"`
	CrawledAt       time.Time `json:"crawled_at" yaml:"crawled_at"`
}

// CleanedPage is the output of the clean stage: boilerplate stripped,
// whitespace collapsed, paragraphs merged.
type CleanedPage struct {
	URL             string `json:"url" yaml:"url"`
	Title           string `json:"title" yaml:"title"`
	MetaDescription string `json:"meta_description" yaml:"meta_description"`
	Text            string `json:"text" yaml:"text"`
}

// Chunk is one fixed-size piece of a cleaned page, ready for embedding.
type Chunk struct {
	ID         string `json:"id" yaml:"id"`
	Source     string `json:"source" yaml:"source"`
	Title      string `json:"title" yaml:"title"`
	ChunkIndex int    `json:"chunk_index" yaml:"chunk_index"`
	Text       string `json:"text" yaml:"text"`
}

// Summary aggregates the terminal statistics of one crawl run. Lengths
// measure the persisted text field in characters.
type Summary struct {
	Documents       int `json:"documents"`
	TotalTextLength int `json:"total_text_length"`
	AvgTextLength   int `json:"avg_text_length"`
	NonTrivialPages int `json:"non_trivial_pages"`
}

// Summarize computes the run statistics over the produced documents. A page
// counts as non-trivial when its text exceeds 100 characters.
func Summarize(docs []PageDocument) Summary {
	s := Summary{Documents: len(docs)}
	for _, d := range docs {
		n := utf8.RuneCountInString(d.Text)
		s.TotalTextLength += n
		if n > 100 {
			s.NonTrivialPages++
		}
	}
	if s.Documents > 0 {
		s.AvgTextLength = s.TotalTextLength / s.Documents
	}
	return s
}
