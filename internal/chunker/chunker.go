// Package chunker splits cleaned page text into fixed-size, word-aware
// chunks for the downstream embedder.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sitecorpus/sitecorpus/internal/corpus"
)

// DefaultChunkSize is the chunk width in characters, sized for roughly
// 120-150 tokens per chunk.
const DefaultChunkSize = 800

// Split breaks text into chunks of at most size characters. Chunks break on
// word boundaries and whitespace runs collapse to single spaces; a word
// longer than size is cut at size. Sizes are measured in runes, not bytes.
func Split(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, len(text)/size+1)

	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, word := range words {
		wordLen := utf8.RuneCountInString(word)

		if wordLen > size {
			flush()
			runes := []rune(word)
			for len(runes) > size {
				chunks = append(chunks, string(runes[:size]))
				runes = runes[size:]
			}
			// The tail stays in the accumulator so following words
			// can pack after it.
			current.WriteString(string(runes))
			currentLen = len(runes)
			continue
		}

		switch {
		case currentLen == 0:
			current.WriteString(word)
			currentLen = wordLen
		case currentLen+1+wordLen <= size:
			current.WriteString(" ")
			current.WriteString(word)
			currentLen += 1 + wordLen
		default:
			flush()
			current.WriteString(word)
			currentLen = wordLen
		}
	}

	flush()

	return chunks
}

// ChunkPage splits one cleaned page into chunk records. Chunk ids are
// stable across runs: "<url>#chunk-<index>".
func ChunkPage(page corpus.CleanedPage, size int) []corpus.Chunk {
	parts := Split(page.Text, size)

	chunks := make([]corpus.Chunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, corpus.Chunk{
			ID:         fmt.Sprintf("%s#chunk-%d", page.URL, i),
			Source:     page.URL,
			Title:      page.Title,
			ChunkIndex: i,
			Text:       part,
		})
	}

	return chunks
}

// ChunkAll chunks every page in order. Pages with no text contribute no
// chunks.
func ChunkAll(pages []corpus.CleanedPage, size int) []corpus.Chunk {
	var chunks []corpus.Chunk
	for _, page := range pages {
		chunks = append(chunks, ChunkPage(page, size)...)
	}
	return chunks
}
