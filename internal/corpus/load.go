package corpus

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadDocuments reads a crawl artifact (JSON array of PageDocuments).
func LoadDocuments(path string) ([]PageDocument, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- CLI tool reads a user-specified input file
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	var docs []PageDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", path, err)
	}
	return docs, nil
}

// LoadCleanedPages reads a clean-stage artifact (JSON array of CleanedPages).
func LoadCleanedPages(path string) ([]CleanedPage, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- CLI tool reads a user-specified input file
	if err != nil {
		return nil, fmt.Errorf("read cleaned pages: %w", err)
	}
	var pages []CleanedPage
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("parse cleaned pages %s: %w", path, err)
	}
	return pages, nil
}
