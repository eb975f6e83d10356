package fetcher

import (
	"bytes"
	"context"

	"github.com/gocolly/colly/v2"
)

// StaticFetcher retrieves pages over plain HTTP using colly. It serves
// server-rendered sites; pages assembled by JavaScript need ChromeFetcher.
type StaticFetcher struct {
	config Config
}

// NewStaticFetcher creates a static fetcher.
func NewStaticFetcher(cfg Config) *StaticFetcher {
	return &StaticFetcher{config: cfg.withDefaults()}
}

// Fetch retrieves and parses a page over plain HTTP.
func (f *StaticFetcher) Fetch(ctx context.Context, targetURL string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(targetURL, err)
	}

	// A fresh collector per request keeps visits independent.
	opts := []colly.CollectorOption{
		colly.UserAgent(f.config.UserAgent),
		colly.IgnoreRobotsTxt(),
		colly.ParseHTTPErrorResponse(),
	}
	if f.config.MaxBodySize > 0 {
		opts = append(opts, colly.MaxBodySize(f.config.MaxBodySize))
	}
	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(f.config.NavTimeout)

	var (
		status   int
		body     []byte
		fetchErr error
	)

	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	if err := c.Visit(targetURL); err != nil && fetchErr == nil {
		fetchErr = err
	}

	if fetchErr != nil {
		return nil, classify(targetURL, fetchErr)
	}
	if status < 200 || status >= 400 {
		return nil, &FetchError{URL: targetURL, Reason: ReasonBadStatus, Status: status}
	}

	page, err := NewDocumentPage(targetURL, status, bytes.NewReader(body))
	if err != nil {
		return nil, classify(targetURL, err)
	}
	return page, nil
}

// Close releases resources.
func (f *StaticFetcher) Close() error {
	return nil
}

// Type returns the fetcher type.
func (f *StaticFetcher) Type() string {
	return "static"
}
