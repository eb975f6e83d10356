package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// AutoFetcher tries a static fetch first and falls back to the browser when
// the page looks like a client-rendered shell.
type AutoFetcher struct {
	static *StaticFetcher
	chrome *ChromeFetcher
}

// NewAutoFetcher creates a fetcher that auto-detects JS requirements.
func NewAutoFetcher(cfg Config) (*AutoFetcher, error) {
	chrome, err := NewChromeFetcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chrome fetcher: %w", err)
	}
	return &AutoFetcher{
		static: NewStaticFetcher(cfg),
		chrome: chrome,
	}, nil
}

// Fetch tries static first, then falls back to the browser if needed. A bad
// HTTP status is returned as-is since the browser would see the same status.
func (f *AutoFetcher) Fetch(ctx context.Context, url string) (Page, error) {
	page, err := f.static.Fetch(ctx, url)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) && fe.Reason == ReasonBadStatus {
			return nil, err
		}
		return f.chrome.Fetch(ctx, url)
	}

	if needsJavaScript(page) {
		page.Release()
		return f.chrome.Fetch(ctx, url)
	}
	return page, nil
}

// spaShells are selectors whose empty presence marks a client-rendered app.
var spaShells = []string{
	"div#root",   // React
	"div#app",    // Vue
	"app-root",   // Angular
	"div#__next", // Next.js
	"div#__nuxt", // Nuxt.js
}

// needsJavaScript reports whether a statically fetched page appears to render
// its content client-side.
func needsJavaScript(p Page) bool {
	for _, sel := range spaShells {
		for _, el := range p.QueryAll(sel) {
			if el.Text() == "" {
				return true
			}
		}
	}

	var body string
	if els := p.QueryAll("body"); len(els) > 0 {
		body = els[0].Text()
	}
	if utf8.RuneCountInString(body) >= 100 {
		return false
	}

	// A thin page that nags about JavaScript or shows a loading screen is
	// a shell waiting for scripts to run.
	lower := strings.ToLower(body)
	if strings.Contains(lower, "loading") || strings.Contains(lower, "please wait") {
		return true
	}
	for _, el := range p.QueryAll("noscript") {
		t := strings.ToLower(el.Text())
		if strings.Contains(t, "javascript") || strings.Contains(t, "enable") {
			return true
		}
	}
	return false
}

// Close releases all fetcher resources.
func (f *AutoFetcher) Close() error {
	if f.chrome != nil {
		return f.chrome.Close()
	}
	return nil
}

// Type returns the fetcher type.
func (f *AutoFetcher) Type() string {
	return "auto"
}
