// Package fetcher handles page retrieval for the crawl engine.
//
// Two implementations are provided: ChromeFetcher drives a headless browser
// through chromedp for JavaScript-rendered sites, and StaticFetcher issues
// plain HTTP requests through colly. AutoFetcher tries static first and falls
// back to the browser when a page looks like a client-rendered shell. All of
// them return a Page, a read-only view of the rendered document.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Mode determines how pages are fetched.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeChrome Mode = "chrome"
	ModeStatic Mode = "static"
)

// Failure reasons carried by FetchError.
const (
	ReasonTimeout   = "timeout"
	ReasonBadStatus = "bad_status"
	ReasonError     = "error"
)

// Element is a single node of a fetched document.
type Element interface {
	// Text returns the element's trimmed text content.
	Text() string

	// Attribute returns the value of the named attribute.
	Attribute(name string) (string, bool)
}

// Page is a read-only view of a fetched, rendered document.
type Page interface {
	// URL returns the address the page was fetched from.
	URL() string

	// StatusCode returns the HTTP status of the main document response.
	StatusCode() int

	// Title returns the document title.
	Title() string

	// QueryAll returns the elements matching a CSS selector in document order.
	QueryAll(selector string) []Element

	// ScrollTo scrolls the viewport to a fraction of the full page height.
	ScrollTo(fraction float64) error

	// Release frees resources held by the page (browser tabs, buffers).
	// Safe to call more than once.
	Release()
}

// Fetcher abstracts page fetching strategies.
type Fetcher interface {
	// Fetch navigates to a URL and returns the rendered page. The caller
	// must Release the page when done. On error no page is returned and
	// nothing needs releasing.
	Fetch(ctx context.Context, url string) (Page, error)

	// Close releases any resources (browser instances, etc.).
	Close() error

	// Type returns "chrome", "static" or "auto".
	Type() string
}

// FetchError describes a failed fetch attempt.
type FetchError struct {
	URL    string
	Reason string // ReasonTimeout, ReasonBadStatus or ReasonError
	Status int    // HTTP status when Reason is ReasonBadStatus
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Reason {
	case ReasonBadStatus:
		return fmt.Sprintf("fetch %s: bad status %d", e.URL, e.Status)
	case ReasonTimeout:
		return fmt.Sprintf("fetch %s: timed out: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error { return e.Err }

// classify wraps a transport or browser error as a FetchError, tagging
// deadline and network timeouts as ReasonTimeout.
func classify(url string, err error) *FetchError {
	reason := ReasonError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		reason = ReasonTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		reason = ReasonTimeout
	}
	return &FetchError{URL: url, Reason: reason, Err: err}
}

// Config holds fetch behaviour shared by all fetcher implementations.
type Config struct {
	UserAgent       string
	NavTimeout      time.Duration // budget for a whole page load
	WaitNetworkIdle time.Duration // max wait for the network to go quiet
	WaitBody        time.Duration // max wait for the body element
	WaitContent     time.Duration // max wait for ContentSelector to match
	ContentSelector string        // selector that signals content has rendered
	SettleDelay     time.Duration // fixed pause for late scripts after the waits
	ScrollPause     time.Duration // pause after each scroll step
	MaxBodySize     int           // response size cap for static fetches (0 = default)
}

// DefaultConfig returns fetch defaults tuned for JavaScript-heavy sites.
func DefaultConfig() Config {
	return Config{
		UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		NavTimeout:      60 * time.Second,
		WaitNetworkIdle: 15 * time.Second,
		WaitBody:        10 * time.Second,
		WaitContent:     10 * time.Second,
		ContentSelector: "p, article, section, div.content",
		SettleDelay:     3 * time.Second,
		ScrollPause:     time.Second,
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.UserAgent == "" {
		c.UserAgent = def.UserAgent
	}
	if c.NavTimeout == 0 {
		c.NavTimeout = def.NavTimeout
	}
	if c.WaitNetworkIdle == 0 {
		c.WaitNetworkIdle = def.WaitNetworkIdle
	}
	if c.WaitBody == 0 {
		c.WaitBody = def.WaitBody
	}
	if c.WaitContent == 0 {
		c.WaitContent = def.WaitContent
	}
	if c.ContentSelector == "" {
		c.ContentSelector = def.ContentSelector
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = def.SettleDelay
	}
	if c.ScrollPause == 0 {
		c.ScrollPause = def.ScrollPause
	}
	return c
}

// New creates an appropriate fetcher based on mode.
func New(mode Mode, cfg Config) (Fetcher, error) {
	switch mode {
	case ModeStatic:
		return NewStaticFetcher(cfg), nil
	case ModeChrome:
		return NewChromeFetcher(cfg)
	case ModeAuto:
		return NewAutoFetcher(cfg)
	default:
		return nil, fmt.Errorf("unknown fetch mode: %s", mode)
	}
}
