package fetcher

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/sitecorpus/sitecorpus/internal/logger"
)

// quietWindow is how long the network must stay silent to count as idle.
const quietWindow = 500 * time.Millisecond

// ChromeFetcher renders pages in a headless browser via chromedp. A single
// browser process is shared across fetches; each Fetch runs in its own tab.
type ChromeFetcher struct {
	config        Config
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromeFetcher launches the browser eagerly so a missing or broken Chrome
// binary surfaces here, before any crawl starts.
func NewChromeFetcher(cfg Config) (*ChromeFetcher, error) {
	cfg = cfg.withDefaults()
	logger.Debug("creating chrome fetcher", "user_agent", cfg.UserAgent, "nav_timeout", cfg.NavTimeout)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Run with no actions starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("browser launch failed: %w", err)
	}
	logger.Debug("chrome fetcher browser started")

	return &ChromeFetcher{
		config:        cfg,
		allocCancel:   cancelAlloc,
		browserCtx:    browserCtx,
		browserCancel: cancelBrowser,
	}, nil
}

// Fetch navigates a fresh tab to targetURL. Navigation and the HTTP status
// decide success; the layered waits afterwards (network idle, body visible,
// content selector, settle, scrolls) are best-effort because slow widgets and
// analytics beacons routinely outlive page load.
func (f *ChromeFetcher) Fetch(ctx context.Context, targetURL string) (Page, error) {
	tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
	tabCtx, cancelNav := context.WithTimeout(tabCtx, f.config.NavTimeout)

	// Caller cancellation closes the tab, which unblocks any action below.
	stop := context.AfterFunc(ctx, cancelTab)

	var once sync.Once
	release := func() {
		once.Do(func() {
			stop()
			cancelNav()
			cancelTab()
		})
	}

	watcher := newNetworkWatcher()
	chromedp.ListenTarget(tabCtx, watcher.handle)

	if err := chromedp.Run(tabCtx, network.Enable()); err != nil {
		release()
		return nil, classify(targetURL, err)
	}

	logger.Debug("chrome fetch navigating", "url", targetURL)
	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(targetURL))
	if err != nil {
		release()
		return nil, classify(targetURL, err)
	}
	status := 200
	if resp != nil {
		status = int(resp.Status)
	}
	if status < 200 || status >= 400 {
		release()
		return nil, &FetchError{URL: targetURL, Reason: ReasonBadStatus, Status: status}
	}

	if err := waitDocumentReady(tabCtx); err != nil {
		release()
		return nil, classify(targetURL, err)
	}

	page := &chromePage{ctx: tabCtx, url: targetURL, status: status, release: release}

	if err := watcher.WaitIdle(tabCtx, quietWindow, f.config.WaitNetworkIdle); err != nil {
		logger.Debug("chrome fetch network never settled", "url", targetURL, "error", err)
	}
	f.bestEffort(tabCtx, f.config.WaitBody, "body", chromedp.WaitVisible("body", chromedp.ByQuery))
	f.bestEffort(tabCtx, f.config.WaitContent, "content", chromedp.WaitVisible(f.config.ContentSelector, chromedp.ByQuery))
	_ = chromedp.Run(tabCtx, chromedp.Sleep(f.config.SettleDelay))

	// Scroll in two steps to trigger lazy-loaded content.
	_ = page.ScrollTo(0.5)
	_ = chromedp.Run(tabCtx, chromedp.Sleep(f.config.ScrollPause))
	_ = page.ScrollTo(1.0)
	_ = chromedp.Run(tabCtx, chromedp.Sleep(f.config.ScrollPause))

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html)); err != nil {
		release()
		return nil, classify(targetURL, err)
	}
	doc, err := NewDocumentPage(targetURL, status, strings.NewReader(html))
	if err != nil {
		release()
		return nil, classify(targetURL, err)
	}
	page.doc = doc

	logger.Debug("chrome fetch complete", "url", targetURL, "status", status, "html_size", len(html))
	return page, nil
}

// bestEffort runs an action inside its own timeout so one slow step cannot
// consume the whole navigation budget. Failures are tolerated.
func (f *ChromeFetcher) bestEffort(ctx context.Context, d time.Duration, step string, action chromedp.Action) {
	stepCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	if err := chromedp.Run(stepCtx, action); err != nil {
		logger.Debug("chrome fetch wait gave up", "step", step, "error", err)
	}
}

// Close shuts down the shared browser process.
func (f *ChromeFetcher) Close() error {
	f.browserCancel()
	f.allocCancel()
	return nil
}

// Type returns the fetcher type.
func (f *ChromeFetcher) Type() string {
	return "chrome"
}

// waitDocumentReady polls until the document has finished parsing.
func waitDocumentReady(ctx context.Context) error {
	return chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		for {
			var state string
			if err := chromedp.Evaluate("document.readyState", &state).Do(ctx); err != nil {
				return err
			}
			if state == "interactive" || state == "complete" {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(50 * time.Millisecond):
			}
		}
	}))
}

// chromePage is a Page backed by a live tab. DOM reads go through a parsed
// snapshot of the rendered HTML; ScrollTo runs in the tab itself.
type chromePage struct {
	ctx     context.Context
	doc     *DocumentPage
	url     string
	status  int
	release func()
}

// URL returns the address the page was fetched from.
func (p *chromePage) URL() string { return p.url }

// StatusCode returns the HTTP status of the main document response.
func (p *chromePage) StatusCode() int { return p.status }

// Title returns the document title.
func (p *chromePage) Title() string {
	if p.doc == nil {
		return ""
	}
	return p.doc.Title()
}

// QueryAll returns the elements matching a CSS selector in document order.
func (p *chromePage) QueryAll(selector string) []Element {
	if p.doc == nil {
		return nil
	}
	return p.doc.QueryAll(selector)
}

// ScrollTo scrolls the tab to a fraction of the full page height.
func (p *chromePage) ScrollTo(fraction float64) error {
	expr := fmt.Sprintf("window.scrollTo(0, document.body.scrollHeight * %g)", fraction)
	return chromedp.Run(p.ctx, chromedp.Evaluate(expr, nil))
}

// Release closes the tab. Safe to call more than once.
func (p *chromePage) Release() { p.release() }

// networkWatcher tracks in-flight requests on a tab so a fetch can wait for
// the network to go quiet.
type networkWatcher struct {
	mu      sync.Mutex
	pending map[network.RequestID]struct{}
	last    time.Time
}

func newNetworkWatcher() *networkWatcher {
	return &networkWatcher{
		pending: make(map[network.RequestID]struct{}),
		last:    time.Now(),
	}
}

// handle consumes CDP network events.
func (w *networkWatcher) handle(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		w.mu.Lock()
		w.pending[e.RequestID] = struct{}{}
		w.last = time.Now()
		w.mu.Unlock()
	case *network.EventLoadingFinished:
		w.mu.Lock()
		delete(w.pending, e.RequestID)
		w.last = time.Now()
		w.mu.Unlock()
	case *network.EventLoadingFailed:
		w.mu.Lock()
		delete(w.pending, e.RequestID)
		w.last = time.Now()
		w.mu.Unlock()
	}
}

// idle reports whether nothing has been in flight for the quiet window.
func (w *networkWatcher) idle(quiet time.Duration) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending) == 0 && time.Since(w.last) >= quiet
}

// WaitIdle blocks until the network has been quiet for the given window, the
// timeout elapses or ctx is cancelled.
func (w *networkWatcher) WaitIdle(ctx context.Context, quiet, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return context.DeadlineExceeded
		case <-tick.C:
			if w.idle(quiet) {
				return nil
			}
		}
	}
}
