package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sitecorpus/sitecorpus/internal/corpus"
	"github.com/sitecorpus/sitecorpus/internal/extractor"
	"github.com/sitecorpus/sitecorpus/internal/fetcher"
	"github.com/sitecorpus/sitecorpus/internal/logger"
	"github.com/sitecorpus/sitecorpus/internal/metrics"
)

// State describes where a crawl run is in its lifecycle.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateAborted   State = "aborted"
)

// Config holds crawl parameters.
type Config struct {
	StartURL    string        `validate:"required,url"`
	MaxPages    int           `validate:"gt=0"`
	MaxDepth    int           `validate:"gte=0"`
	Delay       time.Duration `validate:"gte=0"`
	MaxAttempts int           `validate:"gt=0"`
	RetryDelay  time.Duration `validate:"gte=0"`
	Concurrency int           `validate:"gt=0"`
}

// DefaultConfig returns sensible crawl defaults.
func DefaultConfig() Config {
	return Config{
		MaxPages:    100,
		MaxDepth:    2,
		Delay:       2 * time.Second,
		MaxAttempts: 3,
		RetryDelay:  5 * time.Second,
		Concurrency: 1,
	}
}

var validate = validator.New()

// Validate checks the configuration, reporting the first violated constraint.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return fmt.Errorf("invalid config: %s %s", e.Field(), formatConstraint(e))
	}
	return fmt.Errorf("invalid config: %w", err)
}

// formatConstraint creates a human-readable constraint message.
func formatConstraint(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}

// Result is the outcome of one crawl run.
type Result struct {
	State     State
	Documents []corpus.PageDocument
	Summary   corpus.Summary
	Attempted int // frontier entries processed, including failed ones
	Fetched   int // pages that produced a document
}

// Crawler drives a breadth-first crawl of a single domain.
type Crawler struct {
	fetcher fetcher.Fetcher
	config  Config
	metrics *metrics.Metrics
}

// Option configures the crawler.
type Option func(*Crawler)

// WithMetrics attaches prometheus instrumentation to the crawl.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Crawler) {
		c.metrics = m
	}
}

// New creates a new Crawler.
func New(f fetcher.Fetcher, cfg Config, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher: f,
		config:  cfg,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// run holds the mutable state of a single crawl so the Crawler itself stays
// reusable across Run calls.
type run struct {
	frontier *Frontier
	budget   *budget
	limiter  *rate.Limiter

	mu    sync.Mutex
	state State
	docs  []corpus.PageDocument

	attempted atomic.Int64
	inflight  atomic.Int64
}

func (r *run) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *run) getState() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *run) addDocument(doc corpus.PageDocument) {
	r.mu.Lock()
	r.docs = append(r.docs, doc)
	r.mu.Unlock()
}

func (r *run) documents() []corpus.PageDocument {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.docs
}

// Run executes the crawl until the page budget is exhausted, the frontier
// drains, or ctx is cancelled. A cancelled run still returns everything
// collected so far, with State set to StateAborted.
func (c *Crawler) Run(ctx context.Context) (*Result, error) {
	if err := c.config.Validate(); err != nil {
		return nil, err
	}

	start, ok := Normalize(nil, c.config.StartURL)
	if !ok {
		return nil, fmt.Errorf("invalid start URL: %q", c.config.StartURL)
	}
	parsed, err := url.Parse(start)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL: %w", err)
	}

	r := &run{
		frontier: NewFrontier(parsed.Host),
		budget:   newBudget(c.config.MaxPages),
		state:    StateIdle,
	}
	r.frontier.Enqueue(start, 0)

	logger.Info("crawl starting",
		"start_url", start,
		"domain", parsed.Host,
		"max_pages", c.config.MaxPages,
		"max_depth", c.config.MaxDepth,
		"delay", c.config.Delay,
		"concurrency", c.config.Concurrency)

	r.setState(StateRunning)
	if c.config.Concurrency > 1 {
		c.runConcurrent(ctx, r)
	} else {
		c.runSequential(ctx, r)
	}

	res := &Result{
		State:     r.getState(),
		Documents: r.documents(),
		Attempted: int(r.attempted.Load()),
		Fetched:   r.budget.Committed(),
	}
	res.Summary = corpus.Summarize(res.Documents)

	logger.Info("crawl finished",
		"state", res.State,
		"pages", res.Fetched,
		"attempted", res.Attempted,
		"pending", r.frontier.Len(),
		"seen", r.frontier.SeenCount())

	return res, nil
}

// runSequential crawls strictly breadth-first, one page at a time, with a
// politeness delay after every attempt chain.
func (c *Crawler) runSequential(ctx context.Context, r *run) {
	for !r.budget.Full() {
		if ctx.Err() != nil {
			r.setState(StateAborted)
			return
		}

		rawURL, depth, ok := r.frontier.Dequeue()
		if !ok {
			r.setState(StateCompleted)
			return
		}

		// Entries beyond the depth limit are discarded outright: no
		// fetch, no budget slot, no delay.
		if depth > c.config.MaxDepth {
			continue
		}

		if !r.budget.Reserve() {
			break
		}
		c.processEntry(ctx, r, rawURL, depth)

		// Politeness delay after success and failure alike.
		if !sleepCtx(ctx, c.config.Delay) {
			r.setState(StateAborted)
			return
		}
	}
	r.setState(StateCompleted)
}

// runConcurrent fans frontier entries out to a bounded worker group. A budget
// slot is reserved before dequeueing, so workers can never overshoot
// MaxPages no matter how they interleave.
func (c *Crawler) runConcurrent(ctx context.Context, r *run) {
	if c.config.Delay > 0 {
		r.limiter = rate.NewLimiter(rate.Every(c.config.Delay), 1)
	}

	var g errgroup.Group
	g.SetLimit(c.config.Concurrency)

	aborted := false
	for {
		if ctx.Err() != nil {
			aborted = true
			break
		}
		if r.budget.Full() {
			break
		}
		if !r.budget.Reserve() {
			// Every slot is held by an in-flight worker; wait for
			// one to commit or release.
			if r.inflight.Load() == 0 {
				break
			}
			if !sleepCtx(ctx, 20*time.Millisecond) {
				aborted = true
				break
			}
			continue
		}

		rawURL, depth, ok := r.frontier.Dequeue()
		if !ok {
			r.budget.Release()
			// Workers may still discover links that refill the
			// frontier.
			if r.inflight.Load() == 0 {
				break
			}
			if !sleepCtx(ctx, 20*time.Millisecond) {
				aborted = true
				break
			}
			continue
		}

		if depth > c.config.MaxDepth {
			r.budget.Release()
			continue
		}

		r.inflight.Add(1)
		g.Go(func() error {
			defer r.inflight.Add(-1)
			c.processEntry(ctx, r, rawURL, depth)
			return nil
		})
	}

	_ = g.Wait()

	if aborted || ctx.Err() != nil {
		r.setState(StateAborted)
		return
	}
	r.setState(StateCompleted)
}

// processEntry runs the attempt chain for one frontier entry and settles its
// budget slot: commit on success, release on failure.
func (c *Crawler) processEntry(ctx context.Context, r *run, rawURL string, depth int) {
	r.attempted.Add(1)

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			r.budget.Release()
			return
		}
	}

	doc, links, err := c.attemptWithRetry(ctx, rawURL, depth)
	if err != nil {
		r.budget.Release()
		if c.metrics != nil {
			c.metrics.PagesFailed.Inc()
		}
		logger.Warn("page skipped", "url", rawURL, "depth", depth, "error", err)
		return
	}

	r.budget.Commit()
	r.addDocument(*doc)
	added := c.enqueueLinks(r, rawURL, depth, links)
	if c.metrics != nil {
		c.metrics.PagesCrawled.Inc()
		c.metrics.FrontierSize.Set(float64(r.frontier.Len()))
	}
	logger.Info("page crawled",
		"url", rawURL,
		"depth", depth,
		"text_length", doc.TextLength,
		"new_links", added,
		"fetched", r.budget.Committed())
}

// ExhaustedError reports that every attempt for a URL failed.
type ExhaustedError struct {
	URL      string
	Attempts int
	Err      error // last attempt's failure
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

// Unwrap returns the last attempt's failure.
func (e *ExhaustedError) Unwrap() error { return e.Err }

// attemptWithRetry fetches and extracts one page, retrying failures after a
// pause. The pause is skipped after the final attempt.
func (c *Crawler) attemptWithRetry(ctx context.Context, rawURL string, depth int) (*corpus.PageDocument, []string, error) {
	var lastErr error
	attempts := 0

	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			break
		}
		attempts = attempt

		start := time.Now()
		page, err := c.fetcher.Fetch(ctx, rawURL)
		if c.metrics != nil {
			c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
		}
		if err == nil {
			content := extractor.Extract(page)
			page.Release()
			doc := content.Document(rawURL, depth, time.Now().UTC())
			return &doc, content.Links, nil
		}

		lastErr = err
		logger.Warn("fetch attempt failed",
			"url", rawURL,
			"attempt", attempt,
			"max_attempts", c.config.MaxAttempts,
			"error", err)

		if attempt < c.config.MaxAttempts {
			if c.metrics != nil {
				c.metrics.FetchRetries.Inc()
			}
			if !sleepCtx(ctx, c.config.RetryDelay) {
				break
			}
		}
	}

	return nil, nil, &ExhaustedError{URL: rawURL, Attempts: attempts, Err: lastErr}
}

// enqueueLinks normalizes hrefs discovered on a page and offers them to the
// frontier one depth further down. Returns the number actually added.
func (c *Crawler) enqueueLinks(r *run, pageURL string, depth int, links []string) int {
	base, err := url.Parse(pageURL)
	if err != nil {
		return 0
	}

	added := 0
	for _, href := range links {
		normalized, ok := Normalize(base, href)
		if !ok {
			continue
		}
		if r.frontier.Enqueue(normalized, depth+1) {
			added++
		}
	}
	return added
}

// sleepCtx pauses for d, returning false if ctx was cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
