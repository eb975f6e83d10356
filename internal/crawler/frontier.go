package crawler

import "sync"

// Entry is one pending page: a canonical URL and its discovery depth.
type Entry struct {
	URL   string
	Depth int
}

// Frontier is the breadth-first work queue: a FIFO of (url, depth) entries
// plus the seen-set that deduplicates everything ever enqueued. Scope is
// limited to a single domain. Safe for concurrent use.
type Frontier struct {
	mu     sync.Mutex
	domain string
	queue  []Entry
	seen   map[string]bool
}

// NewFrontier creates an empty frontier scoped to domain.
func NewFrontier(domain string) *Frontier {
	return &Frontier{
		domain: domain,
		queue:  make([]Entry, 0),
		seen:   make(map[string]bool),
	}
}

// Enqueue appends a canonical URL at the given depth. It is a no-op when the
// URL was already seen or lies outside the frontier's domain. Returns true
// when the entry was added.
func (f *Frontier) Enqueue(rawURL string, depth int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if rawURL == "" || f.seen[rawURL] {
		return false
	}
	if !SameDomain(rawURL, f.domain) {
		return false
	}

	f.seen[rawURL] = true
	f.queue = append(f.queue, Entry{URL: rawURL, Depth: depth})
	return true
}

// Dequeue removes and returns the oldest entry. ok is false when the queue
// is empty.
func (f *Frontier) Dequeue() (string, int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return "", 0, false
	}
	e := f.queue[0]
	f.queue = f.queue[1:]
	return e.URL, e.Depth, true
}

// Len returns the number of pending entries.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen reports whether a URL was ever enqueued.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[rawURL]
}

// SeenCount returns the size of the seen-set.
func (f *Frontier) SeenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}
