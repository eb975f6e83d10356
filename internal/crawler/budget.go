package crawler

import "sync"

// budget enforces the page cap, including under concurrent dispatch. A slot
// is reserved before an attempt chain starts, committed when the attempt
// produces a document, and released when every attempt fails, so the number
// of committed pages can never exceed the cap.
type budget struct {
	mu        sync.Mutex
	max       int
	reserved  int
	committed int
}

func newBudget(max int) *budget {
	return &budget{max: max}
}

// Reserve claims a slot if one is free.
func (b *budget) Reserve() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.reserved >= b.max {
		return false
	}
	b.reserved++
	return true
}

// Commit marks a reserved slot as a fetched page.
func (b *budget) Commit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.committed++
}

// Release frees a reservation that produced no page.
func (b *budget) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reserved--
}

// Committed returns the number of pages fetched so far.
func (b *budget) Committed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.committed
}

// Full reports whether every slot has been committed.
func (b *budget) Full() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.committed >= b.max
}
