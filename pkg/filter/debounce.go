package filter

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// search is applied.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer turns a stream of search text into at most one search mutation
// per quiet period. Applying a search also moves the cursor back to page 1.
type Debouncer struct {
	store *Store
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending *string
	// gen invalidates timers that fired after being superseded.
	gen uint64
}

// NewDebouncer creates a debouncer for store. A non-positive delay uses
// DefaultDebounce.
func NewDebouncer(store *Store, delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{store: store, delay: delay}
}

// Push records the latest search text and restarts the quiet period.
func (d *Debouncer) Push(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = &text
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Flush applies the pending search now instead of waiting out the quiet
// period. It reports whether anything was pending.
func (d *Debouncer) Flush() bool {
	text, ok := d.take()
	if ok {
		d.apply(text)
	}
	return ok
}

// Stop drops any pending search.
func (d *Debouncer) Stop() {
	d.take()
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	text := *d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	d.apply(text)
}

func (d *Debouncer) take() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	if d.pending == nil {
		return "", false
	}
	text := *d.pending
	d.pending = nil
	return text, true
}

func (d *Debouncer) apply(text string) {
	if d.store.State().Search == text {
		return
	}
	d.store.SetFilters(Patch{Search: &text})
	// 1 is always a valid page.
	_ = d.store.SetCurrentPage(1)
}
