package water

import (
	"sync"
	"time"
)

// DefaultLookupDelay is the debounce delay of map lookups.
const DefaultLookupDelay = 300 * time.Millisecond

// Token identifies one scheduled call of a Debouncer. The zero Token is
// never current.
type Token uint64

// Debouncer delays calls and replaces a pending call when a new one is
// scheduled. Only the most recently scheduled token is current; callers
// drop results of calls whose token is no longer current.
type Debouncer struct {
	mu      sync.Mutex
	timer   *time.Timer
	last    Token
	current Token
}

// NewDebouncer creates an idle debouncer.
func NewDebouncer() *Debouncer {
	return &Debouncer{}
}

// Schedule runs fn with the returned token after delay. A pending call is
// cancelled and its token invalidated.
func (d *Debouncer) Schedule(delay time.Duration, fn func(Token)) Token {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.last++
	tok := d.last
	d.current = tok
	d.timer = time.AfterFunc(delay, func() { fn(tok) })
	return tok
}

// Cancel invalidates tok and stops its timer if it has not fired yet. It
// reports whether tok was current.
func (d *Debouncer) Cancel(tok Token) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if tok == 0 || tok != d.current {
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.current = 0
	return true
}

// Current reports whether tok belongs to the latest schedule and was not
// cancelled.
func (d *Debouncer) Current(tok Token) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return tok != 0 && tok == d.current
}

// Stop cancels whatever is pending.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.current = 0
}
