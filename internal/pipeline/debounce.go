package pipeline

import (
	"sync"
	"time"

	"github.com/agentcommand/unisearch/internal/classify"
)

const defaultDebounce = 400 * time.Millisecond

// DebounceGate coalesces live keystroke updates into search dispatches. One
// timer is pending at most; each update cancels and replaces it. An update
// equal to the last emitted value is suppressed so cursor movement and
// re-renders do not re-dispatch. Empty input clears immediately, it never
// searches.
type DebounceGate struct {
	delay    time.Duration
	onSearch func(query string)
	onClear  func()

	mu          sync.Mutex
	timer       *time.Timer
	lastEmitted string
}

// NewDebounceGate creates a gate invoking onSearch with the trimmed query
// after the idle window, and onClear when input empties. A non-positive delay
// uses the 400ms default.
func NewDebounceGate(delay time.Duration, onSearch func(string), onClear func()) *DebounceGate {
	if delay <= 0 {
		delay = defaultDebounce
	}
	return &DebounceGate{delay: delay, onSearch: onSearch, onClear: onClear}
}

// Update feeds one live input value into the gate.
func (g *DebounceGate) Update(raw string) {
	trimmed := classify.Normalize(raw)

	g.mu.Lock()
	g.stopTimerLocked()

	if trimmed == "" {
		// Clear bypasses the window; a cleared field should not show stale
		// results for another 400ms.
		g.lastEmitted = ""
		onClear := g.onClear
		g.mu.Unlock()
		if onClear != nil {
			onClear()
		}
		return
	}

	if trimmed == g.lastEmitted {
		g.mu.Unlock()
		return
	}

	g.timer = time.AfterFunc(g.delay, func() {
		g.mu.Lock()
		g.timer = nil
		g.lastEmitted = trimmed
		onSearch := g.onSearch
		g.mu.Unlock()
		if onSearch != nil {
			onSearch(trimmed)
		}
	})
	g.mu.Unlock()
}

// Submit dispatches immediately, bypassing the idle window and duplicate
// suppression. Empty input still clears instead of searching.
func (g *DebounceGate) Submit(raw string) {
	trimmed := classify.Normalize(raw)

	g.mu.Lock()
	g.stopTimerLocked()

	if trimmed == "" {
		g.lastEmitted = ""
		onClear := g.onClear
		g.mu.Unlock()
		if onClear != nil {
			onClear()
		}
		return
	}

	g.lastEmitted = trimmed
	onSearch := g.onSearch
	g.mu.Unlock()
	if onSearch != nil {
		onSearch(trimmed)
	}
}

// Reset drops any pending dispatch and forgets the last emitted value, so
// the same query dispatches again after an explicit clear.
func (g *DebounceGate) Reset() {
	g.mu.Lock()
	g.stopTimerLocked()
	g.lastEmitted = ""
	g.mu.Unlock()
}

func (g *DebounceGate) stopTimerLocked() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}
