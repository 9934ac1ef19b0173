package pipeline

import (
	"sync"

	"github.com/agentcommand/unisearch/internal/models"
)

// Presenter holds the single current-response slot consumers read from. It
// always contains the most recently completed search, or nil after a clear.
type Presenter struct {
	mu          sync.RWMutex
	current     *models.SemanticSearchResponse
	processing  bool
	subscribers []func(*models.SemanticSearchResponse)
}

// NewPresenter creates an empty presenter.
func NewPresenter() *Presenter {
	return &Presenter{}
}

// Current returns the current response (nil when cleared) and whether a
// search is in flight.
func (p *Presenter) Current() (*models.SemanticSearchResponse, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current, p.processing
}

// Subscribe registers a callback invoked on every slot change, with the new
// value (nil on clear). Callbacks run synchronously on the publishing
// goroutine and must not block.
func (p *Presenter) Subscribe(fn func(*models.SemanticSearchResponse)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, fn)
}

func (p *Presenter) setProcessing(v bool) {
	p.mu.Lock()
	p.processing = v
	p.mu.Unlock()
}

// publish replaces the slot and notifies subscribers.
func (p *Presenter) publish(resp *models.SemanticSearchResponse) {
	p.mu.Lock()
	p.current = resp
	p.processing = false
	subs := make([]func(*models.SemanticSearchResponse), len(p.subscribers))
	copy(subs, p.subscribers)
	p.mu.Unlock()

	for _, fn := range subs {
		fn(resp)
	}
}

// Clear empties the slot and stops showing the processing flag.
func (p *Presenter) Clear() {
	p.publish(nil)
}
