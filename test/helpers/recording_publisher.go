package helpers

import (
	"sync"

	"github.com/andrescamacho/empire-go/internal/domain/village"
)

// RecordingPublisher captures published events for assertions
type RecordingPublisher struct {
	mu     sync.Mutex
	events []village.Event
}

var _ village.EventPublisher = (*RecordingPublisher)(nil)

// NewRecordingPublisher creates an empty publisher
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

// Publish records events
func (p *RecordingPublisher) Publish(events ...village.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
}

// Events returns a copy of everything published so far
func (p *RecordingPublisher) Events() []village.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]village.Event(nil), p.events...)
}

// OfType returns the published events of one type
func (p *RecordingPublisher) OfType(eventType village.EventType) []village.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []village.Event
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Reset forgets recorded events
func (p *RecordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
