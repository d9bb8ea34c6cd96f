package notify

import (
	"context"
	"sync"

	"coopfin-loan-engine/internal/domain/event"
)

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []event.Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, events ...event.Event) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	r.events = append(r.events, events...)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Event(nil), r.events...)
}

// OfType filters recorded events.
func (r *Recorder) OfType(t event.Type) []event.Event {
	var out []event.Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
