package mykafka

import (
	"context"
	"sync"
)

type Published struct {
	Topic string
	Key   string
	Event Event
}

// Recorder keeps published events in memory. Tests use it to assert on
// emitted events without a broker.
type Recorder struct {
	mu     sync.Mutex
	events []Published
}

func (r *Recorder) Publish(_ context.Context, topic, key string, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Published{Topic: topic, Key: key, Event: ev})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Published, len(r.events))
	copy(out, r.events)
	return out
}

// Types lists the event types in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Event.Type)
	}
	return out
}
