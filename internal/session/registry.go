package session

import (
	"context"
	"errors"
	"sync"
)

var ErrSessionActive = errors.New("session already active for this id")

const eventBuffer = 16

// Registry maps opaque session ids to live event channels. Each id has at
// most one subscriber; the mutex guards only the map, never I/O.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*liveSession
}

type liveSession struct {
	events chan Event
	done   chan struct{}
	cancel context.CancelFunc
}

func NewRegistry() *Registry {
	return &Registry{sessions: map[string]*liveSession{}}
}

// Open registers a subscriber for id and returns its event channel. cancel
// is invoked on Close so an abandoned subscriber always stops its run.
func (r *Registry) Open(id string, cancel context.CancelFunc) (<-chan Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[id]; exists {
		return nil, ErrSessionActive
	}

	live := &liveSession{
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	r.sessions[id] = live
	return live.events, nil
}

// Publish delivers an event to the subscriber for id. It blocks while the
// subscriber is live and keeping up, and is a no-op once the session is
// closed or unknown.
func (r *Registry) Publish(id string, ev Event) bool {
	r.mu.Lock()
	live, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return false
	}

	select {
	case <-live.done:
		return false
	case live.events <- ev:
		return true
	}
}

// Close cancels the run for id and releases its resources. Closing an
// unknown id is a no-op.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	live, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	close(live.done)
	if live.cancel != nil {
		live.cancel()
	}
}

// Active reports the number of live sessions.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
