// ABOUTME: Short-window coalescing of identical read requests
// ABOUTME: Entries evict on a fixed timer from dispatch, never on completion

package services

import (
	"encoding/json"
	"sync"
	"time"
)

// DefaultCoalesceWindow is how long a dispatched read stays joinable.
const DefaultCoalesceWindow = 100 * time.Millisecond

// flight is one in-progress or recently completed call. done closes when
// the result fields are set.
type flight struct {
	done chan struct{}
	resp *Response
	err  error
}

// RequestCoalescer merges identical read requests issued within a short
// window into a single upstream call. The window runs from dispatch, so a
// slow call keeps absorbing joiners for the full window and a fast one
// still blocks an identical re-fetch until the window lapses.
type RequestCoalescer struct {
	mu      sync.Mutex
	window  time.Duration
	flights map[string]*flight
}

// NewRequestCoalescer creates a coalescer. A zero window falls back to the
// default.
func NewRequestCoalescer(window time.Duration) *RequestCoalescer {
	if window <= 0 {
		window = DefaultCoalesceWindow
	}
	return &RequestCoalescer{
		window:  window,
		flights: make(map[string]*flight),
	}
}

// Do returns the shared result for key if a flight is active, otherwise
// dispatches fn and shares its result with joiners until the window ends.
func (c *RequestCoalescer) Do(key string, fn func() (*Response, error)) (*Response, error) {
	c.mu.Lock()
	if f, ok := c.flights[key]; ok {
		c.mu.Unlock()
		<-f.done
		return f.resp, f.err
	}

	f := &flight{done: make(chan struct{})}
	c.flights[key] = f
	c.mu.Unlock()

	time.AfterFunc(c.window, func() {
		c.mu.Lock()
		if c.flights[key] == f {
			delete(c.flights, key)
		}
		c.mu.Unlock()
	})

	f.resp, f.err = fn()
	close(f.done)
	return f.resp, f.err
}

// CoalesceKey derives a stable identity for a read request. Map keys are
// sorted by the JSON encoder, so equal params always produce equal keys.
func CoalesceKey(verb, resource string, params any) string {
	encoded, err := json.Marshal(params)
	if err != nil {
		encoded = []byte("{}")
	}
	return verb + ":" + resource + ":" + string(encoded)
}
