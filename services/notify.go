// ABOUTME: Observer registry for auth-failure events
// ABOUTME: Subscribers are told about upstream 401s before the error reaches the caller

package services

import "sync"

// AuthFailure describes an upstream authentication rejection.
type AuthFailure struct {
	Status  int
	Message string
}

// AuthFailureNotifier fans auth-failure events out to registered observers.
// Notification is synchronous so token cleanup and session teardown complete
// before the triggering error is returned.
type AuthFailureNotifier struct {
	mu        sync.Mutex
	nextID    int
	observers map[int]func(AuthFailure)
}

// NewAuthFailureNotifier creates an empty notifier.
func NewAuthFailureNotifier() *AuthFailureNotifier {
	return &AuthFailureNotifier{observers: make(map[int]func(AuthFailure))}
}

// Subscribe registers an observer and returns an unsubscribe function.
// Unsubscribing twice is harmless.
func (n *AuthFailureNotifier) Subscribe(fn func(AuthFailure)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.observers[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.observers, id)
	}
}

// Notify invokes every registered observer with the failure.
func (n *AuthFailureNotifier) Notify(failure AuthFailure) {
	n.mu.Lock()
	fns := make([]func(AuthFailure), 0, len(n.observers))
	for _, fn := range n.observers {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(failure)
	}
}
