package cartsync

import (
	"context"
	"sync"
)

// IdentityListener reacts to a transition. It runs synchronously in the
// goroutine that reported the new identity.
type IdentityListener func(ctx context.Context, prev, next Identity) error

// Observer tracks the current identity of one browser profile and notifies
// listeners when it changes.
type Observer struct {
	// notify is held for the whole of Set so listeners see transitions in
	// the order they were recorded.
	notify    sync.Mutex
	mu        sync.Mutex
	current   Identity
	listeners []IdentityListener
}

func NewObserver(initial Identity) *Observer {
	return &Observer{current: initial}
}

func (o *Observer) Current() Identity {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

func (o *Observer) Subscribe(l IdentityListener) {
	if l == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, l)
}

// Set records next and, when it differs from the current identity, calls
// every listener in subscription order. The first listener error is returned.
// Concurrent calls are applied one at a time, so the identity Current reports
// is always the last one listeners were told about.
func (o *Observer) Set(ctx context.Context, next Identity) (bool, error) {
	o.notify.Lock()
	defer o.notify.Unlock()

	o.mu.Lock()
	prev := o.current
	if prev == next {
		o.mu.Unlock()
		return false, nil
	}
	o.current = next
	listeners := make([]IdentityListener, len(o.listeners))
	copy(listeners, o.listeners)
	o.mu.Unlock()

	var firstErr error
	for _, l := range listeners {
		if err := l(ctx, prev, next); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return true, firstErr
}
