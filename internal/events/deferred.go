package events

import (
	"context"
	"sync"
)

// Deferred holds events back from its target until Commit. Events emitted
// after Commit go straight through. A Deferred that is never committed drops
// everything it held.
type Deferred struct {
	mu        sync.Mutex
	target    Emitter
	held      []Event
	committed bool
}

// NewDeferred returns a Deferred in front of target.
func NewDeferred(target Emitter) *Deferred {
	if target == nil {
		target = Discard
	}
	return &Deferred{target: target}
}

func (d *Deferred) Emit(ctx context.Context, e Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.committed {
		d.target.Emit(ctx, e)
		return
	}
	d.held = append(d.held, e)
}

// Commit forwards the held events in order and switches to pass-through.
func (d *Deferred) Commit(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.committed {
		return
	}
	for _, e := range d.held {
		d.target.Emit(ctx, e)
	}
	d.held = nil
	d.committed = true
}

// Pending returns how many events are waiting for Commit.
func (d *Deferred) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.held)
}
