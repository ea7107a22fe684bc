// Package chain provides the block counter that orders state changes.
package chain

import "sync/atomic"

// Clock is a monotonic block counter.
type Clock interface {
	// Current returns the latest block number.
	Current() uint64
	// Advance moves to the next block and returns its number.
	Advance() uint64
}

// Counter is an in-process Clock. The zero value starts at block 0.
type Counter struct {
	height atomic.Uint64
}

// NewCounter returns a Counter positioned at start.
func NewCounter(start uint64) *Counter {
	c := &Counter{}
	c.height.Store(start)
	return c
}

func (c *Counter) Current() uint64 {
	return c.height.Load()
}

func (c *Counter) Advance() uint64 {
	return c.height.Add(1)
}
