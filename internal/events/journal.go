package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultRetention is how many recent events a Journal keeps in memory.
	DefaultRetention = 10_000
	// publishQueue bounds the events waiting for the sinks.
	publishQueue = 1024
)

type queued struct {
	ctx   context.Context
	event Event
}

// Journal is an append-only, in-process event log. It stamps each event with
// an ID, a sequence number and a timestamp, keeps the most recent ones and
// hands every event to its sinks from a background goroutine, so a slow sink
// never holds up the caller.
type Journal struct {
	mu      sync.RWMutex
	records []Event
	last    uint64
	retain  int
	closed  bool

	sinks  []Sink
	queue  chan queued
	done   chan struct{}
	logger *slog.Logger
	now    func() time.Time
}

// NewJournal builds a journal keeping DefaultRetention events and forwarding
// to sinks. Sink failures are logged and otherwise ignored.
func NewJournal(logger *slog.Logger, sinks ...Sink) *Journal {
	return NewBoundedJournal(logger, DefaultRetention, sinks...)
}

// NewBoundedJournal is NewJournal keeping at most retain events in memory.
func NewBoundedJournal(logger *slog.Logger, retain int, sinks ...Sink) *Journal {
	if retain <= 0 {
		retain = DefaultRetention
	}
	j := &Journal{
		retain: retain,
		sinks:  sinks,
		logger: logger,
		now:    time.Now,
	}
	if len(sinks) > 0 {
		j.queue = make(chan queued, publishQueue)
		j.done = make(chan struct{})
		go j.publish()
	}
	return j
}

// Emit appends e and queues it for the sinks.
func (j *Journal) Emit(ctx context.Context, e Event) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.last++
	e.ID = uuid.NewString()
	e.Seq = j.last
	e.At = j.now().UTC()
	j.records = append(j.records, e)
	if len(j.records) >= 2*j.retain {
		j.records = append([]Event(nil), j.records[len(j.records)-j.retain:]...)
	}

	if j.queue == nil || j.closed {
		return
	}
	select {
	case j.queue <- queued{ctx: context.WithoutCancel(ctx), event: e}:
	default:
		if j.logger != nil {
			j.logger.Warn("event queue full, sinks skipped", slog.String("kind", string(e.Kind)), slog.Uint64("seq", e.Seq))
		}
	}
}

func (j *Journal) publish() {
	defer close(j.done)
	for q := range j.queue {
		for _, sink := range j.sinks {
			if err := sink.Publish(q.ctx, q.event); err != nil && j.logger != nil {
				j.logger.Warn("publish event", slog.String("kind", string(q.event.Kind)), slog.Uint64("seq", q.event.Seq), slog.Any("error", err))
			}
		}
	}
}

// Close stops accepting sink work and waits until every queued event has
// been published. Events emitted afterwards are still journaled.
func (j *Journal) Close() {
	j.mu.Lock()
	if j.queue == nil || j.closed {
		j.mu.Unlock()
		return
	}
	j.closed = true
	close(j.queue)
	j.mu.Unlock()
	<-j.done
}

// After returns the retained events with a sequence number greater than
// seq, oldest first.
func (j *Journal) After(seq uint64) []Event {
	return j.AfterLimit(seq, 0)
}

// AfterLimit is After returning at most limit events. A limit of zero or
// less means no limit.
func (j *Journal) AfterLimit(seq uint64, limit int) []Event {
	j.mu.RLock()
	defer j.mu.RUnlock()

	retained := j.retained()
	if len(retained) == 0 || seq >= j.last {
		return nil
	}
	first := retained[0].Seq
	start := 0
	if seq >= first {
		start = int(seq - first + 1)
	}
	end := len(retained)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	out := make([]Event, end-start)
	copy(out, retained[start:end])
	return out
}

// All returns every retained event.
func (j *Journal) All() []Event {
	return j.After(0)
}

// Len returns the number of events emitted so far, retained or not.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return int(j.last)
}

// retained returns the window of events still served. Callers hold j.mu.
func (j *Journal) retained() []Event {
	if len(j.records) > j.retain {
		return j.records[len(j.records)-j.retain:]
	}
	return j.records
}
