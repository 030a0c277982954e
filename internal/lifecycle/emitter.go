package lifecycle

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Emitter delivers lifecycle events to subscribers. Emission never blocks
// request processing: a full channel gets one short retry, then the event
// is dropped and counted.
type Emitter struct {
	events       chan Event
	logger       *zap.Logger
	droppedCount atomic.Uint64
}

// NewEmitter creates an Emitter with the given buffer size.
func NewEmitter(bufferSize int, logger *zap.Logger) *Emitter {
	return &Emitter{
		events: make(chan Event, bufferSize),
		logger: logger,
	}
}

// Emit sends an event, retrying briefly before dropping it.
func (e *Emitter) Emit(event Event) {
	select {
	case e.events <- event:
		return
	default:
	}

	// Give the receiver 100ms to drain before dropping.
	select {
	case e.events <- event:
		return
	case <-time.After(100 * time.Millisecond):
		count := e.droppedCount.Add(1)
		if count%10 == 1 { // log every 10th drop to avoid spam
			e.logger.Warn("event channel full, dropping",
				zap.String("type", string(event.Type)),
				zap.Uint64("total_dropped", count))
		}
	}
}

// DroppedCount returns the total number of events dropped so far.
func (e *Emitter) DroppedCount() uint64 {
	return e.droppedCount.Load()
}

// Events returns the read-only event stream for subscribers.
func (e *Emitter) Events() <-chan Event {
	return e.events
}

// Close closes the event stream. Call only after every producer stopped.
func (e *Emitter) Close() {
	close(e.events)
}
