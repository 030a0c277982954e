package router

import (
	"sync"
	"time"

	"github.com/dispatchd/dispatchd/pkg/models"
)

// historyCap bounds the routing history ring.
const historyCap = 1000

// HistoryEntry pairs a classification with the decision it produced.
type HistoryEntry struct {
	Classification models.ClassificationResult `json:"classification"`
	Decision       models.RoutingDecision      `json:"decision"`
	At             time.Time                   `json:"at"`
}

// history is a fixed-capacity ring of recent routing decisions used for
// the distribution metrics.
type history struct {
	mu      sync.Mutex
	entries []HistoryEntry
	next    int
	full    bool
}

func newHistory() *history {
	return &history{entries: make([]HistoryEntry, historyCap)}
}

func (h *history) add(e HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.next] = e
	h.next = (h.next + 1) % len(h.entries)
	if h.next == 0 {
		h.full = true
	}
}

// snapshot returns the retained entries oldest-first.
func (h *history) snapshot() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.full {
		return append([]HistoryEntry(nil), h.entries[:h.next]...)
	}
	out := make([]HistoryEntry, 0, len(h.entries))
	out = append(out, h.entries[h.next:]...)
	out = append(out, h.entries[:h.next]...)
	return out
}

func (h *history) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.full {
		return len(h.entries)
	}
	return h.next
}

// Distribution counts retained decisions per dispatch mode.
func (r *Router) Distribution() map[models.DispatchMode]int {
	out := make(map[models.DispatchMode]int)
	for _, e := range r.history.snapshot() {
		out[e.Decision.Mode]++
	}
	return out
}

// ConfidenceDistribution buckets retained decisions by the current
// thresholds: high (confidence above the high threshold), medium (between
// the two), low (at or below medium).
func (r *Router) ConfidenceDistribution() map[string]int {
	high, medium := r.state.Thresholds()
	out := map[string]int{"high": 0, "medium": 0, "low": 0}
	for _, e := range r.history.snapshot() {
		switch c := e.Classification.Confidence; {
		case c > high:
			out["high"]++
		case c > medium:
			out["medium"]++
		default:
			out["low"]++
		}
	}
	return out
}

// History returns the retained routing history oldest-first.
func (r *Router) History() []HistoryEntry {
	return r.history.snapshot()
}

// HistoryLen reports how many decisions are retained.
func (r *Router) HistoryLen() int {
	return r.history.len()
}
