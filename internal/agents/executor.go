// Package agents provides the executors behind each agent kind: the
// simulated fleet used by default and an optional API-backed executor.
package agents

import (
	"context"
	"time"

	"github.com/dispatchd/dispatchd/pkg/models"
)

// Result is one executor's answer to a dispatched request.
type Result struct {
	// Content is the response payload.
	Content string
	// Confidence is the executor's self-reported confidence in [0, 1].
	Confidence float64
	// Duration is how long execution took.
	Duration time.Duration
}

// Executor produces a response for one request. Implementations must
// honor context cancellation: a cancelled dispatch returns ctx.Err().
type Executor interface {
	Execute(ctx context.Context, text string, category models.Category) (Result, error)
}

// Fleet maps each agent kind to its executor.
type Fleet map[models.AgentID]Executor

// Get returns the executor for an agent kind.
func (f Fleet) Get(id models.AgentID) (Executor, bool) {
	e, ok := f[id]
	return e, ok
}
