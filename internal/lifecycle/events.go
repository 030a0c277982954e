// Package lifecycle owns a request from submission through completion:
// classification, routing, concurrent dispatch, aggregation, and the
// handoff into the learning loop.
package lifecycle

import (
	"time"

	"github.com/dispatchd/dispatchd/pkg/models"
)

// EventType represents the type of lifecycle event.
type EventType string

const (
	// EventRequestAccepted indicates a request was persisted and routed.
	EventRequestAccepted EventType = "request_accepted"
	// EventAgentDispatched indicates an agent started working a request.
	EventAgentDispatched EventType = "agent_dispatched"
	// EventResponseRecorded indicates an agent response was persisted.
	EventResponseRecorded EventType = "response_recorded"
	// EventAgentFailed indicates an agent finished without a response.
	EventAgentFailed EventType = "agent_failed"
	// EventRequestCompleted indicates every attempted agent finished.
	EventRequestCompleted EventType = "request_completed"
	// EventRequestCancelled indicates the request was cancelled externally.
	EventRequestCancelled EventType = "request_cancelled"
	// EventRequestFailed indicates submission failed unrecoverably.
	EventRequestFailed EventType = "request_failed"
	// EventLearningCycle indicates a learning cycle ran for the request.
	EventLearningCycle EventType = "learning_cycle"
)

// Event is one lifecycle notification. Subscribers (the CLI's --wait
// mode) receive these through the manager's emitter.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// RequestID is the related request.
	RequestID string
	// AgentID is the related agent, if applicable.
	AgentID models.AgentID
	// Mode is the dispatch mode, for request_accepted events.
	Mode models.DispatchMode
	// Message provides additional context about the event.
	Message string
	// Error contains error details for failure events.
	Error error
	// Timestamp is when the event occurred.
	Timestamp time.Time
}
