package models

import "time"

// RequestState represents the lifecycle state of a task request.
type RequestState string

const (
	// RequestStatePending indicates the request has been accepted but not yet persisted.
	RequestStatePending RequestState = "pending"
	// RequestStateProcessing indicates the request is durably stored and agents are running.
	RequestStateProcessing RequestState = "processing"
	// RequestStateCompleted indicates every attempted agent has responded or definitively failed.
	RequestStateCompleted RequestState = "completed"
	// RequestStateFailed indicates classification or persistence failed unrecoverably.
	RequestStateFailed RequestState = "failed"
	// RequestStateCancelled indicates the request was cancelled by an external signal.
	RequestStateCancelled RequestState = "cancelled"
)

// Valid returns true if the state is a known value.
func (s RequestState) Valid() bool {
	switch s {
	case RequestStatePending, RequestStateProcessing, RequestStateCompleted,
		RequestStateFailed, RequestStateCancelled:
		return true
	default:
		return false
	}
}

// Terminal returns true if the state admits no further transitions.
func (s RequestState) Terminal() bool {
	switch s {
	case RequestStateCompleted, RequestStateFailed, RequestStateCancelled:
		return true
	default:
		return false
	}
}

// Request represents a free-text task request submitted for orchestration.
type Request struct {
	// ID is the unique identifier for this request.
	ID string `json:"id"`
	// SubmitterID identifies who submitted the request.
	SubmitterID string `json:"submitter_id"`
	// Text is the raw task text.
	Text string `json:"text"`
	// State is the current lifecycle state.
	State RequestState `json:"state"`
	// SubmittedAt is when the request was submitted.
	SubmittedAt time.Time `json:"submitted_at"`
}
