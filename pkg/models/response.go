package models

import "time"

// AgentResponse is one agent's answer to a request. Responses are immutable
// once created and are owned by the lifecycle manager.
type AgentResponse struct {
	// ID is the unique identifier for this response.
	ID string `json:"id"`
	// RequestID is the owning request.
	RequestID string `json:"request_id"`
	// AgentID is the agent that produced the response.
	AgentID AgentID `json:"agent_id"`
	// Content is the response payload.
	Content string `json:"content"`
	// Confidence is the agent's self-reported confidence in [0, 1].
	Confidence float64 `json:"confidence"`
	// Duration is how long the agent took to produce the response.
	Duration time.Duration `json:"duration"`
	// CreatedAt is when the response was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// AggregateMetrics summarizes the responses collected for a request so far.
type AggregateMetrics struct {
	// ResponseCount is the number of responses contributing to the aggregate.
	ResponseCount int `json:"response_count"`
	// AvgConfidence is the mean per-response confidence, 0 with no responses.
	AvgConfidence float64 `json:"avg_confidence"`
	// TotalProcessing is the summed per-response processing time.
	TotalProcessing time.Duration `json:"total_processing"`
}

// Aggregate computes metrics over a set of responses. A nil or empty slice
// yields the zero aggregate, so a request whose agents all failed still
// completes with a degraded (empty) aggregate.
func Aggregate(responses []AgentResponse) AggregateMetrics {
	m := AggregateMetrics{ResponseCount: len(responses)}
	if len(responses) == 0 {
		return m
	}
	var sum float64
	for _, r := range responses {
		sum += r.Confidence
		m.TotalProcessing += r.Duration
	}
	m.AvgConfidence = sum / float64(len(responses))
	return m
}
