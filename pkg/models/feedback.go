package models

import "time"

// FeedbackRecord carries the outcome signal for one completed request.
// Exactly one record is synthesized per completion; duplicates may still
// arrive and must not double-count learning totals.
type FeedbackRecord struct {
	// RequestID is the owning request.
	RequestID string `json:"request_id"`
	// Satisfaction is the satisfaction score in [0, 1].
	Satisfaction float64 `json:"satisfaction"`
	// Accuracy is the accuracy score in [0, 1].
	Accuracy float64 `json:"accuracy"`
	// Combined is the mean of satisfaction and accuracy.
	Combined float64 `json:"combined"`
	// CreatedAt is when the record was produced.
	CreatedAt time.Time `json:"created_at"`
}

// NewFeedbackRecord builds a record with the combined score derived
// from satisfaction and accuracy.
func NewFeedbackRecord(requestID string, satisfaction, accuracy float64, at time.Time) FeedbackRecord {
	return FeedbackRecord{
		RequestID:    requestID,
		Satisfaction: satisfaction,
		Accuracy:     accuracy,
		Combined:     (satisfaction + accuracy) / 2,
		CreatedAt:    at,
	}
}

// SynthesizeFeedback derives a feedback record from a request's aggregate
// when no genuine external satisfaction signal exists. Aggregate confidence
// stands in for both satisfaction and accuracy, capped below 1.0 so
// synthesized feedback never saturates the learning signal.
func SynthesizeFeedback(requestID string, agg AggregateMetrics, at time.Time) FeedbackRecord {
	satisfaction := min(0.95, agg.AvgConfidence+0.10)
	accuracy := min(0.90, agg.AvgConfidence+0.05)
	return NewFeedbackRecord(requestID, satisfaction, accuracy, at)
}

// LearningArtifact is a persisted record of learning-loop output tied to a
// request: insights, refinements, and cycle annotations.
type LearningArtifact struct {
	// ID is the unique identifier for this artifact.
	ID string `json:"id"`
	// RequestID is the request whose feedback produced the artifact.
	RequestID string `json:"request_id"`
	// Kind distinguishes artifact flavors (e.g. "cycle_report", "insight").
	Kind string `json:"kind"`
	// Summary is a human-readable annotation.
	Summary string `json:"summary"`
	// Payload is the JSON-encoded artifact body.
	Payload string `json:"payload,omitempty"`
	// CreatedAt is when the artifact was recorded.
	CreatedAt time.Time `json:"created_at"`
}
