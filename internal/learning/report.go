package learning

import (
	"fmt"
	"time"

	"github.com/dispatchd/dispatchd/pkg/models"
)

// Trend labels the direction of a metric across the feedback window.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendFlat      Trend = "flat"
)

// Findings is the output of the search stage: aggregate statistics over
// the recent feedback window plus the high-satisfaction cluster.
type Findings struct {
	// Window is the number of feedback records examined.
	Window int `json:"window"`
	// AvgSatisfaction is the mean satisfaction across the window.
	AvgSatisfaction float64 `json:"avg_satisfaction"`
	// AvgAccuracy is the mean accuracy across the window.
	AvgAccuracy float64 `json:"avg_accuracy"`
	// RecentAccuracy is the mean accuracy over the newest records only.
	RecentAccuracy float64 `json:"recent_accuracy"`
	// SatisfactionTrend compares the newest record against the oldest.
	SatisfactionTrend Trend `json:"satisfaction_trend"`
	// AccuracyTrend compares the newest record against the oldest.
	AccuracyTrend Trend `json:"accuracy_trend"`
	// HighSatisfactionCount is how many records clear the cluster bar.
	HighSatisfactionCount int `json:"high_satisfaction_count"`
	// HighSatisfactionAccuracy is the mean accuracy inside the cluster.
	HighSatisfactionAccuracy float64 `json:"high_satisfaction_accuracy"`
}

// IntentKind names one planned adaptation.
type IntentKind string

const (
	// IntentLowerThresholds plans a routing-threshold step down in response
	// to a declining satisfaction trend.
	IntentLowerThresholds IntentKind = "lower_thresholds"
	// IntentNudgeWeights plans a uniform keyword-weight adjustment derived
	// from recent mean accuracy, in response to a declining accuracy trend.
	IntentNudgeWeights IntentKind = "nudge_weights"
	// IntentMaintain records that the current configuration should stand,
	// issued when a sizeable high-satisfaction cluster is observed.
	IntentMaintain IntentKind = "maintain"
)

// Intent is one planned adaptation produced by the act stage.
type Intent struct {
	// Kind identifies the adaptation.
	Kind IntentKind `json:"kind"`
	// Step is the threshold decrement for lower_thresholds intents.
	Step float64 `json:"step,omitempty"`
	// Nudge is the weight delta for nudge_weights intents.
	Nudge float64 `json:"nudge,omitempty"`
	// Detail explains the triggering observation.
	Detail string `json:"detail"`
}

// Insight is a human-readable interpretation of the cycle's findings.
type Insight struct {
	// Type groups insights (e.g. "trend", "cluster", "agent_health").
	Type string `json:"type"`
	// Priority is "high", "medium", or "low".
	Priority string `json:"priority"`
	// Recommendation is the suggested operator action, if any.
	Recommendation string `json:"recommendation"`
	// Detail is the observation itself.
	Detail string `json:"detail"`
}

// CycleReport is the persisted record of one complete SAIR cycle
// (search, act, interpret, refine) for a single feedback event.
type CycleReport struct {
	// RequestID is the request whose feedback drove the cycle.
	RequestID string `json:"request_id"`
	// Findings is the search-stage output.
	Findings Findings `json:"findings"`
	// Intents are the act-stage adaptations that were committed.
	Intents []Intent `json:"intents"`
	// Insights are the interpret-stage observations.
	Insights []Insight `json:"insights"`
	// HighThreshold is the auto-route threshold after refine.
	HighThreshold float64 `json:"high_threshold"`
	// MediumThreshold is the dual-processing threshold after refine.
	MediumThreshold float64 `json:"medium_threshold"`
	// LearningRate is the decayed rate after refine.
	LearningRate float64 `json:"learning_rate"`
	// AgentsTouched lists the agents whose profiles were updated.
	AgentsTouched []models.AgentID `json:"agents_touched,omitempty"`
	// NewResponses is how many responses were newly counted this cycle.
	NewResponses int `json:"new_responses"`
	// CompletedAt is when the cycle finished.
	CompletedAt time.Time `json:"completed_at"`
}

// Summary renders the one-line annotation stored alongside the report.
func (r *CycleReport) Summary() string {
	return fmt.Sprintf("cycle: %d intents, %d insights, %d new responses, thresholds %.2f/%.2f",
		len(r.Intents), len(r.Insights), r.NewResponses, r.HighThreshold, r.MediumThreshold)
}

// trendOf compares the newest sample against the oldest. Fewer than two
// samples is flat by definition.
func trendOf(oldest, newest float64, n int) Trend {
	switch {
	case n < 2:
		return TrendFlat
	case newest > oldest:
		return TrendImproving
	case newest < oldest:
		return TrendDeclining
	default:
		return TrendFlat
	}
}
