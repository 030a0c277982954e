package models

import "time"

// AgentPerformanceProfile tracks one agent's performance over time.
// All fields other than TotalRequests are exponential moving averages
// updated exclusively by the learning loop's refine stage.
type AgentPerformanceProfile struct {
	// AgentID is the agent the profile describes.
	AgentID AgentID `json:"agent_id"`
	// SuccessRate is the EMA of per-request success in [0, 1].
	SuccessRate float64 `json:"success_rate"`
	// AvgResponseTime is the EMA of per-response processing time.
	AvgResponseTime time.Duration `json:"avg_response_time"`
	// TotalRequests is the cumulative count of distinct responses observed.
	TotalRequests int64 `json:"total_requests"`
	// Satisfaction is the EMA of feedback satisfaction in [0, 1].
	Satisfaction float64 `json:"satisfaction"`
	// Accuracy is the EMA of feedback accuracy in [0, 1].
	Accuracy float64 `json:"accuracy"`
	// Available reports whether the router may assign this agent.
	Available bool `json:"available"`
}
