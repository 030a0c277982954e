package models

import "time"

// DispatchMode describes how a routing decision dispatches a request.
type DispatchMode string

const (
	// DispatchAutoRoute assigns exactly one specialist agent.
	DispatchAutoRoute DispatchMode = "auto_route"
	// DispatchDualProcessing assigns two agents to hedge an uncertain classification.
	DispatchDualProcessing DispatchMode = "dual_processing"
	// DispatchEscalation assigns only the human operator.
	DispatchEscalation DispatchMode = "escalation"
	// DispatchSecure assigns only the secure local agent, bypassing thresholds.
	// It is distinct from escalation so sensitive traffic is observable on its own.
	DispatchSecure DispatchMode = "secure"
	// DispatchFallback is the decision produced on any internal routing fault.
	DispatchFallback DispatchMode = "fallback"
)

// Valid returns true if the dispatch mode is a known value.
func (m DispatchMode) Valid() bool {
	switch m {
	case DispatchAutoRoute, DispatchDualProcessing, DispatchEscalation,
		DispatchSecure, DispatchFallback:
		return true
	default:
		return false
	}
}

// AgentSnapshot captures one assigned agent's load and availability at
// decision time.
type AgentSnapshot struct {
	// AgentID is the agent the snapshot describes.
	AgentID AgentID `json:"agent_id"`
	// TotalRequests is the agent's cumulative request count.
	TotalRequests int64 `json:"total_requests"`
	// Available is the agent's availability flag.
	Available bool `json:"available"`
}

// RoutingDecision is the outcome of routing one classification result.
// Agents is never empty: internal faults still yield a fallback decision
// assigning the human operator.
type RoutingDecision struct {
	// Agents is the ordered list of assigned agent kinds.
	Agents []AgentID `json:"agents"`
	// Mode is the dispatch mode for this decision.
	Mode DispatchMode `json:"mode"`
	// EstimatedTime is the mean of the assigned agents' historical average
	// response times. Zero when no history exists.
	EstimatedTime time.Duration `json:"estimated_time"`
	// Snapshots holds each assigned agent's load state at decision time.
	Snapshots []AgentSnapshot `json:"snapshots"`
	// DecidedAt is when the decision was made.
	DecidedAt time.Time `json:"decided_at"`
}
