package models

// AgentID identifies one of the closed set of agent kinds. Agent IDs are
// never constructed from request text; routing always resolves through
// the registry.
type AgentID string

const (
	// AgentProductSearch handles product discovery and sourcing tasks.
	AgentProductSearch AgentID = "product_search_agent"
	// AgentPriceNegotiation handles pricing and deal-making tasks.
	AgentPriceNegotiation AgentID = "price_negotiation_agent"
	// AgentVerification handles authenticity and compliance tasks.
	AgentVerification AgentID = "verification_agent"
	// AgentSupplyChain handles logistics and fulfillment tasks.
	AgentSupplyChain AgentID = "supply_chain_agent"
	// AgentTranslation handles multilingual tasks.
	AgentTranslation AgentID = "translation_agent"
	// AgentTechnical handles code and data analysis tasks.
	AgentTechnical AgentID = "technical_agent"
	// AgentStrategic handles planning and business analysis tasks.
	AgentStrategic AgentID = "strategic_agent"
	// AgentSecure handles sensitive content in isolation. It is the sole
	// assignee whenever the sensitive category scores above zero.
	AgentSecure AgentID = "secure_local_agent"
	// AgentHumanOperator is the manual-review escalation target and the
	// fallback assignee on internal routing faults.
	AgentHumanOperator AgentID = "human_operator"
)

// AgentIDs returns every registered agent kind in a stable order.
func AgentIDs() []AgentID {
	return []AgentID{
		AgentProductSearch,
		AgentPriceNegotiation,
		AgentVerification,
		AgentSupplyChain,
		AgentTranslation,
		AgentTechnical,
		AgentStrategic,
		AgentSecure,
		AgentHumanOperator,
	}
}

// Valid returns true if the agent ID is a known value.
func (a AgentID) Valid() bool {
	switch a {
	case AgentProductSearch, AgentPriceNegotiation, AgentVerification,
		AgentSupplyChain, AgentTranslation, AgentTechnical, AgentStrategic,
		AgentSecure, AgentHumanOperator:
		return true
	default:
		return false
	}
}

// AgentInfo describes an agent kind's static capability metadata.
type AgentInfo struct {
	// ID is the agent kind.
	ID AgentID `json:"id"`
	// Category is the specialist category this agent serves, if any.
	Category Category `json:"category,omitempty"`
	// Capabilities lists what the agent can do.
	Capabilities []string `json:"capabilities"`
}
