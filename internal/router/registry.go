// Package router turns classification results into routing decisions:
// which agents handle a request and under which dispatch mode.
package router

import "github.com/dispatchd/dispatchd/pkg/models"

// catalog is the closed agent registry. Routing only ever assigns agents
// from this table; request text never names an agent directly.
var catalog = map[models.AgentID]models.AgentInfo{
	models.AgentProductSearch: {
		ID:           models.AgentProductSearch,
		Category:     models.CategoryProductSearch,
		Capabilities: []string{"global_search", "price_comparison", "supplier_analysis", "market_research"},
	},
	models.AgentPriceNegotiation: {
		ID:           models.AgentPriceNegotiation,
		Category:     models.CategoryPriceNegotiation,
		Capabilities: []string{"price_optimization", "supplier_negotiation", "demand_forecasting", "competitive_analysis"},
	},
	models.AgentVerification: {
		ID:           models.AgentVerification,
		Category:     models.CategoryVerification,
		Capabilities: []string{"product_verification", "fraud_detection", "compliance_checking", "quality_assurance"},
	},
	models.AgentSupplyChain: {
		ID:           models.AgentSupplyChain,
		Category:     models.CategorySupplyChain,
		Capabilities: []string{"logistics_monitoring", "inventory_tracking", "delivery_optimization", "real_time_insights"},
	},
	models.AgentTranslation: {
		ID:           models.AgentTranslation,
		Category:     models.CategoryTranslation,
		Capabilities: []string{"multilingual_translation", "voice_processing", "cross_border_communication", "cultural_adaptation"},
	},
	models.AgentTechnical: {
		ID:           models.AgentTechnical,
		Category:     models.CategoryTechnical,
		Capabilities: []string{"code_analysis", "debugging", "algorithm_optimization"},
	},
	models.AgentStrategic: {
		ID:           models.AgentStrategic,
		Category:     models.CategoryStrategic,
		Capabilities: []string{"business_analysis", "market_research", "strategy_planning"},
	},
	models.AgentSecure: {
		ID:           models.AgentSecure,
		Category:     models.CategorySensitive,
		Capabilities: []string{"secure_processing", "privacy_compliance", "local_analysis"},
	},
	models.AgentHumanOperator: {
		ID:           models.AgentHumanOperator,
		Capabilities: []string{"complex_analysis", "decision_making", "escalation_handling"},
	},
}

// Catalog returns the full agent registry in stable order.
func Catalog() []models.AgentInfo {
	out := make([]models.AgentInfo, 0, len(catalog))
	for _, id := range models.AgentIDs() {
		out = append(out, catalog[id])
	}
	return out
}

// Lookup returns the registry entry for one agent kind.
func Lookup(id models.AgentID) (models.AgentInfo, bool) {
	info, ok := catalog[id]
	return info, ok
}

// specialistFor maps a category to its dedicated agent. The sensitive
// category maps to the secure local agent; unknown and unmapped
// categories have no specialist.
func specialistFor(cat models.Category) (models.AgentID, bool) {
	for _, id := range models.AgentIDs() {
		if info := catalog[id]; info.Category == cat && info.Category != "" {
			return id, true
		}
	}
	return "", false
}
