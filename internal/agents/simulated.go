package agents

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/dispatchd/dispatchd/pkg/models"
)

// contentTemplates are the canned response shapes per agent kind.
var contentTemplates = map[models.AgentID]string{
	models.AgentProductSearch:    "Search results for %q: 3 matching suppliers found across 2 regions.",
	models.AgentPriceNegotiation: "Negotiation analysis for %q: volume discount of 8-12%% achievable.",
	models.AgentVerification:     "Verification report for %q: no compliance or authenticity issues found.",
	models.AgentSupplyChain:      "Logistics summary for %q: current lead time 6 days, no backorders.",
	models.AgentTranslation:      "Translation package for %q prepared across requested locales.",
	models.AgentTechnical:        "Technical analysis for %q complete: no defects identified.",
	models.AgentStrategic:        "Strategic assessment for %q: market position favorable.",
	models.AgentSecure:           "Processed %q locally under the secure handling policy.",
	models.AgentHumanOperator:    "Queued %q for operator review.",
}

// Simulated is a deterministic executor standing in for a live agent.
// Latency and confidence derive from a hash of the input so tests and
// repeated runs see stable behavior.
type Simulated struct {
	id models.AgentID
	// latencyScale stretches the simulated delay. Tests use a tiny scale
	// to keep dispatch fast.
	latencyScale time.Duration
}

// NewSimulated creates a simulated executor for one agent kind.
func NewSimulated(id models.AgentID, latencyScale time.Duration) *Simulated {
	return &Simulated{id: id, latencyScale: latencyScale}
}

// SimulatedFleet builds a fleet with one simulated executor per agent kind.
func SimulatedFleet(latencyScale time.Duration) Fleet {
	fleet := make(Fleet, len(models.AgentIDs()))
	for _, id := range models.AgentIDs() {
		fleet[id] = NewSimulated(id, latencyScale)
	}
	return fleet
}

// Execute produces the canned response after a deterministic delay.
func (s *Simulated) Execute(ctx context.Context, text string, category models.Category) (Result, error) {
	start := time.Now()
	seed := hashOf(string(s.id) + text)

	// 1x-4x the scale, so different agents finish at different times.
	delay := s.latencyScale * time.Duration(1+seed%4)
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-time.After(delay):
	}

	template, ok := contentTemplates[s.id]
	if !ok {
		template = "Processed %q."
	}

	return Result{
		Content:    fmt.Sprintf(template, truncate(text, 80)),
		Confidence: 0.70 + float64(seed%26)/100, // [0.70, 0.95]
		Duration:   time.Since(start),
	}, nil
}

func hashOf(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
