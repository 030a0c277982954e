package router

import (
	"time"

	"go.uber.org/zap"

	"github.com/dispatchd/dispatchd/internal/classifier"
	"github.com/dispatchd/dispatchd/internal/learning"
	"github.com/dispatchd/dispatchd/pkg/models"
)

// Router assigns agents to classified requests. Route is total: it never
// returns an error, and any internal fault degrades to the fallback
// decision assigning the human operator.
type Router struct {
	state   *learning.State
	history *history
	logger  *zap.Logger
}

// New creates a Router reading thresholds and agent profiles from the
// shared learning state.
func New(state *learning.State, logger *zap.Logger) *Router {
	return &Router{
		state:   state,
		history: newHistory(),
		logger:  logger,
	}
}

// Route decides which agents handle a classified request.
//
// Rules, in priority order:
//  1. Any non-zero sensitive score assigns only the secure local agent.
//  2. Confidence above the high threshold auto-routes to the primary
//     category's specialist.
//  3. Confidence between the thresholds dual-processes with the primary
//     specialist plus the second-ranked category's specialist, or the
//     human operator when no distinct second specialist exists.
//  4. Anything else escalates to the human operator.
//
// Unavailable specialists are replaced by the human operator. Every
// decision is appended to the routing history.
func (r *Router) Route(result models.ClassificationResult) (decision models.RoutingDecision) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("routing fault, using fallback", zap.Any("panic", rec))
			decision = r.finish(result, []models.AgentID{models.AgentHumanOperator}, models.DispatchFallback)
		}
	}()

	agents, mode := r.assign(result)
	return r.finish(result, agents, mode)
}

func (r *Router) assign(result models.ClassificationResult) ([]models.AgentID, models.DispatchMode) {
	if result.Score(models.CategorySensitive) > 0 {
		return []models.AgentID{models.AgentSecure}, models.DispatchSecure
	}

	high, medium := r.state.Thresholds()
	conf := result.Confidence

	switch {
	case conf > high:
		return []models.AgentID{r.specialistOrOperator(result.Primary)}, models.DispatchAutoRoute

	case conf > medium:
		primary := r.specialistOrOperator(result.Primary)
		if primary == models.AgentHumanOperator {
			// No specialist to pair with: plain escalation.
			return []models.AgentID{models.AgentHumanOperator}, models.DispatchEscalation
		}
		second := r.secondAgent(result, primary)
		return []models.AgentID{primary, second}, models.DispatchDualProcessing

	default:
		return []models.AgentID{models.AgentHumanOperator}, models.DispatchEscalation
	}
}

// specialistOrOperator resolves a category's specialist, falling back to
// the human operator when none exists or the specialist is unavailable.
func (r *Router) specialistOrOperator(cat models.Category) models.AgentID {
	id, ok := specialistFor(cat)
	if !ok {
		return models.AgentHumanOperator
	}
	if p, ok := r.state.Profile(id); ok && !p.Available {
		return models.AgentHumanOperator
	}
	return id
}

// secondAgent picks the dual-processing partner: the specialist of the
// best-scoring other category, or the human operator when no distinct
// available specialist has a non-zero score.
func (r *Router) secondAgent(result models.ClassificationResult, primary models.AgentID) models.AgentID {
	for _, cat := range classifier.RankedCategories(result.Scores) {
		if result.Score(cat) <= 0 {
			break
		}
		id, ok := specialistFor(cat)
		if !ok || id == primary {
			continue
		}
		if p, ok := r.state.Profile(id); ok && !p.Available {
			continue
		}
		return id
	}
	return models.AgentHumanOperator
}

// finish fills in the decision metadata and records it in the history.
func (r *Router) finish(result models.ClassificationResult, agents []models.AgentID, mode models.DispatchMode) models.RoutingDecision {
	now := time.Now().UTC()
	decision := models.RoutingDecision{
		Agents:        agents,
		Mode:          mode,
		EstimatedTime: r.estimate(agents),
		Snapshots:     r.snapshots(agents),
		DecidedAt:     now,
	}
	r.history.add(HistoryEntry{Classification: result, Decision: decision, At: now})
	return decision
}

// estimate is the mean of the assigned agents' historical average
// response times. Agents with no history contribute zero.
func (r *Router) estimate(agents []models.AgentID) time.Duration {
	if len(agents) == 0 {
		return 0
	}
	var total time.Duration
	for _, id := range agents {
		if p, ok := r.state.Profile(id); ok {
			total += p.AvgResponseTime
		}
	}
	return total / time.Duration(len(agents))
}

func (r *Router) snapshots(agents []models.AgentID) []models.AgentSnapshot {
	out := make([]models.AgentSnapshot, 0, len(agents))
	for _, id := range agents {
		snap := models.AgentSnapshot{AgentID: id, Available: true}
		if p, ok := r.state.Profile(id); ok {
			snap.TotalRequests = p.TotalRequests
			snap.Available = p.Available
		}
		out = append(out, snap)
	}
	return out
}
