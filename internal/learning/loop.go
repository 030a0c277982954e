package learning

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dispatchd/dispatchd/pkg/models"
)

// Loop tuning constants, fixed by the adaptation design.
const (
	// feedbackWindow is how many recent feedback records the search stage
	// examines.
	feedbackWindow = 100
	// thresholdStep is the per-cycle threshold decrement on a declining
	// satisfaction trend.
	thresholdStep = 0.05
	// clusterBar is the satisfaction floor for the high-satisfaction cluster.
	clusterBar = 0.8
	// clusterSize is the cluster population above which the current routing
	// configuration is flagged to stand.
	clusterSize = 20
	// recentSpan is how many of the newest records feed the weight nudge.
	recentSpan = 10
	// dedupeCap bounds how many recent requests the duplicate-feedback
	// guards remember.
	dedupeCap = 1000
	// availabilityFloor disables agents whose success EMA drops below it.
	availabilityFloor = 0.7
)

// ArtifactWriter persists learning artifacts. The store satisfies this;
// a nil writer skips persistence entirely.
type ArtifactWriter interface {
	InsertArtifact(artifact *models.LearningArtifact) error
}

// Loop runs one search/act/interpret/refine cycle per feedback event.
// Cycles are serialized: the loop's own mutex guards the feedback window
// and the per-request counted-response sets, while all state mutations
// flow through State.commit.
type Loop struct {
	state     *State
	artifacts ArtifactWriter
	logger    *zap.Logger

	mu      sync.Mutex
	window  []models.FeedbackRecord
	counted map[string]map[string]struct{}
	// seen tracks requests whose failure updates already applied, so
	// duplicate feedback cannot re-penalize unresponsive agents.
	seen map[string]struct{}
	// order lists tracked request IDs oldest-first so the dedupe guards
	// can evict once dedupeCap is reached.
	order []string
}

// NewLoop creates a learning loop over the shared state. artifacts may be
// nil to disable cycle-report persistence.
func NewLoop(state *State, artifacts ArtifactWriter, logger *zap.Logger) *Loop {
	return &Loop{
		state:     state,
		artifacts: artifacts,
		logger:    logger,
		counted:   make(map[string]map[string]struct{}),
		seen:      make(map[string]struct{}),
	}
}

// OnFeedback runs one full cycle for a feedback record, the agents that
// were assigned, and the responses collected. Assigned agents without a
// response count as failures the first time the request is seen. A stage
// failure aborts the cycle before refine, leaving the shared state
// untouched. Responses already counted for the same request do not
// update profiles again.
func (l *Loop) OnFeedback(rec models.FeedbackRecord, assigned []models.AgentID, responses []models.AgentResponse) (*CycleReport, error) {
	if err := validateFeedback(rec); err != nil {
		return nil, fmt.Errorf("search stage: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fresh := l.uncounted(rec.RequestID, responses)

	var failed []models.AgentID
	if _, ok := l.seen[rec.RequestID]; !ok {
		failed = unresponsive(assigned, responses)
	}

	l.window = append(l.window, rec)
	if len(l.window) > feedbackWindow {
		l.window = l.window[len(l.window)-feedbackWindow:]
	}

	findings := search(l.window)
	intents := act(findings)
	insights := interpret(findings, intents, l.state.Profiles())

	delta := buildDelta(intents, rec, fresh, failed)
	l.state.commit(delta)
	l.markCounted(rec.RequestID, fresh)
	l.track(rec.RequestID)

	high, medium := l.state.Thresholds()
	report := &CycleReport{
		RequestID:       rec.RequestID,
		Findings:        findings,
		Intents:         intents,
		Insights:        insights,
		HighThreshold:   high,
		MediumThreshold: medium,
		LearningRate:    l.state.LearningRate(),
		AgentsTouched:   touchedAgents(delta.updates),
		NewResponses:    len(fresh),
		CompletedAt:     time.Now().UTC(),
	}

	l.persist(report)
	return report, nil
}

// WindowSize reports how many feedback records are currently retained.
func (l *Loop) WindowSize() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.window)
}

// validateFeedback rejects records whose scores fall outside [0, 1].
func validateFeedback(rec models.FeedbackRecord) error {
	if rec.RequestID == "" {
		return fmt.Errorf("feedback has no request id")
	}
	for name, v := range map[string]float64{
		"satisfaction": rec.Satisfaction,
		"accuracy":     rec.Accuracy,
		"combined":     rec.Combined,
	} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("feedback %s %v out of range", name, v)
		}
	}
	return nil
}

// uncounted filters out responses already observed for this request.
func (l *Loop) uncounted(requestID string, responses []models.AgentResponse) []models.AgentResponse {
	seen := l.counted[requestID]
	var fresh []models.AgentResponse
	for _, r := range responses {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		fresh = append(fresh, r)
	}
	return fresh
}

func (l *Loop) markCounted(requestID string, responses []models.AgentResponse) {
	if len(responses) == 0 {
		return
	}
	seen := l.counted[requestID]
	if seen == nil {
		seen = make(map[string]struct{}, len(responses))
		l.counted[requestID] = seen
	}
	for _, r := range responses {
		seen[r.ID] = struct{}{}
	}
}

// track remembers a request for duplicate detection, evicting the oldest
// tracked requests once the cap is reached so the guards stay bounded in
// long-running processes.
func (l *Loop) track(requestID string) {
	if _, ok := l.seen[requestID]; ok {
		return
	}
	l.seen[requestID] = struct{}{}
	l.order = append(l.order, requestID)
	for len(l.order) > dedupeCap {
		old := l.order[0]
		l.order = l.order[1:]
		delete(l.seen, old)
		delete(l.counted, old)
	}
}

// search aggregates the feedback window into findings.
func search(window []models.FeedbackRecord) Findings {
	f := Findings{Window: len(window)}
	if len(window) == 0 {
		f.SatisfactionTrend = TrendFlat
		f.AccuracyTrend = TrendFlat
		return f
	}

	var satSum, accSum, clusterAccSum float64
	for _, rec := range window {
		satSum += rec.Satisfaction
		accSum += rec.Accuracy
		if rec.Satisfaction >= clusterBar {
			f.HighSatisfactionCount++
			clusterAccSum += rec.Accuracy
		}
	}
	n := float64(len(window))
	f.AvgSatisfaction = satSum / n
	f.AvgAccuracy = accSum / n
	if f.HighSatisfactionCount > 0 {
		f.HighSatisfactionAccuracy = clusterAccSum / float64(f.HighSatisfactionCount)
	}

	recent := window
	if len(recent) > recentSpan {
		recent = recent[len(recent)-recentSpan:]
	}
	var recentAccSum float64
	for _, rec := range recent {
		recentAccSum += rec.Accuracy
	}
	f.RecentAccuracy = recentAccSum / float64(len(recent))

	oldest, newest := window[0], window[len(window)-1]
	f.SatisfactionTrend = trendOf(oldest.Satisfaction, newest.Satisfaction, len(window))
	f.AccuracyTrend = trendOf(oldest.Accuracy, newest.Accuracy, len(window))
	return f
}

// act plans adaptations from the findings.
func act(f Findings) []Intent {
	var intents []Intent

	if f.SatisfactionTrend == TrendDeclining {
		intents = append(intents, Intent{
			Kind:   IntentLowerThresholds,
			Step:   thresholdStep,
			Detail: fmt.Sprintf("satisfaction declining across %d records", f.Window),
		})
	}

	if f.AccuracyTrend == TrendDeclining {
		intents = append(intents, Intent{
			Kind:  IntentNudgeWeights,
			Nudge: (f.RecentAccuracy - 0.5) * 0.1,
			Detail: fmt.Sprintf("accuracy declining, recent mean %.2f over last %d records",
				f.RecentAccuracy, recentSpan),
		})
	}

	if f.HighSatisfactionCount > clusterSize {
		intents = append(intents, Intent{
			Kind: IntentMaintain,
			Detail: fmt.Sprintf("%d high-satisfaction records with mean accuracy %.2f",
				f.HighSatisfactionCount, f.HighSatisfactionAccuracy),
		})
	}
	return intents
}

// interpret turns findings and intents into operator-facing insights.
func interpret(f Findings, intents []Intent, profiles map[models.AgentID]models.AgentPerformanceProfile) []Insight {
	var insights []Insight

	switch f.SatisfactionTrend {
	case TrendDeclining:
		insights = append(insights, Insight{
			Type:           "trend",
			Priority:       "high",
			Recommendation: "routing thresholds lowered to widen escalation",
			Detail:         fmt.Sprintf("satisfaction trending down, window mean %.2f", f.AvgSatisfaction),
		})
	case TrendImproving:
		insights = append(insights, Insight{
			Type:     "trend",
			Priority: "low",
			Detail:   fmt.Sprintf("satisfaction trending up, window mean %.2f", f.AvgSatisfaction),
		})
	}

	for _, in := range intents {
		switch in.Kind {
		case IntentNudgeWeights:
			insights = append(insights, Insight{
				Type:           "keyword_optimization",
				Priority:       "medium",
				Recommendation: "keyword weights adjusted toward recent accuracy",
				Detail:         in.Detail,
			})
		case IntentMaintain:
			insights = append(insights, Insight{
				Type:           "routing_optimization",
				Priority:       "high",
				Recommendation: "keep current routing, monitor satisfaction trends",
				Detail:         in.Detail,
			})
		}
	}

	for _, id := range models.AgentIDs() {
		p, ok := profiles[id]
		if !ok || p.TotalRequests == 0 {
			continue
		}
		if p.SuccessRate < availabilityFloor {
			insights = append(insights, Insight{
				Type:           "agent_health",
				Priority:       "high",
				Recommendation: fmt.Sprintf("agent %s removed from routing until recovery", id),
				Detail:         fmt.Sprintf("success rate %.2f below floor %.2f", p.SuccessRate, availabilityFloor),
			})
		}
	}

	return insights
}

// unresponsive lists assigned agents that produced no response.
func unresponsive(assigned []models.AgentID, responses []models.AgentResponse) []models.AgentID {
	responded := make(map[models.AgentID]struct{}, len(responses))
	for _, r := range responses {
		responded[r.AgentID] = struct{}{}
	}
	var out []models.AgentID
	for _, id := range assigned {
		if _, ok := responded[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// buildDelta assembles the refine-stage state mutations.
func buildDelta(intents []Intent, rec models.FeedbackRecord, fresh []models.AgentResponse, failed []models.AgentID) stateDelta {
	d := stateDelta{availabilityFloor: availabilityFloor}

	for _, in := range intents {
		switch in.Kind {
		case IntentLowerThresholds:
			d.thresholdStep = in.Step
		case IntentNudgeWeights:
			d.weightNudge = in.Nudge
		}
	}

	// One update per agent; a response's presence counts as a success since
	// failed dispatches never produce a persisted response.
	perAgent := make(map[models.AgentID]*profileUpdate)
	for _, r := range fresh {
		u, ok := perAgent[r.AgentID]
		if !ok {
			u = &profileUpdate{
				agent:        r.AgentID,
				success:      1.0,
				satisfaction: rec.Satisfaction,
				accuracy:     rec.Accuracy,
			}
			perAgent[r.AgentID] = u
		}
		u.newResponses++
		if r.Duration > u.responseTime {
			u.responseTime = r.Duration
		}
	}
	for _, u := range perAgent {
		d.updates = append(d.updates, *u)
	}
	for _, id := range failed {
		d.updates = append(d.updates, profileUpdate{agent: id, failed: true})
	}
	sort.Slice(d.updates, func(i, j int) bool { return d.updates[i].agent < d.updates[j].agent })

	return d
}

func touchedAgents(updates []profileUpdate) []models.AgentID {
	if len(updates) == 0 {
		return nil
	}
	ids := make([]models.AgentID, 0, len(updates))
	for _, u := range updates {
		ids = append(ids, u.agent)
	}
	return ids
}

// persist writes the cycle report as a learning artifact. Persistence
// failures are logged and swallowed; learning output must never fail a
// request that already completed.
func (l *Loop) persist(report *CycleReport) {
	if l.artifacts == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		l.logger.Warn("cycle report encode failed", zap.Error(err))
		return
	}
	artifact := &models.LearningArtifact{
		ID:        uuid.NewString(),
		RequestID: report.RequestID,
		Kind:      "cycle_report",
		Summary:   report.Summary(),
		Payload:   string(payload),
		CreatedAt: report.CompletedAt,
	}
	if err := l.artifacts.InsertArtifact(artifact); err != nil {
		l.logger.Warn("cycle report persist failed",
			zap.String("request_id", report.RequestID), zap.Error(err))
	}
}
