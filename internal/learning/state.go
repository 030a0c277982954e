// Package learning holds the shared adaptive state (thresholds, keyword
// weights, learning rate, agent profiles) and the feedback loop that
// recalibrates it.
package learning

import (
	"sync"
	"time"

	"github.com/dispatchd/dispatchd/internal/classifier"
	"github.com/dispatchd/dispatchd/pkg/models"
)

// Threshold bounds and the minimum separation between high and medium.
const (
	ThresholdMin = 0.1
	ThresholdMax = 0.9
	thresholdGap = 0.01
)

// Params configures the initial learning state.
type Params struct {
	// HighThreshold is the initial auto-route confidence bound.
	HighThreshold float64
	// MediumThreshold is the initial dual-processing confidence bound.
	MediumThreshold float64
	// LearningRate is the initial EMA update weight.
	LearningRate float64
	// DecayFactor multiplies the learning rate each refine cycle. Must be < 1.
	DecayFactor float64
	// Lexicons is the initial keyword weight table.
	Lexicons models.LexiconSet
}

// State is the process-wide shared learning state. Every read by the
// classifier and router and every write by the learning loop is serialized
// through its mutex, so the threshold-ordering invariant and the EMA
// arithmetic are never observed or applied inconsistently.
type State struct {
	mu       sync.RWMutex
	high     float64
	medium   float64
	rate     float64
	decay    float64
	lexicons models.LexiconSet
	profiles map[models.AgentID]*models.AgentPerformanceProfile
	// observations counts EMA updates per agent. The first observation
	// seeds the averages; the disable check waits for minObservations.
	observations map[models.AgentID]int64
}

// NewState creates the shared state, seeding an available profile for
// every registered agent kind. Thresholds are clamped into their legal
// bounds up front so the ordering invariant holds from the start.
func NewState(p Params) *State {
	s := &State{
		rate:         p.LearningRate,
		decay:        p.DecayFactor,
		lexicons:     p.Lexicons.Clone(),
		profiles:     make(map[models.AgentID]*models.AgentPerformanceProfile),
		observations: make(map[models.AgentID]int64),
	}
	s.high, s.medium = clampThresholds(p.HighThreshold, p.MediumThreshold)

	for _, id := range models.AgentIDs() {
		s.profiles[id] = &models.AgentPerformanceProfile{
			AgentID:   id,
			Available: true,
		}
	}
	return s
}

// Thresholds returns the current (high, medium) confidence thresholds.
func (s *State) Thresholds() (high, medium float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.high, s.medium
}

// LearningRate returns the current learning rate.
func (s *State) LearningRate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate
}

// Lexicons returns a copy of the current keyword weight table.
// Implements classifier.WeightSource.
func (s *State) Lexicons() models.LexiconSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lexicons.Clone()
}

// ReplaceLexicons swaps in a new keyword weight table, clamping every
// weight to its legal bounds. Implements classifier.LexiconSink for
// lexicon-file hot reload.
func (s *State) ReplaceLexicons(set models.LexiconSet) {
	clamped := set.Clone()
	for _, lex := range clamped {
		for term, w := range lex {
			lex[term] = classifier.ClampWeight(w)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lexicons = clamped
}

// Profile returns a copy of one agent's performance profile.
func (s *State) Profile(id models.AgentID) (models.AgentPerformanceProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return models.AgentPerformanceProfile{}, false
	}
	return *p, true
}

// Profiles returns a copy of every agent's performance profile.
func (s *State) Profiles() map[models.AgentID]models.AgentPerformanceProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[models.AgentID]models.AgentPerformanceProfile, len(s.profiles))
	for id, p := range s.profiles {
		out[id] = *p
	}
	return out
}

// minObservations is how many EMA updates an agent needs before the
// availability floor can disable it.
const minObservations = 5

// profileUpdate carries the incoming EMA measurements for one agent,
// derived from the responses genuinely newly observed for a request.
// A failed update (assigned agent, no response) moves only the success
// rate; there is no response time or feedback signal to average in.
type profileUpdate struct {
	agent        models.AgentID
	success      float64
	responseTime time.Duration
	satisfaction float64
	accuracy     float64
	newResponses int64
	failed       bool
}

// stateDelta is the complete set of mutations one refine cycle commits.
// It is applied atomically so a feedback event either fully lands or,
// when an earlier stage fails, never touches the state at all.
type stateDelta struct {
	// thresholdStep is subtracted from both thresholds when non-zero.
	thresholdStep float64
	// weightNudge is added to every keyword weight when non-zero.
	weightNudge float64
	// updates are the per-agent EMA inputs.
	updates []profileUpdate
	// availabilityFloor disables agents whose success EMA falls below it.
	// Zero disables the check.
	availabilityFloor float64
}

// commit applies a refine delta under the single mutation point.
// Thresholds stay clamped and ordered; weights stay within bounds;
// the learning rate decays once per commit.
func (s *State) commit(d stateDelta) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.thresholdStep != 0 {
		s.high, s.medium = clampThresholds(s.high-d.thresholdStep, s.medium-d.thresholdStep)
	}

	if d.weightNudge != 0 {
		for _, lex := range s.lexicons {
			for term, w := range lex {
				lex[term] = classifier.ClampWeight(w + d.weightNudge)
			}
		}
	}

	alpha := s.rate
	for _, u := range d.updates {
		p, ok := s.profiles[u.agent]
		if !ok {
			continue
		}
		first := s.observations[u.agent] == 0

		if first {
			// Seed the averages so the EMA tracks real behavior instead
			// of drifting up from zero.
			p.SuccessRate = u.success
		} else {
			p.SuccessRate = ema(alpha, u.success, p.SuccessRate)
		}
		if !u.failed {
			if first {
				p.AvgResponseTime = u.responseTime
				p.Satisfaction = u.satisfaction
				p.Accuracy = u.accuracy
			} else {
				p.AvgResponseTime = time.Duration(ema(alpha, float64(u.responseTime), float64(p.AvgResponseTime)))
				p.Satisfaction = ema(alpha, u.satisfaction, p.Satisfaction)
				p.Accuracy = ema(alpha, u.accuracy, p.Accuracy)
			}
		}
		p.TotalRequests += u.newResponses
		s.observations[u.agent]++

		if d.availabilityFloor > 0 && s.observations[u.agent] >= minObservations &&
			p.SuccessRate < d.availabilityFloor {
			p.Available = false
		}
	}

	s.rate *= s.decay
}

// ema is the documented exponential-moving-average update.
func ema(alpha, incoming, old float64) float64 {
	return alpha*incoming + (1-alpha)*old
}

// clampThresholds bounds both thresholds to [ThresholdMin, ThresholdMax]
// and keeps high strictly above medium.
func clampThresholds(high, medium float64) (float64, float64) {
	if high > ThresholdMax {
		high = ThresholdMax
	}
	if high < ThresholdMin+thresholdGap {
		high = ThresholdMin + thresholdGap
	}
	if medium < ThresholdMin {
		medium = ThresholdMin
	}
	if medium > high-thresholdGap {
		medium = high - thresholdGap
	}
	return high, medium
}
