package learning

import (
	"testing"

	"github.com/dispatchd/dispatchd/internal/classifier"
	"github.com/dispatchd/dispatchd/pkg/models"
)

func TestNewState_ClampsThresholds(t *testing.T) {
	tests := []struct {
		name         string
		high, medium float64
	}{
		{"above max", 1.5, 1.2},
		{"below min", 0.01, 0.001},
		{"inverted", 0.3, 0.8},
		{"normal", 0.7, 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState(Params{
				HighThreshold:   tt.high,
				MediumThreshold: tt.medium,
				LearningRate:    0.1,
				DecayFactor:     0.95,
				Lexicons:        classifier.DefaultLexicons(),
			})
			high, medium := s.Thresholds()
			if high > ThresholdMax || medium < ThresholdMin {
				t.Errorf("thresholds %.3f/%.3f out of bounds", high, medium)
			}
			if high <= medium {
				t.Errorf("high %.3f not above medium %.3f", high, medium)
			}
		})
	}
}

func TestState_SeedsAllAgentProfiles(t *testing.T) {
	s := newTestState()
	profiles := s.Profiles()
	for _, id := range models.AgentIDs() {
		p, ok := profiles[id]
		if !ok {
			t.Errorf("no profile seeded for %s", id)
			continue
		}
		if !p.Available {
			t.Errorf("agent %s seeded unavailable", id)
		}
		if p.TotalRequests != 0 {
			t.Errorf("agent %s seeded with %d requests", id, p.TotalRequests)
		}
	}
}

func TestState_ReplaceLexiconsClampsWeights(t *testing.T) {
	s := newTestState()

	set := classifier.DefaultLexicons()
	set[models.CategoryTechnical]["code"] = 50.0
	set[models.CategoryTechnical]["debug"] = 0.0001
	s.ReplaceLexicons(set)

	lex := s.Lexicons()[models.CategoryTechnical]
	if lex["code"] != classifier.MaxKeywordWeight {
		t.Errorf("weight = %v, want clamped to %v", lex["code"], classifier.MaxKeywordWeight)
	}
	if lex["debug"] != classifier.MinKeywordWeight {
		t.Errorf("weight = %v, want clamped to %v", lex["debug"], classifier.MinKeywordWeight)
	}
}

func TestState_LexiconsReturnsCopy(t *testing.T) {
	s := newTestState()

	snapshot := s.Lexicons()
	snapshot[models.CategoryTechnical]["code"] = 99.0

	if got := s.Lexicons()[models.CategoryTechnical]["code"]; got == 99.0 {
		t.Error("mutating the snapshot leaked into the shared state")
	}
}

func TestState_CommitKeepsThresholdOrdering(t *testing.T) {
	s := newTestState()

	// Step far past the lower bound.
	for i := 0; i < 30; i++ {
		s.commit(stateDelta{thresholdStep: 0.05})
	}

	high, medium := s.Thresholds()
	if high <= medium {
		t.Errorf("high %.3f not above medium %.3f after repeated steps", high, medium)
	}
	if medium < ThresholdMin {
		t.Errorf("medium %.3f below floor", medium)
	}
}
