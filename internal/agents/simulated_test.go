package agents

import (
	"context"
	"testing"
	"time"

	"github.com/dispatchd/dispatchd/pkg/models"
)

func TestSimulated_Deterministic(t *testing.T) {
	exec := NewSimulated(models.AgentTechnical, time.Microsecond)

	first, err := exec.Execute(context.Background(), "debug this code", models.CategoryTechnical)
	if err != nil {
		t.Fatal(err)
	}
	second, err := exec.Execute(context.Background(), "debug this code", models.CategoryTechnical)
	if err != nil {
		t.Fatal(err)
	}

	if first.Content != second.Content {
		t.Errorf("content differs across runs: %q vs %q", first.Content, second.Content)
	}
	if first.Confidence != second.Confidence {
		t.Errorf("confidence differs across runs: %v vs %v", first.Confidence, second.Confidence)
	}
}

func TestSimulated_ConfidenceBounds(t *testing.T) {
	texts := []string{"a", "find a product", "negotiate pricing", "verify compliance", "x y z"}
	for _, id := range models.AgentIDs() {
		exec := NewSimulated(id, time.Microsecond)
		for _, text := range texts {
			result, err := exec.Execute(context.Background(), text, models.CategoryUnknown)
			if err != nil {
				t.Fatal(err)
			}
			if result.Confidence < 0.70 || result.Confidence > 0.95 {
				t.Errorf("%s: confidence %v out of [0.70, 0.95]", id, result.Confidence)
			}
			if result.Content == "" {
				t.Errorf("%s: empty content", id)
			}
		}
	}
}

func TestSimulated_HonorsCancellation(t *testing.T) {
	exec := NewSimulated(models.AgentTechnical, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := exec.Execute(ctx, "debug this", models.CategoryTechnical); err == nil {
		t.Error("Execute returned without error on a cancelled context")
	}
}

func TestSimulatedFleet_CoversAllAgents(t *testing.T) {
	fleet := SimulatedFleet(time.Microsecond)
	for _, id := range models.AgentIDs() {
		if _, ok := fleet.Get(id); !ok {
			t.Errorf("no executor for %s", id)
		}
	}
}
