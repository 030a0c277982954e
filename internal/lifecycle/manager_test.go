package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dispatchd/dispatchd/internal/agents"
	"github.com/dispatchd/dispatchd/internal/classifier"
	"github.com/dispatchd/dispatchd/internal/learning"
	"github.com/dispatchd/dispatchd/internal/router"
	"github.com/dispatchd/dispatchd/internal/store"
	"github.com/dispatchd/dispatchd/pkg/models"
)

const (
	productText = "find and compare supplier prices to buy this product with fast shipping and delivery from a vendor with stock"
	// dualText sits in the dual-processing confidence band and routes to
	// the technical and strategic specialists.
	dualText = "debug the software code and analyze our business strategy"
)

func newTestManager(t *testing.T, db store.Store, fleet agents.Fleet) *Manager {
	t.Helper()

	logger := zap.NewNop()
	state := learning.NewState(learning.Params{
		HighThreshold:   0.70,
		MediumThreshold: 0.60,
		LearningRate:    0.1,
		DecayFactor:     0.95,
		Lexicons:        classifier.DefaultLexicons(),
	})
	if fleet == nil {
		fleet = agents.SimulatedFleet(time.Millisecond)
	}

	return NewManager(Config{
		Classifier:   classifier.New(state),
		Router:       router.New(state, logger),
		State:        state,
		Loop:         learning.NewLoop(state, db, logger),
		Store:        db,
		Fleet:        fleet,
		Emitter:      NewEmitter(256, logger),
		Logger:       logger,
		AgentTimeout: 5 * time.Second,
	})
}

// errorExecutor always fails.
type errorExecutor struct{}

func (errorExecutor) Execute(context.Context, string, models.Category) (agents.Result, error) {
	return agents.Result{}, errors.New("agent exploded")
}

// gatedExecutor blocks until released or the request is cancelled.
type gatedExecutor struct {
	release chan struct{}
}

func (g gatedExecutor) Execute(ctx context.Context, _ string, _ models.Category) (agents.Result, error) {
	select {
	case <-g.release:
		return agents.Result{Content: "gated response", Confidence: 0.8, Duration: time.Millisecond}, nil
	case <-ctx.Done():
		return agents.Result{}, ctx.Err()
	}
}

// failingStore rejects request inserts.
type failingStore struct {
	*store.MemoryStore
}

func (failingStore) InsertRequest(*models.Request) error {
	return errors.New("disk full")
}

// stallingStore holds request inserts until released.
type stallingStore struct {
	*store.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func (s *stallingStore) InsertRequest(req *models.Request) error {
	close(s.entered)
	<-s.release
	return s.MemoryStore.InsertRequest(req)
}

// waitForResponses polls Status until the request has at least want
// persisted responses.
func waitForResponses(t *testing.T, m *Manager, requestID string, want int) *Status {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		status, err := m.Status(requestID)
		if err != nil {
			t.Fatal(err)
		}
		if status.Aggregate.ResponseCount >= want {
			return status
		}
		if time.Now().After(deadline) {
			t.Fatalf("request %s never reached %d responses", requestID, want)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestSubmit_ReturnsDecisionImmediately(t *testing.T) {
	db := store.NewMemoryStore()
	m := newTestManager(t, db, nil)

	sub, err := m.Submit("tester", productText)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if sub.Classification.Primary != models.CategoryProductSearch {
		t.Errorf("Primary = %q, want product_search", sub.Classification.Primary)
	}
	if sub.Decision.Mode != models.DispatchAutoRoute {
		t.Errorf("Mode = %q, want auto_route", sub.Decision.Mode)
	}

	// The request is durable before Submit returns.
	stored, err := db.GetRequest(sub.Request.ID)
	if err != nil || stored == nil {
		t.Fatalf("request not persisted: %v", err)
	}

	m.Close()

	status, err := m.Status(sub.Request.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Request.State != models.RequestStateCompleted {
		t.Errorf("State = %q after drain, want completed", status.Request.State)
	}
	if status.Aggregate.ResponseCount != 1 {
		t.Errorf("ResponseCount = %d, want 1", status.Aggregate.ResponseCount)
	}
	if status.Learning == nil {
		t.Error("no learning annotation after completion")
	}
}

func TestSubmit_PersistFailureIsFatal(t *testing.T) {
	db := failingStore{store.NewMemoryStore()}
	m := newTestManager(t, db, nil)
	defer m.Close()

	if _, err := m.Submit("tester", productText); err == nil {
		t.Fatal("Submit succeeded with a failing store")
	}
}

func TestSubmit_AfterClose(t *testing.T) {
	m := newTestManager(t, store.NewMemoryStore(), nil)
	m.Close()

	if _, err := m.Submit("tester", productText); err == nil {
		t.Fatal("Submit succeeded after Close")
	}
}

func TestSubmit_ConcurrentCloseWaitsForSubmission(t *testing.T) {
	db := &stallingStore{
		MemoryStore: store.NewMemoryStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	m := newTestManager(t, db, nil)

	subErr := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				subErr <- fmt.Errorf("Submit panicked: %v", r)
			}
		}()
		_, err := m.Submit("tester", productText)
		subErr <- err
	}()
	<-db.entered

	closed := make(chan struct{})
	go func() {
		m.Close()
		close(closed)
	}()

	// Close must not return while the submission is still mid-persist; if
	// it did, the emitter would already be shut when Submit emits.
	select {
	case <-closed:
		t.Fatal("Close returned with a submission still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(db.release)
	if err := <-subErr; err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-closed
}

func TestStatus_ShowsPartialResponsesMidFlight(t *testing.T) {
	db := store.NewMemoryStore()
	fleet := agents.SimulatedFleet(time.Millisecond)
	gate := gatedExecutor{release: make(chan struct{})}
	fleet[models.AgentStrategic] = gate
	m := newTestManager(t, db, fleet)

	sub, err := m.Submit("tester", dualText)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Decision.Mode != models.DispatchDualProcessing {
		t.Fatalf("Mode = %q, want dual_processing", sub.Decision.Mode)
	}

	// The fast specialist's response is visible while the gated one is
	// still running and the request has not settled.
	status := waitForResponses(t, m, sub.Request.ID, 1)
	if status.Request.State != models.RequestStateProcessing {
		t.Errorf("State = %q mid-flight, want processing", status.Request.State)
	}
	if status.Aggregate.ResponseCount != 1 {
		t.Errorf("ResponseCount = %d mid-flight, want 1", status.Aggregate.ResponseCount)
	}

	close(gate.release)
	m.Close()

	status, err = m.Status(sub.Request.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status.Request.State != models.RequestStateCompleted {
		t.Errorf("State = %q after drain, want completed", status.Request.State)
	}
	if status.Aggregate.ResponseCount != 2 {
		t.Errorf("ResponseCount = %d after drain, want 2", status.Aggregate.ResponseCount)
	}
}

func TestCancel_KeepsCollectedResponses(t *testing.T) {
	db := store.NewMemoryStore()
	fleet := agents.SimulatedFleet(time.Millisecond)
	gate := gatedExecutor{release: make(chan struct{})}
	fleet[models.AgentStrategic] = gate
	m := newTestManager(t, db, fleet)

	sub, err := m.Submit("tester", dualText)
	if err != nil {
		t.Fatal(err)
	}
	// Cancel after the fast specialist has already responded.
	waitForResponses(t, m, sub.Request.ID, 1)
	if err := m.Cancel(sub.Request.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	m.Close()

	status, err := m.Status(sub.Request.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status.Request.State != models.RequestStateCancelled {
		t.Errorf("State = %q, want cancelled", status.Request.State)
	}
	if status.Aggregate.ResponseCount != 1 {
		t.Errorf("ResponseCount = %d after cancel, want the collected response kept", status.Aggregate.ResponseCount)
	}
}

func TestCancel_UnknownRequest(t *testing.T) {
	m := newTestManager(t, store.NewMemoryStore(), nil)
	defer m.Close()

	if err := m.Cancel("nope"); err == nil {
		t.Error("Cancel succeeded for an unknown request")
	}
}

func TestFailingAgent_CompletesDegraded(t *testing.T) {
	db := store.NewMemoryStore()
	fleet := agents.SimulatedFleet(time.Millisecond)
	fleet[models.AgentProductSearch] = errorExecutor{}
	m := newTestManager(t, db, fleet)

	sub, err := m.Submit("tester", productText)
	if err != nil {
		t.Fatal(err)
	}
	m.Close()

	status, err := m.Status(sub.Request.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status.Request.State != models.RequestStateCompleted {
		t.Errorf("State = %q, want completed despite agent failure", status.Request.State)
	}
	if status.Aggregate.ResponseCount != 0 {
		t.Errorf("ResponseCount = %d, want 0", status.Aggregate.ResponseCount)
	}
}

func TestStatus_UnknownRequest(t *testing.T) {
	m := newTestManager(t, store.NewMemoryStore(), nil)
	defer m.Close()

	if _, err := m.Status("nope"); err == nil {
		t.Error("Status succeeded for an unknown request")
	}
}

func TestMetrics_AfterCompletions(t *testing.T) {
	db := store.NewMemoryStore()
	m := newTestManager(t, db, nil)

	for i := 0; i < 3; i++ {
		if _, err := m.Submit("tester", fmt.Sprintf("%s run %d", productText, i)); err != nil {
			t.Fatal(err)
		}
	}
	m.Close()

	metrics, err := m.Metrics()
	if err != nil {
		t.Fatal(err)
	}
	if metrics.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d, want 3", metrics.TotalRequests)
	}
	if metrics.CompletedRequests != 3 {
		t.Errorf("CompletedRequests = %d, want 3", metrics.CompletedRequests)
	}
	if metrics.TotalResponses == 0 {
		t.Error("no responses recorded")
	}
	if metrics.RoutingDistribution[models.DispatchAutoRoute] != 3 {
		t.Errorf("auto_route count = %d, want 3", metrics.RoutingDistribution[models.DispatchAutoRoute])
	}
	if metrics.HighThreshold <= metrics.MediumThreshold {
		t.Errorf("threshold ordering broken: %.3f/%.3f", metrics.HighThreshold, metrics.MediumThreshold)
	}

	profile := metrics.Profiles[models.AgentProductSearch]
	if profile.TotalRequests != 3 {
		t.Errorf("specialist TotalRequests = %d, want 3", profile.TotalRequests)
	}
}

func TestEmitter_DropsWhenFull(t *testing.T) {
	e := NewEmitter(1, zap.NewNop())
	e.Emit(Event{Type: EventRequestAccepted})
	e.Emit(Event{Type: EventRequestAccepted}) // full channel, 100ms retry then drop

	if e.DroppedCount() != 1 {
		t.Errorf("DroppedCount = %d, want 1", e.DroppedCount())
	}
}
