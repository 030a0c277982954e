package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dispatchd/dispatchd/internal/agents"
	"github.com/dispatchd/dispatchd/internal/classifier"
	"github.com/dispatchd/dispatchd/internal/learning"
	"github.com/dispatchd/dispatchd/internal/router"
	"github.com/dispatchd/dispatchd/internal/store"
	"github.com/dispatchd/dispatchd/pkg/models"
)

// defaultAgentTimeout bounds each agent's execution per request.
const defaultAgentTimeout = 30 * time.Second

// Submission is what the caller gets back as soon as a request is
// accepted: the persisted request plus the decisions made for it.
// Agent execution continues asynchronously.
type Submission struct {
	Request        models.Request
	Classification models.ClassificationResult
	Decision       models.RoutingDecision
}

// Status is a point-in-time view of one request.
type Status struct {
	Request   models.Request
	Responses []models.AgentResponse
	Aggregate models.AggregateMetrics
	// Learning is the latest learning annotation for the request, if any.
	Learning *models.LearningArtifact
}

// Metrics summarizes the whole system.
type Metrics struct {
	Profiles            map[models.AgentID]models.AgentPerformanceProfile
	RoutingDistribution map[models.DispatchMode]int
	ConfidenceBuckets   map[string]int
	HighThreshold       float64
	MediumThreshold     float64
	LearningRate        float64
	TotalRequests       int64
	CompletedRequests   int64
	TotalResponses      int64
	TotalArtifacts      int64
	DroppedEvents       uint64
}

// Manager drives a request through its whole lifecycle. Submit returns
// once the request is classified, routed, and durably stored; dispatch,
// aggregation, and learning run in the background.
type Manager struct {
	classifier *classifier.Classifier
	router     *router.Router
	state      *learning.State
	loop       *learning.Loop
	db         store.Store
	fleet      agents.Fleet
	emitter    *Emitter
	logger     *zap.Logger

	agentTimeout time.Duration

	mu     sync.Mutex
	active map[string]context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// Config wires a Manager's collaborators.
type Config struct {
	Classifier *classifier.Classifier
	Router     *router.Router
	State      *learning.State
	Loop       *learning.Loop
	Store      store.Store
	Fleet      agents.Fleet
	Emitter    *Emitter
	Logger     *zap.Logger
	// AgentTimeout bounds each agent's execution. Zero selects the default.
	AgentTimeout time.Duration
}

// NewManager creates a lifecycle manager.
func NewManager(cfg Config) *Manager {
	timeout := cfg.AgentTimeout
	if timeout <= 0 {
		timeout = defaultAgentTimeout
	}
	return &Manager{
		classifier:   cfg.Classifier,
		router:       cfg.Router,
		state:        cfg.State,
		loop:         cfg.Loop,
		db:           cfg.Store,
		fleet:        cfg.Fleet,
		emitter:      cfg.Emitter,
		logger:       cfg.Logger,
		agentTimeout: timeout,
		active:       make(map[string]context.CancelFunc),
	}
}

// Submit accepts a request, classifies and routes it, persists it, and
// starts asynchronous dispatch. Persistence failure is fatal: a request
// that cannot be stored is never dispatched.
func (m *Manager) Submit(submitterID, text string) (*Submission, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, fmt.Errorf("manager is shut down")
	}
	// Register before releasing the lock so a concurrent Close cannot pass
	// its wait and shut the emitter while this submission is in flight.
	m.wg.Add(1)
	m.mu.Unlock()

	req := models.Request{
		ID:          uuid.NewString(),
		SubmitterID: submitterID,
		Text:        text,
		State:       models.RequestStateProcessing,
		SubmittedAt: time.Now().UTC(),
	}

	result := m.classifier.Classify(text)
	decision := m.router.Route(result)

	if err := m.db.InsertRequest(&req); err != nil {
		m.emitter.Emit(Event{
			Type:      EventRequestFailed,
			RequestID: req.ID,
			Error:     err,
			Timestamp: time.Now().UTC(),
		})
		m.wg.Done()
		return nil, fmt.Errorf("persist request: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.active[req.ID] = cancel
	m.mu.Unlock()

	m.logger.Info("request accepted",
		zap.String("request_id", req.ID),
		zap.String("primary", string(result.Primary)),
		zap.Float64("confidence", result.Confidence),
		zap.String("mode", string(decision.Mode)),
		zap.Int("agents", len(decision.Agents)))

	m.emitter.Emit(Event{
		Type:      EventRequestAccepted,
		RequestID: req.ID,
		Mode:      decision.Mode,
		Message:   fmt.Sprintf("routed to %d agent(s)", len(decision.Agents)),
		Timestamp: time.Now().UTC(),
	})

	// run inherits the wait-group registration taken at the top of Submit.
	go m.run(ctx, req, result, decision)

	return &Submission{Request: req, Classification: result, Decision: decision}, nil
}

// run dispatches every assigned agent concurrently, then settles the
// request once all of them finish or the request is cancelled.
func (m *Manager) run(ctx context.Context, req models.Request, result models.ClassificationResult, decision models.RoutingDecision) {
	defer m.wg.Done()

	var (
		respMu    sync.Mutex
		collected []models.AgentResponse
		agentWG   sync.WaitGroup
	)

	for _, agentID := range decision.Agents {
		agentWG.Add(1)
		go func(agentID models.AgentID) {
			defer agentWG.Done()
			resp, err := m.dispatch(ctx, req, agentID, result.Primary)
			if err != nil {
				m.logger.Warn("agent dispatch failed",
					zap.String("request_id", req.ID),
					zap.String("agent_id", string(agentID)),
					zap.Error(err))
				m.emitter.Emit(Event{
					Type:      EventAgentFailed,
					RequestID: req.ID,
					AgentID:   agentID,
					Error:     err,
					Timestamp: time.Now().UTC(),
				})
				return
			}
			respMu.Lock()
			collected = append(collected, *resp)
			respMu.Unlock()
		}(agentID)
	}
	agentWG.Wait()

	cancelled := ctx.Err() != nil

	m.mu.Lock()
	delete(m.active, req.ID)
	m.mu.Unlock()

	if cancelled {
		m.settle(req.ID, models.RequestStateCancelled)
		m.emitter.Emit(Event{
			Type:      EventRequestCancelled,
			RequestID: req.ID,
			Timestamp: time.Now().UTC(),
		})
		return
	}

	m.settle(req.ID, models.RequestStateCompleted)

	agg := models.Aggregate(collected)
	feedback := models.SynthesizeFeedback(req.ID, agg, time.Now().UTC())

	report, err := m.loop.OnFeedback(feedback, decision.Agents, collected)
	if err != nil {
		// Learning must never fail a request that already completed.
		m.logger.Warn("learning cycle failed",
			zap.String("request_id", req.ID), zap.Error(err))
	} else {
		m.emitter.Emit(Event{
			Type:      EventLearningCycle,
			RequestID: req.ID,
			Message:   report.Summary(),
			Timestamp: time.Now().UTC(),
		})
	}

	m.emitter.Emit(Event{
		Type:      EventRequestCompleted,
		RequestID: req.ID,
		Message:   fmt.Sprintf("%d response(s), avg confidence %.2f", agg.ResponseCount, agg.AvgConfidence),
		Timestamp: time.Now().UTC(),
	})
}

// dispatch runs one agent under the per-agent timeout and persists its
// response so Status sees partial progress immediately.
func (m *Manager) dispatch(ctx context.Context, req models.Request, agentID models.AgentID, category models.Category) (*models.AgentResponse, error) {
	executor, ok := m.fleet.Get(agentID)
	if !ok {
		return nil, fmt.Errorf("no executor for agent %s", agentID)
	}

	m.emitter.Emit(Event{
		Type:      EventAgentDispatched,
		RequestID: req.ID,
		AgentID:   agentID,
		Timestamp: time.Now().UTC(),
	})

	agentCtx, cancel := context.WithTimeout(ctx, m.agentTimeout)
	defer cancel()

	result, err := executor.Execute(agentCtx, req.Text, category)
	if err != nil {
		return nil, err
	}

	resp := models.AgentResponse{
		ID:         uuid.NewString(),
		RequestID:  req.ID,
		AgentID:    agentID,
		Content:    result.Content,
		Confidence: result.Confidence,
		Duration:   result.Duration,
		CreatedAt:  time.Now().UTC(),
	}

	if err := m.db.InsertResponse(&resp); err != nil {
		// The response still counts toward the aggregate; only the
		// durable copy is missing.
		m.logger.Warn("response persist failed",
			zap.String("request_id", req.ID),
			zap.String("agent_id", string(agentID)),
			zap.Error(err))
	} else {
		m.emitter.Emit(Event{
			Type:      EventResponseRecorded,
			RequestID: req.ID,
			AgentID:   agentID,
			Timestamp: time.Now().UTC(),
		})
	}

	return &resp, nil
}

// settle transitions the stored request to its terminal state.
func (m *Manager) settle(requestID string, state models.RequestState) {
	if err := m.db.UpdateRequestState(requestID, state); err != nil {
		m.logger.Error("request state update failed",
			zap.String("request_id", requestID),
			zap.String("state", string(state)),
			zap.Error(err))
	}
}

// Cancel stops an in-flight request. Responses already collected are
// kept; the request settles as cancelled once its agents unwind.
func (m *Manager) Cancel(requestID string) error {
	m.mu.Lock()
	cancel, ok := m.active[requestID]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("request %s is not in flight", requestID)
	}
	cancel()
	return nil
}

// Status reports a request's current state, its responses so far, and
// the latest learning annotation.
func (m *Manager) Status(requestID string) (*Status, error) {
	req, err := m.db.GetRequest(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("request %s not found", requestID)
	}

	responses, err := m.db.ListResponsesByRequest(requestID)
	if err != nil {
		return nil, err
	}

	artifact, err := m.db.LatestArtifactByRequest(requestID)
	if err != nil {
		return nil, err
	}

	return &Status{
		Request:   *req,
		Responses: responses,
		Aggregate: models.Aggregate(responses),
		Learning:  artifact,
	}, nil
}

// Metrics assembles the system-wide metrics snapshot.
func (m *Manager) Metrics() (*Metrics, error) {
	totalRequests, err := m.db.CountRequests()
	if err != nil {
		return nil, err
	}
	completed, err := m.db.CountRequestsByState(models.RequestStateCompleted)
	if err != nil {
		return nil, err
	}
	totalResponses, err := m.db.CountResponses()
	if err != nil {
		return nil, err
	}
	totalArtifacts, err := m.db.CountArtifacts()
	if err != nil {
		return nil, err
	}

	high, medium := m.state.Thresholds()
	return &Metrics{
		Profiles:            m.state.Profiles(),
		RoutingDistribution: m.router.Distribution(),
		ConfidenceBuckets:   m.router.ConfidenceDistribution(),
		HighThreshold:       high,
		MediumThreshold:     medium,
		LearningRate:        m.state.LearningRate(),
		TotalRequests:       totalRequests,
		CompletedRequests:   completed,
		TotalResponses:      totalResponses,
		TotalArtifacts:      totalArtifacts,
		DroppedEvents:       m.emitter.DroppedCount(),
	}, nil
}

// Events exposes the lifecycle event stream.
func (m *Manager) Events() <-chan Event {
	return m.emitter.Events()
}

// Close stops accepting submissions, waits for in-flight requests to
// settle, and closes the event stream.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.wg.Wait()
	m.emitter.Close()
	return nil
}
