package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dispatchd/dispatchd/pkg/models"
)

// MemoryStore is an in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu        sync.RWMutex
	requests  map[string]models.Request
	responses map[string][]models.AgentResponse
	artifacts map[string][]models.LearningArtifact
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests:  make(map[string]models.Request),
		responses: make(map[string][]models.AgentResponse),
		artifacts: make(map[string][]models.LearningArtifact),
	}
}

// Migrate is a no-op for the in-memory backend.
func (m *MemoryStore) Migrate() error { return nil }

// Close is a no-op for the in-memory backend.
func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) InsertRequest(req *models.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[req.ID]; ok {
		return fmt.Errorf("insert request: %s already exists", req.ID)
	}
	m.requests[req.ID] = *req
	return nil
}

func (m *MemoryStore) UpdateRequestState(id string, state models.RequestState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return fmt.Errorf("update request state: request %s not found", id)
	}
	req.State = state
	m.requests[id] = req
	return nil
}

func (m *MemoryStore) GetRequest(id string) (*models.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	out := req
	return &out, nil
}

func (m *MemoryStore) RecentRequests(limit int) ([]models.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Request, 0, len(m.requests))
	for _, req := range m.requests {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) CountRequests() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.requests)), nil
}

func (m *MemoryStore) CountRequestsByState(state models.RequestState) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, req := range m.requests {
		if req.State == state {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) InsertResponse(resp *models.AgentResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[resp.RequestID] = append(m.responses[resp.RequestID], *resp)
	return nil
}

func (m *MemoryStore) ListResponsesByRequest(requestID string) ([]models.AgentResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.AgentResponse(nil), m.responses[requestID]...), nil
}

func (m *MemoryStore) CountResponses() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, rs := range m.responses {
		n += int64(len(rs))
	}
	return n, nil
}

func (m *MemoryStore) InsertArtifact(artifact *models.LearningArtifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts[artifact.RequestID] = append(m.artifacts[artifact.RequestID], *artifact)
	return nil
}

func (m *MemoryStore) LatestArtifactByRequest(requestID string) (*models.LearningArtifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	arts := m.artifacts[requestID]
	if len(arts) == 0 {
		return nil, nil
	}
	out := arts[len(arts)-1]
	return &out, nil
}

func (m *MemoryStore) CountArtifacts() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, as := range m.artifacts {
		n += int64(len(as))
	}
	return n, nil
}
