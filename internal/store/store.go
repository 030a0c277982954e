// Package store provides persistence for requests, agent responses, and
// learning artifacts. The SQLite backend is the default; MemoryStore
// backs tests and ephemeral runs.
package store

import (
	"io"

	"github.com/dispatchd/dispatchd/pkg/models"
)

// RequestStore handles request persistence.
type RequestStore interface {
	InsertRequest(req *models.Request) error
	UpdateRequestState(id string, state models.RequestState) error
	GetRequest(id string) (*models.Request, error)
	RecentRequests(limit int) ([]models.Request, error)
	CountRequests() (int64, error)
	CountRequestsByState(state models.RequestState) (int64, error)
}

// ResponseStore handles agent-response persistence.
type ResponseStore interface {
	InsertResponse(resp *models.AgentResponse) error
	ListResponsesByRequest(requestID string) ([]models.AgentResponse, error)
	CountResponses() (int64, error)
}

// ArtifactStore handles learning-artifact persistence.
type ArtifactStore interface {
	InsertArtifact(artifact *models.LearningArtifact) error
	LatestArtifactByRequest(requestID string) (*models.LearningArtifact, error)
	CountArtifacts() (int64, error)
}

// Migrator applies pending schema migrations.
type Migrator interface {
	Migrate() error
}

// Store is the full persistence surface. It composes focused
// sub-interfaces so callers can depend on just the slice they use.
type Store interface {
	io.Closer
	Migrator
	RequestStore
	ResponseStore
	ArtifactStore
}

// Compile-time verification that both backends implement Store.
var (
	_ Store = (*DB)(nil)
	_ Store = (*MemoryStore)(nil)
)
