package store

import (
	"database/sql"
	"fmt"

	"github.com/dispatchd/dispatchd/pkg/models"
)

// Learning artifact CRUD operations

// InsertArtifact stores a learning artifact.
func (db *DB) InsertArtifact(artifact *models.LearningArtifact) error {
	_, err := db.Exec(`
		INSERT INTO learning_artifacts (id, request_id, kind, summary, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, artifact.ID, artifact.RequestID, artifact.Kind, artifact.Summary,
		artifact.Payload, formatTime(artifact.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}
	return nil
}

// LatestArtifactByRequest returns a request's newest learning artifact,
// or nil when none exists.
func (db *DB) LatestArtifactByRequest(requestID string) (*models.LearningArtifact, error) {
	row := db.QueryRow(`
		SELECT id, request_id, kind, summary, payload, created_at
		FROM learning_artifacts WHERE request_id = ?
		ORDER BY created_at DESC LIMIT 1
	`, requestID)

	var a models.LearningArtifact
	var payload sql.NullString
	var createdAt string
	err := row.Scan(&a.ID, &a.RequestID, &a.Kind, &a.Summary, &payload, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest artifact: %w", err)
	}

	a.Payload = payload.String
	a.CreatedAt, _ = parseTime(createdAt)
	return &a, nil
}

// CountArtifacts returns the total number of stored artifacts.
func (db *DB) CountArtifacts() (int64, error) {
	var n int64
	if err := db.QueryRow("SELECT COUNT(*) FROM learning_artifacts").Scan(&n); err != nil {
		return 0, fmt.Errorf("count artifacts: %w", err)
	}
	return n, nil
}
