package store

import (
	"fmt"
	"time"

	"github.com/dispatchd/dispatchd/pkg/models"
)

// Agent response CRUD operations

// InsertResponse stores an agent response.
func (db *DB) InsertResponse(resp *models.AgentResponse) error {
	_, err := db.Exec(`
		INSERT INTO agent_responses (id, request_id, agent_id, content, confidence, duration_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, resp.ID, resp.RequestID, string(resp.AgentID), resp.Content,
		resp.Confidence, int64(resp.Duration), formatTime(resp.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

// ListResponsesByRequest returns a request's responses oldest-first.
func (db *DB) ListResponsesByRequest(requestID string) ([]models.AgentResponse, error) {
	rows, err := db.Query(`
		SELECT id, request_id, agent_id, content, confidence, duration_ns, created_at
		FROM agent_responses WHERE request_id = ? ORDER BY created_at ASC
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	var responses []models.AgentResponse
	for rows.Next() {
		var resp models.AgentResponse
		var durationNS int64
		var createdAt string
		if err := rows.Scan(&resp.ID, &resp.RequestID, &resp.AgentID, &resp.Content,
			&resp.Confidence, &durationNS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		resp.Duration = time.Duration(durationNS)
		resp.CreatedAt, _ = parseTime(createdAt)
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// CountResponses returns the total number of stored responses.
func (db *DB) CountResponses() (int64, error) {
	var n int64
	if err := db.QueryRow("SELECT COUNT(*) FROM agent_responses").Scan(&n); err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}
