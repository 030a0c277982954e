package store

import (
	"database/sql"
	"fmt"

	"github.com/dispatchd/dispatchd/pkg/models"
)

// Request CRUD operations

// InsertRequest stores a new request.
func (db *DB) InsertRequest(req *models.Request) error {
	_, err := db.Exec(`
		INSERT INTO requests (id, submitter_id, text, state, submitted_at)
		VALUES (?, ?, ?, ?, ?)
	`, req.ID, req.SubmitterID, req.Text, string(req.State), formatTime(req.SubmittedAt))
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

// UpdateRequestState transitions a stored request to a new state.
func (db *DB) UpdateRequestState(id string, state models.RequestState) error {
	res, err := db.Exec("UPDATE requests SET state = ? WHERE id = ?", string(state), id)
	if err != nil {
		return fmt.Errorf("update request state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update request state: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update request state: request %s not found", id)
	}
	return nil
}

// GetRequest retrieves a request by ID. Returns nil when absent.
func (db *DB) GetRequest(id string) (*models.Request, error) {
	row := db.QueryRow(`
		SELECT id, submitter_id, text, state, submitted_at
		FROM requests WHERE id = ?
	`, id)

	var req models.Request
	var submittedAt string
	err := row.Scan(&req.ID, &req.SubmitterID, &req.Text, &req.State, &submittedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}

	req.SubmittedAt, _ = parseTime(submittedAt)
	return &req, nil
}

// RecentRequests lists the most recently submitted requests, newest first.
func (db *DB) RecentRequests(limit int) ([]models.Request, error) {
	rows, err := db.Query(`
		SELECT id, submitter_id, text, state, submitted_at
		FROM requests ORDER BY submitted_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var requests []models.Request
	for rows.Next() {
		var req models.Request
		var submittedAt string
		if err := rows.Scan(&req.ID, &req.SubmitterID, &req.Text, &req.State, &submittedAt); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		req.SubmittedAt, _ = parseTime(submittedAt)
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// CountRequests returns the total number of stored requests.
func (db *DB) CountRequests() (int64, error) {
	var n int64
	if err := db.QueryRow("SELECT COUNT(*) FROM requests").Scan(&n); err != nil {
		return 0, fmt.Errorf("count requests: %w", err)
	}
	return n, nil
}

// CountRequestsByState returns the number of requests in one state.
func (db *DB) CountRequestsByState(state models.RequestState) (int64, error) {
	var n int64
	err := db.QueryRow("SELECT COUNT(*) FROM requests WHERE state = ?", string(state)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count requests by state: %w", err)
	}
	return n, nil
}
