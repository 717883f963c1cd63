package database

import (
	"context"
	"fmt"
	"time"

	"lendit/internal/domain"
	"lendit/internal/models"
)

func (db *DB) CreateRequest(ctx context.Context, r *models.ItemRequest) error {
	query := `INSERT INTO requests (requester_id, description, created) VALUES (?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.db.ExecContext(ctx, query, r.RequesterID, r.Description, now)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	r.ID = id
	r.Created = now
	return nil
}

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	query := `SELECT id, requester_id, description, created FROM requests WHERE id = ?`
	var r models.ItemRequest
	err := db.db.QueryRowContext(ctx, query, id).Scan(&r.ID, &r.RequesterID, &r.Description, &r.Created)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("request %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return &r, nil
}

func (db *DB) ListRequestsByUser(ctx context.Context, userID int64) ([]models.ItemRequest, error) {
	query := `SELECT id, requester_id, description, created FROM requests
              WHERE requester_id = ? ORDER BY created DESC`
	return db.queryRequests(ctx, query, userID)
}

func (db *DB) ListOtherRequests(ctx context.Context, userID int64, from, size int) ([]models.ItemRequest, error) {
	query := `SELECT id, requester_id, description, created FROM requests
              WHERE requester_id != ? ORDER BY created DESC LIMIT ? OFFSET ?`
	return db.queryRequests(ctx, query, userID, size, from)
}

func (db *DB) queryRequests(ctx context.Context, query string, args ...interface{}) ([]models.ItemRequest, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []models.ItemRequest
	for rows.Next() {
		var r models.ItemRequest
		if err := rows.Scan(&r.ID, &r.RequesterID, &r.Description, &r.Created); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read requests: %w", err)
	}
	return requests, nil
}
