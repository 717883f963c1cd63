package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lendit/internal/domain"
	"lendit/internal/models"
)

const itemColumns = `id, owner_id, name, description, available, request_id, created_at, updated_at`

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (owner_id, name, description, available, request_id, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.db.ExecContext(ctx, query,
		item.OwnerID, item.Name, item.Description, item.Available, item.RequestID, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

func (db *DB) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	item, err := db.scanItem(db.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `UPDATE items SET name = ?, description = ?, available = ?, updated_at = ? WHERE id = ?`
	now := time.Now().UTC()
	result, err := db.db.ExecContext(ctx, query,
		item.Name, item.Description, item.Available, now, item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("item %d: %w", item.ID, domain.ErrNotFound)
	}
	item.UpdatedAt = now
	return nil
}

// ListItemsByOwner returns a page of the owner's items, newest first.
func (db *DB) ListItemsByOwner(ctx context.Context, ownerID int64, from, size int) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE owner_id = ? ORDER BY id DESC LIMIT ? OFFSET ?`
	return db.queryItems(ctx, query, ownerID, size, from)
}

// SearchItems performs a case-insensitive substring search over name
// and description of available items.
func (db *DB) SearchItems(ctx context.Context, text string, from, size int) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
              WHERE available = 1 AND (lower(name) LIKE ? OR lower(description) LIKE ?)
              ORDER BY id LIMIT ? OFFSET ?`
	pattern := "%" + strings.ToLower(text) + "%"
	return db.queryItems(ctx, query, pattern, pattern, size, from)
}

func (db *DB) ListItemsByRequest(ctx context.Context, requestID int64) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE request_id = ? ORDER BY id`
	return db.queryItems(ctx, query, requestID)
}

func (db *DB) ListItemsByRequests(ctx context.Context, requestIDs []int64) ([]models.Item, error) {
	if len(requestIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(requestIDs)-1) + "?"
	query := `SELECT ` + itemColumns + ` FROM items WHERE request_id IN (` + placeholders + `) ORDER BY id`
	args := make([]interface{}, len(requestIDs))
	for i, id := range requestIDs {
		args[i] = id
	}
	return db.queryItems(ctx, query, args...)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (db *DB) scanItem(row rowScanner) (*models.Item, error) {
	var item models.Item
	err := row.Scan(
		&item.ID, &item.OwnerID, &item.Name, &item.Description,
		&item.Available, &item.RequestID, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (db *DB) queryItems(ctx context.Context, query string, args ...interface{}) ([]models.Item, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := db.scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	return items, nil
}
