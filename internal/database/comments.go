package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lendit/internal/models"
)

func (db *DB) CreateComment(ctx context.Context, c *models.Comment) error {
	query := `INSERT INTO comments (item_id, author_id, text, created) VALUES (?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.db.ExecContext(ctx, query, c.ItemID, c.AuthorID, c.Text, now)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	c.ID = id
	c.Created = now
	return nil
}

func (db *DB) ListCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error) {
	query := `SELECT c.id, c.item_id, c.author_id, u.name, c.text, c.created
              FROM comments c JOIN users u ON u.id = c.author_id
              WHERE c.item_id = ? ORDER BY c.created DESC`
	return db.queryComments(ctx, query, itemID)
}

func (db *DB) ListCommentsByItems(ctx context.Context, itemIDs []int64) ([]models.Comment, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(itemIDs)-1) + "?"
	query := `SELECT c.id, c.item_id, c.author_id, u.name, c.text, c.created
              FROM comments c JOIN users u ON u.id = c.author_id
              WHERE c.item_id IN (` + placeholders + `) ORDER BY c.created DESC`
	args := make([]interface{}, len(itemIDs))
	for i, id := range itemIDs {
		args[i] = id
	}
	return db.queryComments(ctx, query, args...)
}

func (db *DB) queryComments(ctx context.Context, query string, args ...interface{}) ([]models.Comment, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.ItemID, &c.AuthorID, &c.AuthorName, &c.Text, &c.Created); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read comments: %w", err)
	}
	return comments, nil
}
