package database

import (
	"context"
	"fmt"
	"time"

	"lendit/internal/models"
)

// ListBookingRows returns report rows for bookings whose interval
// intersects [from, to], ordered by start date.
func (db *DB) ListBookingRows(ctx context.Context, from, to time.Time) ([]models.BookingExportRow, error) {
	query := `SELECT b.id, i.name, owner.name, booker.name, b.start_date, b.end_date, b.status
              FROM bookings b
              JOIN items i ON i.id = b.item_id
              JOIN users owner ON owner.id = i.owner_id
              JOIN users booker ON booker.id = b.booker_id
              WHERE b.start_date <= ? AND b.end_date >= ?
              ORDER BY b.start_date`
	rows, err := db.db.QueryContext(ctx, query, to.UTC(), from.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list booking rows: %w", err)
	}
	defer rows.Close()

	var out []models.BookingExportRow
	for rows.Next() {
		var row models.BookingExportRow
		if err := rows.Scan(&row.BookingID, &row.ItemName, &row.OwnerName, &row.BookerName,
			&row.Start, &row.End, &row.Status); err != nil {
			return nil, fmt.Errorf("failed to scan booking row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate booking rows: %w", err)
	}
	return out, nil
}
