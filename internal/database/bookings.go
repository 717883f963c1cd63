package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lendit/internal/domain"
	"lendit/internal/models"
)

const bookingColumns = `b.id, b.item_id, b.booker_id, b.start_date, b.end_date, b.status, b.created_at, b.updated_at`

// CreateBooking inserts the booking after re-checking the
// approved-overlap guard inside the same transaction, so two racing
// creates for overlapping ranges cannot both produce an insert that a
// later approval would double-book against an existing APPROVED one.
func (db *DB) CreateBooking(ctx context.Context, b *models.Booking) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	start := b.Start.UTC()
	end := b.End.UTC()

	var overlaps bool
	queryOverlap := `SELECT EXISTS(
        SELECT 1 FROM bookings
        WHERE item_id = ? AND status = 'APPROVED' AND start_date <= ? AND end_date >= ?)`
	if err := tx.QueryRowContext(ctx, queryOverlap, b.ItemID, end, start).Scan(&overlaps); err != nil {
		return fmt.Errorf("failed to check overlap in tx: %w", err)
	}
	if overlaps {
		return fmt.Errorf("item %d already booked for the requested period: %w", b.ItemID, domain.ErrConflict)
	}

	queryInsert := `INSERT INTO bookings (item_id, booker_id, start_date, end_date, status, created_at, updated_at)
                    VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, queryInsert, b.ItemID, b.BookerID, start, end, b.Status, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	b.ID = id
	b.Start = start
	b.End = end
	b.CreatedAt = now
	b.UpdatedAt = now

	return tx.Commit()
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = ?`
	b, err := db.scanBooking(db.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("booking %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// DecideBooking moves the booking out of WAITING. The status guard is
// part of the UPDATE so concurrent decisions serialize in the database
// and only the first one reports true.
func (db *DB) DecideBooking(ctx context.Context, id int64, status models.BookingStatus) (bool, error) {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = 'WAITING'`
	result, err := db.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to update booking status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return affected > 0, nil
}

// HasApprovedOverlap reports whether any APPROVED booking of the item
// shares at least one instant with [start, end], boundaries included.
func (db *DB) HasApprovedOverlap(ctx context.Context, itemID int64, start, end time.Time) (bool, error) {
	query := `SELECT EXISTS(
        SELECT 1 FROM bookings
        WHERE item_id = ? AND status = 'APPROVED' AND start_date <= ? AND end_date >= ?)`
	var exists bool
	err := db.db.QueryRowContext(ctx, query, itemID, end.UTC(), start.UTC()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check approved overlap: %w", err)
	}
	return exists, nil
}

// ListBookings returns a page of bookings for the user in the given
// role, filtered by bucket and ordered by start date descending.
func (db *DB) ListBookings(ctx context.Context, userID int64, role models.Role, bucket models.Bucket, now time.Time, from, size int) ([]models.Booking, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + bookingColumns + ` FROM bookings b`)

	args := make([]interface{}, 0, 5)
	if role == models.RoleOwner {
		sb.WriteString(` JOIN items i ON i.id = b.item_id WHERE i.owner_id = ?`)
	} else {
		sb.WriteString(` WHERE b.booker_id = ?`)
	}
	args = append(args, userID)

	nowUTC := now.UTC()
	switch bucket {
	case models.BucketAll:
	case models.BucketCurrent:
		sb.WriteString(` AND b.start_date < ? AND b.end_date > ?`)
		args = append(args, nowUTC, nowUTC)
	case models.BucketPast:
		sb.WriteString(` AND b.end_date < ?`)
		args = append(args, nowUTC)
	case models.BucketFuture:
		sb.WriteString(` AND b.start_date > ?`)
		args = append(args, nowUTC)
	case models.BucketWaiting:
		sb.WriteString(` AND b.status = ?`)
		args = append(args, models.StatusWaiting)
	case models.BucketRejected:
		sb.WriteString(` AND b.status = ?`)
		args = append(args, models.StatusRejected)
	default:
		return nil, fmt.Errorf("unknown bucket %v: %w", bucket, domain.ErrInvalid)
	}

	sb.WriteString(` ORDER BY b.start_date DESC LIMIT ? OFFSET ?`)
	args = append(args, size, from)

	return db.queryBookings(ctx, sb.String(), args...)
}

// LastBooking returns the APPROVED booking of the item with the
// greatest start among those started before now, or nil.
func (db *DB) LastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b
              WHERE b.item_id = ? AND b.status = 'APPROVED' AND b.start_date < ?
              ORDER BY b.start_date DESC LIMIT 1`
	b, err := db.scanBooking(db.db.QueryRowContext(ctx, query, itemID, now.UTC()))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last booking: %w", err)
	}
	return b, nil
}

// NextBooking returns the APPROVED booking of the item with the
// smallest start among those starting after now, or nil.
func (db *DB) NextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b
              WHERE b.item_id = ? AND b.status = 'APPROVED' AND b.start_date > ?
              ORDER BY b.start_date ASC LIMIT 1`
	b, err := db.scanBooking(db.db.QueryRowContext(ctx, query, itemID, now.UTC()))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get next booking: %w", err)
	}
	return b, nil
}

// ListApprovedByItems fetches all APPROVED bookings of the given items
// in one query, for the bulk owner projection.
func (db *DB) ListApprovedByItems(ctx context.Context, itemIDs []int64) ([]models.Booking, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(itemIDs)-1) + "?"
	query := `SELECT ` + bookingColumns + ` FROM bookings b
              WHERE b.item_id IN (` + placeholders + `) AND b.status = 'APPROVED'
              ORDER BY b.start_date DESC`
	args := make([]interface{}, len(itemIDs))
	for i, id := range itemIDs {
		args[i] = id
	}
	return db.queryBookings(ctx, query, args...)
}

func (db *DB) HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	query := `SELECT EXISTS(
        SELECT 1 FROM bookings WHERE booker_id = ? AND item_id = ? AND end_date < ?)`
	var exists bool
	err := db.db.QueryRowContext(ctx, query, bookerID, itemID, now.UTC()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check finished booking: %w", err)
	}
	return exists, nil
}

func (db *DB) scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.ItemID, &b.BookerID, &b.Start, &b.End, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]models.Booking, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := db.scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}
	return bookings, nil
}
