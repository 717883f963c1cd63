package domain

import (
	"context"
	"time"

	"lendit/internal/models"
)

// UserDirectory resolves and maintains user records.
type UserDirectory interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

// ItemDirectory resolves and maintains item records. The booking core
// consumes it read-only.
type ItemDirectory interface {
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	ListItemsByOwner(ctx context.Context, ownerID int64, from, size int) ([]models.Item, error)
	SearchItems(ctx context.Context, text string, from, size int) ([]models.Item, error)
	ListItemsByRequest(ctx context.Context, requestID int64) ([]models.Item, error)
	ListItemsByRequests(ctx context.Context, requestIDs []int64) ([]models.Item, error)
}

// BookingStore persists bookings and answers the temporal queries of
// the listing and projection components.
type BookingStore interface {
	// CreateBooking re-checks the approved-overlap guard and inserts the
	// booking within a single transaction. Returns ErrConflict when an
	// approved booking overlaps [b.Start, b.End] boundaries included.
	CreateBooking(ctx context.Context, b *models.Booking) error

	GetBooking(ctx context.Context, id int64) (*models.Booking, error)

	// DecideBooking sets the status iff the current status is still
	// WAITING. The returned bool reports whether the transition won.
	DecideBooking(ctx context.Context, id int64, status models.BookingStatus) (bool, error)

	HasApprovedOverlap(ctx context.Context, itemID int64, start, end time.Time) (bool, error)

	ListBookings(ctx context.Context, userID int64, role models.Role, bucket models.Bucket, now time.Time, from, size int) ([]models.Booking, error)

	LastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	NextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	ListApprovedByItems(ctx context.Context, itemIDs []int64) ([]models.Booking, error)

	// HasFinishedBooking reports whether the user has any booking of the
	// item that ended before now. Gates comment creation.
	HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)
}

// CommentStore persists item reviews.
type CommentStore interface {
	CreateComment(ctx context.Context, c *models.Comment) error
	ListCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error)
	ListCommentsByItems(ctx context.Context, itemIDs []int64) ([]models.Comment, error)
}

// RequestStore persists item requests.
type RequestStore interface {
	CreateRequest(ctx context.Context, r *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	ListRequestsByUser(ctx context.Context, userID int64) ([]models.ItemRequest, error)
	ListOtherRequests(ctx context.Context, userID int64, from, size int) ([]models.ItemRequest, error)
}

// ViewCache holds computed item views to spare repeated projection
// queries. Implementations may lose entries at any time.
type ViewCache interface {
	GetItemView(ctx context.Context, itemID int64) (*models.ItemView, error)
	SetItemView(ctx context.Context, view *models.ItemView, ttl time.Duration) error
	InvalidateItem(ctx context.Context, itemID int64) error
}

// EventPublisher fans out domain events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
