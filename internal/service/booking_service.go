package service

import (
	"context"
	"fmt"
	"time"

	"lendit/internal/domain"
	"lendit/internal/events"
	"lendit/internal/metrics"
	"lendit/internal/models"

	"github.com/rs/zerolog"
)

// BookingService drives the booking lifecycle: creation with its guard
// set, the single owner decision, and the temporal listings.
type BookingService struct {
	users    domain.UserDirectory
	items    domain.ItemDirectory
	bookings domain.BookingStore
	cache    domain.ViewCache
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewBookingService(users domain.UserDirectory, items domain.ItemDirectory, bookings domain.BookingStore,
	cache domain.ViewCache, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		users:    users,
		items:    items,
		bookings: bookings,
		cache:    cache,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Create validates and persists a new booking in WAITING status.
func (s *BookingService) Create(ctx context.Context, itemID int64, start, end time.Time, bookerID int64) (*models.Booking, error) {
	if _, err := s.users.GetUser(ctx, bookerID); err != nil {
		return nil, err
	}

	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if !start.Before(end) {
		return nil, fmt.Errorf("booking must start before it ends: %w", domain.ErrInvalid)
	}
	if start.Before(time.Now()) {
		return nil, fmt.Errorf("booking cannot start in the past: %w", domain.ErrInvalid)
	}
	if !item.Available {
		return nil, fmt.Errorf("item %d is not available: %w", itemID, domain.ErrInvalid)
	}
	if item.OwnerID == bookerID {
		return nil, fmt.Errorf("owner cannot book their own item %d: %w", itemID, domain.ErrInvalid)
	}

	// Pre-gate; the store re-checks the same predicate inside the
	// insert transaction to close the check-then-act race.
	overlaps, err := s.bookings.HasApprovedOverlap(ctx, itemID, start, end)
	if err != nil {
		return nil, err
	}
	if overlaps {
		return nil, fmt.Errorf("item %d already booked for the requested period: %w", itemID, domain.ErrConflict)
	}

	booking := &models.Booking{
		ItemID:   itemID,
		BookerID: bookerID,
		Start:    start,
		End:      end,
		Status:   models.StatusWaiting,
	}
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("booking_id", booking.ID).Int64("item_id", itemID).Int64("booker_id", bookerID).Msg("booking created")
	s.publishEvent(events.EventBookingCreated, booking)

	return booking, nil
}

// Decide lets the item owner approve or reject a WAITING booking.
func (s *BookingService) Decide(ctx context.Context, bookingID, actorID int64, approve bool) (*models.Booking, error) {
	booking, item, err := s.getVisible(ctx, bookingID, actorID)
	if err != nil {
		return nil, err
	}

	if item.OwnerID != actorID {
		return nil, fmt.Errorf("only the item owner may decide booking %d: %w", bookingID, domain.ErrForbidden)
	}
	if booking.Status.Decided() {
		return nil, fmt.Errorf("booking %d is already decided: %w", bookingID, domain.ErrInvalid)
	}

	status := models.StatusRejected
	if approve {
		status = models.StatusApproved
	}

	won, err := s.bookings.DecideBooking(ctx, bookingID, status)
	if err != nil {
		return nil, err
	}
	if !won {
		// Lost the race against a concurrent decision.
		return nil, fmt.Errorf("booking %d is already decided: %w", bookingID, domain.ErrInvalid)
	}
	booking.Status = status

	if status == models.StatusApproved && s.cache != nil {
		if err := s.cache.InvalidateItem(ctx, booking.ItemID); err != nil {
			s.logger.Warn().Err(err).Int64("item_id", booking.ItemID).Msg("failed to invalidate item view")
		}
	}

	metrics.IncBookingDecision(string(status))

	eventType := events.EventBookingRejected
	if approve {
		eventType = events.EventBookingApproved
	}
	s.logger.Info().Int64("booking_id", bookingID).Str("status", string(status)).Msg("booking decided")
	s.publishEvent(eventType, booking)

	return booking, nil
}

// GetByID returns the booking to its booker or the item owner. Anyone
// else gets the same NotFound a missing record produces.
func (s *BookingService) GetByID(ctx context.Context, bookingID, actorID int64) (*models.Booking, error) {
	booking, _, err := s.getVisible(ctx, bookingID, actorID)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// List returns a page of the user's bookings in the given role,
// filtered by bucket and ordered by start date descending.
func (s *BookingService) List(ctx context.Context, userID int64, role models.Role, bucket models.Bucket, from, size int) ([]models.Booking, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.bookings.ListBookings(ctx, userID, role, bucket, time.Now(), from, size)
}

func (s *BookingService) getVisible(ctx context.Context, bookingID, actorID int64) (*models.Booking, *models.Item, error) {
	if _, err := s.users.GetUser(ctx, actorID); err != nil {
		return nil, nil, err
	}

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}

	item, err := s.items.GetItem(ctx, booking.ItemID)
	if err != nil {
		return nil, nil, err
	}

	if booking.BookerID != actorID && item.OwnerID != actorID {
		return nil, nil, fmt.Errorf("booking %d: %w", bookingID, domain.ErrNotFound)
	}
	return booking, item, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.ItemID,
		BookerID:  booking.BookerID,
		Status:    string(booking.Status),
		Start:     booking.Start,
		End:       booking.End,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
