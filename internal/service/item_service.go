package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lendit/internal/domain"
	"lendit/internal/events"
	"lendit/internal/metrics"
	"lendit/internal/models"

	"github.com/rs/zerolog"
)

// ItemService maintains items and computes their booking projection:
// the most recent past and nearest future approved booking, visible to
// the owner only, plus the item's comments.
type ItemService struct {
	users    domain.UserDirectory
	items    domain.ItemDirectory
	bookings domain.BookingStore
	comments domain.CommentStore
	requests domain.RequestStore
	cache    domain.ViewCache
	cacheTTL time.Duration
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewItemService(users domain.UserDirectory, items domain.ItemDirectory, bookings domain.BookingStore,
	comments domain.CommentStore, requests domain.RequestStore, cache domain.ViewCache, cacheTTL time.Duration,
	eventBus domain.EventPublisher, logger *zerolog.Logger) *ItemService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &ItemService{
		users:    users,
		items:    items,
		bookings: bookings,
		comments: comments,
		requests: requests,
		cache:    cache,
		cacheTTL: cacheTTL,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Create registers a new item for the owner. A request id, when given,
// must reference an existing item request.
func (s *ItemService) Create(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	if _, err := s.users.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}
	if item.RequestID != nil {
		if _, err := s.requests.GetRequest(ctx, *item.RequestID); err != nil {
			return nil, err
		}
	}

	item.OwnerID = ownerID
	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	return item, nil
}

// Update applies a partial update. Only the owner may change an item;
// blank name/description values are ignored.
func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	if _, err := s.users.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}

	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, fmt.Errorf("user %d does not own item %d: %w", ownerID, itemID, domain.ErrForbidden)
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		item.Name = *patch.Name
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) != "" {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, itemID)
	return item, nil
}

// Get returns the item view for the viewer. The booking projection is
// attached only when the viewer owns the item.
func (s *ItemService) Get(ctx context.Context, itemID, viewerID int64) (*models.ItemView, error) {
	if _, err := s.users.GetUser(ctx, viewerID); err != nil {
		return nil, err
	}

	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	view, err := s.ownerView(ctx, item)
	if err != nil {
		return nil, err
	}

	if item.OwnerID != viewerID {
		stripped := *view
		stripped.LastBooking = nil
		stripped.NextBooking = nil
		return &stripped, nil
	}
	return view, nil
}

// ListByOwner returns the owner's items with projections computed in
// one batched pass instead of one query pair per item.
func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]models.ItemView, error) {
	if _, err := s.users.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}

	items, err := s.items.ListItemsByOwner(ctx, ownerID, from, size)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []models.ItemView{}, nil
	}

	ids := make([]int64, len(items))
	views := make([]models.ItemView, len(items))
	byID := make(map[int64]*models.ItemView, len(items))
	for i, item := range items {
		ids[i] = item.ID
		views[i] = models.ItemView{Item: item, Comments: []models.Comment{}}
		byID[item.ID] = &views[i]
	}

	bookings, err := s.bookings.ListApprovedByItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range bookings {
		b := &bookings[i]
		view := byID[b.ItemID]
		if view == nil {
			continue
		}
		switch {
		case b.Start.Before(now):
			if view.LastBooking == nil || view.LastBooking.Start.Before(b.Start) {
				view.LastBooking = b.Ref()
			}
		case b.Start.After(now):
			if view.NextBooking == nil || view.NextBooking.Start.After(b.Start) {
				view.NextBooking = b.Ref()
			}
		}
	}

	comments, err := s.comments.ListCommentsByItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if view := byID[c.ItemID]; view != nil {
			view.Comments = append(view.Comments, c)
		}
	}

	return views, nil
}

// Search returns available items whose name or description contains
// the text. An empty query yields an empty result, not an error.
func (s *ItemService) Search(ctx context.Context, text string, from, size int) ([]models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []models.Item{}, nil
	}
	return s.items.SearchItems(ctx, text, from, size)
}

// AddComment stores a review, permitted only when the author has a
// booking of the item that already ended.
func (s *ItemService) AddComment(ctx context.Context, itemID, authorID int64, text string) (*models.Comment, error) {
	author, err := s.users.GetUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.items.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("comment text is required: %w", domain.ErrInvalid)
	}

	finished, err := s.bookings.HasFinishedBooking(ctx, authorID, itemID, time.Now())
	if err != nil {
		return nil, err
	}
	if !finished {
		return nil, fmt.Errorf("user %d has no finished booking of item %d: %w", authorID, itemID, domain.ErrInvalid)
	}

	comment := &models.Comment{ItemID: itemID, AuthorID: authorID, AuthorName: author.Name, Text: text}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	s.invalidate(ctx, itemID)

	if s.eventBus != nil {
		payload := events.CommentEventPayload{CommentID: comment.ID, ItemID: itemID, AuthorID: authorID}
		if err := s.eventBus.PublishJSON(events.EventCommentAdded, payload); err != nil {
			s.logger.Error().Err(err).Int64("comment_id", comment.ID).Msg("publish event error")
		}
	}
	return comment, nil
}

// ownerView assembles (or fetches from cache) the full owner-facing
// view of the item.
func (s *ItemService) ownerView(ctx context.Context, item *models.Item) (*models.ItemView, error) {
	if s.cache != nil {
		if view, err := s.cache.GetItemView(ctx, item.ID); err == nil && view != nil {
			metrics.IncCacheLookup("hit")
			return view, nil
		}
		metrics.IncCacheLookup("miss")
	}

	now := time.Now()
	last, err := s.bookings.LastBooking(ctx, item.ID, now)
	if err != nil {
		return nil, err
	}
	next, err := s.bookings.NextBooking(ctx, item.ID, now)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	view := &models.ItemView{Item: *item, Comments: comments}
	if last != nil {
		view.LastBooking = last.Ref()
	}
	if next != nil {
		view.NextBooking = next.Ref()
	}

	if s.cache != nil {
		if err := s.cache.SetItemView(ctx, view, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Int64("item_id", item.ID).Msg("failed to cache item view")
		}
	}
	return view, nil
}

func (s *ItemService) invalidate(ctx context.Context, itemID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateItem(ctx, itemID); err != nil {
		s.logger.Warn().Err(err).Int64("item_id", itemID).Msg("failed to invalidate item view")
	}
}
