package service

import (
	"context"
	"fmt"
	"strings"

	"lendit/internal/domain"
	"lendit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	users    domain.UserDirectory
	requests domain.RequestStore
	items    domain.ItemDirectory
	logger   *zerolog.Logger
}

func NewRequestService(users domain.UserDirectory, requests domain.RequestStore, items domain.ItemDirectory, logger *zerolog.Logger) *RequestService {
	return &RequestService{users: users, requests: requests, items: items, logger: logger}
}

func (s *RequestService) Create(ctx context.Context, userID int64, description string) (*models.ItemRequest, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("request description is required: %w", domain.ErrInvalid)
	}

	request := &models.ItemRequest{RequesterID: userID, Description: description}
	if err := s.requests.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("request_id", request.ID).Int64("user_id", userID).Msg("item request created")
	return request, nil
}

// ListOwn returns the user's requests, newest first, with the items
// offered in response to each.
func (s *RequestService) ListOwn(ctx context.Context, userID int64) ([]models.RequestView, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	requests, err := s.requests.ListRequestsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

// ListOthers returns a page of other users' requests, newest first.
func (s *RequestService) ListOthers(ctx context.Context, userID int64, from, size int) ([]models.RequestView, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	requests, err := s.requests.ListOtherRequests(ctx, userID, from, size)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

func (s *RequestService) Get(ctx context.Context, userID, requestID int64) (*models.RequestView, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	request, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	items, err := s.items.ListItemsByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Item{}
	}
	return &models.RequestView{ItemRequest: *request, Items: items}, nil
}

func (s *RequestService) withItems(ctx context.Context, requests []models.ItemRequest) ([]models.RequestView, error) {
	views := make([]models.RequestView, len(requests))
	if len(requests) == 0 {
		return views, nil
	}

	ids := make([]int64, len(requests))
	byID := make(map[int64]*models.RequestView, len(requests))
	for i, r := range requests {
		ids[i] = r.ID
		views[i] = models.RequestView{ItemRequest: r, Items: []models.Item{}}
		byID[r.ID] = &views[i]
	}

	items, err := s.items.ListItemsByRequests(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.RequestID == nil {
			continue
		}
		if view := byID[*item.RequestID]; view != nil {
			view.Items = append(view.Items, item)
		}
	}
	return views, nil
}
