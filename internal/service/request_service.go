package service

import (
	"context"
	"strings"

	"shareit/internal/apperr"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	repo   domain.Repository
	clock  domain.Clock
	logger *zerolog.Logger
}

func NewRequestService(repo domain.Repository, clock domain.Clock, logger *zerolog.Logger) *RequestService {
	return &RequestService{repo: repo, clock: clock, logger: logger}
}

func (s *RequestService) CreateRequest(ctx context.Context, description string, requesterID int64) (*models.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, requesterID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, apperr.BadRequestf("request description must not be blank")
	}

	req := &models.ItemRequest{
		Description: description,
		RequesterID: requesterID,
		Created:     s.clock.Now(),
		Items:       []*models.Item{},
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *RequestService) GetRequest(ctx context.Context, requestID, viewerID int64) (*models.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, viewerID); err != nil {
		return nil, err
	}
	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, []*models.ItemRequest{req}); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *RequestService) ListOwnRequests(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, requesterID); err != nil {
		return nil, err
	}
	reqs, err := s.repo.GetRequestsByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (s *RequestService) ListOtherRequests(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	reqs, err := s.repo.GetRequestsExcept(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// attachItems loads all answering items in one query.
func (s *RequestService) attachItems(ctx context.Context, reqs []*models.ItemRequest) error {
	if len(reqs) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(reqs))
	byID := make(map[int64]*models.ItemRequest, len(reqs))
	for _, r := range reqs {
		r.Items = []*models.Item{}
		ids = append(ids, r.ID)
		byID[r.ID] = r
	}

	items, err := s.repo.GetItemsByRequestIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.RequestID == nil {
			continue
		}
		if r, ok := byID[*item.RequestID]; ok {
			r.Items = append(r.Items, item)
		}
	}
	return nil
}
