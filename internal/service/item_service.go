package service

import (
	"context"
	"strings"

	"shareit/internal/apperr"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo     domain.Repository
	clock    domain.Clock
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewItemService(repo domain.Repository, clock domain.Clock, eventBus domain.EventPublisher, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		repo:     repo,
		clock:    clock,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *ItemService) CreateItem(ctx context.Context, item *models.Item, ownerID int64) (*models.Item, error) {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}
	if item.RequestID != nil {
		if _, err := s.repo.GetRequestByID(ctx, *item.RequestID); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(item.Name) == "" {
		return nil, apperr.BadRequestf("item name must not be blank")
	}
	if strings.TrimSpace(item.Description) == "" {
		return nil, apperr.BadRequestf("item description must not be blank")
	}

	created := &models.Item{
		Name:        item.Name,
		Description: item.Description,
		Available:   item.Available,
		OwnerID:     ownerID,
		RequestID:   item.RequestID,
	}
	if err := s.repo.CreateItem(ctx, created); err != nil {
		return nil, err
	}

	s.publish(events.EventItemCreated, events.ItemEventPayload{
		ItemID:    created.ID,
		OwnerID:   ownerID,
		Name:      created.Name,
		RequestID: created.RequestID,
	})
	return created, nil
}

// GetItemForViewer returns the item with comments. Only the owner gets last/next bookings.
func (s *ItemService) GetItemForViewer(ctx context.Context, itemID, viewerID int64) (*models.ItemDetails, error) {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	enriched, err := s.enrich(ctx, []*models.Item{item}, item.OwnerID == viewerID)
	if err != nil {
		return nil, err
	}
	return enriched[0], nil
}

func (s *ItemService) ListOwnerItems(ctx context.Context, ownerID int64, page models.Page) ([]*models.ItemDetails, error) {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}

	items, err := s.repo.GetItemsByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, items, true)
}

func (s *ItemService) UpdateItem(ctx context.Context, itemID, ownerID int64, patch models.ItemPatch) (*models.Item, error) {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, apperr.NotFoundf("item with id %d not found for owner %d", itemID, ownerID)
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

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) SearchItems(ctx context.Context, text string, page models.Page) ([]*models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}
	return s.repo.SearchItems(ctx, text, page)
}

// CreateComment requires the author to have finished at least one booking, of any item.
func (s *ItemService) CreateComment(ctx context.Context, itemID, authorID int64, text string) (*models.Comment, error) {
	now := s.clock.Now()

	finished, err := s.repo.HasFinishedBooking(ctx, authorID, now)
	if err != nil {
		return nil, err
	}
	if !finished {
		return nil, apperr.BadRequestf("user %d has no finished bookings", authorID)
	}

	author, err := s.repo.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetItemByID(ctx, itemID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperr.BadRequestf("comment text must not be blank")
	}

	comment := &models.Comment{
		Text:       text,
		ItemID:     itemID,
		AuthorID:   authorID,
		AuthorName: author.Name,
		Created:    now,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.publish(events.EventCommentCreated, events.CommentEventPayload{
		CommentID: comment.ID,
		ItemID:    itemID,
		AuthorID:  authorID,
		Text:      text,
	})
	return comment, nil
}

func (s *ItemService) enrich(ctx context.Context, items []*models.Item, withBookings bool) ([]*models.ItemDetails, error) {
	details := make([]*models.ItemDetails, 0, len(items))
	if len(items) == 0 {
		return details, nil
	}

	ids := make([]int64, 0, len(items))
	byID := make(map[int64]*models.ItemDetails, len(items))
	for _, item := range items {
		d := &models.ItemDetails{Item: *item, Comments: []*models.Comment{}}
		details = append(details, d)
		byID[item.ID] = d
		ids = append(ids, item.ID)
	}

	comments, err := s.repo.GetCommentsByItemIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if d, ok := byID[c.ItemID]; ok {
			d.Comments = append(d.Comments, c)
		}
	}

	if !withBookings {
		return details, nil
	}

	bookings, err := s.repo.GetBookingsByItemIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		d, ok := byID[b.ItemID]
		if !ok {
			continue
		}
		// last: самое раннее начало, next: самый поздний конец
		if d.LastBooking == nil || b.Start.Before(d.LastBooking.Start) {
			d.LastBooking = b
		}
		if d.NextBooking == nil || b.End.After(d.NextBooking.End) {
			d.NextBooking = b
		}
	}
	return details, nil
}

func (s *ItemService) publish(eventType string, payload interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}
