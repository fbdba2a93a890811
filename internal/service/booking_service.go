package service

import (
	"context"
	"errors"

	"shareit/internal/apperr"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo     domain.Repository
	clock    domain.Clock
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.Repository, clock domain.Clock, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		clock:    clock,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, input models.BookingInput, bookerID int64) (*models.Booking, error) {
	booker, err := s.repo.GetUserByID(ctx, bookerID)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.GetItemByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}

	// владелец не может бронировать свою вещь
	if item.OwnerID == bookerID {
		return nil, apperr.NotFoundf("item %d is not available for booking by its owner", item.ID)
	}
	if !item.Available {
		return nil, apperr.BadRequestf("item %d is not available", item.ID)
	}

	now := s.clock.Now()
	if input.Start.Before(now) {
		return nil, apperr.BadRequestf("booking start must not be in the past")
	}
	if input.End.Before(now) {
		return nil, apperr.BadRequestf("booking end must not be in the past")
	}
	if !input.End.After(input.Start) {
		return nil, apperr.BadRequestf("booking end must be after start")
	}

	booking := &models.Booking{
		Start:     input.Start,
		End:       input.End,
		Status:    models.StatusWaiting,
		ItemID:    item.ID,
		BookerID:  bookerID,
		Version:   1,
		CreatedAt: now,
		Item:      item,
		Booker:    booker,
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	metrics.IncBooking("created")
	s.publishEvent(events.EventBookingCreated, booking, bookerID)
	return booking, nil
}

// ApproveBooking decides a WAITING booking. Only the item owner may decide, and only once.
func (s *BookingService) ApproveBooking(ctx context.Context, bookingID, userID int64, approved bool) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.StatusWaiting {
		return nil, apperr.BadRequestf("booking %d is already decided", bookingID)
	}
	if booking.OwnerID() != userID {
		return nil, apperr.NotFoundf("booking %d not found for owner %d", bookingID, userID)
	}

	status := models.StatusRejected
	if approved {
		status = models.StatusApproved
	}

	err = s.repo.UpdateBookingStatusWithVersion(ctx, bookingID, booking.Version, status)
	if errors.Is(err, apperr.ErrConcurrentModification) {
		return nil, apperr.BadRequestf("booking %d is already decided", bookingID)
	}
	if err != nil {
		return nil, err
	}

	booking.Status = status
	booking.Version++

	eventType := events.EventBookingRejected
	transition := "rejected"
	if approved {
		eventType = events.EventBookingApproved
		transition = "approved"
	}
	metrics.IncBooking(transition)
	s.publishEvent(eventType, booking, userID)

	return booking, nil
}

// GetBooking shows a booking to its booker or the item owner.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID int64) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BookerID != userID && booking.OwnerID() != userID {
		return nil, apperr.NotFoundf("booking with id %d not found", bookingID)
	}
	return booking, nil
}

func (s *BookingService) ListByUser(ctx context.Context, userID int64, state models.State, page models.Page) ([]*models.Booking, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	status := statusFilter(state)
	bookings, err := s.repo.GetBookingsByBooker(ctx, userID, status, page)
	if err != nil {
		return nil, err
	}
	return s.filter(bookings, state), nil
}

func (s *BookingService) ListByOwner(ctx context.Context, ownerID int64, state models.State, page models.Page) ([]*models.Booking, error) {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}

	status := statusFilter(state)
	bookings, err := s.repo.GetBookingsByOwner(ctx, ownerID, status, page)
	if err != nil {
		return nil, err
	}
	return s.filter(bookings, state), nil
}

func statusFilter(state models.State) *models.Status {
	if st, ok := state.StatusFilter(); ok {
		return &st
	}
	return nil
}

// filter applies time-based states to an already fetched page.
func (s *BookingService) filter(bookings []*models.Booking, state models.State) []*models.Booking {
	now := s.clock.Now()
	result := make([]*models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if state.Includes(b, now) {
			result = append(result, b)
		}
	}
	return result
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedByID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		ItemID:      booking.ItemID,
		OwnerID:     booking.OwnerID(),
		BookerID:    booking.BookerID,
		Status:      string(booking.Status),
		Start:       booking.Start,
		End:         booking.End,
		ChangedByID: changedByID,
	}
	if booking.Item != nil {
		payload.ItemName = booking.Item.Name
	}
	if booking.Booker != nil {
		payload.BookerName = booking.Booker.Name
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
