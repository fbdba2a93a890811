package worker

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"
)

const enqueueTimeout = 5 * time.Second

// SubscribeBookingEvents mirrors booking lifecycle events into the sync queue.
// A new booking becomes an upsert, a decision becomes a status update.
func SubscribeBookingEvents(bus *events.EventBus, w domain.SyncWorker) {
	bus.Subscribe(events.EventBookingCreated, func(ev *events.Event) error {
		var p events.BookingEventPayload
		if err := ev.Decode(&p); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
		defer cancel()
		return w.EnqueueTask(ctx, TaskUpsert, p.BookingID, bookingFromEvent(p), "")
	})

	statusHandler := func(ev *events.Event) error {
		var p events.BookingEventPayload
		if err := ev.Decode(&p); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
		defer cancel()
		return w.EnqueueTask(ctx, TaskUpdateStatus, p.BookingID, nil, p.Status)
	}
	bus.Subscribe(events.EventBookingApproved, statusHandler)
	bus.Subscribe(events.EventBookingRejected, statusHandler)
}

func bookingFromEvent(p events.BookingEventPayload) *models.Booking {
	return &models.Booking{
		ID:       p.BookingID,
		Start:    p.Start,
		End:      p.End,
		Status:   models.Status(p.Status),
		ItemID:   p.ItemID,
		BookerID: p.BookerID,
		Item:     &models.Item{ID: p.ItemID, Name: p.ItemName, OwnerID: p.OwnerID},
		Booker:   &models.User{ID: p.BookerID, Name: p.BookerName},
	}
}
