package models

import (
	"fmt"
	"time"
)

type Status string

func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Booking struct {
	ID        int64     `json:"id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    Status    `json:"status"`
	ItemID    int64     `json:"item_id"`
	BookerID  int64     `json:"booker_id"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	// Filled on reads.
	Item   *Item `json:"item,omitempty"`
	Booker *User `json:"booker,omitempty"`
}

// OwnerID returns the owner of the booked item, or 0 when the item is not loaded.
func (b *Booking) OwnerID() int64 {
	if b.Item == nil {
		return 0
	}
	return b.Item.OwnerID
}

func (b *Booking) String() string {
	return fmt.Sprintf("booking #%d item=%d booker=%d %s..%s %s",
		b.ID, b.ItemID, b.BookerID, b.Start.Format(TimeLayout), b.End.Format(TimeLayout), b.Status)
}

// BookingInput is what a booker submits.
type BookingInput struct {
	ItemID int64
	Start  time.Time
	End    time.Time
}
