package models

type Item struct {
	ID          int64  `json:"id" yaml:"id" db:"id"`
	Name        string `json:"name" yaml:"name" db:"name"`
	Description string `json:"description" yaml:"description" db:"description"`
	Available   bool   `json:"available" yaml:"available" db:"available"`
	OwnerID     int64  `json:"owner_id" yaml:"owner_id" db:"owner_id"`
	RequestID   *int64 `json:"request_id,omitempty" yaml:"request_id" db:"request_id"`
}

// ItemPatch holds the fields an owner may change.
type ItemPatch struct {
	Name        *string
	Description *string
	Available   *bool
}

// ItemDetails is an item as shown to a viewer. LastBooking and NextBooking
// are only filled for the owner.
type ItemDetails struct {
	Item
	Comments    []*Comment
	LastBooking *Booking
	NextBooking *Booking
}
