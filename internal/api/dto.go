package api

import (
	"strings"
	"time"

	"shareit/internal/models"
)

// DateTime is a timestamp in models.TimeLayout, always UTC.
// RFC3339 is accepted on input as well.
type DateTime time.Time

func (d DateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(d).UTC().Format(models.TimeLayout) + `"`), nil
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		return nil
	}
	t, err := ParseDateTime(raw)
	if err != nil {
		return err
	}
	*d = DateTime(t)
	return nil
}

func (d DateTime) Time() time.Time { return time.Time(d) }

// ParseDateTime parses the wire format, falling back to RFC3339.
func ParseDateTime(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(models.TimeLayout, raw, time.UTC)
	if err == nil {
		return t, nil
	}
	if t, rfcErr := time.Parse(time.RFC3339, raw); rfcErr == nil {
		return t.UTC(), nil
	}
	return time.Time{}, err
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type UserDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserInput is used for create and partial update; nil means "not sent".
type UserInput struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email *string `json:"email" validate:"omitempty,email,max=512"`
}

type ItemDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	RequestID   *int64 `json:"requestId,omitempty"`
}

// ItemDetailsDTO is an item with comments; bookings are only set for the owner.
type ItemDetailsDTO struct {
	ItemDTO
	Comments    []CommentDTO     `json:"comments"`
	LastBooking *BookingShortDTO `json:"lastBooking"`
	NextBooking *BookingShortDTO `json:"nextBooking"`
}

type ItemInput struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Available   *bool   `json:"available"`
	RequestID   *int64  `json:"requestId" validate:"omitempty,gt=0"`
}

type CommentDTO struct {
	ID         int64    `json:"id"`
	Text       string   `json:"text"`
	AuthorName string   `json:"authorName"`
	Created    DateTime `json:"created"`
}

type CommentInput struct {
	Text string `json:"text" validate:"required,max=1000"`
}

type BookingDTO struct {
	ID     int64    `json:"id"`
	Start  DateTime `json:"start"`
	End    DateTime `json:"end"`
	Status string   `json:"status"`
	Item   ItemDTO  `json:"item"`
	Booker UserDTO  `json:"booker"`
}

type BookingShortDTO struct {
	ID       int64    `json:"id"`
	Start    DateTime `json:"start"`
	End      DateTime `json:"end"`
	ItemID   int64    `json:"itemId"`
	BookerID int64    `json:"bookerId"`
	Status   string   `json:"status"`
}

type BookingInput struct {
	ItemID int64     `json:"itemId" validate:"required,gt=0"`
	Start  *DateTime `json:"start" validate:"required"`
	End    *DateTime `json:"end" validate:"required"`
}

type RequestDTO struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	RequesterID int64     `json:"requesterId"`
	Created     DateTime  `json:"created"`
	Items       []ItemDTO `json:"items"`
}

type RequestInput struct {
	Description string `json:"description" validate:"required,max=1000"`
}

func toUserDTO(u *models.User) UserDTO {
	if u == nil {
		return UserDTO{}
	}
	return UserDTO{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toUserDTOs(users []*models.User) []UserDTO {
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDTO(u))
	}
	return out
}

func toItemDTO(it *models.Item) ItemDTO {
	if it == nil {
		return ItemDTO{}
	}
	return ItemDTO{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Available:   it.Available,
		RequestID:   it.RequestID,
	}
}

func toItemDTOs(items []*models.Item) []ItemDTO {
	out := make([]ItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, toItemDTO(it))
	}
	return out
}

func toItemDetailsDTO(d *models.ItemDetails) ItemDetailsDTO {
	out := ItemDetailsDTO{
		ItemDTO:     toItemDTO(&d.Item),
		Comments:    make([]CommentDTO, 0, len(d.Comments)),
		LastBooking: toBookingShortDTO(d.LastBooking),
		NextBooking: toBookingShortDTO(d.NextBooking),
	}
	for _, c := range d.Comments {
		out.Comments = append(out.Comments, toCommentDTO(c))
	}
	return out
}

func toItemDetailsDTOs(details []*models.ItemDetails) []ItemDetailsDTO {
	out := make([]ItemDetailsDTO, 0, len(details))
	for _, d := range details {
		out = append(out, toItemDetailsDTO(d))
	}
	return out
}

func toCommentDTO(c *models.Comment) CommentDTO {
	return CommentDTO{ID: c.ID, Text: c.Text, AuthorName: c.AuthorName, Created: DateTime(c.Created)}
}

func toBookingDTO(b *models.Booking) BookingDTO {
	return BookingDTO{
		ID:     b.ID,
		Start:  DateTime(b.Start),
		End:    DateTime(b.End),
		Status: string(b.Status),
		Item:   toItemDTO(b.Item),
		Booker: toUserDTO(b.Booker),
	}
}

func toBookingDTOs(bookings []*models.Booking) []BookingDTO {
	out := make([]BookingDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingDTO(b))
	}
	return out
}

func toBookingShortDTO(b *models.Booking) *BookingShortDTO {
	if b == nil {
		return nil
	}
	return &BookingShortDTO{
		ID:       b.ID,
		Start:    DateTime(b.Start),
		End:      DateTime(b.End),
		ItemID:   b.ItemID,
		BookerID: b.BookerID,
		Status:   string(b.Status),
	}
}

func toRequestDTO(r *models.ItemRequest) RequestDTO {
	return RequestDTO{
		ID:          r.ID,
		Description: r.Description,
		RequesterID: r.RequesterID,
		Created:     DateTime(r.Created),
		Items:       toItemDTOs(r.Items),
	}
}

func toRequestDTOs(reqs []*models.ItemRequest) []RequestDTO {
	out := make([]RequestDTO, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, toRequestDTO(r))
	}
	return out
}
