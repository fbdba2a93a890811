package database

import (
	"context"
	"database/sql"
	"time"

	"shareit/internal/apperr"
	"shareit/internal/models"

	"github.com/Masterminds/squirrel"
)

type bookingRow struct {
	ID              int64         `db:"id"`
	Start           time.Time     `db:"start_time"`
	End             time.Time     `db:"end_time"`
	Status          string        `db:"status"`
	ItemID          int64         `db:"item_id"`
	BookerID        int64         `db:"booker_id"`
	Version         int64         `db:"version"`
	CreatedAt       time.Time     `db:"created_at"`
	ItemName        string        `db:"item_name"`
	ItemDescription string        `db:"item_description"`
	ItemAvailable   bool          `db:"item_available"`
	ItemOwnerID     int64         `db:"item_owner_id"`
	ItemRequestID   sql.NullInt64 `db:"item_request_id"`
	BookerName      string        `db:"booker_name"`
	BookerEmail     string        `db:"booker_email"`
}

func (r bookingRow) toModel() *models.Booking {
	item := &models.Item{
		ID:          r.ItemID,
		Name:        r.ItemName,
		Description: r.ItemDescription,
		Available:   r.ItemAvailable,
		OwnerID:     r.ItemOwnerID,
	}
	if r.ItemRequestID.Valid {
		reqID := r.ItemRequestID.Int64
		item.RequestID = &reqID
	}
	return &models.Booking{
		ID:        r.ID,
		Start:     r.Start.UTC(),
		End:       r.End.UTC(),
		Status:    models.Status(r.Status),
		ItemID:    r.ItemID,
		BookerID:  r.BookerID,
		Version:   r.Version,
		CreatedAt: r.CreatedAt.UTC(),
		Item:      item,
		Booker:    &models.User{ID: r.BookerID, Name: r.BookerName, Email: r.BookerEmail},
	}
}

func (db *DB) bookingSelect() squirrel.SelectBuilder {
	return db.sb.Select(
		"b.id", "b.start_time", "b.end_time", "b.status", "b.item_id", "b.booker_id", "b.version", "b.created_at",
		"i.name AS item_name", "i.description AS item_description", "i.available AS item_available",
		"i.owner_id AS item_owner_id", "i.request_id AS item_request_id",
		"u.name AS booker_name", "u.email AS booker_email",
	).
		From("bookings b").
		Join("items i ON i.id = b.item_id").
		Join("users u ON u.id = b.booker_id")
}

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.Version == 0 {
		booking.Version = 1
	}
	query, args, err := db.sb.Insert("bookings").
		Columns("start_time", "end_time", "status", "item_id", "booker_id", "version", "created_at").
		Values(booking.Start.UTC(), booking.End.UTC(), string(booking.Status), booking.ItemID, booking.BookerID, booking.Version, booking.CreatedAt.UTC()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	if err := db.QueryRowxContext(ctx, query, args...).Scan(&booking.ID); err != nil {
		return mapError(err, "booking", booking.ID)
	}
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query, args, err := db.bookingSelect().Where("b.id = ?", id).ToSql()
	if err != nil {
		return nil, err
	}

	var row bookingRow
	if err := db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, mapError(err, "booking", id)
	}
	return row.toModel(), nil
}

// UpdateBookingStatusWithVersion обновляет статус только если версия не изменилась
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, version int64, status models.Status) error {
	query, args, err := db.sb.Update("bookings").
		Set("status", string(status)).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": id, "version": version}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err, "booking", id)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.ErrConcurrentModification
	}
	return nil
}

func (db *DB) GetBookingsByBooker(ctx context.Context, bookerID int64, status *models.Status, page models.Page) ([]*models.Booking, error) {
	builder := db.bookingSelect().Where("b.booker_id = ?", bookerID)
	return db.selectBookingPage(ctx, builder, status, page)
}

func (db *DB) GetBookingsByOwner(ctx context.Context, ownerID int64, status *models.Status, page models.Page) ([]*models.Booking, error) {
	builder := db.bookingSelect().Where("i.owner_id = ?", ownerID)
	return db.selectBookingPage(ctx, builder, status, page)
}

func (db *DB) selectBookingPage(ctx context.Context, builder squirrel.SelectBuilder, status *models.Status, page models.Page) ([]*models.Booking, error) {
	if status != nil {
		builder = builder.Where("b.status = ?", string(*status))
	}
	return db.selectBookings(ctx, builder.
		OrderBy("b.end_time DESC", "b.id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset)))
}

func (db *DB) GetBookingsByItemIDs(ctx context.Context, itemIDs []int64) ([]*models.Booking, error) {
	if len(itemIDs) == 0 {
		return []*models.Booking{}, nil
	}
	return db.selectBookings(ctx, db.bookingSelect().
		Where(squirrel.Eq{"b.item_id": itemIDs}).
		OrderBy("b.start_time", "b.id"))
}

// HasFinishedBooking reports whether the user has any booking that ended before the given moment.
func (db *DB) HasFinishedBooking(ctx context.Context, bookerID int64, before time.Time) (bool, error) {
	query, args, err := db.sb.Select("1").
		From("bookings").
		Where("booker_id = ?", bookerID).
		Where("end_time < ?", before.UTC()).
		Limit(1).
		ToSql()
	if err != nil {
		return false, err
	}

	var one int
	err = db.QueryRowxContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, mapError(err, "booking", 0)
	}
	return true, nil
}

// GetOwnerBookingsForExport возвращает все бронирования владельца для выгрузки
func (db *DB) GetOwnerBookingsForExport(ctx context.Context, ownerID int64, limit int) ([]*models.Booking, error) {
	return db.selectBookings(ctx, db.bookingSelect().
		Where("i.owner_id = ?", ownerID).
		OrderBy("b.start_time", "b.id").
		Limit(uint64(limit)))
}

func (db *DB) selectBookings(ctx context.Context, builder squirrel.SelectBuilder) ([]*models.Booking, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []bookingRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, mapError(err, "booking", 0)
	}

	bookings := make([]*models.Booking, 0, len(rows))
	for _, r := range rows {
		bookings = append(bookings, r.toModel())
	}
	return bookings, nil
}
