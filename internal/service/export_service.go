package service

import (
	"context"
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// BookingExportSource is the slice of storage the export needs.
type BookingExportSource interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetOwnerBookingsForExport(ctx context.Context, ownerID int64, limit int) ([]*models.Booking, error)
}

type ExportService struct {
	source BookingExportSource
	clock  domain.Clock
	logger *zerolog.Logger
}

func NewExportService(source BookingExportSource, clock domain.Clock, logger *zerolog.Logger) *ExportService {
	return &ExportService{source: source, clock: clock, logger: logger}
}

const exportSheet = "Бронирования"

var exportHeaders = []string{"ID", "Вещь", "Арендатор", "Начало", "Конец", "Статус"}

// ExportOwnerBookings builds an XLSX workbook with the owner's bookings in the given state,
// ordered by start.
func (s *ExportService) ExportOwnerBookings(ctx context.Context, ownerID int64, state models.State) ([]byte, error) {
	if _, err := s.source.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}

	bookings, err := s.source.GetOwnerBookingsForExport(ctx, ownerID, models.MaxExportRows)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	rows := make([]*models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if state.Includes(b, now) {
			rows = append(rows, b)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		_ = f.SetCellStyle(exportSheet, "A1", "F1", headerStyle)
	}

	for i, b := range rows {
		row := i + 2
		values := []interface{}{
			b.ID,
			itemName(b),
			bookerName(b),
			b.Start.UTC().Format(models.TimeLayout),
			b.End.UTC().Format(models.TimeLayout),
			string(b.Status),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(exportSheet, cell, v)
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 8)
	_ = f.SetColWidth(exportSheet, "B", "C", 25)
	_ = f.SetColWidth(exportSheet, "D", "F", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}

	s.logger.Info().
		Int64("owner_id", ownerID).
		Str("state", state.String()).
		Int("rows", len(rows)).
		Msg("bookings exported")
	return buf.Bytes(), nil
}

func itemName(b *models.Booking) string {
	if b.Item == nil {
		return ""
	}
	return b.Item.Name
}

func bookerName(b *models.Booking) string {
	if b.Booker == nil {
		return ""
	}
	return b.Booker.Name
}
