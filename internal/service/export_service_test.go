package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"shareit/internal/apperr"
	"shareit/internal/clock"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func (m *mockRepo) GetOwnerBookingsForExport(ctx context.Context, ownerID int64, limit int) ([]*models.Booking, error) {
	args := m.Called(ctx, ownerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func TestExportService_ExportOwnerBookings(t *testing.T) {
	ctx := context.Background()
	owner := &models.User{ID: 1, Name: "Owner"}
	item := &models.Item{ID: 10, Name: "Tent", OwnerID: 1}
	booker := &models.User{ID: 2, Name: "Booker"}

	past := &models.Booking{ID: 1, Start: testNow.Add(-72 * time.Hour), End: testNow.Add(-48 * time.Hour),
		Status: models.StatusApproved, ItemID: 10, BookerID: 2, Item: item, Booker: booker}
	future := &models.Booking{ID: 2, Start: testNow.Add(24 * time.Hour), End: testNow.Add(48 * time.Hour),
		Status: models.StatusWaiting, ItemID: 10, BookerID: 2, Item: item, Booker: booker}

	newExport := func() (*ExportService, *mockRepo) {
		repo := new(mockRepo)
		logger := zerolog.Nop()
		return NewExportService(repo, clock.NewManual(testNow), &logger), repo
	}

	readRows := func(t *testing.T, data []byte) [][]string {
		t.Helper()
		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(exportSheet)
		require.NoError(t, err)
		return rows
	}

	t.Run("All", func(t *testing.T) {
		s, repo := newExport()
		repo.On("GetUserByID", ctx, int64(1)).Return(owner, nil)
		repo.On("GetOwnerBookingsForExport", ctx, int64(1), models.MaxExportRows).Return([]*models.Booking{past, future}, nil)

		data, err := s.ExportOwnerBookings(ctx, 1, models.StateAll)
		require.NoError(t, err)

		rows := readRows(t, data)
		require.Len(t, rows, 3)
		assert.Equal(t, "ID", rows[0][0])
		assert.Equal(t, []string{"1", "Tent", "Booker", "2025-05-29T12:00:00", "2025-05-30T12:00:00", "APPROVED"}, rows[1])
		assert.Equal(t, "WAITING", rows[2][5])
	})

	t.Run("FilteredByState", func(t *testing.T) {
		s, repo := newExport()
		repo.On("GetUserByID", ctx, int64(1)).Return(owner, nil)
		repo.On("GetOwnerBookingsForExport", ctx, int64(1), models.MaxExportRows).Return([]*models.Booking{past, future}, nil)

		data, err := s.ExportOwnerBookings(ctx, 1, models.StatePast)
		require.NoError(t, err)

		rows := readRows(t, data)
		require.Len(t, rows, 2)
		assert.Equal(t, "1", rows[1][0])
	})

	t.Run("UnknownOwner", func(t *testing.T) {
		s, repo := newExport()
		repo.On("GetUserByID", ctx, int64(9)).Return(nil, apperr.NotFoundf("user 9 not found"))

		_, err := s.ExportOwnerBookings(ctx, 9, models.StateAll)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		repo.AssertNotCalled(t, "GetOwnerBookingsForExport", ctx, int64(9), models.MaxExportRows)
	})
}
