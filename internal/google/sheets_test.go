package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setupMockServer(t *testing.T) (*http.ServeMux, *SheetsService) {
	t.Helper()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	srv, err := sheets.NewService(context.Background(), option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)

	s := newSheetsService(srv, "bookings_tid", "Bookings", nil)
	s.now = func() time.Time { return fixedNow }
	return mux, s
}

func sampleBooking() *models.Booking {
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	return &models.Booking{
		ID:       789,
		Start:    start,
		End:      start.Add(48 * time.Hour),
		Status:   models.StatusWaiting,
		ItemID:   5,
		BookerID: 2,
		Item:     &models.Item{ID: 5, Name: "Drill", OwnerID: 1},
		Booker:   &models.User{ID: 2, Name: "Anna"},
	}
}

func TestSheetsService_TestConnection(t *testing.T) {
	mux, s := setupMockServer(t)
	mux.HandleFunc("/v4/spreadsheets/bookings_tid/values/Bookings!A1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"ID"}}})
	})
	assert.NoError(t, s.TestConnection(context.Background()))
}

func TestSheetsService_EnsureHeader(t *testing.T) {
	mux, s := setupMockServer(t)
	var got sheets.ValueRange
	mux.HandleFunc("/v4/spreadsheets/bookings_tid/values/Bookings!A1:J1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
	})
	require.NoError(t, s.EnsureHeader(context.Background()))
	require.Len(t, got.Values, 1)
	assert.Equal(t, "ID", got.Values[0][0])
	assert.Len(t, got.Values[0], 10)
}

func TestSheetsService_WarmUpCache(t *testing.T) {
	mux, s := setupMockServer(t)
	mux.HandleFunc("/v4/spreadsheets/bookings_tid/values/Bookings!A:A", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{
			Values: [][]interface{}{{"ID"}, {"123"}, {}, {"456"}},
		})
	})
	require.NoError(t, s.WarmUpCache(context.Background()))

	row, ok := s.getCachedRow(123)
	assert.True(t, ok)
	assert.Equal(t, 2, row)
	row, _ = s.getCachedRow(456)
	assert.Equal(t, 4, row)
}

func TestSheetsService_UpsertBooking_Append(t *testing.T) {
	mux, s := setupMockServer(t)
	mux.HandleFunc("/v4/spreadsheets/bookings_tid/values/Bookings!A:A", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"ID"}}})
	})
	var appended sheets.ValueRange
	mux.HandleFunc("/v4/spreadsheets/bookings_tid/values/Bookings!A:A:append", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&appended)
		_ = json.NewEncoder(w).Encode(sheets.AppendValuesResponse{
			Updates: &sheets.UpdateValuesResponse{UpdatedRange: "Bookings!A10:J10"},
		})
	})

	require.NoError(t, s.UpsertBooking(context.Background(), sampleBooking()))

	require.Len(t, appended.Values, 1)
	assert.EqualValues(t, 789, appended.Values[0][0])
	assert.Equal(t, "Drill", appended.Values[0][2])
	assert.Equal(t, "2025-06-02T10:00:00", appended.Values[0][6])
	assert.Equal(t, "WAITING", appended.Values[0][8])

	row, ok := s.getCachedRow(789)
	assert.True(t, ok)
	assert.Equal(t, 10, row)
}

func TestSheetsService_UpsertBooking_Update(t *testing.T) {
	mux, s := setupMockServer(t)
	s.setCachedRow(789, 2)
	called := false
	mux.HandleFunc("/v4/spreadsheets/bookings_tid/values/Bookings!A2:J2", func(w http.ResponseWriter, r *http.Request) {
		called = true
		_ = json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
	})
	require.NoError(t, s.UpsertBooking(context.Background(), sampleBooking()))
	assert.True(t, called)
}

func TestSheetsService_UpsertBooking_Nil(t *testing.T) {
	_, s := setupMockServer(t)
	assert.Error(t, s.UpsertBooking(context.Background(), nil))
}

func TestSheetsService_UpdateBookingStatus(t *testing.T) {
	mux, s := setupMockServer(t)
	s.setCachedRow(123, 2)
	var req sheets.BatchUpdateValuesRequest
	mux.HandleFunc("/v4/spreadsheets/bookings_tid/values:batchUpdate", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(sheets.BatchUpdateValuesResponse{})
	})

	require.NoError(t, s.UpdateBookingStatus(context.Background(), 123, "APPROVED"))

	require.Len(t, req.Data, 2)
	assert.Equal(t, "Bookings!I2", req.Data[0].Range)
	assert.Equal(t, "APPROVED", req.Data[0].Values[0][0])
	assert.Equal(t, "Bookings!J2", req.Data[1].Range)
	assert.Equal(t, "2025-06-01 12:00:00", req.Data[1].Values[0][0])
}

func TestSheetsService_UpdateBookingStatus_NoRow(t *testing.T) {
	mux, s := setupMockServer(t)
	mux.HandleFunc("/v4/spreadsheets/bookings_tid/values/Bookings!A:A", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"ID"}}})
	})
	err := s.UpdateBookingStatus(context.Background(), 55, "REJECTED")
	assert.ErrorIs(t, err, ErrRowNotFound)
}

func TestSheetsService_FindBookingRow_FullScan(t *testing.T) {
	mux, s := setupMockServer(t)
	mux.HandleFunc("/v4/spreadsheets/bookings_tid/values/Bookings!A:A", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(sheets.ValueRange{
			Values: [][]interface{}{{"ID"}, {"999"}},
		})
	})
	row, err := s.FindBookingRow(context.Background(), 999)
	require.NoError(t, err)
	assert.Equal(t, 2, row)

	cached, ok := s.getCachedRow(999)
	assert.True(t, ok)
	assert.Equal(t, 2, cached)

	_, err = s.FindBookingRow(context.Background(), 0)
	assert.Error(t, err)
}

func TestSheetsService_ClearCache(t *testing.T) {
	_, s := setupMockServer(t)
	s.setCachedRow(1, 2)
	s.ClearCache()
	_, ok := s.getCachedRow(1)
	assert.False(t, ok)
}

func TestA1QuotesSheetName(t *testing.T) {
	s := newSheetsService(nil, "id", "My Bookings", nil)
	assert.Equal(t, "'My Bookings'!A:A", s.a1("A:A"))

	s = newSheetsService(nil, "id", "Bookings", nil)
	assert.Equal(t, "Bookings!A2:J2", s.a1("A2:J2"))
}

func TestRowFromRange(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"Bookings!A10:J10", 10, true},
		{"'My Sheet'!A3:J3", 3, true},
		{"A7", 7, true},
		{"Bookings!A:A", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := rowFromRange(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestCellID(t *testing.T) {
	id, ok := cellID([]interface{}{float64(12)})
	assert.True(t, ok)
	assert.EqualValues(t, 12, id)

	id, ok = cellID([]interface{}{" 34 "})
	assert.True(t, ok)
	assert.EqualValues(t, 34, id)

	_, ok = cellID([]interface{}{"ID"})
	assert.False(t, ok)

	_, ok = cellID(nil)
	assert.False(t, ok)
}
