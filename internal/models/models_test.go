package models

import (
	"testing"
	"time"

	"shareit/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestParseState(t *testing.T) {
	t.Run("Known", func(t *testing.T) {
		for _, raw := range []string{"ALL", "current", "Past", "FUTURE", "waiting", "REJECTED"} {
			_, err := ParseState(raw)
			assert.NoError(t, err, raw)
		}
	})

	t.Run("EmptyIsAll", func(t *testing.T) {
		s, err := ParseState("")
		require.NoError(t, err)
		assert.Equal(t, StateAll, s)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := ParseState("abc")
		assert.ErrorIs(t, err, apperr.ErrBadRequest)
		assert.Equal(t, "Unknown state: abc", err.Error())
	})
}

func TestStateIncludes(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := &Booking{Start: now.Add(-48 * time.Hour), End: now.Add(-24 * time.Hour), Status: StatusApproved}
	current := &Booking{Start: now.Add(-time.Hour), End: now.Add(time.Hour), Status: StatusApproved}
	future := &Booking{Start: now.Add(24 * time.Hour), End: now.Add(48 * time.Hour), Status: StatusWaiting}

	assert.True(t, StatePast.Includes(past, now))
	assert.False(t, StatePast.Includes(current, now))

	assert.True(t, StateCurrent.Includes(current, now))
	assert.False(t, StateCurrent.Includes(future, now))
	assert.False(t, StateCurrent.Includes(past, now))

	// bookings in progress also count as FUTURE
	assert.True(t, StateFuture.Includes(future, now))
	assert.True(t, StateFuture.Includes(current, now))
	assert.False(t, StateFuture.Includes(past, now))

	assert.True(t, StateWaiting.Includes(future, now))
	assert.False(t, StateRejected.Includes(future, now))
	assert.True(t, StateAll.Includes(past, now))
}

func TestStatusFilter(t *testing.T) {
	st, ok := StateWaiting.StatusFilter()
	assert.True(t, ok)
	assert.Equal(t, StatusWaiting, st)

	st, ok = StateRejected.StatusFilter()
	assert.True(t, ok)
	assert.Equal(t, StatusRejected, st)

	_, ok = StateFuture.StatusFilter()
	assert.False(t, ok)
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name    string
		from    *int
		size    *int
		want    Page
		wantErr bool
	}{
		{name: "defaults", want: Page{Offset: 0, Limit: DefaultPageSize}},
		{name: "explicit", from: intPtr(20), size: intPtr(10), want: Page{Offset: 20, Limit: 10}},
		{name: "only size", size: intPtr(5), want: Page{Offset: 0, Limit: 5}},
		{name: "negative from", from: intPtr(-1), size: intPtr(10), wantErr: true},
		{name: "zero size", from: intPtr(0), size: intPtr(0), wantErr: true},
		{name: "negative size", from: intPtr(0), size: intPtr(-3), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPage(tt.from, tt.size)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrBadRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusWaiting.Valid())
	assert.True(t, StatusApproved.Valid())
	assert.False(t, Status("CANCELED").Valid())
}
