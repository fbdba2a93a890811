package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGatewayStore_RateLimit(t *testing.T) {
	repo := NewMemoryGatewayStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	allowed, _ := repo.CheckRateLimit(ctx, 1, 2, time.Minute)
	assert.True(t, allowed)
	allowed, _ = repo.CheckRateLimit(ctx, 1, 2, time.Minute)
	assert.True(t, allowed)
	allowed, _ = repo.CheckRateLimit(ctx, 1, 2, time.Minute)
	assert.False(t, allowed)

	now = now.Add(time.Minute)
	allowed, _ = repo.CheckRateLimit(ctx, 1, 2, time.Minute)
	assert.True(t, allowed, "window should reset")
}

func TestMemoryGatewayStore_Concurrent(t *testing.T) {
	repo := NewMemoryGatewayStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := repo.CheckRateLimit(ctx, 7, 10, time.Hour); ok {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowedCount)
}

func TestMemoryGatewayStore_Idempotency(t *testing.T) {
	repo := NewMemoryGatewayStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	resp := &models.StoredResponse{Status: 201, Body: []byte("{}")}
	require.NoError(t, repo.SaveIdempotent(ctx, "k", resp, time.Minute))

	got, err := repo.GetIdempotent(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, resp, got)

	now = now.Add(time.Minute)
	got, err = repo.GetIdempotent(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryGatewayStore_Reservation(t *testing.T) {
	repo := NewMemoryGatewayStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := repo.ReserveIdempotent(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ReserveIdempotent(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.ReleaseIdempotent(ctx, "k"))
	ok, err = repo.ReserveIdempotent(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// просроченная бронь не держит ключ
	now = now.Add(2 * time.Minute)
	ok, err = repo.ReserveIdempotent(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
