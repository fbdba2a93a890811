package repository

import (
	"context"
	"sync"
	"time"

	"shareit/internal/models"
)

// MemoryGatewayStore is the in-process GatewayStore used without Redis or while Redis is down.
type MemoryGatewayStore struct {
	mu         sync.Mutex
	rateLimits map[int64]*rateLimitEntry
	responses  map[string]storedEntry
	inFlight   map[string]time.Time
	now        func() time.Time
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

type storedEntry struct {
	resp      models.StoredResponse
	expiresAt time.Time
}

func NewMemoryGatewayStore() *MemoryGatewayStore {
	return &MemoryGatewayStore{
		rateLimits: make(map[int64]*rateLimitEntry),
		responses:  make(map[string]storedEntry),
		inFlight:   make(map[string]time.Time),
		now:        time.Now,
	}
}

func (r *MemoryGatewayStore) CheckRateLimit(_ context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.rateLimits[userID]
	if !ok || !now.Before(entry.expiresAt) {
		entry = &rateLimitEntry{expiresAt: now.Add(window)}
		r.rateLimits[userID] = entry
	}
	entry.count++

	return entry.count <= limit, nil
}

func (r *MemoryGatewayStore) GetIdempotent(_ context.Context, key string) (*models.StoredResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.responses[key]
	if !ok {
		return nil, nil
	}
	if !r.now().Before(entry.expiresAt) {
		delete(r.responses, key)
		return nil, nil
	}
	resp := entry.resp
	return &resp, nil
}

func (r *MemoryGatewayStore) SaveIdempotent(_ context.Context, key string, resp *models.StoredResponse, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.responses[key] = storedEntry{resp: *resp, expiresAt: r.now().Add(ttl)}
	return nil
}

func (r *MemoryGatewayStore) ReserveIdempotent(_ context.Context, key string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if until, ok := r.inFlight[key]; ok && now.Before(until) {
		return false, nil
	}
	r.inFlight[key] = now.Add(ttl)
	return true, nil
}

func (r *MemoryGatewayStore) ReleaseIdempotent(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.inFlight, key)
	return nil
}
