package repository

import (
	"context"
	"sync/atomic"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverGatewayStore serves from primary until it errors, then from fallback.
// The primary is retried once per recoveryInterval.
type FailoverGatewayStore struct {
	primary   domain.GatewayStore
	fallback  domain.GatewayStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time
}

func NewFailoverGatewayStore(primary, fallback domain.GatewayStore, logger *zerolog.Logger) *FailoverGatewayStore {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FailoverGatewayStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// usePrimary reports whether the next call should go to the primary store.
func (r *FailoverGatewayStore) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	last := time.Unix(0, r.lastCheck.Load())
	return r.now().Sub(last) > recoveryInterval
}

func (r *FailoverGatewayStore) observe(err error) {
	if err == nil {
		if r.isDown.Swap(false) {
			r.logger.Info().Msg("Primary gateway store recovered")
		}
		return
	}
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary gateway store failed, falling back to memory")
	}
	r.lastCheck.Store(r.now().UnixNano())
}

func (r *FailoverGatewayStore) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, userID, limit, window)
		r.observe(err)
		if err == nil {
			return allowed, nil
		}
	}
	return r.fallback.CheckRateLimit(ctx, userID, limit, window)
}

func (r *FailoverGatewayStore) GetIdempotent(ctx context.Context, key string) (*models.StoredResponse, error) {
	if r.usePrimary() {
		resp, err := r.primary.GetIdempotent(ctx, key)
		r.observe(err)
		if err == nil {
			return resp, nil
		}
	}
	return r.fallback.GetIdempotent(ctx, key)
}

func (r *FailoverGatewayStore) SaveIdempotent(ctx context.Context, key string, resp *models.StoredResponse, ttl time.Duration) error {
	if r.usePrimary() {
		err := r.primary.SaveIdempotent(ctx, key, resp, ttl)
		r.observe(err)
		if err == nil {
			return nil
		}
	}
	return r.fallback.SaveIdempotent(ctx, key, resp, ttl)
}

func (r *FailoverGatewayStore) ReserveIdempotent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if r.usePrimary() {
		ok, err := r.primary.ReserveIdempotent(ctx, key, ttl)
		r.observe(err)
		if err == nil {
			return ok, nil
		}
	}
	return r.fallback.ReserveIdempotent(ctx, key, ttl)
}

// ReleaseIdempotent clears the key in both stores; a reservation may have
// been taken by either of them.
func (r *FailoverGatewayStore) ReleaseIdempotent(ctx context.Context, key string) error {
	_ = r.fallback.ReleaseIdempotent(ctx, key)
	if r.usePrimary() {
		err := r.primary.ReleaseIdempotent(ctx, key)
		r.observe(err)
		return err
	}
	return nil
}
