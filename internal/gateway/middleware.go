package gateway

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/metrics"
	"shareit/internal/models"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func writeStored(w http.ResponseWriter, resp *models.StoredResponse) {
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	if resp.Disposition != "" {
		w.Header().Set("Content-Disposition", resp.Disposition)
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

// headerUserID returns the caller id if the header is present and valid.
func headerUserID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(models.HeaderUserID)), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// rateLimit caps requests per user in a fixed window. Anonymous calls are not limited.
func (g *Gateway) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := headerUserID(r)
		if !ok || g.store == nil || g.cfg.RateLimit.Requests <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		allowed, err := g.store.CheckRateLimit(r.Context(), userID, g.cfg.RateLimit.Requests, g.cfg.RateLimit.Window)
		if err != nil {
			// лимитер недоступен, пропускаем
			zerolog.Ctx(r.Context()).Warn().Err(err).Int64("user_id", userID).Msg("rate limit check failed")
		} else if !allowed {
			metrics.IncGatewayRejection("rate_limit")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// inFlightTTL bounds how long a reservation outlives a crashed request.
func (g *Gateway) inFlightTTL() time.Duration {
	if g.cfg.Timeout > 0 {
		return 2 * g.cfg.Timeout
	}
	return 30 * time.Second
}

// idempotency replays the stored answer for a repeated POST with the same Idempotency-Key.
// Keys are scoped to the caller. While the first request is still running, a
// concurrent one with the same key gets 409.
func (g *Gateway) idempotency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
		if r.Method != http.MethodPost || key == "" || g.store == nil {
			next.ServeHTTP(w, r)
			return
		}

		userID, _ := headerUserID(r)
		storeKey := "idem:" + strconv.FormatInt(userID, 10) + ":" + r.URL.Path + ":" + key
		log := zerolog.Ctx(r.Context())

		if g.replay(w, r, storeKey) {
			return
		}

		reserved, err := g.store.ReserveIdempotent(r.Context(), storeKey, g.inFlightTTL())
		if err != nil {
			log.Warn().Err(err).Msg("idempotency reserve failed")
		} else if !reserved {
			// первый запрос мог успеть завершиться
			if g.replay(w, r, storeKey) {
				return
			}
			metrics.IncGatewayRejection("idempotency_in_flight")
			writeError(w, http.StatusConflict, "request with this Idempotency-Key is already in progress")
			return
		}

		rec := &captureWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// ошибки сервера не кешируем, клиент может повторить
		if rec.status < http.StatusInternalServerError {
			resp := &models.StoredResponse{
				Status:      rec.status,
				ContentType: rec.Header().Get("Content-Type"),
				Disposition: rec.Header().Get("Content-Disposition"),
				Body:        rec.body.Bytes(),
			}
			if err := g.store.SaveIdempotent(r.Context(), storeKey, resp, g.cfg.IdempotencyTTL); err != nil {
				log.Warn().Err(err).Msg("idempotency save failed")
			}
		}
		if err := g.store.ReleaseIdempotent(r.Context(), storeKey); err != nil {
			log.Warn().Err(err).Msg("idempotency release failed")
		}
	})
}

// replay writes the stored answer for key, if any.
func (g *Gateway) replay(w http.ResponseWriter, r *http.Request, key string) bool {
	stored, err := g.store.GetIdempotent(r.Context(), key)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("idempotency lookup failed")
		return false
	}
	if stored == nil {
		return false
	}
	w.Header().Set(replayedHeader, "true")
	writeStored(w, stored)
	return true
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(status int) {
	c.status = status
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}
