package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/rs/zerolog"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Gateway validates client requests and forwards the valid ones to the server.
type Gateway struct {
	cfg      config.GatewayConfig
	client   *ServerClient
	store    domain.GatewayStore
	health   healthpb.HealthClient
	validate *validator.Validate
	server   *http.Server
	logger   *zerolog.Logger
}

// New wires the gateway. store and health may be nil: rate limiting and
// idempotent replay are then off, and readiness falls back to the server's /healthz.
func New(cfg config.GatewayConfig, client *ServerClient, store domain.GatewayStore, health healthpb.HealthClient, logger *zerolog.Logger) *Gateway {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	g := &Gateway{
		cfg:      cfg,
		client:   client,
		store:    store,
		health:   health,
		validate: v,
		logger:   logger,
	}
	g.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           g.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Timeout + 5*time.Second,
	}
	return g
}

func (g *Gateway) Handler() http.Handler {
	return g.server.Handler
}

func (g *Gateway) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(api.RequestLogger(g.logger, "gateway"))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", g.ready)

	r.Group(func(r chi.Router) {
		r.Use(g.rateLimit)
		r.Use(g.idempotency)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", g.createUser)
			r.Get("/", g.passThroughAnon)
			r.Get("/{id}", g.withPathID(g.passThroughAnon))
			r.Patch("/{id}", g.withPathID(g.updateUser))
			r.Delete("/{id}", g.withPathID(g.passThroughAnon))
		})

		r.Route("/items", func(r chi.Router) {
			r.Post("/", g.createItem)
			r.Get("/", g.listPaged)
			r.Get("/search", g.searchItems)
			r.Get("/{id}", g.withPathID(g.passThrough))
			r.Patch("/{id}", g.withPathID(g.updateItem))
			r.Post("/{id}/comment", g.withPathID(g.createComment))
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", g.createBooking)
			r.Get("/", g.listBookings)
			r.Get("/owner", g.listBookings)
			r.Get("/owner/export", g.exportBookings)
			r.Get("/{id}", g.withPathID(g.passThrough))
			r.Patch("/{id}", g.withPathID(g.approveBooking))
		})

		r.Route("/requests", func(r chi.Router) {
			r.Post("/", g.createRequest)
			r.Get("/", g.passThrough)
			r.Get("/all", g.listPaged)
			r.Get("/{id}", g.withPathID(g.passThrough))
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// ready reports whether the server behind the gateway can take traffic.
func (g *Gateway) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if g.health != nil {
		resp, err := g.health.Check(ctx, &healthpb.HealthCheckRequest{Service: api.HealthServiceName})
		if err != nil || resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			status := "unreachable"
			if err == nil {
				status = resp.GetStatus().String()
			}
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": status})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}

	resp, err := g.client.Forward(ctx, http.MethodGet, "/healthz", nil, 0, nil)
	if err != nil || resp.Status != http.StatusOK {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (g *Gateway) Start() error {
	g.logger.Info().Str("addr", g.server.Addr).Str("upstream", g.cfg.ServerURL).Msg("Gateway listening")
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}
