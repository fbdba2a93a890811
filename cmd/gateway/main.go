package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/gateway"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, redisClient := initStore(ctx, cfg, logger)
	defer (func() { _ = repository.Close(redisClient) })()

	var health healthpb.HealthClient
	if cfg.Gateway.ServerGRPC != "" {
		conn, err := grpc.NewClient(cfg.Gateway.ServerGRPC, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			logger.Warn().Err(err).Str("target", cfg.Gateway.ServerGRPC).Msg("grpc health client init failed, readiness uses HTTP")
		} else {
			defer conn.Close()
			health = healthpb.NewHealthClient(conn)
		}
	}

	if cfg.Monitoring.PrometheusEnabled {
		go metrics.Serve(ctx, cfg.Monitoring.PrometheusPort, logger)
	}

	gw := gateway.New(cfg.Gateway, gateway.NewServerClient(cfg.Gateway), store, health, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- gw.Start()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		if runErr != nil {
			logger.Error().Err(runErr).Msg("gateway stopped unexpectedly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = gw.Shutdown(shutdownCtx)

	logger.Info().Msg("Gateway stopped")
	return runErr
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/gateway.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateGateway(); err != nil {
		return nil, nil, nil, fmt.Errorf("gateway config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App, "gateway")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "gateway-main").Logger()
	return cfg, &logger, closer, nil
}

// initStore prefers Redis and falls back to process memory when Redis is absent or fails.
func initStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.GatewayStore, *redis.Client) {
	memory := repository.NewMemoryGatewayStore()
	if cfg.Redis.Address == "" {
		logger.Info().Msg("redis not configured, gateway state kept in memory")
		return memory, nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable at start, failover store will retry it")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}
	return repository.NewFailoverGatewayStore(repository.NewRedisGatewayStore(client), memory, logger), client
}
