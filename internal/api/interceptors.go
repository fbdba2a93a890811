package api

import (
	"context"
	"time"

	"shareit/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const requestIDMetadataKey = "x-request-id"

// LoggingUnaryInterceptor tags each call with a request id, echoes it back
// in the response header and records one log line plus a counter per call.
func LoggingUnaryInterceptor(logger *zerolog.Logger) grpc.UnaryServerInterceptor {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "grpc").Logger()
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		requestID := requestIDFromMetadata(ctx)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDMetadataKey, requestID))

		callLog := base.With().Str("request_id", requestID).Logger()
		start := time.Now()
		resp, err := handler(callLog.WithContext(ctx), req)

		code := status.Code(err).String()
		metrics.IncGRPC(info.FullMethod, code)

		remote := clientKeyUnknown
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			remote = p.Addr.String()
		}
		ev := callLog.Info()
		if err != nil {
			ev = callLog.Warn().Err(err)
		}
		ev.Str("method", info.FullMethod).
			Str("remote", remote).
			Str("code", code).
			Dur("duration", time.Since(start)).
			Msg("grpc request")

		return resp, err
	}
}

func requestIDFromMetadata(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if id := first(md.Get(requestIDMetadataKey)); id != "" {
			return id
		}
	}
	return uuid.NewString()
}

// StreamLoggingInterceptor covers the health Watch stream.
func StreamLoggingInterceptor(logger *zerolog.Logger) grpc.StreamServerInterceptor {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "grpc").Logger()
	}
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		code := status.Code(err).String()
		metrics.IncGRPC(info.FullMethod, code)
		base.Debug().
			Str("request_id", requestIDFromMetadata(ss.Context())).
			Str("method", info.FullMethod).
			Str("code", code).
			Dur("duration", time.Since(start)).
			Msg("grpc stream")
		return err
	}
}
