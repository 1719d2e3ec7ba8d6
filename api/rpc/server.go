package rpc

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/marketplace-backend/pkg/config"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/requestid"
)

// NewServer builds a gRPC server for svc. At most cfg.Workers calls execute
// at once across all connections; the rest wait for a slot until their
// deadline. MaxConcurrentStreams caps the streams open per connection.
func NewServer(cfg config.RPCConfig, svc Marketplace, logg *logger.Logger) *grpc.Server {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	srv := grpc.NewServer(
		grpc.NumStreamWorkers(uint32(workers)),
		grpc.MaxConcurrentStreams(uint32(cfg.MaxConcurrentStreams)),
		grpc.ChainUnaryInterceptor(
			workerLimitInterceptor(semaphore.NewWeighted(int64(workers))),
			requestIDInterceptor(logg),
			recoveryInterceptor(logg),
			loggingInterceptor(logg),
		),
	)
	Register(srv, svc)
	return srv
}

// workerLimitInterceptor runs the rest of the chain only while holding a
// slot. A caller whose context ends while waiting gets its context error.
func workerLimitInterceptor(slots *semaphore.Weighted) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if err := slots.Acquire(ctx, 1); err != nil {
			return nil, status.FromContextError(err).Err()
		}
		defer slots.Release(1)
		return handler(ctx, req)
	}
}

func requestIDInterceptor(logg *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		reqID := requestid.Resolve(md.Get(requestid.MetadataKey)...)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestid.MetadataKey, reqID))
		if logg != nil {
			ctx = logg.WithRequestID(ctx, reqID)
		}
		return handler(ctx, req)
	}
}

func recoveryInterceptor(logg *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{"panic": rec, "rpc_method": info.FullMethod})
					logg.Error(logCtx, "panic.recovered", fmt.Errorf("panic: %v", rec))
				}
				resp, err = nil, status.Error(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}

func loggingInterceptor(logg *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		if logg != nil {
			ctx = logg.WithField(ctx, "rpc_method", info.FullMethod)
		}
		resp, err := handler(ctx, req)
		if logg != nil {
			logCtx := logg.WithFields(ctx, map[string]any{
				"rpc_code":    status.Code(err).String(),
				"duration_ms": time.Since(start).Milliseconds(),
			})
			if err != nil {
				logg.Warn(logCtx, "rpc.complete")
			} else {
				logg.Info(logCtx, "rpc.complete")
			}
		}
		return resp, err
	}
}
