package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/angelmondragon/marketplace-backend/api/routes"
	"github.com/angelmondragon/marketplace-backend/api/rpc"
	"github.com/angelmondragon/marketplace-backend/internal/marketplace"
	"github.com/angelmondragon/marketplace-backend/pkg/config"
	"github.com/angelmondragon/marketplace-backend/pkg/instance"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/metrics"
	"github.com/angelmondragon/marketplace-backend/pkg/redis"
)

const serviceName = "marketplace"

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "marketplace stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc, err := marketplace.NewInMemory(logg, metrics.NewMarketplace(reg), cfg.Market.EnforceItemOwnership)
	if err != nil {
		return err
	}

	var cache routes.Cache
	if cfg.Redis.Enabled() {
		redisClient, dialErr := redis.New(ctx, cfg.Redis, logg)
		if dialErr != nil {
			return dialErr
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		cache = redisClient
	}

	httpServer := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: routes.NewRouter(cfg, logg, svc, cache, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	}
	rpcServer := rpc.NewServer(cfg.RPC, svc, logg)

	rpcListener, err := net.Listen("tcp", ":"+cfg.RPC.Port)
	if err != nil {
		return err
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"http_addr": httpServer.Addr,
		"rpc_addr":  rpcListener.Addr().String(),
		"instance":  instance.GetID(),
		"redis":     cache != nil,
	})
	logg.Info(logCtx, "starting marketplace")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := rpcServer.Serve(rpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logg.Info(logCtx, "shutting down marketplace")
		return shutdown(httpServer, rpcServer, cfg.HTTP)
	})

	return g.Wait()
}

func shutdown(httpServer *http.Server, rpcServer *grpc.Server, cfg config.HTTPConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		rpcServer.GracefulStop()
		close(stopped)
	}()

	err := httpServer.Shutdown(ctx)
	select {
	case <-stopped:
	case <-ctx.Done():
		rpcServer.Stop()
		err = multierr.Append(err, ctx.Err())
	}
	return err
}
