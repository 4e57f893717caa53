package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"StockLine/internal/config"
	"StockLine/internal/inventory"
	"StockLine/internal/ops"
	"StockLine/internal/server"
	"StockLine/pkg/kit"
)

func main() {
	service := "stockline"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	cfg := config.Load()

	registry := prometheus.NewRegistry()
	metrics := kit.NewMetrics(registry)

	store := inventory.NewStore()

	srv := server.New(server.Config{
		Addr:        cfg.ListenAddr,
		IdleTimeout: cfg.IdleTimeout,
		IdlePoll:    cfg.IdlePoll,
	}, store, log, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return srv.Run(ctx) })

	if cfg.OpsAddr != "" {
		h := ops.NewHandler(ops.Deps{
			Log:            log,
			Service:        service,
			Registry:       registry,
			Store:          store,
			MetricsEnabled: cfg.MetricsEnabled,
			MetricsToken:   cfg.MetricsToken,
			RateLimit:      cfg.OpsRateLimit,
		})
		g.Go(func() error { return kit.RunHTTPServer(ctx, cfg.OpsAddr, h, log) })
	}

	if err := g.Wait(); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
