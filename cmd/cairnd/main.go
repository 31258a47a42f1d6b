package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cairnstack/cairn/internal/alerts"
	"github.com/cairnstack/cairn/internal/api"
	"github.com/cairnstack/cairn/internal/config"
	"github.com/cairnstack/cairn/internal/feed"
	"github.com/cairnstack/cairn/internal/keeper"
	"github.com/cairnstack/cairn/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("cairnd starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"series", len(cfg.Series),
		"feeds", len(cfg.Feeds),
		"purge_interval", cfg.PurgeInterval,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Compile the declared series into the initial container and hand it to
	// the keeper, which owns all writes from here on.
	k := keeper.New(cfg.Schema().NewContainer(cfg.OverrideMeta()), cfg.PurgeInterval)
	go k.Run(ctx)

	// Alerts engine — evaluates rules against fresh stats every broadcast tick.
	alertEngine := alerts.New(cfg.Alerts)
	go alertEngine.Run(ctx, k, cfg.Server.BroadcastInterval)

	// One poll loop per configured feed.
	for _, fc := range cfg.Feeds {
		f := feed.New(fc, k)
		go f.Run(ctx)
		slog.Info("registered feed", "id", fc.ID, "endpoint", fc.Endpoint, "interval", fc.Interval)
	}

	// Watch config file for hot-reload. Only the per-series overrides are
	// applied at runtime; declaration changes need a restart.
	go func() {
		if err := config.Watch(ctx, *configPath, cfg, func(updated *config.Config) {
			k.ApplyOverrides(updated.OverrideMeta())
			slog.Info("config hot-reloaded", "overrides", len(updated.Overrides))
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// WebSocket hub — broadcasts snapshots to clients on each tick.
	hub := ws.New(k, cfg.Server.BroadcastInterval)
	go hub.Run(ctx)

	// Combined HTTP server: REST API + WebSocket hub on HTTPPort.
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", api.New(k, alertEngine))
	httpMux.Handle("/ws/stream", hub)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("cairnd shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
