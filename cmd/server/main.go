package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/devserver/internal/config"
	"github.com/playperu/devserver/internal/console"
	"github.com/playperu/devserver/internal/handler/health"
	"github.com/playperu/devserver/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		console.Failed(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(stdout, cfg)

	srv := server.New(server.Options{
		Addr:            cfg.Addr(),
		Root:            cfg.RootDir,
		StaticPrefix:    cfg.StaticPrefix,
		Index:           cfg.IndexFile,
		MetricsPath:     cfg.MetricsPath,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Mount: func(r chi.Router) {
			if cfg.HealthPath == "" {
				return
			}
			r.Mount(cfg.HealthPath, health.NewHandler(logger, map[string]health.Checker{
				"root":  health.Dir(cfg.RootDir),
				"index": health.File(filepath.Join(cfg.RootDir, cfg.IndexFile)),
			}).Routes())
		},
	}, logger)

	addr, err := srv.Listen()
	if err != nil {
		return err
	}
	console.Ready(stdout, console.URL(addr), cfg.RootDir, cfg.StaticPrefix)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", addr.String())
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		return err
	}
	console.Stopped(stdout)
	return nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
