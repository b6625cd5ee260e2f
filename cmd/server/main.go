package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"menucost/internal/config"
	"menucost/internal/db"
	"menucost/internal/db/mock"
	applog "menucost/internal/log"
	"menucost/internal/server"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		applog.Error(ctx, "loading configuration failed", "error", err)
		os.Exit(1)
	}

	if err := applog.SetLevel(cfg.Log.Level); err != nil {
		applog.Error(ctx, "invalid log level", "level", cfg.Log.Level, "error", err)
		os.Exit(1)
	}

	srv, err := server.New(server.Config{
		Addr:     cfg.Server.Addr,
		Database: openDatabase(ctx, cfg),
	})
	if err != nil {
		applog.Error(ctx, "building server failed", "error", err)
		os.Exit(1)
	}

	go func() {
		applog.Info(ctx, "starting http server", "addr", cfg.Server.Addr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh

	applog.Info(ctx, "shutting down http server")
	if err := srv.Stop(); err != nil {
		applog.Error(ctx, "graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// openDatabase connects to the configured database, falling back to the
// seeded in-memory catalogue when no DSN is provided. The fallback keeps
// local development and demos working without a running Postgres.
func openDatabase(ctx context.Context, cfg config.Config) *gorm.DB {
	if cfg.Database.URL == "" {
		applog.Info(ctx, "DATABASE_URL not set, using in-memory demo catalogue")
		conn, err := mock.New(ctx)
		if err != nil {
			applog.Error(ctx, "seeding demo catalogue failed", "error", err)
			os.Exit(1)
		}
		return conn
	}

	conn, err := db.Configure(cfg.Database)
	if err != nil {
		applog.Error(ctx, "database connection failed", "error", err)
		os.Exit(1)
	}
	return conn
}
