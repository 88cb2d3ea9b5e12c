package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	webAdapter "tooling-procurement/internal/adapters/web"
	"tooling-procurement/internal/app"
	"tooling-procurement/internal/config"
	"tooling-procurement/internal/db"
	"tooling-procurement/internal/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(true)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	zl, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	services := app.NewPostgresServices(pool, zl, cfg.TaxRate, cfg.MinStockRatio)
	svc := app.NewAppService(pool, zl, services)
	handler := webAdapter.NewHandler(svc, zl, cfg.AllowedOrigins, cfg.JWTSecret, cfg.TokenTTL)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zl.Error("server shutdown", "error", err)
		}
	}()

	zl.Info("server starting", "port", cfg.ServerPort)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Error("server failed", "error", err)
		return fmt.Errorf("server: %w", err)
	}
	zl.Info("server stopped")
	return nil
}
