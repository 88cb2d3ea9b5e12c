package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"tooling-procurement/internal/config"
	"tooling-procurement/internal/db"
	"tooling-procurement/internal/logger"
)

func main() {
	status := flag.Bool("status", false, "list applied migrations without applying new ones")
	flag.Parse()

	if err := run(*status); err != nil {
		log.Fatal(err)
	}
}

func run(statusOnly bool) error {
	cfg, err := config.Load(false)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	zl, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer zl.Sync()

	connectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pool, err := db.NewPool(connectCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		zl.Error("connect failed", "error", err)
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()
	zl.Info("connected")

	ctx := context.Background()
	if !statusOnly {
		applied, err := db.Migrate(ctx, pool)
		for _, name := range applied {
			zl.Info("migration applied", "name", name)
		}
		if err != nil {
			zl.Error("migration failed", "error", err)
			return fmt.Errorf("migrate: %w", err)
		}
		if len(applied) == 0 {
			zl.Info("schema up to date")
		}
	}

	rows, err := db.Applied(ctx, pool)
	if err != nil {
		zl.Error("read schema_migrations", "error", err)
		return fmt.Errorf("read schema_migrations: %w", err)
	}
	for _, m := range rows {
		fmt.Printf("%-32s %s\n", m.Name, m.AppliedAt.Format(time.RFC3339))
	}
	return nil
}
