package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"tooling-procurement/internal/adapters/cli"
	"tooling-procurement/internal/adapters/repl"
	"tooling-procurement/internal/app"
	"tooling-procurement/internal/config"
	"tooling-procurement/internal/db"
	"tooling-procurement/internal/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	cfg, err := config.Load(false)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	zl, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer zl.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}
	defer pool.Close()

	services := app.NewPostgresServices(pool, zl, cfg.TaxRate, cfg.MinStockRatio)
	svc := app.NewAppService(pool, zl, services)

	if len(args) > 0 {
		return cli.Run(ctx, svc, args, os.Stdin, os.Stdout)
	}
	return repl.Run(ctx, svc, os.Stdin, os.Stdout)
}
