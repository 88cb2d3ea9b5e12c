package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"tooling-procurement/internal/core"
	"tooling-procurement/internal/logger"
)

// NewPostgresServices wires every core service to the same pool.
func NewPostgresServices(pool *pgxpool.Pool, log *logger.Logger, taxRate, minStockRatio decimal.Decimal) Services {
	return Services{
		Users:     core.NewUserService(pool),
		Projects:  core.NewProjectService(pool),
		Suppliers: core.NewSupplierService(pool),
		PRs:       core.NewPurchaseRequisitionService(pool, log.With("component", "pr")),
		Handovers: core.NewToolHandoverService(pool, log.With("component", "handover"), minStockRatio),
		Inventory: core.NewInventoryService(pool),
		Spares:    core.NewSparesRequestService(pool, log.With("component", "spares")),
		Rates:     core.NewRateResolver(pool, taxRate),
	}
}
