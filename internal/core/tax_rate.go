package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// RateResolver resolves the tax rate applied to PR costs and quotation totals.
type RateResolver interface {
	TaxRate(ctx context.Context) (decimal.Decimal, error)
}

type rateResolver struct {
	pool     *pgxpool.Pool
	fallback decimal.Decimal
}

// NewRateResolver constructs a RateResolver backed by the tax_rates table.
// fallback applies when no row is effective today.
func NewRateResolver(pool *pgxpool.Pool, fallback decimal.Decimal) RateResolver {
	return &rateResolver{pool: pool, fallback: fallback}
}

// TaxRate returns the latest rate effective today.
func (r *rateResolver) TaxRate(ctx context.Context) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := r.pool.QueryRow(ctx, `
		SELECT rate
		FROM tax_rates
		WHERE effective_from <= CURRENT_DATE
		  AND (effective_to IS NULL OR effective_to >= CURRENT_DATE)
		ORDER BY effective_from DESC, id DESC
		LIMIT 1
	`).Scan(&rate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.fallback, nil
		}
		return decimal.Zero, fmt.Errorf("failed to resolve tax rate: %w", err)
	}
	return rate, nil
}

// FixedRate is a RateResolver that always returns the same rate.
type FixedRate decimal.Decimal

func (f FixedRate) TaxRate(context.Context) (decimal.Decimal, error) {
	return decimal.Decimal(f), nil
}
