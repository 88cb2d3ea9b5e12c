package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type inventoryService struct {
	pool *pgxpool.Pool
}

// NewInventoryService constructs an InventoryService backed by PostgreSQL.
func NewInventoryService(pool *pgxpool.Pool) InventoryService {
	return &inventoryService{pool: pool}
}

// ── Standalone reads ──────────────────────────────────────────────────────────

func (s *inventoryService) GetStock(ctx context.Context) ([]StockView, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, part_number, tool_number, name, quantity, stock_level, min_stock_level, updated_at
		FROM inventory_items
		ORDER BY tool_number, part_number, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	var items []InventoryItem
	for rows.Next() {
		var it InventoryItem
		if err := rows.Scan(&it.ID, &it.PartNumber, &it.ToolNumber, &it.Name,
			&it.Quantity, &it.StockLevel, &it.MinStockLevel, &it.UpdatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}

	if err := attachMovements(ctx, s.pool, items); err != nil {
		return nil, err
	}

	views := make([]StockView, 0, len(items))
	for _, it := range items {
		views = append(views, StockView{InventoryItem: it, Status: it.DerivedStatus()})
	}
	return views, nil
}

func (s *inventoryService) GetItem(ctx context.Context, key InventoryKey) (*StockView, error) {
	it, err := loadInventoryItem(ctx, s.pool, key, false)
	if err != nil {
		return nil, err
	}
	items := []InventoryItem{*it}
	if err := attachMovements(ctx, s.pool, items); err != nil {
		return nil, err
	}
	return &StockView{InventoryItem: items[0], Status: items[0].DerivedStatus()}, nil
}

func loadInventoryItem(ctx context.Context, q dbtx, key InventoryKey, forUpdate bool) (*InventoryItem, error) {
	query := `
		SELECT id, part_number, tool_number, name, quantity, stock_level, min_stock_level, updated_at
		FROM inventory_items
		WHERE part_number = $1 AND tool_number = $2 AND name = $3`
	if forUpdate {
		query += " FOR UPDATE"
	}
	it := &InventoryItem{}
	err := q.QueryRow(ctx, query, key.PartNumber, key.ToolNumber, key.Name).Scan(
		&it.ID, &it.PartNumber, &it.ToolNumber, &it.Name,
		&it.Quantity, &it.StockLevel, &it.MinStockLevel, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("inventory item", fmt.Sprintf("%s/%s/%s", key.ToolNumber, key.PartNumber, key.Name))
		}
		return nil, fmt.Errorf("failed to fetch inventory item: %w", err)
	}
	return it, nil
}

// attachMovements fills the addition and removal histories of items in place.
func attachMovements(ctx context.Context, q dbtx, items []InventoryItem) error {
	if len(items) == 0 {
		return nil
	}
	index := make(map[int]int, len(items))
	ids := make([]int, 0, len(items))
	for i, it := range items {
		index[it.ID] = i
		ids = append(ids, it.ID)
	}

	rows, err := q.Query(ctx, `
		SELECT id, inventory_item_id, movement_type, quantity, reference, actor, created_at
		FROM inventory_movements
		WHERE inventory_item_id = ANY($1)
		ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("failed to query inventory movements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var mv InventoryMovement
		var itemID int
		if err := rows.Scan(&mv.ID, &itemID, &mv.MovementType, &mv.Quantity, &mv.Reference, &mv.Actor, &mv.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan inventory movement: %w", err)
		}
		i := index[itemID]
		if mv.MovementType == MovementRemoval {
			items[i].RemovalHistory = append(items[i].RemovalHistory, mv)
		} else {
			items[i].AdditionHistory = append(items[i].AdditionHistory, mv)
		}
	}
	return rows.Err()
}

// ── TX-scoped operations ──────────────────────────────────────────────────────
// These run inside the caller's transaction so stock changes commit or roll
// back together with the handover or spares request that caused them.

// foldHandoverTx adds an approved handover to inventory. The table lock
// serializes folds so two handovers creating the same item cannot race.
func foldHandoverTx(ctx context.Context, tx pgx.Tx, h ToolHandoverRecord, ratio decimal.Decimal, now time.Time) ([]StockAddition, error) {
	if _, err := tx.Exec(ctx, "LOCK TABLE inventory_items IN SHARE ROW EXCLUSIVE MODE"); err != nil {
		return nil, fmt.Errorf("lock inventory: %w", err)
	}

	var current []InventoryItem
	seen := map[InventoryKey]bool{}
	keys := make([]InventoryKey, 0, len(h.AllItems)+len(h.CriticalSpares))
	for _, it := range h.AllItems {
		keys = append(keys, InventoryKey{PartNumber: h.PartNumber, ToolNumber: h.ToolNumber, Name: it.Name})
	}
	for _, sp := range h.CriticalSpares {
		keys = append(keys, InventoryKey{PartNumber: sp.PartNumber, ToolNumber: sp.ToolNumber, Name: sp.Name})
	}
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		it, err := loadInventoryItem(ctx, tx, k, false)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		current = append(current, *it)
	}

	folded, additions := FoldHandover(current, h, ratio, now)

	ids := make(map[InventoryKey]int, len(folded))
	for _, it := range folded {
		if !seen[it.InventoryKey] {
			continue
		}
		id := it.ID
		if id == 0 {
			if err := tx.QueryRow(ctx, `
				INSERT INTO inventory_items (part_number, tool_number, name, quantity, stock_level, min_stock_level, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id`,
				it.PartNumber, it.ToolNumber, it.Name, it.Quantity, it.StockLevel, it.MinStockLevel, now,
			).Scan(&id); err != nil {
				return nil, fmt.Errorf("insert inventory item %s: %w", it.Name, err)
			}
		} else {
			if _, err := tx.Exec(ctx, `
				UPDATE inventory_items SET quantity = $2, stock_level = $3, updated_at = $4 WHERE id = $1`,
				id, it.Quantity, it.StockLevel, now,
			); err != nil {
				return nil, fmt.Errorf("update inventory item %d: %w", id, err)
			}
		}
		ids[it.InventoryKey] = id
	}

	for _, a := range additions {
		if err := insertMovement(ctx, tx, ids[a.Key], InventoryMovement{
			MovementType: MovementAddition, Quantity: a.Quantity, Reference: a.Reference, Actor: h.InspectedBy, CreatedAt: now,
		}); err != nil {
			return nil, err
		}
	}
	return additions, nil
}

// issueStockTx removes newly fulfilled spares from stock.
func issueStockTx(ctx context.Context, tx pgx.Tx, key InventoryKey, previousFulfilled, newFulfilled int, reference, actor string, now time.Time) error {
	if newFulfilled == previousFulfilled {
		return nil
	}
	item, err := loadInventoryItem(ctx, tx, key, true)
	if err != nil {
		return err
	}
	updated, mv, err := ApplyFulfillment(*item, previousFulfilled, newFulfilled, reference, actor, now)
	if err != nil {
		return err
	}
	if mv == nil {
		return nil
	}
	if _, err := tx.Exec(ctx,
		"UPDATE inventory_items SET stock_level = $2, updated_at = $3 WHERE id = $1",
		updated.ID, updated.StockLevel, now,
	); err != nil {
		return fmt.Errorf("update stock level of %s: %w", key.Name, err)
	}
	return insertMovement(ctx, tx, updated.ID, *mv)
}

func insertMovement(ctx context.Context, tx pgx.Tx, itemID int, mv InventoryMovement) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO inventory_movements (inventory_item_id, movement_type, quantity, reference, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		itemID, mv.MovementType, mv.Quantity, mv.Reference, mv.Actor, mv.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert %s movement: %w", mv.MovementType, err)
	}
	return nil
}
