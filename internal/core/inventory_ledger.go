package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMinStockRatio sets the minimum stock level of a newly stocked item
// as a share of its first received quantity.
var DefaultMinStockRatio = decimal.RequireFromString("0.3")

// DeriveStockStatus maps an on-hand level to its stock status.
func DeriveStockStatus(level, minLevel int) StockStatus {
	switch {
	case level <= 0:
		return StockOutOfStock
	case level <= minLevel:
		return StockLow
	default:
		return StockInStock
	}
}

// MinStockLevelFor is max(1, ceil(quantity × ratio)).
func MinStockLevelFor(quantity int, ratio decimal.Decimal) int {
	m := int(decimal.NewFromInt(int64(quantity)).Mul(ratio).Ceil().IntPart())
	if m < 1 {
		return 1
	}
	return m
}

// StockAddition is one quantity folded into the ledger by a handover.
type StockAddition struct {
	Key       InventoryKey
	Quantity  int
	Reference string
}

// FoldHandover adds a handover's items and then its critical spares to the
// inventory buffer, matching on the exact (part, tool, name) key. Unmatched
// lines become new items. The input slice is not modified. Folding the same
// handover twice adds twice; callers guard with the handover status.
func FoldHandover(inventory []InventoryItem, h ToolHandoverRecord, ratio decimal.Decimal, now time.Time) ([]InventoryItem, []StockAddition) {
	buf := make([]InventoryItem, len(inventory))
	index := make(map[InventoryKey]int, len(inventory))
	for i, it := range inventory {
		it.AdditionHistory = append([]InventoryMovement(nil), it.AdditionHistory...)
		it.RemovalHistory = append([]InventoryMovement(nil), it.RemovalHistory...)
		buf[i] = it
		index[it.InventoryKey] = i
	}

	ref := h.HandoverNumber
	if ref == "" {
		ref = fmt.Sprintf("handover %d", h.ID)
	}

	var adds []StockAddition
	add := func(key InventoryKey, qty int) {
		if qty <= 0 {
			return
		}
		mv := InventoryMovement{MovementType: MovementAddition, Quantity: qty, Reference: ref, Actor: h.InspectedBy, CreatedAt: now}
		if i, ok := index[key]; ok {
			buf[i].Quantity += qty
			buf[i].StockLevel += qty
			buf[i].AdditionHistory = append(buf[i].AdditionHistory, mv)
			buf[i].UpdatedAt = now
		} else {
			index[key] = len(buf)
			buf = append(buf, InventoryItem{
				InventoryKey:    key,
				Quantity:        qty,
				StockLevel:      qty,
				MinStockLevel:   MinStockLevelFor(qty, ratio),
				AdditionHistory: []InventoryMovement{mv},
				UpdatedAt:       now,
			})
		}
		adds = append(adds, StockAddition{Key: key, Quantity: qty, Reference: ref})
	}

	for _, it := range h.AllItems {
		add(InventoryKey{PartNumber: h.PartNumber, ToolNumber: h.ToolNumber, Name: it.Name}, it.Quantity)
	}
	for _, sp := range h.CriticalSpares {
		add(InventoryKey{PartNumber: sp.PartNumber, ToolNumber: sp.ToolNumber, Name: sp.Name}, sp.Quantity)
	}
	return buf, adds
}

// ApplyFulfillment removes the newly fulfilled quantity from stock. Only the
// increase over previousFulfilled is removed, and the movement is nil when
// nothing changed.
func ApplyFulfillment(item InventoryItem, previousFulfilled, newFulfilled int, reference, actor string, now time.Time) (InventoryItem, *InventoryMovement, error) {
	delta := newFulfilled - previousFulfilled
	if delta < 0 {
		return item, nil, &PreconditionError{Entity: "inventory item", ID: item.ID, Action: "return fulfilled spares", Status: string(item.DerivedStatus()), Reason: "fulfilled quantity cannot decrease"}
	}
	if delta == 0 {
		return item, nil, nil
	}
	if delta > item.StockLevel {
		return item, nil, &ValidationError{Problems: []string{fmt.Sprintf("only %d of %s on hand, %d needed", item.StockLevel, item.Name, delta)}}
	}

	out := item
	out.RemovalHistory = append([]InventoryMovement(nil), item.RemovalHistory...)
	out.StockLevel -= delta
	out.UpdatedAt = now
	mv := InventoryMovement{MovementType: MovementRemoval, Quantity: delta, Reference: reference, Actor: actor, CreatedAt: now}
	out.RemovalHistory = append(out.RemovalHistory, mv)
	return out, &mv, nil
}
