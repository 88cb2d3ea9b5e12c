package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BOMSelection picks a BOM line into a Modification/Refurbished PR.
// A zero Quantity keeps the catalog quantity.
type BOMSelection struct {
	LineID   string `json:"line_id"`
	Quantity int    `json:"quantity"`
}

// CostBreakdown is the pre-submission cost summary of a PR.
type CostBreakdown struct {
	BOMSubtotal            decimal.Decimal `json:"bom_subtotal"`
	CriticalSparesSubtotal decimal.Decimal `json:"critical_spares_subtotal"`
	ModRefSubtotal         decimal.Decimal `json:"mod_ref_subtotal"`
	OverallSubtotal        decimal.Decimal `json:"overall_subtotal"`
	TaxRate                decimal.Decimal `json:"tax_rate"`
	Tax                    decimal.Decimal `json:"tax"`
	GrandTotal             decimal.Decimal `json:"grand_total"`
}

// BuildNewSetItems maps every BOM line to a PR item at catalog quantity and price.
func BuildNewSetItems(lines []BOMLine) []PRItem {
	items := make([]PRItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, bomItem(l, l.Quantity))
	}
	return items
}

// OverrideQuantities applies user-edited quantities to BOM-derived items. Every
// item is kept; a zero quantity leaves the catalog quantity in place.
func OverrideQuantities(items []PRItem, overrides []BOMSelection) ([]PRItem, error) {
	ve := &ValidationError{}
	out := cloneItems(items)
	index := make(map[string]int, len(out))
	for i, it := range out {
		index[it.ID] = i
	}
	for _, o := range overrides {
		i, ok := index[o.LineID]
		switch {
		case !ok:
			ve.add("line %s is not in the BOM", o.LineID)
		case o.Quantity < 0:
			ve.add("line %s: quantity cannot be negative", o.LineID)
		case o.Quantity > 0:
			out[i].Quantity = o.Quantity
		}
	}
	if err := ve.orNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// BuildSelectedItems keeps only the selected BOM lines, in catalog order,
// applying quantity overrides.
func BuildSelectedItems(lines []BOMLine, selections []BOMSelection) ([]PRItem, error) {
	ve := &ValidationError{}
	picked := make(map[string]int, len(selections))
	for _, sel := range selections {
		if sel.Quantity < 0 {
			ve.add("line %s: quantity cannot be negative", sel.LineID)
		}
		picked[sel.LineID] = sel.Quantity
	}

	known := make(map[string]bool, len(lines))
	var items []PRItem
	for _, l := range lines {
		known[l.ID] = true
		qty, ok := picked[l.ID]
		if !ok {
			continue
		}
		if qty == 0 {
			qty = l.Quantity
		}
		items = append(items, bomItem(l, qty))
	}
	for _, sel := range selections {
		if !known[sel.LineID] {
			ve.add("line %s is not in the BOM", sel.LineID)
		}
	}
	if err := ve.orNil(); err != nil {
		return nil, err
	}
	return items, nil
}

func bomItem(l BOMLine, qty int) PRItem {
	price := l.UnitPrice
	return PRItem{
		ID:            l.ID,
		Name:          l.Name,
		Specification: l.Specification,
		Quantity:      qty,
		Price:         &price,
	}
}

// ManualItem builds an unpriced ad-hoc line with the next free ITEM-n ID.
func ManualItem(existing []PRItem, name, specification string, quantity int, requirements string) PRItem {
	used := make(map[string]bool, len(existing))
	for _, it := range existing {
		used[it.ID] = true
	}
	n := 1
	for used[fmt.Sprintf("ITEM-%d", n)] {
		n++
	}
	return PRItem{
		ID:            fmt.Sprintf("ITEM-%d", n),
		Name:          strings.TrimSpace(name),
		Specification: strings.TrimSpace(specification),
		Quantity:      quantity,
		Requirements:  strings.TrimSpace(requirements),
	}
}

// SetCriticalSpare marks (quantity > 0) or unmarks (quantity <= 0) an item as a
// critical spare and returns the new list. Order of first marking is kept.
func SetCriticalSpare(spares []CriticalSpare, itemID string, quantity int) []CriticalSpare {
	out := make([]CriticalSpare, 0, len(spares)+1)
	found := false
	for _, cs := range spares {
		if cs.ItemID != itemID {
			out = append(out, cs)
			continue
		}
		found = true
		if quantity > 0 {
			out = append(out, CriticalSpare{ItemID: itemID, Quantity: quantity})
		}
	}
	if !found && quantity > 0 {
		out = append(out, CriticalSpare{ItemID: itemID, Quantity: quantity})
	}
	return out
}

// ComputeCost reproduces the PR cost summary. Critical spares are extra stock
// on top of the main order and only apply to New Set PRs; unpriced manual
// lines contribute nothing.
func ComputeCost(prType PRType, items []PRItem, spares []CriticalSpare, taxRate decimal.Decimal) CostBreakdown {
	var cb CostBreakdown
	cb.TaxRate = taxRate

	priceOf := make(map[string]decimal.Decimal, len(items))
	var pricedSum decimal.Decimal
	for _, it := range items {
		if it.Price == nil {
			continue
		}
		priceOf[it.ID] = *it.Price
		pricedSum = pricedSum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	if prType == PRTypeNewSet {
		cb.BOMSubtotal = pricedSum
		for _, cs := range spares {
			if p, ok := priceOf[cs.ItemID]; ok {
				cb.CriticalSparesSubtotal = cb.CriticalSparesSubtotal.Add(p.Mul(decimal.NewFromInt(int64(cs.Quantity))))
			}
		}
		cb.OverallSubtotal = cb.BOMSubtotal.Add(cb.CriticalSparesSubtotal)
	} else {
		cb.ModRefSubtotal = pricedSum
		cb.OverallSubtotal = cb.ModRefSubtotal
	}

	cb.Tax = cb.OverallSubtotal.Mul(taxRate)
	cb.GrandTotal = cb.OverallSubtotal.Add(cb.Tax)
	return cb
}

// ValidateForSubmission checks everything a PR needs before it may be submitted.
// All problems are reported together.
func ValidateForSubmission(d PRDraft) error {
	ve := &ValidationError{}

	if d.ProjectID <= 0 {
		ve.add("project is required")
	}
	if !d.PRType.Valid() {
		ve.add("PR type %q is not one of New Set, Modification, Refurbished", d.PRType)
	}
	if d.PRType != PRTypeNewSet && strings.TrimSpace(d.ModRefReason) == "" {
		ve.add("a reason is required for %s PRs", d.PRType)
	}

	if len(d.Suppliers) == 0 {
		ve.add("at least one supplier must be selected")
	}
	seenSup := make(map[string]bool, len(d.Suppliers))
	for _, s := range d.Suppliers {
		if strings.TrimSpace(s) == "" {
			ve.add("supplier code cannot be blank")
			continue
		}
		if seenSup[s] {
			ve.add("supplier %s is listed twice", s)
		}
		seenSup[s] = true
	}

	if len(d.Items) == 0 {
		ve.add("at least one item is required")
	}
	seenItem := make(map[string]bool, len(d.Items))
	for i, it := range d.Items {
		if it.ID == "" {
			ve.add("item %d: id is required", i+1)
		} else if seenItem[it.ID] {
			ve.add("item %s is listed twice", it.ID)
		}
		seenItem[it.ID] = true
		if strings.TrimSpace(it.Name) == "" {
			ve.add("item %d: name is required", i+1)
		}
		if it.Quantity <= 0 {
			ve.add("item %d: quantity must be positive", i+1)
		}
		if it.Price != nil && it.Price.IsNegative() {
			ve.add("item %d: price cannot be negative", i+1)
		}
	}

	if len(d.CriticalSpares) > 0 && d.PRType != PRTypeNewSet {
		ve.add("critical spares can only be marked on New Set PRs")
	}
	seenSpare := make(map[string]bool, len(d.CriticalSpares))
	for _, cs := range d.CriticalSpares {
		if !seenItem[cs.ItemID] {
			ve.add("critical spare %s does not match any item", cs.ItemID)
		}
		if seenSpare[cs.ItemID] {
			ve.add("critical spare %s is listed twice", cs.ItemID)
		}
		seenSpare[cs.ItemID] = true
		if cs.Quantity <= 0 {
			ve.add("critical spare %s: quantity must be positive", cs.ItemID)
		}
	}

	return ve.orNil()
}

// NewPurchaseRequisition validates the draft and returns a Submitted PR.
func NewPurchaseRequisition(d PRDraft, now time.Time) (PurchaseRequisition, error) {
	if err := ValidateForSubmission(d); err != nil {
		return PurchaseRequisition{}, err
	}
	pr := PurchaseRequisition{
		ProjectID:      d.ProjectID,
		PRType:         d.PRType,
		Items:          cloneItems(d.Items),
		Suppliers:      append([]string(nil), d.Suppliers...),
		Status:         PRStatusSubmitted,
		CreatedBy:      d.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
		ModRefReason:   strings.TrimSpace(d.ModRefReason),
		CriticalSpares: append([]CriticalSpare(nil), d.CriticalSpares...),
		Quotations:     []Quotation{},
	}
	if pr.PRType == PRTypeNewSet {
		pr.ModRefReason = ""
	}
	return pr, nil
}

// ApplyDraft replaces the editable content of a Submitted PR.
func ApplyDraft(pr PurchaseRequisition, d PRDraft, now time.Time) (PurchaseRequisition, error) {
	if pr.Status != PRStatusSubmitted {
		return pr, &PreconditionError{Entity: "purchase requisition", ID: pr.ID, Action: "be edited", Status: string(pr.Status), Reason: "must be Submitted"}
	}
	d.ProjectID = pr.ProjectID
	next, err := NewPurchaseRequisition(d, now)
	if err != nil {
		return pr, err
	}
	out := pr.Clone()
	out.PRType = next.PRType
	out.Items = next.Items
	out.Suppliers = next.Suppliers
	out.CriticalSpares = next.CriticalSpares
	out.ModRefReason = next.ModRefReason
	out.UpdatedAt = now
	return out, nil
}

// CheckDeletable reports whether the PR may still be deleted.
func CheckDeletable(pr PurchaseRequisition) error {
	if pr.Status == PRStatusSubmitted || pr.Status == PRStatusRejected {
		return nil
	}
	return &PreconditionError{Entity: "purchase requisition", ID: pr.ID, Action: "be deleted", Status: string(pr.Status), Reason: "only Submitted or Rejected PRs can be deleted"}
}
