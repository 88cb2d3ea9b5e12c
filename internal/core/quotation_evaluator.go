package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EffectiveQuantity is the quantity a supplier prices for an item: the item's
// own quantity plus its critical-spare addition.
func EffectiveQuantity(pr PurchaseRequisition, itemID string) int {
	it, ok := pr.Item(itemID)
	if !ok {
		return 0
	}
	return it.Quantity + pr.SpareQuantity(itemID)
}

// BuildQuotation turns keyed-in supplier prices into a Quotation against pr.
// Items without a price are kept at zero so a quotation can be entered in
// several passes; QuotationProblems reports them.
func BuildQuotation(pr PurchaseRequisition, in QuotationInput) (Quotation, error) {
	if pr.Status != PRStatusApproved && pr.Status != PRStatusSentToSupplier {
		return Quotation{}, &PreconditionError{Entity: "purchase requisition", ID: pr.ID, Action: "record quotation", Status: string(pr.Status), Reason: "quotations are taken while Approved or Sent To Supplier"}
	}

	ve := &ValidationError{}
	supplier := strings.TrimSpace(in.Supplier)
	if supplier == "" {
		ve.add("supplier is required")
	} else if !pr.HasSupplier(supplier) {
		ve.add("supplier %s is not on this PR", supplier)
	}
	for id, p := range in.UnitPrices {
		if _, ok := pr.Item(id); !ok {
			ve.add("item %s is not on this PR", id)
		}
		if p.IsNegative() {
			ve.add("item %s: unit price cannot be negative", id)
		}
	}
	if in.DeliveryDate != "" {
		if _, err := time.Parse("2006-01-02", in.DeliveryDate); err != nil {
			ve.add("delivery date must be YYYY-MM-DD")
		}
	}
	if err := ve.orNil(); err != nil {
		return Quotation{}, err
	}

	q := Quotation{
		PRID:          pr.ID,
		Supplier:      supplier,
		DeliveryTerms: strings.TrimSpace(in.DeliveryTerms),
		DeliveryDate:  in.DeliveryDate,
		Status:        QuotationPending,
		Notes:         strings.TrimSpace(in.Notes),
	}
	for _, it := range pr.Items {
		qty := EffectiveQuantity(pr, it.ID)
		unit := in.UnitPrices[it.ID]
		q.Items = append(q.Items, QuotationItem{
			ItemID:     it.ID,
			ItemName:   it.Name,
			UnitPrice:  unit,
			Quantity:   qty,
			TotalPrice: unit.Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	q.Price = SupplierTotal(pr, q)
	return q, nil
}

// UpsertQuotation replaces the supplier's quotation on pr, keeping its ID, or
// appends it.
func UpsertQuotation(pr PurchaseRequisition, q Quotation) PurchaseRequisition {
	out := pr.Clone()
	if existing, i, ok := out.Quotation(q.Supplier); ok {
		q.ID = existing.ID
		out.Quotations[i] = q
		return out
	}
	out.Quotations = append(out.Quotations, q)
	return out
}

// QuotationProblems lists what keeps q from being complete: every PR item
// priced above zero, delivery terms and a delivery date.
func QuotationProblems(pr PurchaseRequisition, q Quotation) []string {
	var problems []string
	priced := make(map[string]bool, len(q.Items))
	for _, qi := range q.Items {
		if qi.UnitPrice.IsPositive() {
			priced[qi.ItemID] = true
		}
	}
	for _, it := range pr.Items {
		if !priced[it.ID] {
			problems = append(problems, "no price for "+it.ID)
		}
	}
	if q.DeliveryTerms == "" {
		problems = append(problems, "delivery terms missing")
	}
	if q.DeliveryDate == "" {
		problems = append(problems, "delivery date missing")
	}
	return problems
}

// QuotationComplete reports whether q prices every item and carries delivery terms.
func QuotationComplete(pr PurchaseRequisition, q Quotation) bool {
	return len(QuotationProblems(pr, q)) == 0
}

// SupplierTotal is the pre-tax total of q: unit price times effective
// quantity, summed over the PR's items.
func SupplierTotal(pr PurchaseRequisition, q Quotation) decimal.Decimal {
	unit := make(map[string]decimal.Decimal, len(q.Items))
	for _, qi := range q.Items {
		unit[qi.ItemID] = qi.UnitPrice
	}
	var total decimal.Decimal
	for _, it := range pr.Items {
		total = total.Add(unit[it.ID].Mul(decimal.NewFromInt(int64(EffectiveQuantity(pr, it.ID)))))
	}
	return total
}

// BOMTotal is the catalog cost of the PR at effective quantities. Unpriced
// items are skipped.
func BOMTotal(pr PurchaseRequisition) decimal.Decimal {
	var total decimal.Decimal
	for _, it := range pr.Items {
		if it.Price == nil {
			continue
		}
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(EffectiveQuantity(pr, it.ID)))))
	}
	return total
}

// LowestUnitPrice returns the lowest positive unit price quoted for an item
// and the supplier quoting it. Ties go to the supplier listed first on the PR.
func LowestUnitPrice(pr PurchaseRequisition, itemID string) (*decimal.Decimal, string) {
	var best *decimal.Decimal
	var who string
	for _, q := range quotationsInSupplierOrder(pr) {
		for _, qi := range q.Items {
			if qi.ItemID != itemID || !qi.UnitPrice.IsPositive() {
				continue
			}
			if best == nil || qi.UnitPrice.LessThan(*best) {
				p := qi.UnitPrice
				best, who = &p, q.Supplier
			}
		}
	}
	return best, who
}

// LowestSupplierTotal returns the lowest positive supplier total. Partial
// quotations compete on what they priced; ties keep PR supplier order.
func LowestSupplierTotal(pr PurchaseRequisition) (*decimal.Decimal, string) {
	var best *decimal.Decimal
	var who string
	for _, q := range quotationsInSupplierOrder(pr) {
		t := SupplierTotal(pr, q)
		if !t.IsPositive() {
			continue
		}
		if best == nil || t.LessThan(*best) {
			best, who = &t, q.Supplier
		}
	}
	return best, who
}

func quotationsInSupplierOrder(pr PurchaseRequisition) []Quotation {
	out := make([]Quotation, 0, len(pr.Quotations))
	for _, s := range pr.Suppliers {
		if q, _, ok := pr.Quotation(s); ok {
			out = append(out, q)
		}
	}
	return out
}

// Compare builds the side-by-side comparison of every quotation on pr.
func Compare(pr PurchaseRequisition, taxRate decimal.Decimal) Comparison {
	c := Comparison{
		PRID:     pr.ID,
		Status:   pr.Status,
		BOMTotal: BOMTotal(pr),
	}

	for _, it := range pr.Items {
		row := ItemComparison{
			ItemID:        it.ID,
			Name:          it.Name,
			BaseQuantity:  it.Quantity,
			SpareQuantity: pr.SpareQuantity(it.ID),
			Quantity:      EffectiveQuantity(pr, it.ID),
			BOMUnitPrice:  it.Price,
			Quotes:        map[string]decimal.Decimal{},
		}
		for _, q := range pr.Quotations {
			for _, qi := range q.Items {
				if qi.ItemID == it.ID && qi.UnitPrice.IsPositive() {
					row.Quotes[q.Supplier] = qi.UnitPrice
				}
			}
		}
		row.LowestPrice, row.LowestSupplier = LowestUnitPrice(pr, it.ID)
		if it.Price != nil && len(row.Quotes) > 0 {
			row.Savings = make(map[string]decimal.Decimal, len(row.Quotes))
			for s, p := range row.Quotes {
				row.Savings[s] = it.Price.Sub(p)
			}
		}
		c.Items = append(c.Items, row)
	}

	lowest, lowestSupplier := LowestSupplierTotal(pr)
	c.LowestTotal = lowest
	for _, q := range quotationsInSupplierOrder(pr) {
		total := SupplierTotal(pr, q)
		tax := total.Mul(taxRate)
		complete := QuotationComplete(pr, q)
		c.Suppliers = append(c.Suppliers, SupplierSummary{
			Supplier:      q.Supplier,
			Total:         total,
			Tax:           tax,
			GrandTotal:    total.Add(tax),
			SavingsVsBOM:  c.BOMTotal.Sub(total),
			IsLowest:      complete && q.Supplier == lowestSupplier,
			DeliveryTerms: q.DeliveryTerms,
			DeliveryDate:  q.DeliveryDate,
			Status:        q.Status,
			Complete:      complete,
		})
	}

	c.CanAward = (pr.Status == PRStatusEvaluationPending || pr.Status == PRStatusApproved) && lowest != nil
	return c
}

// Award selects supplier on pr: its quotation becomes Selected and every
// other quotation Rejected.
func Award(pr PurchaseRequisition, supplier string, now time.Time) (PurchaseRequisition, error) {
	if pr.Status != PRStatusEvaluationPending && pr.Status != PRStatusApproved {
		return pr, &PreconditionError{Entity: "purchase requisition", ID: pr.ID, Action: string(ActionAward), Status: string(pr.Status)}
	}
	supplier = strings.TrimSpace(supplier)
	if supplier == "" {
		return pr, &ValidationError{Problems: []string{"supplier is required to award"}}
	}
	q, _, ok := pr.Quotation(supplier)
	if !ok {
		return pr, &ValidationError{Problems: []string{"supplier " + supplier + " has no quotation on this PR"}}
	}
	if !QuotationComplete(pr, q) {
		return pr, &ValidationError{Problems: []string{"quotation from " + supplier + " is incomplete"}}
	}

	out := pr.Clone()
	for i := range out.Quotations {
		if out.Quotations[i].Supplier == supplier {
			out.Quotations[i].Status = QuotationSelected
		} else {
			out.Quotations[i].Status = QuotationRejected
		}
	}
	out.AwardedSupplier = supplier
	out.Status = PRStatusAwarded
	out.UpdatedAt = now
	return out, nil
}
