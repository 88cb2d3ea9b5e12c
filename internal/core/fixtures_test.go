package core_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tooling-procurement/internal/core"
)

var (
	day1    = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	taxRate = decimal.RequireFromString("0.18")
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s: expected %s, got %s", what, want, got.String())
	}
}

// tn9001PR is a Submitted New Set PR for TN-9001 with Base Plate marked as a
// critical spare of 2.
func tn9001PR(t *testing.T) core.PurchaseRequisition {
	t.Helper()
	pr, err := core.NewPurchaseRequisition(core.PRDraft{
		ProjectID:      1,
		PRType:         core.PRTypeNewSet,
		Items:          core.BuildNewSetItems(core.ResolveBOM("TN-9001")),
		Suppliers:      []string{"SUP-A", "SUP-B"},
		CriticalSpares: []core.CriticalSpare{{ItemID: "BOM-9001-01", Quantity: 2}},
		CreatedBy:      "npd1",
	}, day1)
	if err != nil {
		t.Fatalf("NewPurchaseRequisition: %v", err)
	}
	pr.ID = 1
	pr.PRNumber = "PR-2024-00001"
	return pr
}

// mustTransition applies an action that the test expects to succeed.
func mustTransition(t *testing.T, pr core.PurchaseRequisition, action core.PRAction, in core.ActionInput) core.PurchaseRequisition {
	t.Helper()
	next, err := core.Transition(pr, action, in, day1)
	if err != nil {
		t.Fatalf("%s from %s: %v", action, pr.Status, err)
	}
	return next
}

// fullPrices quotes every TN-9001 line at price+delta.
func fullPrices(pr core.PurchaseRequisition, delta string) map[string]decimal.Decimal {
	prices := map[string]decimal.Decimal{}
	for _, it := range pr.Items {
		prices[it.ID] = it.Price.Add(dec(delta))
	}
	return prices
}

// quoted returns pr in Sent To Supplier with complete quotations from both
// suppliers; SUP-B is 5 per unit cheaper than SUP-A.
func quoted(t *testing.T) core.PurchaseRequisition {
	t.Helper()
	pr := mustTransition(t, tn9001PR(t), core.ActionSendToSuppliers, core.ActionInput{Actor: "npd1"})
	for i, sup := range []struct{ code, delta string }{{"SUP-A", "0"}, {"SUP-B", "-5"}} {
		q, err := core.BuildQuotation(pr, core.QuotationInput{
			Supplier:      sup.code,
			UnitPrices:    fullPrices(pr, sup.delta),
			DeliveryTerms: "Ex-works Pune",
			DeliveryDate:  "2024-04-15",
		})
		if err != nil {
			t.Fatalf("BuildQuotation %s: %v", sup.code, err)
		}
		q.ID = 100 + i
		pr = core.UpsertQuotation(pr, q)
	}
	return pr
}

func asValidation(err error, target **core.ValidationError) bool {
	return errors.As(err, target)
}
