package core_test

import (
	"testing"

	"tooling-procurement/internal/core"
)

func pendingRequest(t *testing.T) core.SparesRequest {
	t.Helper()
	r, err := core.NewSparesRequest(core.SparesRequestInput{
		RequestedBy:       "ind1",
		ItemName:          "Guide Pin",
		PartNumber:        "PN-4410",
		ToolNumber:        "TN-9001",
		QuantityRequested: 10,
		Purpose:           "line 3 breakdown",
	}, day1)
	if err != nil {
		t.Fatalf("NewSparesRequest: %v", err)
	}
	r.ID = 1
	return r
}

func TestNewSparesRequest_Validation(t *testing.T) {
	_, err := core.NewSparesRequest(core.SparesRequestInput{RequestedBy: "ind1"}, day1)
	var ve *core.ValidationError
	if !asValidation(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Problems) != 4 {
		t.Errorf("expected 4 problems, got %v", ve.Problems)
	}
	if r := pendingRequest(t); r.Status != core.SparesPending {
		t.Errorf("expected Pending, got %s", r.Status)
	}
}

func TestFulfillSparesRequest_Incremental(t *testing.T) {
	r := pendingRequest(t)

	r, delta, err := core.FulfillSparesRequest(r, core.SparesPartiallyFulfilled, 4, "spares1", day1)
	if err != nil {
		t.Fatalf("partial: %v", err)
	}
	if delta != 4 || r.QuantityFulfilled != 4 || r.Status != core.SparesPartiallyFulfilled {
		t.Fatalf("after partial: delta %d %+v", delta, r)
	}

	r, delta, err = core.FulfillSparesRequest(r, core.SparesFulfilled, 10, "spares1", day1)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if delta != 6 || r.Status != core.SparesFulfilled || r.FulfilledBy != "spares1" {
		t.Fatalf("after complete: delta %d %+v", delta, r)
	}

	if _, _, err := core.FulfillSparesRequest(r, core.SparesFulfilled, 10, "spares1", day1); !core.IsPrecondition(err) {
		t.Errorf("Fulfilled is final: expected precondition error, got %v", err)
	}
}

func TestFulfillSparesRequest_Rules(t *testing.T) {
	r := pendingRequest(t)
	cases := []struct {
		name     string
		status   core.SparesRequestStatus
		qty      int
		wantPrec bool
	}{
		{"fulfilled must match", core.SparesFulfilled, 9, false},
		{"partial cannot be full", core.SparesPartiallyFulfilled, 10, false},
		{"partial must be positive", core.SparesPartiallyFulfilled, 0, false},
		{"not an outcome", core.SparesPending, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := core.FulfillSparesRequest(r, tc.status, tc.qty, "spares1", day1)
			if !core.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	rejected, delta, err := core.FulfillSparesRequest(r, core.SparesRejected, 7, "spares1", day1)
	if err != nil || delta != 0 || rejected.QuantityFulfilled != 0 {
		t.Errorf("reject forces zero: %v delta %d qty %d", err, delta, rejected.QuantityFulfilled)
	}

	partial, _, _ := core.FulfillSparesRequest(r, core.SparesPartiallyFulfilled, 6, "spares1", day1)
	if _, _, err := core.FulfillSparesRequest(partial, core.SparesPartiallyFulfilled, 3, "spares1", day1); !core.IsPrecondition(err) {
		t.Errorf("decrease: expected precondition error, got %v", err)
	}
	if _, _, err := core.FulfillSparesRequest(partial, core.SparesRejected, 0, "spares1", day1); !core.IsPrecondition(err) {
		t.Errorf("reject after issue: expected precondition error, got %v", err)
	}
}

func TestEditAndDelete_OwnerAndPendingOnly(t *testing.T) {
	r := pendingRequest(t)

	if _, err := core.EditSparesRequest(r, "ind2", false, core.SparesRequestEdit{QuantityRequested: 5}, day1); !core.IsPrecondition(err) {
		t.Errorf("other indentor: expected precondition error, got %v", err)
	}
	edited, err := core.EditSparesRequest(r, "admin", true, core.SparesRequestEdit{QuantityRequested: 5, Purpose: "revised"}, day1)
	if err != nil {
		t.Fatalf("admin edit: %v", err)
	}
	if edited.QuantityRequested != 5 || edited.Purpose != "revised" {
		t.Errorf("edit not applied: %+v", edited)
	}
	if _, err := core.EditSparesRequest(r, "ind1", false, core.SparesRequestEdit{QuantityRequested: 0}, day1); !core.IsValidation(err) {
		t.Errorf("zero quantity: expected validation error, got %v", err)
	}

	done, _, _ := core.FulfillSparesRequest(r, core.SparesFulfilled, 10, "spares1", day1)
	if err := core.CheckRequestOwner(done, "be deleted", "ind1", false); !core.IsPrecondition(err) {
		t.Errorf("delete Fulfilled: expected precondition error, got %v", err)
	}
	if err := core.CheckRequestOwner(r, "be deleted", "ind1", false); err != nil {
		t.Errorf("owner delete of Pending request: %v", err)
	}
}
