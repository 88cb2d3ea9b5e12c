package core

import (
	"strings"
	"time"
)

// NewSparesRequest validates an indent and returns it as Pending.
func NewSparesRequest(in SparesRequestInput, now time.Time) (SparesRequest, error) {
	ve := &ValidationError{}
	if strings.TrimSpace(in.RequestedBy) == "" {
		ve.add("requested by is required")
	}
	if strings.TrimSpace(in.ItemName) == "" {
		ve.add("item name is required")
	}
	if strings.TrimSpace(in.PartNumber) == "" {
		ve.add("part number is required")
	}
	if strings.TrimSpace(in.ToolNumber) == "" {
		ve.add("tool number is required")
	}
	if in.QuantityRequested <= 0 {
		ve.add("quantity requested must be positive")
	}
	if err := ve.orNil(); err != nil {
		return SparesRequest{}, err
	}
	return SparesRequest{
		RequestedBy:       in.RequestedBy,
		ItemName:          strings.TrimSpace(in.ItemName),
		PartNumber:        strings.TrimSpace(in.PartNumber),
		ToolNumber:        strings.TrimSpace(in.ToolNumber),
		QuantityRequested: in.QuantityRequested,
		Status:            SparesPending,
		RequestDate:       now,
		ProjectID:         in.ProjectID,
		Purpose:           strings.TrimSpace(in.Purpose),
		UpdatedAt:         now,
	}, nil
}

// CheckRequestOwner guards edits and deletes: only Pending requests, and only
// by the requester unless privileged.
func CheckRequestOwner(r SparesRequest, action, actor string, privileged bool) error {
	if r.Status != SparesPending {
		return &PreconditionError{Entity: "spares request", ID: r.ID, Action: action, Status: string(r.Status), Reason: "only Pending requests can change"}
	}
	if !privileged && r.RequestedBy != actor {
		return &PreconditionError{Entity: "spares request", ID: r.ID, Action: action, Status: string(r.Status), Reason: "raised by another user"}
	}
	return nil
}

// EditSparesRequest applies an edit to a Pending request.
func EditSparesRequest(r SparesRequest, actor string, privileged bool, edit SparesRequestEdit, now time.Time) (SparesRequest, error) {
	if err := CheckRequestOwner(r, "be edited", actor, privileged); err != nil {
		return r, err
	}
	if edit.QuantityRequested <= 0 {
		return r, &ValidationError{Problems: []string{"quantity requested must be positive"}}
	}
	out := r
	out.QuantityRequested = edit.QuantityRequested
	out.Purpose = strings.TrimSpace(edit.Purpose)
	out.UpdatedAt = now
	return out, nil
}

// FulfillSparesRequest applies the Spares-team decision and returns the new
// request together with the fulfilled quantity added by this call.
//
// Pending may move to any outcome. Partially Fulfilled may only grow, to a
// larger partial or to Fulfilled. Fulfilled and Rejected are final.
func FulfillSparesRequest(r SparesRequest, status SparesRequestStatus, quantity int, actor string, now time.Time) (SparesRequest, int, error) {
	switch r.Status {
	case SparesPending:
	case SparesPartiallyFulfilled:
		if status == SparesRejected {
			return r, 0, &PreconditionError{Entity: "spares request", ID: r.ID, Action: "be rejected", Status: string(r.Status), Reason: "spares were already issued"}
		}
	default:
		return r, 0, &PreconditionError{Entity: "spares request", ID: r.ID, Action: "be fulfilled", Status: string(r.Status), Reason: "request is closed"}
	}

	ve := &ValidationError{}
	switch status {
	case SparesFulfilled:
		if quantity != r.QuantityRequested {
			ve.add("fulfilled quantity must equal the %d requested", r.QuantityRequested)
		}
	case SparesPartiallyFulfilled:
		if quantity <= 0 || quantity >= r.QuantityRequested {
			ve.add("partial quantity must be between 1 and %d", r.QuantityRequested-1)
		}
	case SparesRejected:
		quantity = 0
	default:
		ve.add("status %q is not a fulfillment outcome", status)
	}
	if err := ve.orNil(); err != nil {
		return r, 0, err
	}

	if quantity < r.QuantityFulfilled {
		return r, 0, &PreconditionError{Entity: "spares request", ID: r.ID, Action: "reduce fulfilled quantity", Status: string(r.Status), Reason: "fulfilled quantity cannot decrease"}
	}
	if status == SparesPartiallyFulfilled && quantity == r.QuantityFulfilled && r.Status == SparesPartiallyFulfilled {
		return r, 0, &ValidationError{Problems: []string{"partial quantity must increase"}}
	}

	out := r
	delta := quantity - r.QuantityFulfilled
	out.Status = status
	out.QuantityFulfilled = quantity
	out.FulfilledBy = actor
	out.UpdatedAt = now
	return out, delta, nil
}
