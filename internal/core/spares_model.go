package core

import (
	"context"
	"time"
)

// SparesRequestStatus is the state of an indent against spares inventory.
type SparesRequestStatus string

const (
	SparesPending            SparesRequestStatus = "Pending"
	SparesFulfilled          SparesRequestStatus = "Fulfilled"
	SparesPartiallyFulfilled SparesRequestStatus = "Partially Fulfilled"
	SparesRejected           SparesRequestStatus = "Rejected"
)

// SparesRequest is an Indentor's request for stocked spares.
type SparesRequest struct {
	ID                int                 `json:"id"`
	RequestedBy       string              `json:"requested_by"`
	ItemName          string              `json:"item_name"`
	PartNumber        string              `json:"part_number"`
	ToolNumber        string              `json:"tool_number"`
	QuantityRequested int                 `json:"quantity_requested"`
	QuantityFulfilled int                 `json:"quantity_fulfilled"`
	Status            SparesRequestStatus `json:"status"`
	RequestDate       time.Time           `json:"request_date"`
	ProjectID         *int                `json:"project_id,omitempty"`
	Purpose           string              `json:"purpose"`
	FulfilledBy       string              `json:"fulfilled_by,omitempty"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// Key returns the inventory key the request draws from.
func (r SparesRequest) Key() InventoryKey {
	return InventoryKey{PartNumber: r.PartNumber, ToolNumber: r.ToolNumber, Name: r.ItemName}
}

// SparesRequestInput holds the fields an Indentor submits.
type SparesRequestInput struct {
	RequestedBy       string
	ItemName          string
	PartNumber        string
	ToolNumber        string
	QuantityRequested int
	ProjectID         *int
	Purpose           string
}

// SparesRequestEdit holds the fields editable while a request is Pending.
type SparesRequestEdit struct {
	QuantityRequested int
	Purpose           string
}

// SparesRequestService provides the indent and fulfillment workflow.
type SparesRequestService interface {
	// CreateRequest stores a Pending request against an existing inventory item.
	CreateRequest(ctx context.Context, input SparesRequestInput) (*SparesRequest, error)

	// GetRequests returns requests, optionally only those raised by requestedBy.
	GetRequests(ctx context.Context, requestedBy string) ([]SparesRequest, error)

	// GetRequest returns a request by ID.
	GetRequest(ctx context.Context, id int) (*SparesRequest, error)

	// EditRequest changes quantity and purpose of a Pending request.
	EditRequest(ctx context.Context, id int, actor string, privileged bool, edit SparesRequestEdit) (*SparesRequest, error)

	// DeleteRequest removes a Pending request.
	DeleteRequest(ctx context.Context, id int, actor string, privileged bool) error

	// Fulfill sets the Spares-team outcome and adjusts inventory by the delta.
	Fulfill(ctx context.Context, id int, status SparesRequestStatus, quantityFulfilled int, actor string) (*SparesRequest, error)
}
