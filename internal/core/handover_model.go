package core

import (
	"context"
	"time"
)

// HandoverStatus is the inspection state of a tool handover.
type HandoverStatus string

const (
	HandoverPendingInspection HandoverStatus = "Pending Inspection"
	HandoverApproved          HandoverStatus = "Approved"
	HandoverRejected          HandoverStatus = "Rejected"
)

// SpareItem is a critical spare materialized at handover time. It is a copy
// and no longer follows the PR item it came from.
type SpareItem struct {
	ID         string `json:"id"`
	PartNumber string `json:"part_number"`
	ToolNumber string `json:"tool_number"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
}

// ToolHandoverRecord is the custody record for received tooling. One per PR.
type ToolHandoverRecord struct {
	ID             int            `json:"id"`
	HandoverNumber string         `json:"handover_number"`
	ProjectID      int            `json:"project_id"`
	PRID           int            `json:"pr_id"`
	PartNumber     string         `json:"part_number"`
	ToolNumber     string         `json:"tool_number"`
	ToolSet        string         `json:"tool_set"`
	AllItems       []PRItem       `json:"all_items"`
	CriticalSpares []SpareItem    `json:"critical_spares"`
	Status         HandoverStatus `json:"status"`
	InspectedBy    string         `json:"inspected_by,omitempty"`
	InspectionDate *time.Time     `json:"inspection_date,omitempty"`
	Remarks        string         `json:"remarks,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// InspectionDecision is the Maintenance verdict on a handover.
type InspectionDecision string

const (
	InspectionApprove InspectionDecision = "approve"
	InspectionReject  InspectionDecision = "reject"
)

// ToolHandoverService provides handover creation and inspection.
type ToolHandoverService interface {
	// SyncHandovers creates the missing handover for every Items Received PR.
	// It is idempotent and returns only the records it created.
	SyncHandovers(ctx context.Context) ([]ToolHandoverRecord, error)

	// GetHandovers returns handovers, optionally filtered by status.
	GetHandovers(ctx context.Context, status HandoverStatus) ([]ToolHandoverRecord, error)

	// GetHandover returns a handover by ID.
	GetHandover(ctx context.Context, id int) (*ToolHandoverRecord, error)

	// Inspect records the Maintenance decision. Approval folds the handover
	// into inventory within the same transaction.
	Inspect(ctx context.Context, id int, decision InspectionDecision, inspector, remarks string) (*ToolHandoverRecord, error)
}
