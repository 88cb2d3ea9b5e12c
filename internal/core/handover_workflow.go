package core

import (
	"fmt"
	"strings"
	"time"
)

// ToolSetLabel names the tool set a handover covers.
func ToolSetLabel(toolNumber, partNumber string, prType PRType) string {
	return fmt.Sprintf("%s / %s (%s)", toolNumber, partNumber, prType)
}

// NewHandover snapshots a received PR into a Pending Inspection handover.
// Items and spares are copied so later PR edits never reach the record.
func NewHandover(pr PurchaseRequisition, project Project, now time.Time) (ToolHandoverRecord, error) {
	if pr.Status != PRStatusItemsReceived {
		return ToolHandoverRecord{}, &PreconditionError{Entity: "purchase requisition", ID: pr.ID, Action: "hand over tooling", Status: string(pr.Status), Reason: "items must be received"}
	}
	if project.ID != pr.ProjectID {
		return ToolHandoverRecord{}, fmt.Errorf("handover for PR %d: project %d does not match PR project %d", pr.ID, project.ID, pr.ProjectID)
	}

	h := ToolHandoverRecord{
		ProjectID:  project.ID,
		PRID:       pr.ID,
		PartNumber: project.PartNumber,
		ToolNumber: project.ToolNumber,
		ToolSet:    ToolSetLabel(project.ToolNumber, project.PartNumber, pr.PRType),
		AllItems:   cloneItems(pr.Items),
		Status:     HandoverPendingInspection,
		CreatedAt:  now,
	}
	h.CriticalSpares = make([]SpareItem, 0, len(pr.CriticalSpares))
	for _, cs := range pr.CriticalSpares {
		it, ok := pr.Item(cs.ItemID)
		if !ok {
			continue
		}
		h.CriticalSpares = append(h.CriticalSpares, SpareItem{
			ID:         it.ID,
			PartNumber: project.PartNumber,
			ToolNumber: project.ToolNumber,
			Name:       it.Name,
			Quantity:   cs.Quantity,
		})
	}
	return h, nil
}

// EnsureHandovers returns the handovers missing for Items Received PRs. PRs
// that already have a handover, or whose project is unknown, are skipped, so
// calling it again with its own output folded into existing yields nothing.
func EnsureHandovers(prs []PurchaseRequisition, projects map[int]Project, existing []ToolHandoverRecord, now time.Time) []ToolHandoverRecord {
	have := make(map[int]bool, len(existing))
	for _, h := range existing {
		have[h.PRID] = true
	}
	var created []ToolHandoverRecord
	for _, pr := range prs {
		if pr.Status != PRStatusItemsReceived || have[pr.ID] {
			continue
		}
		project, ok := projects[pr.ProjectID]
		if !ok {
			continue
		}
		h, err := NewHandover(pr, project, now)
		if err != nil {
			continue
		}
		have[pr.ID] = true
		created = append(created, h)
	}
	return created
}

// Inspect applies the Maintenance decision. Remarks are required either way,
// and only a Pending Inspection handover can be decided.
func Inspect(h ToolHandoverRecord, decision InspectionDecision, inspector, remarks string, now time.Time) (ToolHandoverRecord, error) {
	if h.Status != HandoverPendingInspection {
		return h, &PreconditionError{Entity: "handover", ID: h.ID, Action: string(decision), Status: string(h.Status), Reason: "already inspected"}
	}

	ve := &ValidationError{}
	var next HandoverStatus
	switch decision {
	case InspectionApprove:
		next = HandoverApproved
	case InspectionReject:
		next = HandoverRejected
	default:
		ve.add("decision %q must be approve or reject", decision)
	}
	remarks = strings.TrimSpace(remarks)
	if remarks == "" {
		ve.add("remarks are required")
	}
	if strings.TrimSpace(inspector) == "" {
		ve.add("inspector is required")
	}
	if err := ve.orNil(); err != nil {
		return h, err
	}

	out := h
	out.AllItems = cloneItems(h.AllItems)
	out.CriticalSpares = append([]SpareItem(nil), h.CriticalSpares...)
	out.Status = next
	out.InspectedBy = inspector
	out.Remarks = remarks
	t := now
	out.InspectionDate = &t
	return out, nil
}
