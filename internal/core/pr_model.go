package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PRType is the kind of tooling requisition.
type PRType string

const (
	PRTypeNewSet       PRType = "New Set"
	PRTypeModification PRType = "Modification"
	PRTypeRefurbished  PRType = "Refurbished"
)

// Valid reports whether t is one of the known PR types.
func (t PRType) Valid() bool {
	switch t {
	case PRTypeNewSet, PRTypeModification, PRTypeRefurbished:
		return true
	}
	return false
}

// PRStatus is the state of a purchase requisition.
type PRStatus string

const (
	PRStatusSubmitted            PRStatus = "Submitted"
	PRStatusApproved             PRStatus = "Approved"
	PRStatusSentToSupplier       PRStatus = "Sent To Supplier"
	PRStatusEvaluationPending    PRStatus = "Evaluation Pending"
	PRStatusSubmittedForApproval PRStatus = "Submitted for Approval"
	PRStatusAwarded              PRStatus = "Awarded"
	PRStatusItemsReceived        PRStatus = "Items Received"
	PRStatusRejected             PRStatus = "Rejected"
)

// PRItem is one line of a requisition. Price is the BOM unit price and is nil
// for manually entered lines.
type PRItem struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Specification string           `json:"specification"`
	Quantity      int              `json:"quantity"`
	Requirements  string           `json:"requirements"`
	Price         *decimal.Decimal `json:"price,omitempty"`
}

// CriticalSpare marks a PR item for extra spare stock. Quantity is additional
// to the item's own quantity.
type CriticalSpare struct {
	ItemID   string `json:"id"`
	Quantity int    `json:"quantity"`
}

// PurchaseRequisition is the PR aggregate: items, suppliers, quotations and
// the critical-spare markers.
type PurchaseRequisition struct {
	ID                int             `json:"id"`
	PRNumber          string          `json:"pr_number"`
	ProjectID         int             `json:"project_id"`
	PRType            PRType          `json:"pr_type"`
	Items             []PRItem        `json:"items"`
	Suppliers         []string        `json:"suppliers"`
	Status            PRStatus        `json:"status"`
	CreatedBy         string          `json:"created_by"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	ApproverComments  string          `json:"approver_comments,omitempty"`
	Quotations        []Quotation     `json:"quotations"`
	AwardedSupplier   string          `json:"awarded_supplier,omitempty"`
	ModRefReason      string          `json:"mod_ref_reason,omitempty"`
	CriticalSpares    []CriticalSpare `json:"critical_spares"`
	ItemsReceivedDate *time.Time      `json:"items_received_date,omitempty"`
}

// Item returns the PR item with the given ID.
func (pr *PurchaseRequisition) Item(id string) (PRItem, bool) {
	for _, it := range pr.Items {
		if it.ID == id {
			return it, true
		}
	}
	return PRItem{}, false
}

// SpareQuantity returns the critical-spare quantity for an item, 0 if unmarked.
func (pr *PurchaseRequisition) SpareQuantity(itemID string) int {
	for _, cs := range pr.CriticalSpares {
		if cs.ItemID == itemID {
			return cs.Quantity
		}
	}
	return 0
}

// HasSupplier reports whether the supplier code is on the PR.
func (pr *PurchaseRequisition) HasSupplier(code string) bool {
	for _, s := range pr.Suppliers {
		if s == code {
			return true
		}
	}
	return false
}

// Quotation returns the supplier's quotation and its index.
func (pr *PurchaseRequisition) Quotation(supplier string) (Quotation, int, bool) {
	for i, q := range pr.Quotations {
		if q.Supplier == supplier {
			return q, i, true
		}
	}
	return Quotation{}, -1, false
}

// Clone returns a deep copy so transitions never alias the caller's slices.
func (pr PurchaseRequisition) Clone() PurchaseRequisition {
	out := pr
	out.Items = cloneItems(pr.Items)
	out.Suppliers = append([]string(nil), pr.Suppliers...)
	out.CriticalSpares = append([]CriticalSpare(nil), pr.CriticalSpares...)
	out.Quotations = make([]Quotation, len(pr.Quotations))
	for i, q := range pr.Quotations {
		q.Items = append([]QuotationItem(nil), q.Items...)
		out.Quotations[i] = q
	}
	if pr.ItemsReceivedDate != nil {
		d := *pr.ItemsReceivedDate
		out.ItemsReceivedDate = &d
	}
	return out
}

func cloneItems(items []PRItem) []PRItem {
	out := make([]PRItem, len(items))
	for i, it := range items {
		if it.Price != nil {
			p := *it.Price
			it.Price = &p
		}
		out[i] = it
	}
	return out
}

// PRDraft is the builder output submitted by NPD to create or update a PR.
type PRDraft struct {
	ProjectID      int
	PRType         PRType
	ModRefReason   string
	Items          []PRItem
	Suppliers      []string
	CriticalSpares []CriticalSpare
	CreatedBy      string
}

// PRFilter narrows a PR listing. Zero values mean "any".
type PRFilter struct {
	Status    PRStatus
	ProjectID int
	Page      int
	PageSize  int
}

// PRPage is one page of a PR listing.
type PRPage struct {
	Items    []PurchaseRequisition `json:"items"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}

// ActionInput carries the optional parameters of a workflow action.
type ActionInput struct {
	Actor    string
	Comments string
	Supplier string // award
	Confirm  bool   // mark items received
}

// PurchaseRequisitionService provides the PR lifecycle backed by PostgreSQL.
type PurchaseRequisitionService interface {
	// CreatePR validates the draft and stores it as Submitted with a gapless PR number.
	CreatePR(ctx context.Context, draft PRDraft) (*PurchaseRequisition, error)

	// UpdatePR replaces items, suppliers and critical spares of a Submitted PR.
	UpdatePR(ctx context.Context, id int, draft PRDraft) (*PurchaseRequisition, error)

	// DeletePR removes a PR that is still Submitted or Rejected.
	DeletePR(ctx context.Context, id int) error

	// GetPR returns a PR with items, suppliers, critical spares and quotations.
	GetPR(ctx context.Context, id int) (*PurchaseRequisition, error)

	// GetPRs returns a page of PRs matching the filter, newest first.
	GetPRs(ctx context.Context, filter PRFilter) (*PRPage, error)

	// Apply runs a workflow action against the PR inside one transaction.
	// Marking items received also creates the tool handover record.
	Apply(ctx context.Context, id int, action PRAction, input ActionInput) (*PurchaseRequisition, error)

	// RecordQuotation upserts the supplier's quotation on the PR.
	RecordQuotation(ctx context.Context, id int, input QuotationInput) (*PurchaseRequisition, error)
}
