package app

import (
	"github.com/shopspring/decimal"
)

// Request bodies double as the JSON contract of the web API and are
// reflected into JSON Schema, so field tags carry descriptions.

// CreateUserRequest is the input for adding a user.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" jsonschema_description:"At least 8 characters"`
	Role     string `json:"role" jsonschema:"enum=NPD,enum=Approver,enum=Maintenance,enum=Spares,enum=Indentor,enum=Admin"`
}

// CreateProjectRequest is the input for project intake.
type CreateProjectRequest struct {
	CustomerPO string          `json:"customer_po"`
	PartNumber string          `json:"part_number"`
	ToolNumber string          `json:"tool_number" jsonschema_description:"Tool number; its BOM seeds New Set PRs"`
	Price      decimal.Decimal `json:"price" jsonschema:"type=string" jsonschema_description:"Planned budget as a decimal string"`
	TargetDate string          `json:"target_date,omitempty" jsonschema_description:"YYYY-MM-DD"`
}

// CreateSupplierRequest is the input for creating a supplier.
type CreateSupplierRequest struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
}

// PRRequest is the PR builder input. New Set PRs take the whole BOM of the
// project's tool, with BOMSelections acting as quantity overrides; other types
// take only the selected BOM lines.
type PRRequest struct {
	ProjectID      int                  `json:"project_id"`
	PRType         string               `json:"pr_type" jsonschema:"enum=New Set,enum=Modification,enum=Refurbished"`
	ModRefReason   string               `json:"mod_ref_reason,omitempty" jsonschema_description:"Required for Modification and Refurbished"`
	BOMSelections  []BOMSelectionInput  `json:"bom_selections,omitempty"`
	ManualItems    []ManualItemInput    `json:"manual_items,omitempty"`
	Suppliers      []string             `json:"suppliers" jsonschema_description:"Supplier codes invited to quote"`
	CriticalSpares []CriticalSpareInput `json:"critical_spares,omitempty" jsonschema_description:"New Set only"`
}

// BOMSelectionInput picks one BOM line; zero quantity keeps the catalog quantity.
type BOMSelectionInput struct {
	LineID   string `json:"line_id"`
	Quantity int    `json:"quantity,omitempty"`
}

// ManualItemInput is an ad-hoc line without a BOM price.
type ManualItemInput struct {
	Name          string `json:"name"`
	Specification string `json:"specification,omitempty"`
	Quantity      int    `json:"quantity"`
	Requirements  string `json:"requirements,omitempty"`
}

// CriticalSpareInput marks extra units of a PR item as critical spares.
type CriticalSpareInput struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// PRActionRequest carries the optional parameters of a workflow action.
type PRActionRequest struct {
	Comments string `json:"comments,omitempty" jsonschema_description:"Required when rejecting"`
	Supplier string `json:"supplier,omitempty" jsonschema_description:"Supplier to award"`
	Confirm  bool   `json:"confirm,omitempty" jsonschema_description:"Must be true to mark items received"`
}

// QuotationRequest is one supplier's offer keyed in by NPD.
type QuotationRequest struct {
	UnitPrices    map[string]decimal.Decimal `json:"unit_prices" jsonschema_description:"PR item ID to unit price (decimal string)"`
	DeliveryTerms string                     `json:"delivery_terms"`
	DeliveryDate  string                     `json:"delivery_date" jsonschema_description:"YYYY-MM-DD"`
	Notes         string                     `json:"notes,omitempty"`
}

// InspectionRequest is the Maintenance decision body.
type InspectionRequest struct {
	Remarks string `json:"remarks" jsonschema_description:"Required for approve and reject"`
}

// SparesRequestRequest raises a spares indent.
type SparesRequestRequest struct {
	ItemName          string `json:"item_name"`
	PartNumber        string `json:"part_number"`
	ToolNumber        string `json:"tool_number"`
	QuantityRequested int    `json:"quantity_requested"`
	ProjectID         *int   `json:"project_id,omitempty"`
	Purpose           string `json:"purpose,omitempty"`
}

// SparesEditRequest changes a Pending indent.
type SparesEditRequest struct {
	QuantityRequested int    `json:"quantity_requested"`
	Purpose           string `json:"purpose,omitempty"`
}

// FulfillRequest is the Spares-team decision on an indent.
type FulfillRequest struct {
	Status            string `json:"status" jsonschema:"enum=Fulfilled,enum=Partially Fulfilled,enum=Rejected"`
	QuantityFulfilled int    `json:"quantity_fulfilled"`
}
