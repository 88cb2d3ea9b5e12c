package core

import (
	"github.com/shopspring/decimal"
)

// QuotationStatus is the state of one supplier's quotation.
type QuotationStatus string

const (
	QuotationPending   QuotationStatus = "Pending"
	QuotationEvaluated QuotationStatus = "Evaluated"
	QuotationSelected  QuotationStatus = "Selected"
	QuotationRejected  QuotationStatus = "Rejected"
	QuotationApproved  QuotationStatus = "Approved"
)

// QuotationItem is a supplier's price for one PR item. Quantity includes any
// critical-spare addition on the item.
type QuotationItem struct {
	ItemID     string          `json:"item_id"`
	ItemName   string          `json:"item_name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Quotation is one supplier's offer against a PR.
type Quotation struct {
	ID            int             `json:"id"`
	PRID          int             `json:"pr_id"`
	Supplier      string          `json:"supplier"`
	Price         decimal.Decimal `json:"price"`
	Items         []QuotationItem `json:"items"`
	DeliveryTerms string          `json:"delivery_terms"`
	DeliveryDate  string          `json:"delivery_date"` // YYYY-MM-DD
	Status        QuotationStatus `json:"status"`
	Notes         string          `json:"notes,omitempty"`
}

// QuotationInput is what NPD keys in from a supplier's offer.
// UnitPrices maps PR item ID to quoted unit price.
type QuotationInput struct {
	Supplier      string
	UnitPrices    map[string]decimal.Decimal
	DeliveryTerms string
	DeliveryDate  string
	Notes         string
	Actor         string
}

// ItemComparison is one row of the quotation comparison.
type ItemComparison struct {
	ItemID         string                     `json:"item_id"`
	Name           string                     `json:"name"`
	BaseQuantity   int                        `json:"base_quantity"`
	SpareQuantity  int                        `json:"spare_quantity"`
	Quantity       int                        `json:"quantity"`
	BOMUnitPrice   *decimal.Decimal           `json:"bom_unit_price,omitempty"`
	Quotes         map[string]decimal.Decimal `json:"quotes"`
	LowestPrice    *decimal.Decimal           `json:"lowest_price,omitempty"` // nil renders as N/A
	LowestSupplier string                     `json:"lowest_supplier,omitempty"`
	// Savings is BOM unit price minus quoted unit price, per supplier.
	Savings map[string]decimal.Decimal `json:"savings,omitempty"`
}

// SupplierSummary is the per-supplier block of the comparison.
type SupplierSummary struct {
	Supplier      string          `json:"supplier"`
	Total         decimal.Decimal `json:"total"`
	Tax           decimal.Decimal `json:"tax"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	SavingsVsBOM  decimal.Decimal `json:"savings_vs_bom"`
	IsLowest      bool            `json:"is_lowest"`
	DeliveryTerms string          `json:"delivery_terms"`
	DeliveryDate  string          `json:"delivery_date"`
	Status        QuotationStatus `json:"status"`
	Complete      bool            `json:"complete"`
}

// Comparison is the read model the approver uses to pick a supplier.
type Comparison struct {
	PRID        int               `json:"pr_id"`
	Status      PRStatus          `json:"status"`
	Items       []ItemComparison  `json:"items"`
	Suppliers   []SupplierSummary `json:"suppliers"`
	BOMTotal    decimal.Decimal   `json:"bom_total"`
	LowestTotal *decimal.Decimal  `json:"lowest_total,omitempty"`
	CanAward    bool              `json:"can_award"`
}
