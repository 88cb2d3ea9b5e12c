package app

import (
	"github.com/shopspring/decimal"

	"tooling-procurement/internal/core"
)

// UserSession is returned by AuthenticateUser.
type UserSession struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UserResult is returned by GetUser and CreateUser.
type UserResult struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// BOMResult is returned by ResolveBOM. Total is Σ unit price × quantity.
type BOMResult struct {
	ToolNumber string          `json:"tool_number"`
	Lines      []core.BOMLine  `json:"lines"`
	Total      decimal.Decimal `json:"total"`
}

// PRPreviewResult is the builder view before submission. Problems lists what
// would block submission; an empty list means the draft is submittable.
type PRPreviewResult struct {
	Items          []core.PRItem        `json:"items"`
	CriticalSpares []core.CriticalSpare `json:"critical_spares"`
	Cost           core.CostBreakdown   `json:"cost"`
	Problems       []string             `json:"problems"`
}

// PRResult is returned by PR lifecycle operations.
type PRResult struct {
	PR             *core.PurchaseRequisition `json:"purchase_requisition"`
	Cost           core.CostBreakdown        `json:"cost"`
	AllowedActions []core.PRAction           `json:"allowed_actions"`
}
