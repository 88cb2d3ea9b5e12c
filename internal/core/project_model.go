package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Project statuses.
const (
	ProjectStatusActive    = "Active"
	ProjectStatusOnHold    = "On Hold"
	ProjectStatusCompleted = "Completed"
)

// Project is a customer tooling order; PRs are raised against it.
type Project struct {
	ID         int             `json:"id"`
	CustomerPO string          `json:"customer_po"`
	PartNumber string          `json:"part_number"`
	ToolNumber string          `json:"tool_number"`
	Price      decimal.Decimal `json:"price"`
	TargetDate *string         `json:"target_date,omitempty"` // YYYY-MM-DD
	Status     string          `json:"status"`
	CreatedBy  string          `json:"created_by"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ProjectInput holds the fields required to create a project.
type ProjectInput struct {
	CustomerPO string
	PartNumber string
	ToolNumber string
	Price      decimal.Decimal
	TargetDate string
	CreatedBy  string
}

// Validate checks the mandatory project fields.
func (in ProjectInput) Validate() error {
	ve := &ValidationError{}
	if in.CustomerPO == "" {
		ve.add("customer PO is required")
	}
	if in.PartNumber == "" {
		ve.add("part number is required")
	}
	if in.ToolNumber == "" {
		ve.add("tool number is required")
	}
	if in.Price.IsNegative() {
		ve.add("price cannot be negative")
	}
	if in.TargetDate != "" {
		if _, err := time.Parse("2006-01-02", in.TargetDate); err != nil {
			ve.add("target date must be YYYY-MM-DD")
		}
	}
	return ve.orNil()
}

// ProjectService provides project intake operations.
type ProjectService interface {
	// CreateProject inserts a new Active project.
	CreateProject(ctx context.Context, input ProjectInput) (*Project, error)

	// GetProject returns a project by ID.
	GetProject(ctx context.Context, id int) (*Project, error)

	// GetProjects returns all projects, newest first.
	GetProjects(ctx context.Context) ([]Project, error)
}
