package core

import (
	"context"
	"time"
)

// Supplier is a toolmaker or vendor invited to quote on PRs.
type Supplier struct {
	ID            int       `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	ContactPerson *string   `json:"contact_person,omitempty"`
	Email         *string   `json:"email,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	Address       *string   `json:"address,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// SupplierInput holds the fields required to create a new supplier.
type SupplierInput struct {
	Code          string
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
}

// SupplierService provides supplier master data operations.
type SupplierService interface {
	// CreateSupplier creates a new supplier record.
	CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error)

	// GetSuppliers returns all active suppliers.
	GetSuppliers(ctx context.Context) ([]Supplier, error)

	// GetSupplierByCode returns a specific supplier by its code.
	GetSupplierByCode(ctx context.Context, code string) (*Supplier, error)
}
