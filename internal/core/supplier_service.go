package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type supplierService struct {
	pool *pgxpool.Pool
}

// NewSupplierService constructs a SupplierService backed by PostgreSQL.
func NewSupplierService(pool *pgxpool.Pool) SupplierService {
	return &supplierService{pool: pool}
}

// CreateSupplier inserts a new supplier record.
func (s *supplierService) CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" || strings.TrimSpace(input.Name) == "" {
		return nil, &ValidationError{Problems: []string{"supplier code and name are required"}}
	}

	toPtr := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}

	sup := &Supplier{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO suppliers (code, name, contact_person, email, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, code, name, contact_person, email, phone, address, is_active, created_at`,
		code, strings.TrimSpace(input.Name), toPtr(input.ContactPerson), toPtr(input.Email),
		toPtr(input.Phone), toPtr(input.Address),
	).Scan(
		&sup.ID, &sup.Code, &sup.Name,
		&sup.ContactPerson, &sup.Email, &sup.Phone, &sup.Address,
		&sup.IsActive, &sup.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create supplier %q: %w", code, err)
	}
	return sup, nil
}

// GetSuppliers returns all active suppliers, ordered by code.
func (s *supplierService) GetSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, code, name, contact_person, email, phone, address, is_active, created_at
		FROM suppliers
		WHERE is_active = true
		ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("get suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var sup Supplier
		if err := rows.Scan(
			&sup.ID, &sup.Code, &sup.Name,
			&sup.ContactPerson, &sup.Email, &sup.Phone, &sup.Address,
			&sup.IsActive, &sup.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, sup)
	}
	return suppliers, rows.Err()
}

// GetSupplierByCode returns a supplier by code.
func (s *supplierService) GetSupplierByCode(ctx context.Context, code string) (*Supplier, error) {
	sup := &Supplier{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, code, name, contact_person, email, phone, address, is_active, created_at
		FROM suppliers
		WHERE code = $1`,
		strings.ToUpper(code),
	).Scan(
		&sup.ID, &sup.Code, &sup.Name,
		&sup.ContactPerson, &sup.Email, &sup.Phone, &sup.Address,
		&sup.IsActive, &sup.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("supplier", code)
		}
		return nil, fmt.Errorf("get supplier %q: %w", code, err)
	}
	return sup, nil
}
