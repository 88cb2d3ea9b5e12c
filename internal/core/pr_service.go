package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"tooling-procurement/internal/logger"
)

type purchaseRequisitionService struct {
	pool *pgxpool.Pool
	log  *logger.Logger
	now  func() time.Time
}

// NewPurchaseRequisitionService constructs a PurchaseRequisitionService backed by PostgreSQL.
func NewPurchaseRequisitionService(pool *pgxpool.Pool, log *logger.Logger) PurchaseRequisitionService {
	return &purchaseRequisitionService{pool: pool, log: log, now: time.Now}
}

// CreatePR stores a new Submitted PR and assigns its gapless number.
func (s *purchaseRequisitionService) CreatePR(ctx context.Context, draft PRDraft) (*PurchaseRequisition, error) {
	now := s.now()
	pr, err := NewPurchaseRequisition(draft, now)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := checkReferences(ctx, tx, pr.ProjectID, pr.Suppliers); err != nil {
		return nil, err
	}

	if pr.PRNumber, err = NextNumber(ctx, tx, SequencePR, now.Year()); err != nil {
		return nil, err
	}

	if err := tx.QueryRow(ctx, `
		INSERT INTO purchase_requisitions (pr_number, project_id, pr_type, status, created_by,
		                                   created_at, updated_at, mod_ref_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
		RETURNING id`,
		pr.PRNumber, pr.ProjectID, string(pr.PRType), string(pr.Status), pr.CreatedBy, now, pr.ModRefReason,
	).Scan(&pr.ID); err != nil {
		return nil, fmt.Errorf("insert purchase requisition: %w", err)
	}

	if err := insertPRLines(ctx, tx, &pr); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase requisition: %w", err)
	}

	s.log.Info("purchase requisition created", "pr_id", pr.ID, "pr_number", pr.PRNumber, "pr_type", pr.PRType, "actor", pr.CreatedBy)
	return s.GetPR(ctx, pr.ID)
}

// UpdatePR replaces the lines of a PR that is still Submitted.
func (s *purchaseRequisitionService) UpdatePR(ctx context.Context, id int, draft PRDraft) (*PurchaseRequisition, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := loadPR(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	if draft.CreatedBy == "" {
		draft.CreatedBy = current.CreatedBy
	}

	updated, err := ApplyDraft(*current, draft, s.now())
	if err != nil {
		return nil, err
	}
	if err := checkReferences(ctx, tx, updated.ProjectID, updated.Suppliers); err != nil {
		return nil, err
	}
	if err := replacePRLines(ctx, tx, &updated); err != nil {
		return nil, err
	}
	if err := savePRHeader(ctx, tx, &updated); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase requisition update: %w", err)
	}
	s.log.Info("purchase requisition updated", "pr_id", id)
	return s.GetPR(ctx, id)
}

// DeletePR removes a Submitted or Rejected PR together with its lines.
func (s *purchaseRequisitionService) DeletePR(ctx context.Context, id int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	pr, err := loadPR(ctx, tx, id, true)
	if err != nil {
		return err
	}
	if err := CheckDeletable(*pr); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "DELETE FROM purchase_requisitions WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete purchase requisition %d: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	s.log.Info("purchase requisition deleted", "pr_id", id, "pr_number", pr.PRNumber)
	return nil
}

func (s *purchaseRequisitionService) GetPR(ctx context.Context, id int) (*PurchaseRequisition, error) {
	return loadPR(ctx, s.pool, id, false)
}

// GetPRs returns one page of PRs, newest first.
func (s *purchaseRequisitionService) GetPRs(ctx context.Context, filter PRFilter) (*PRPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	where := "WHERE ($1 = '' OR status = $1) AND ($2 = 0 OR project_id = $2)"
	args := []any{string(filter.Status), filter.ProjectID}

	page := &PRPage{Page: filter.Page, PageSize: filter.PageSize, Items: []PurchaseRequisition{}}
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM purchase_requisitions "+where, args...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("count purchase requisitions: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		"SELECT id FROM purchase_requisitions "+where+" ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4",
		append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)...,
	)
	if err != nil {
		return nil, fmt.Errorf("query purchase requisitions: %w", err)
	}
	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan purchase requisition id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read purchase requisitions: %w", err)
	}

	for _, id := range ids {
		pr, err := loadPR(ctx, s.pool, id, false)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, *pr)
	}
	return page, nil
}

// Apply runs one workflow action under a row lock. Marking items received
// creates the tool handover in the same transaction.
func (s *purchaseRequisitionService) Apply(ctx context.Context, id int, action PRAction, input ActionInput) (*PurchaseRequisition, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := loadPR(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}

	now := s.now()
	next, err := Transition(*current, action, input, now)
	if err != nil {
		return nil, err
	}

	if err := savePRHeader(ctx, tx, &next); err != nil {
		return nil, err
	}
	if err := saveQuotationStatuses(ctx, tx, &next); err != nil {
		return nil, err
	}

	var handoverNumber string
	if next.Status == PRStatusItemsReceived {
		project, err := loadProject(ctx, tx, next.ProjectID)
		if err != nil {
			return nil, err
		}
		h, err := NewHandover(next, *project, now)
		if err != nil {
			return nil, err
		}
		created, err := insertHandover(ctx, tx, &h)
		if err != nil {
			return nil, err
		}
		if created {
			handoverNumber = h.HandoverNumber
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit %s: %w", action, err)
	}

	s.log.Info("purchase requisition transition",
		"pr_id", id, "action", action, "from", current.Status, "to", next.Status, "actor", input.Actor)
	if handoverNumber != "" {
		s.log.Info("tool handover created", "pr_id", id, "handover_number", handoverNumber)
	}
	return s.GetPR(ctx, id)
}

// RecordQuotation upserts a supplier's quotation while the PR is out for quotes.
func (s *purchaseRequisitionService) RecordQuotation(ctx context.Context, id int, input QuotationInput) (*PurchaseRequisition, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	pr, err := loadPR(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	q, err := BuildQuotation(*pr, input)
	if err != nil {
		return nil, err
	}
	if _, err := saveQuotation(ctx, tx, q); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, "UPDATE purchase_requisitions SET updated_at = $2 WHERE id = $1", id, s.now()); err != nil {
		return nil, fmt.Errorf("touch purchase requisition %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit quotation: %w", err)
	}
	s.log.Info("quotation recorded", "pr_id", id, "supplier", q.Supplier, "total", q.Price.StringFixed(2), "actor", input.Actor)
	return s.GetPR(ctx, id)
}
