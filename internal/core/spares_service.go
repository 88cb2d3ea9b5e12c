package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tooling-procurement/internal/logger"
)

type sparesRequestService struct {
	pool *pgxpool.Pool
	log  *logger.Logger
	now  func() time.Time
}

// NewSparesRequestService constructs a SparesRequestService backed by PostgreSQL.
func NewSparesRequestService(pool *pgxpool.Pool, log *logger.Logger) SparesRequestService {
	return &sparesRequestService{pool: pool, log: log, now: time.Now}
}

const sparesColumns = `id, requested_by, item_name, part_number, tool_number, quantity_requested,
	quantity_fulfilled, status, request_date, project_id, purpose, fulfilled_by, updated_at`

func scanSparesRequest(row pgx.Row) (*SparesRequest, error) {
	r := &SparesRequest{}
	var status string
	if err := row.Scan(&r.ID, &r.RequestedBy, &r.ItemName, &r.PartNumber, &r.ToolNumber, &r.QuantityRequested,
		&r.QuantityFulfilled, &status, &r.RequestDate, &r.ProjectID, &r.Purpose, &r.FulfilledBy, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Status = SparesRequestStatus(status)
	return r, nil
}

func loadSparesRequest(ctx context.Context, q dbtx, id int, forUpdate bool) (*SparesRequest, error) {
	query := "SELECT " + sparesColumns + " FROM spares_requests WHERE id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}
	r, err := scanSparesRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("spares request", id)
		}
		return nil, fmt.Errorf("get spares request %d: %w", id, err)
	}
	return r, nil
}

// CreateRequest stores a Pending request. The item must already be stocked.
func (s *sparesRequestService) CreateRequest(ctx context.Context, input SparesRequestInput) (*SparesRequest, error) {
	r, err := NewSparesRequest(input, s.now())
	if err != nil {
		return nil, err
	}

	if _, err := loadInventoryItem(ctx, s.pool, r.Key(), false); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &ValidationError{Problems: []string{fmt.Sprintf("%s (%s / %s) is not in inventory", r.ItemName, r.ToolNumber, r.PartNumber)}}
		}
		return nil, err
	}

	created, err := scanSparesRequest(s.pool.QueryRow(ctx, `
		INSERT INTO spares_requests (requested_by, item_name, part_number, tool_number, quantity_requested,
		                             status, request_date, project_id, purpose, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $7)
		RETURNING `+sparesColumns,
		r.RequestedBy, r.ItemName, r.PartNumber, r.ToolNumber, r.QuantityRequested,
		string(r.Status), r.RequestDate, r.ProjectID, r.Purpose,
	))
	if err != nil {
		return nil, fmt.Errorf("insert spares request: %w", err)
	}
	s.log.Info("spares request created", "request_id", created.ID, "item", created.ItemName, "quantity", created.QuantityRequested, "actor", created.RequestedBy)
	return created, nil
}

func (s *sparesRequestService) GetRequests(ctx context.Context, requestedBy string) ([]SparesRequest, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+sparesColumns+" FROM spares_requests WHERE ($1 = '' OR requested_by = $1) ORDER BY request_date DESC, id DESC",
		requestedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("query spares requests: %w", err)
	}
	defer rows.Close()

	requests := []SparesRequest{}
	for rows.Next() {
		r, err := scanSparesRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spares request: %w", err)
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

func (s *sparesRequestService) GetRequest(ctx context.Context, id int) (*SparesRequest, error) {
	return loadSparesRequest(ctx, s.pool, id, false)
}

func (s *sparesRequestService) EditRequest(ctx context.Context, id int, actor string, privileged bool, edit SparesRequestEdit) (*SparesRequest, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := loadSparesRequest(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	next, err := EditSparesRequest(*current, actor, privileged, edit, s.now())
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx,
		"UPDATE spares_requests SET quantity_requested = $2, purpose = $3, updated_at = $4 WHERE id = $1",
		id, next.QuantityRequested, next.Purpose, next.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("update spares request %d: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit spares request edit: %w", err)
	}
	return &next, nil
}

func (s *sparesRequestService) DeleteRequest(ctx context.Context, id int, actor string, privileged bool) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := loadSparesRequest(ctx, tx, id, true)
	if err != nil {
		return err
	}
	if err := CheckRequestOwner(*current, "be deleted", actor, privileged); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "DELETE FROM spares_requests WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete spares request %d: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit spares request delete: %w", err)
	}
	s.log.Info("spares request deleted", "request_id", id, "actor", actor)
	return nil
}

// Fulfill applies the decision and issues the stock delta in one transaction.
func (s *sparesRequestService) Fulfill(ctx context.Context, id int, status SparesRequestStatus, quantityFulfilled int, actor string) (*SparesRequest, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := loadSparesRequest(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}

	now := s.now()
	next, delta, err := FulfillSparesRequest(*current, status, quantityFulfilled, actor, now)
	if err != nil {
		return nil, err
	}

	if delta > 0 {
		ref := fmt.Sprintf("spares request %d", id)
		if err := issueStockTx(ctx, tx, current.Key(), current.QuantityFulfilled, next.QuantityFulfilled, ref, actor, now); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE spares_requests
		SET status = $2, quantity_fulfilled = $3, fulfilled_by = $4, updated_at = $5
		WHERE id = $1`,
		id, string(next.Status), next.QuantityFulfilled, next.FulfilledBy, now,
	); err != nil {
		return nil, fmt.Errorf("update spares request %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit fulfillment: %w", err)
	}
	s.log.Info("spares request fulfilled",
		"request_id", id, "from", current.Status, "to", next.Status, "issued", delta, "actor", actor)
	return &next, nil
}
