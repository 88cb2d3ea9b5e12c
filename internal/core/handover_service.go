package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"tooling-procurement/internal/logger"
)

type toolHandoverService struct {
	pool          *pgxpool.Pool
	log           *logger.Logger
	minStockRatio decimal.Decimal
	now           func() time.Time
}

// NewToolHandoverService constructs a ToolHandoverService backed by PostgreSQL.
// minStockRatio sets the minimum level of items first stocked by an approval.
func NewToolHandoverService(pool *pgxpool.Pool, log *logger.Logger, minStockRatio decimal.Decimal) ToolHandoverService {
	return &toolHandoverService{pool: pool, log: log, minStockRatio: minStockRatio, now: time.Now}
}

const handoverColumns = `id, handover_number, project_id, pr_id, part_number, tool_number, tool_set,
	all_items, critical_spares, status, inspected_by, inspection_date, remarks, created_at`

func scanHandover(row pgx.Row) (*ToolHandoverRecord, error) {
	h := &ToolHandoverRecord{}
	var items, spares []byte
	var status string
	if err := row.Scan(&h.ID, &h.HandoverNumber, &h.ProjectID, &h.PRID, &h.PartNumber, &h.ToolNumber, &h.ToolSet,
		&items, &spares, &status, &h.InspectedBy, &h.InspectionDate, &h.Remarks, &h.CreatedAt); err != nil {
		return nil, err
	}
	h.Status = HandoverStatus(status)
	if err := json.Unmarshal(items, &h.AllItems); err != nil {
		return nil, fmt.Errorf("decode handover %d items: %w", h.ID, err)
	}
	if err := json.Unmarshal(spares, &h.CriticalSpares); err != nil {
		return nil, fmt.Errorf("decode handover %d spares: %w", h.ID, err)
	}
	return h, nil
}

// insertHandover stores h unless its PR already has one. The caller must hold
// the PR row lock so the handover number is only drawn when the row is written.
func insertHandover(ctx context.Context, tx pgx.Tx, h *ToolHandoverRecord) (bool, error) {
	var exists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM tool_handovers WHERE pr_id = $1)", h.PRID,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check handover for PR %d: %w", h.PRID, err)
	}
	if exists {
		return false, nil
	}

	number, err := NextNumber(ctx, tx, SequenceHandover, h.CreatedAt.Year())
	if err != nil {
		return false, err
	}
	items, err := json.Marshal(h.AllItems)
	if err != nil {
		return false, fmt.Errorf("encode handover items: %w", err)
	}
	spares, err := json.Marshal(h.CriticalSpares)
	if err != nil {
		return false, fmt.Errorf("encode handover spares: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO tool_handovers (handover_number, project_id, pr_id, part_number, tool_number, tool_set,
		                            all_items, critical_spares, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (pr_id) DO NOTHING
		RETURNING id`,
		number, h.ProjectID, h.PRID, h.PartNumber, h.ToolNumber, h.ToolSet,
		items, spares, string(h.Status), h.CreatedAt,
	).Scan(&h.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("insert handover for PR %d: %w", h.PRID, err)
	}
	h.HandoverNumber = number
	return true, nil
}

// SyncHandovers backfills handovers for Items Received PRs that lack one.
func (s *toolHandoverService) SyncHandovers(ctx context.Context) ([]ToolHandoverRecord, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id FROM purchase_requisitions pr
		WHERE status = $1
		  AND NOT EXISTS (SELECT 1 FROM tool_handovers th WHERE th.pr_id = pr.id)
		ORDER BY id`, string(PRStatusItemsReceived))
	if err != nil {
		return nil, fmt.Errorf("query received PRs: %w", err)
	}
	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan PR id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read received PRs: %w", err)
	}

	var prs []PurchaseRequisition
	projects := map[int]Project{}
	for _, id := range ids {
		pr, err := loadPR(ctx, tx, id, true)
		if err != nil {
			return nil, err
		}
		prs = append(prs, *pr)
		if _, ok := projects[pr.ProjectID]; !ok {
			p, err := loadProject(ctx, tx, pr.ProjectID)
			if err != nil {
				return nil, err
			}
			projects[p.ID] = *p
		}
	}

	var created []ToolHandoverRecord
	for _, h := range EnsureHandovers(prs, projects, nil, s.now()) {
		ok, err := insertHandover(ctx, tx, &h)
		if err != nil {
			return nil, err
		}
		if ok {
			created = append(created, h)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit handover sync: %w", err)
	}
	if len(created) > 0 {
		s.log.Info("handovers synced", "created", len(created))
	}
	return created, nil
}

func (s *toolHandoverService) GetHandovers(ctx context.Context, status HandoverStatus) ([]ToolHandoverRecord, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+handoverColumns+" FROM tool_handovers WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC, id DESC",
		string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("query handovers: %w", err)
	}
	defer rows.Close()

	handovers := []ToolHandoverRecord{}
	for rows.Next() {
		h, err := scanHandover(rows)
		if err != nil {
			return nil, fmt.Errorf("scan handover: %w", err)
		}
		handovers = append(handovers, *h)
	}
	return handovers, rows.Err()
}

func (s *toolHandoverService) GetHandover(ctx context.Context, id int) (*ToolHandoverRecord, error) {
	return loadHandover(ctx, s.pool, id, false)
}

func loadHandover(ctx context.Context, q dbtx, id int, forUpdate bool) (*ToolHandoverRecord, error) {
	query := "SELECT " + handoverColumns + " FROM tool_handovers WHERE id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}
	h, err := scanHandover(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("handover", id)
		}
		return nil, fmt.Errorf("get handover %d: %w", id, err)
	}
	return h, nil
}

// Inspect records the decision; approval folds the handover into inventory
// before the transaction commits.
func (s *toolHandoverService) Inspect(ctx context.Context, id int, decision InspectionDecision, inspector, remarks string) (*ToolHandoverRecord, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := loadHandover(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}

	now := s.now()
	next, err := Inspect(*current, decision, inspector, remarks, now)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE tool_handovers
		SET status = $2, inspected_by = $3, inspection_date = $4, remarks = $5
		WHERE id = $1`,
		id, string(next.Status), next.InspectedBy, next.InspectionDate, next.Remarks,
	); err != nil {
		return nil, fmt.Errorf("update handover %d: %w", id, err)
	}

	var additions []StockAddition
	if next.Status == HandoverApproved {
		if additions, err = foldHandoverTx(ctx, tx, next, s.minStockRatio, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit inspection: %w", err)
	}
	s.log.Info("handover inspected", "handover_id", id, "decision", decision, "inspector", inspector, "stock_additions", len(additions))
	return &next, nil
}
