package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// dbtx is satisfied by *pgxpool.Pool and pgx.Tx so reads can run inside or
// outside a transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// loadPR reads the full PR aggregate. With forUpdate the header row stays
// locked until the transaction ends.
func loadPR(ctx context.Context, q dbtx, id int, forUpdate bool) (*PurchaseRequisition, error) {
	query := `
		SELECT id, pr_number, project_id, pr_type, status, created_by, created_at, updated_at,
		       approver_comments, awarded_supplier, mod_ref_reason, items_received_date
		FROM purchase_requisitions
		WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	pr := &PurchaseRequisition{}
	var prType, status string
	err := q.QueryRow(ctx, query, id).Scan(
		&pr.ID, &pr.PRNumber, &pr.ProjectID, &prType, &status, &pr.CreatedBy, &pr.CreatedAt, &pr.UpdatedAt,
		&pr.ApproverComments, &pr.AwardedSupplier, &pr.ModRefReason, &pr.ItemsReceivedDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("purchase requisition", id)
		}
		return nil, fmt.Errorf("fetch purchase requisition %d: %w", id, err)
	}
	pr.PRType = PRType(prType)
	pr.Status = PRStatus(status)

	if pr.Items, err = loadPRItems(ctx, q, id); err != nil {
		return nil, err
	}
	if pr.Suppliers, err = loadPRSuppliers(ctx, q, id); err != nil {
		return nil, err
	}
	if pr.CriticalSpares, err = loadCriticalSpares(ctx, q, id); err != nil {
		return nil, err
	}
	if pr.Quotations, err = loadQuotations(ctx, q, id); err != nil {
		return nil, err
	}
	return pr, nil
}

func loadPRItems(ctx context.Context, q dbtx, prID int) ([]PRItem, error) {
	rows, err := q.Query(ctx, `
		SELECT item_id, name, specification, quantity, requirements, price
		FROM pr_items
		WHERE pr_id = $1
		ORDER BY line_number`, prID)
	if err != nil {
		return nil, fmt.Errorf("query PR %d items: %w", prID, err)
	}
	defer rows.Close()

	items := []PRItem{}
	for rows.Next() {
		var it PRItem
		var price decimal.NullDecimal
		if err := rows.Scan(&it.ID, &it.Name, &it.Specification, &it.Quantity, &it.Requirements, &price); err != nil {
			return nil, fmt.Errorf("scan PR item: %w", err)
		}
		if price.Valid {
			p := price.Decimal
			it.Price = &p
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func loadPRSuppliers(ctx context.Context, q dbtx, prID int) ([]string, error) {
	rows, err := q.Query(ctx, "SELECT supplier_code FROM pr_suppliers WHERE pr_id = $1 ORDER BY position", prID)
	if err != nil {
		return nil, fmt.Errorf("query PR %d suppliers: %w", prID, err)
	}
	defer rows.Close()

	suppliers := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan PR supplier: %w", err)
		}
		suppliers = append(suppliers, code)
	}
	return suppliers, rows.Err()
}

func loadCriticalSpares(ctx context.Context, q dbtx, prID int) ([]CriticalSpare, error) {
	rows, err := q.Query(ctx, "SELECT item_id, quantity FROM pr_critical_spares WHERE pr_id = $1 ORDER BY position", prID)
	if err != nil {
		return nil, fmt.Errorf("query PR %d critical spares: %w", prID, err)
	}
	defer rows.Close()

	spares := []CriticalSpare{}
	for rows.Next() {
		var cs CriticalSpare
		if err := rows.Scan(&cs.ItemID, &cs.Quantity); err != nil {
			return nil, fmt.Errorf("scan critical spare: %w", err)
		}
		spares = append(spares, cs)
	}
	return spares, rows.Err()
}

func loadQuotations(ctx context.Context, q dbtx, prID int) ([]Quotation, error) {
	rows, err := q.Query(ctx, `
		SELECT id, supplier, price, delivery_terms, delivery_date, status, notes
		FROM quotations
		WHERE pr_id = $1
		ORDER BY id`, prID)
	if err != nil {
		return nil, fmt.Errorf("query PR %d quotations: %w", prID, err)
	}
	quotations := []Quotation{}
	index := map[int]int{}
	for rows.Next() {
		qt := Quotation{PRID: prID}
		var status string
		if err := rows.Scan(&qt.ID, &qt.Supplier, &qt.Price, &qt.DeliveryTerms, &qt.DeliveryDate, &status, &qt.Notes); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan quotation: %w", err)
		}
		qt.Status = QuotationStatus(status)
		index[qt.ID] = len(quotations)
		quotations = append(quotations, qt)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read quotations: %w", err)
	}
	if len(quotations) == 0 {
		return quotations, nil
	}

	itemRows, err := q.Query(ctx, `
		SELECT qi.quotation_id, qi.item_id, qi.item_name, qi.unit_price, qi.quantity, qi.total_price
		FROM quotation_items qi
		JOIN quotations q ON q.id = qi.quotation_id
		WHERE q.pr_id = $1
		ORDER BY qi.quotation_id, qi.line_number`, prID)
	if err != nil {
		return nil, fmt.Errorf("query quotation items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var qid int
		var qi QuotationItem
		if err := itemRows.Scan(&qid, &qi.ItemID, &qi.ItemName, &qi.UnitPrice, &qi.Quantity, &qi.TotalPrice); err != nil {
			return nil, fmt.Errorf("scan quotation item: %w", err)
		}
		if i, ok := index[qid]; ok {
			quotations[i].Items = append(quotations[i].Items, qi)
		}
	}
	return quotations, itemRows.Err()
}

// insertPRLines writes items, suppliers and critical spares of pr.
func insertPRLines(ctx context.Context, tx pgx.Tx, pr *PurchaseRequisition) error {
	for i, it := range pr.Items {
		var price any
		if it.Price != nil {
			price = *it.Price
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO pr_items (pr_id, line_number, item_id, name, specification, quantity, requirements, price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			pr.ID, i+1, it.ID, it.Name, it.Specification, it.Quantity, it.Requirements, price,
		); err != nil {
			return fmt.Errorf("insert PR item %s: %w", it.ID, err)
		}
	}
	for i, code := range pr.Suppliers {
		if _, err := tx.Exec(ctx,
			"INSERT INTO pr_suppliers (pr_id, position, supplier_code) VALUES ($1, $2, $3)",
			pr.ID, i+1, code,
		); err != nil {
			return fmt.Errorf("insert PR supplier %s: %w", code, err)
		}
	}
	for i, cs := range pr.CriticalSpares {
		if _, err := tx.Exec(ctx,
			"INSERT INTO pr_critical_spares (pr_id, item_id, position, quantity) VALUES ($1, $2, $3, $4)",
			pr.ID, cs.ItemID, i+1, cs.Quantity,
		); err != nil {
			return fmt.Errorf("insert critical spare %s: %w", cs.ItemID, err)
		}
	}
	return nil
}

// replacePRLines rewrites the editable lines of a PR.
func replacePRLines(ctx context.Context, tx pgx.Tx, pr *PurchaseRequisition) error {
	for _, stmt := range []string{
		"DELETE FROM pr_critical_spares WHERE pr_id = $1",
		"DELETE FROM pr_items WHERE pr_id = $1",
		"DELETE FROM pr_suppliers WHERE pr_id = $1",
	} {
		if _, err := tx.Exec(ctx, stmt, pr.ID); err != nil {
			return fmt.Errorf("clear PR %d lines: %w", pr.ID, err)
		}
	}
	return insertPRLines(ctx, tx, pr)
}

// savePRHeader writes the mutable header fields of pr.
func savePRHeader(ctx context.Context, tx pgx.Tx, pr *PurchaseRequisition) error {
	_, err := tx.Exec(ctx, `
		UPDATE purchase_requisitions
		SET pr_type = $2, status = $3, approver_comments = $4, awarded_supplier = $5,
		    mod_ref_reason = $6, items_received_date = $7, updated_at = $8
		WHERE id = $1`,
		pr.ID, string(pr.PRType), string(pr.Status), pr.ApproverComments, pr.AwardedSupplier,
		pr.ModRefReason, pr.ItemsReceivedDate, pr.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase requisition %d: %w", pr.ID, err)
	}
	return nil
}

// saveQuotation upserts q on (pr_id, supplier) and rewrites its items.
func saveQuotation(ctx context.Context, tx pgx.Tx, q Quotation) (int, error) {
	var id int
	err := tx.QueryRow(ctx, `
		INSERT INTO quotations (pr_id, supplier, price, delivery_terms, delivery_date, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (pr_id, supplier) DO UPDATE
		SET price = EXCLUDED.price, delivery_terms = EXCLUDED.delivery_terms,
		    delivery_date = EXCLUDED.delivery_date, status = EXCLUDED.status,
		    notes = EXCLUDED.notes, updated_at = NOW()
		RETURNING id`,
		q.PRID, q.Supplier, q.Price, q.DeliveryTerms, q.DeliveryDate, string(q.Status), q.Notes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert quotation from %s: %w", q.Supplier, err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM quotation_items WHERE quotation_id = $1", id); err != nil {
		return 0, fmt.Errorf("clear quotation %d items: %w", id, err)
	}
	for i, qi := range q.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO quotation_items (quotation_id, line_number, item_id, item_name, unit_price, quantity, total_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, i+1, qi.ItemID, qi.ItemName, qi.UnitPrice, qi.Quantity, qi.TotalPrice,
		); err != nil {
			return 0, fmt.Errorf("insert quotation item %s: %w", qi.ItemID, err)
		}
	}
	return id, nil
}

// saveQuotationStatuses writes quotation statuses. Rejections go first so the
// single-Selected index never sees two rows at once.
func saveQuotationStatuses(ctx context.Context, tx pgx.Tx, pr *PurchaseRequisition) error {
	ordered := make([]Quotation, 0, len(pr.Quotations))
	for _, q := range pr.Quotations {
		if q.Status != QuotationSelected {
			ordered = append(ordered, q)
		}
	}
	for _, q := range pr.Quotations {
		if q.Status == QuotationSelected {
			ordered = append(ordered, q)
		}
	}
	for _, q := range ordered {
		if _, err := tx.Exec(ctx,
			"UPDATE quotations SET status = $2, updated_at = NOW() WHERE id = $1",
			q.ID, string(q.Status),
		); err != nil {
			return fmt.Errorf("update quotation %d status: %w", q.ID, err)
		}
	}
	return nil
}

// checkReferences verifies the project exists and every supplier is active.
func checkReferences(ctx context.Context, q dbtx, projectID int, suppliers []string) error {
	var projectExists bool
	if err := q.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)", projectID,
	).Scan(&projectExists); err != nil {
		return fmt.Errorf("validate project: %w", err)
	}

	ve := &ValidationError{}
	if !projectExists {
		ve.add("project %d does not exist", projectID)
	}

	rows, err := q.Query(ctx, "SELECT code FROM suppliers WHERE code = ANY($1) AND is_active = true", suppliers)
	if err != nil {
		return fmt.Errorf("validate suppliers: %w", err)
	}
	known := map[string]bool{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			rows.Close()
			return fmt.Errorf("scan supplier code: %w", err)
		}
		known[code] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("validate suppliers: %w", err)
	}
	for _, s := range suppliers {
		if !known[s] {
			ve.add("supplier %s is unknown or inactive", s)
		}
	}
	return ve.orNil()
}
