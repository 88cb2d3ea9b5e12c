package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type projectService struct {
	pool *pgxpool.Pool
}

// NewProjectService constructs a ProjectService backed by PostgreSQL.
func NewProjectService(pool *pgxpool.Pool) ProjectService {
	return &projectService{pool: pool}
}

const projectColumns = `id, customer_po, part_number, tool_number, price,
	to_char(target_date, 'YYYY-MM-DD'), status, created_by, created_at`

func scanProject(row pgx.Row) (*Project, error) {
	p := &Project{}
	if err := row.Scan(&p.ID, &p.CustomerPO, &p.PartNumber, &p.ToolNumber, &p.Price,
		&p.TargetDate, &p.Status, &p.CreatedBy, &p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *projectService) CreateProject(ctx context.Context, input ProjectInput) (*Project, error) {
	input.CustomerPO = strings.TrimSpace(input.CustomerPO)
	input.PartNumber = strings.TrimSpace(input.PartNumber)
	input.ToolNumber = strings.TrimSpace(input.ToolNumber)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var targetDate *string
	if input.TargetDate != "" {
		targetDate = &input.TargetDate
	}

	p, err := scanProject(s.pool.QueryRow(ctx, `
		INSERT INTO projects (customer_po, part_number, tool_number, price, target_date, status, created_by)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7)
		RETURNING `+projectColumns,
		input.CustomerPO, input.PartNumber, input.ToolNumber, input.Price, targetDate,
		ProjectStatusActive, input.CreatedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

func (s *projectService) GetProject(ctx context.Context, id int) (*Project, error) {
	return loadProject(ctx, s.pool, id)
}

func loadProject(ctx context.Context, q dbtx, id int) (*Project, error) {
	p, err := scanProject(q.QueryRow(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("project", id)
		}
		return nil, fmt.Errorf("get project %d: %w", id, err)
	}
	return p, nil
}

func (s *projectService) GetProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+projectColumns+" FROM projects ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}
