package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sprintdesk/internal/domain/entity"
	"sprintdesk/internal/domain/repository"
)

const workItemColumns = `id, project_id, type, title, description, status, priority,
	assignee_id, reporter_id, created_at, updated_at`

type WorkItemRepository struct {
	pool *pgxpool.Pool
}

func NewWorkItemRepository(pool *pgxpool.Pool) *WorkItemRepository {
	return &WorkItemRepository{pool: pool}
}

func scanWorkItem(row pgx.Row) (*entity.WorkItem, error) {
	w := &entity.WorkItem{}
	if err := row.Scan(&w.ID, &w.ProjectID, &w.Type, &w.Title, &w.Description,
		&w.Status, &w.Priority, &w.AssigneeID, &w.ReporterID, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return w, nil
}

func (r *WorkItemRepository) Create(ctx context.Context, w *entity.WorkItem) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO work_items (project_id, type, title, description, status, priority, assignee_id, reporter_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, w.ProjectID, w.Type, w.Title, w.Description, w.Status, w.Priority, w.AssigneeID, w.ReporterID)
	return row.Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
}

func (r *WorkItemRepository) GetByID(ctx context.Context, id string) (*entity.WorkItem, error) {
	return scanWorkItem(r.pool.QueryRow(ctx, `
		SELECT `+workItemColumns+` FROM work_items WHERE id = $1
	`, id))
}

func (r *WorkItemRepository) ListByProject(ctx context.Context, projectID string) ([]*entity.WorkItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+workItemColumns+` FROM work_items
		WHERE project_id = $1 ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.WorkItem
	for rows.Next() {
		w := &entity.WorkItem{}
		if err := rows.Scan(&w.ID, &w.ProjectID, &w.Type, &w.Title, &w.Description,
			&w.Status, &w.Priority, &w.AssigneeID, &w.ReporterID, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *WorkItemRepository) Update(ctx context.Context, w *entity.WorkItem) error {
	w.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE work_items
		SET title = $1, description = $2, status = $3, priority = $4, assignee_id = $5, updated_at = $6
		WHERE id = $7
	`, w.Title, w.Description, w.Status, w.Priority, w.AssigneeID, w.UpdatedAt, w.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *WorkItemRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM work_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.WorkItemRepository = (*WorkItemRepository)(nil)
