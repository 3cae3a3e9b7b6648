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

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO projects (name, key, description, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, p.Name, p.Key, p.Description, p.OwnerID)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	p := &entity.Project{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, key, description, owner_id, created_at, updated_at
		FROM projects WHERE id = $1
	`, id)
	if err := row.Scan(&p.ID, &p.Name, &p.Key, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]*entity.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, key, description, owner_id, created_at, updated_at
		FROM projects ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Project
	for rows.Next() {
		p := &entity.Project{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Key, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, p *entity.Project) error {
	p.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE projects SET name = $1, key = $2, description = $3, updated_at = $4
		WHERE id = $5
	`, p.Name, p.Key, p.Description, p.UpdatedAt, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type TeamRepository struct {
	pool *pgxpool.Pool
}

func NewTeamRepository(pool *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{pool: pool}
}

func (r *TeamRepository) Create(ctx context.Context, t *entity.Team) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO teams (project_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, t.ProjectID, t.Name)
	if err := row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *TeamRepository) AddMember(ctx context.Context, m *entity.TeamMember) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO team_members (team_id, user_id, team_role)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, m.TeamID, m.UserID, m.Role)
	if err := row.Scan(&m.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

var (
	_ repository.ProjectRepository = (*ProjectRepository)(nil)
	_ repository.TeamRepository    = (*TeamRepository)(nil)
)
