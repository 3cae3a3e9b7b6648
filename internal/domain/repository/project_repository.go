package repository

import (
	"context"

	"sprintdesk/internal/domain/entity"
)

type ProjectRepository interface {
	Create(ctx context.Context, p *entity.Project) error
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	List(ctx context.Context) ([]*entity.Project, error)
	Update(ctx context.Context, p *entity.Project) error
	Delete(ctx context.Context, id string) error
}

type TeamRepository interface {
	Create(ctx context.Context, t *entity.Team) error
	AddMember(ctx context.Context, m *entity.TeamMember) error
}

type WorkItemRepository interface {
	Create(ctx context.Context, w *entity.WorkItem) error
	GetByID(ctx context.Context, id string) (*entity.WorkItem, error)
	ListByProject(ctx context.Context, projectID string) ([]*entity.WorkItem, error)
	Update(ctx context.Context, w *entity.WorkItem) error
	Delete(ctx context.Context, id string) error
}
