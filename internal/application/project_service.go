package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"sprintdesk/internal/domain/entity"
	"sprintdesk/internal/domain/repository"
	"sprintdesk/pkg/helpers"
)

var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrWorkItemNotFound  = errors.New("work item not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidItemType   = errors.New("invalid work item type")
	ErrInvalidItemStatus = errors.New("invalid work item status")
	ErrInvalidTeamRole   = errors.New("invalid team role")
	ErrElevatedItemType  = errors.New("item type requires an elevated role")
)

const projectCacheTTL = 5 * time.Minute

func keyProjectCache(id string) string { return "cache:project:" + id }

// ProjectService implements the tracker CRUD behind the authorization gate.
type ProjectService struct {
	Projects repository.ProjectRepository
	Teams    repository.TeamRepository
	Items    repository.WorkItemRepository

	Redis   *redis.Client
	ES      *elasticsearch.Client
	ESIndex string
	Logger  *logrus.Logger
}

func NewProjectService(projects repository.ProjectRepository, teams repository.TeamRepository, items repository.WorkItemRepository, rdb *redis.Client, es *elasticsearch.Client, esIndex string, logger *logrus.Logger) *ProjectService {
	return &ProjectService{Projects: projects, Teams: teams, Items: items, Redis: rdb, ES: es, ESIndex: esIndex, Logger: logger}
}

type ProjectInput struct {
	Name        string
	Key         string
	Description string
}

func (s *ProjectService) CreateProject(ctx context.Context, ownerID string, in ProjectInput) (*entity.Project, error) {
	p := &entity.Project{
		Name:        in.Name,
		Key:         strings.ToUpper(in.Key),
		Description: in.Description,
		OwnerID:     ownerID,
	}
	if err := s.Projects.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]*entity.Project, error) {
	return s.Projects.List(ctx)
}

func (s *ProjectService) GetProject(ctx context.Context, id string) (*entity.Project, error) {
	if s.Redis != nil {
		var cached entity.Project
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, keyProjectCache(id), &cached); err == nil && ok {
			return &cached, nil
		}
	}
	p, err := s.Projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, keyProjectCache(id), p, projectCacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("project_id", id).Warn("project cache write failed")
		}
	}
	return p, nil
}

func (s *ProjectService) invalidateProject(ctx context.Context, id string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, keyProjectCache(id)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("project_id", id).Warn("project cache invalidate failed")
	}
}

func (s *ProjectService) UpdateProject(ctx context.Context, id string, in ProjectInput) (*entity.Project, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		p.Name = in.Name
	}
	if in.Key != "" {
		p.Key = strings.ToUpper(in.Key)
	}
	if in.Description != "" {
		p.Description = in.Description
	}
	if err := s.Projects.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	s.invalidateProject(ctx, id)
	return p, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	if err := s.Projects.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return err
	}
	s.invalidateProject(ctx, id)
	return nil
}

// ResetProjectKey replaces the project key, used when item numbering restarts.
func (s *ProjectService) ResetProjectKey(ctx context.Context, id, newKey string) (*entity.Project, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Key = strings.ToUpper(newKey)
	if err := s.Projects.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	s.invalidateProject(ctx, id)
	return p, nil
}

func (s *ProjectService) CreateTeam(ctx context.Context, projectID, name string) (*entity.Team, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	t := &entity.Team{ProjectID: projectID, Name: name}
	if err := s.Teams.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return t, nil
}

func (s *ProjectService) AddTeamMember(ctx context.Context, teamID, userID string, role entity.TeamRole) (*entity.TeamMember, error) {
	if !role.Valid() {
		return nil, ErrInvalidTeamRole
	}
	m := &entity.TeamMember{TeamID: teamID, UserID: userID, Role: role}
	if err := s.Teams.AddMember(ctx, m); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return m, nil
}

type WorkItemInput struct {
	Type        entity.WorkItemType
	Title       string
	Description string
	Status      entity.WorkItemStatus
	Priority    int
	AssigneeID  *string
}

// CreateWorkItem enforces the type restriction server-side: EPIC and FEATURE
// require an elevated global role.
func (s *ProjectService) CreateWorkItem(ctx context.Context, projectID, reporterID string, reporterRole entity.Role, in WorkItemInput) (*entity.WorkItem, error) {
	if !in.Type.Valid() {
		return nil, ErrInvalidItemType
	}
	if in.Type.RequiresElevatedRole() && !reporterRole.Elevated() {
		return nil, ErrElevatedItemType
	}
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = entity.StatusTodo
	}
	if !status.Valid() {
		return nil, ErrInvalidItemStatus
	}
	w := &entity.WorkItem{
		ProjectID:   projectID,
		Type:        in.Type,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Priority:    in.Priority,
		AssigneeID:  in.AssigneeID,
		ReporterID:  reporterID,
	}
	if err := s.Items.Create(ctx, w); err != nil {
		return nil, err
	}
	_ = s.indexWorkItem(ctx, w)
	return w, nil
}

func (s *ProjectService) ListWorkItems(ctx context.Context, projectID string) ([]*entity.WorkItem, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.Items.ListByProject(ctx, projectID)
}

func (s *ProjectService) UpdateWorkItem(ctx context.Context, id string, in WorkItemInput) (*entity.WorkItem, error) {
	w, err := s.Items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkItemNotFound
		}
		return nil, err
	}
	if in.Title != "" {
		w.Title = in.Title
	}
	if in.Description != "" {
		w.Description = in.Description
	}
	if in.Status != "" {
		if !in.Status.Valid() {
			return nil, ErrInvalidItemStatus
		}
		w.Status = in.Status
	}
	if in.Priority != 0 {
		w.Priority = in.Priority
	}
	if in.AssigneeID != nil {
		w.AssigneeID = in.AssigneeID
	}
	if err := s.Items.Update(ctx, w); err != nil {
		return nil, err
	}
	_ = s.indexWorkItem(ctx, w)
	return w, nil
}

func (s *ProjectService) DeleteWorkItem(ctx context.Context, id string) error {
	if err := s.Items.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkItemNotFound
		}
		return err
	}
	s.deleteWorkItemIndex(ctx, id)
	return nil
}

func (s *ProjectService) indexWorkItem(ctx context.Context, w *entity.WorkItem) error {
	if s.ES == nil || s.ESIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":          w.ID,
		"project_id":  w.ProjectID,
		"type":        w.Type,
		"title":       w.Title,
		"description": w.Description,
		"status":      w.Status,
		"updated_at":  w.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: w.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("item_id", w.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("item_id", w.ID).Warn("es index response error")
	}
	return nil
}

func (s *ProjectService) deleteWorkItemIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("item_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// SearchWorkItems performs a multi_match query on title and description.
func (s *ProjectService) SearchWorkItems(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
