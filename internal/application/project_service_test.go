package application

import (
	"context"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintdesk/internal/domain/entity"
	"sprintdesk/internal/domain/repository"
)

type memProjectRepo struct {
	seq   int
	byID  map[string]*entity.Project
	byKey map[string]string
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{byID: map[string]*entity.Project{}, byKey: map[string]string{}}
}

func (r *memProjectRepo) Create(_ context.Context, p *entity.Project) error {
	if _, ok := r.byKey[p.Key]; ok {
		return repository.ErrDuplicate
	}
	r.seq++
	p.ID = "p" + strconv.Itoa(r.seq)
	r.byID[p.ID] = p
	r.byKey[p.Key] = p.ID
	return nil
}

func (r *memProjectRepo) GetByID(_ context.Context, id string) (*entity.Project, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProjectRepo) List(_ context.Context) ([]*entity.Project, error) {
	out := make([]*entity.Project, 0, len(r.byID))
	for _, p := range r.byID {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memProjectRepo) Update(_ context.Context, p *entity.Project) error {
	cur, ok := r.byID[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if other, ok := r.byKey[p.Key]; ok && other != p.ID {
		return repository.ErrDuplicate
	}
	delete(r.byKey, cur.Key)
	*cur = *p
	r.byKey[p.Key] = p.ID
	return nil
}

func (r *memProjectRepo) Delete(_ context.Context, id string) error {
	p, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.byKey, p.Key)
	delete(r.byID, id)
	return nil
}

type memTeamRepo struct {
	seq     int
	teams   map[string]*entity.Team
	members map[string]struct{}
}

func newMemTeamRepo() *memTeamRepo {
	return &memTeamRepo{teams: map[string]*entity.Team{}, members: map[string]struct{}{}}
}

func (r *memTeamRepo) Create(_ context.Context, t *entity.Team) error {
	for _, cur := range r.teams {
		if cur.ProjectID == t.ProjectID && cur.Name == t.Name {
			return repository.ErrDuplicate
		}
	}
	r.seq++
	t.ID = "t" + strconv.Itoa(r.seq)
	r.teams[t.ID] = t
	return nil
}

func (r *memTeamRepo) AddMember(_ context.Context, m *entity.TeamMember) error {
	key := m.TeamID + "/" + m.UserID
	if _, ok := r.members[key]; ok {
		return repository.ErrDuplicate
	}
	r.members[key] = struct{}{}
	return nil
}

type memWorkItemRepo struct {
	seq  int
	byID map[string]*entity.WorkItem
}

func newMemWorkItemRepo() *memWorkItemRepo {
	return &memWorkItemRepo{byID: map[string]*entity.WorkItem{}}
}

func (r *memWorkItemRepo) Create(_ context.Context, w *entity.WorkItem) error {
	r.seq++
	w.ID = "w" + strconv.Itoa(r.seq)
	r.byID[w.ID] = w
	return nil
}

func (r *memWorkItemRepo) GetByID(_ context.Context, id string) (*entity.WorkItem, error) {
	w, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *memWorkItemRepo) ListByProject(_ context.Context, projectID string) ([]*entity.WorkItem, error) {
	out := []*entity.WorkItem{}
	for _, w := range r.byID {
		if w.ProjectID == projectID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memWorkItemRepo) Update(_ context.Context, w *entity.WorkItem) error {
	cur, ok := r.byID[w.ID]
	if !ok {
		return repository.ErrNotFound
	}
	*cur = *w
	return nil
}

func (r *memWorkItemRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func newProjectService() *ProjectService {
	return NewProjectService(newMemProjectRepo(), newMemTeamRepo(), newMemWorkItemRepo(), nil, nil, "", logrus.New())
}

func TestCreateProjectDuplicateKey(t *testing.T) {
	svc := newProjectService()
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, "u1", ProjectInput{Name: "Alpha", Key: "alp"})
	require.NoError(t, err)
	assert.Equal(t, "ALP", p.Key)
	assert.Equal(t, "u1", p.OwnerID)

	_, err = svc.CreateProject(ctx, "u1", ProjectInput{Name: "Other", Key: "ALP"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestProjectLifecycle(t *testing.T) {
	svc := newProjectService()
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, "u1", ProjectInput{Name: "Alpha", Key: "ALP"})
	require.NoError(t, err)

	got, err := svc.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Name)

	upd, err := svc.UpdateProject(ctx, p.ID, ProjectInput{Description: "tracker"})
	require.NoError(t, err)
	assert.Equal(t, "tracker", upd.Description)
	assert.Equal(t, "Alpha", upd.Name)

	reset, err := svc.ResetProjectKey(ctx, p.ID, "neo")
	require.NoError(t, err)
	assert.Equal(t, "NEO", reset.Key)

	require.NoError(t, svc.DeleteProject(ctx, p.ID))
	_, err = svc.GetProject(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)
	assert.ErrorIs(t, svc.DeleteProject(ctx, p.ID), ErrProjectNotFound)
}

func TestCreateWorkItemRoleGate(t *testing.T) {
	svc := newProjectService()
	ctx := context.Background()
	p, err := svc.CreateProject(ctx, "u1", ProjectInput{Name: "Alpha", Key: "ALP"})
	require.NoError(t, err)

	// EPIC and FEATURE are reserved for elevated roles
	_, err = svc.CreateWorkItem(ctx, p.ID, "u2", entity.RoleUser, WorkItemInput{Type: entity.ItemEpic, Title: "big thing"})
	assert.ErrorIs(t, err, ErrElevatedItemType)
	_, err = svc.CreateWorkItem(ctx, p.ID, "u2", entity.RoleUser, WorkItemInput{Type: entity.ItemFeature, Title: "feature"})
	assert.ErrorIs(t, err, ErrElevatedItemType)

	w, err := svc.CreateWorkItem(ctx, p.ID, "u2", entity.RoleUser, WorkItemInput{Type: entity.ItemTask, Title: "small thing"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusTodo, w.Status)

	epic, err := svc.CreateWorkItem(ctx, p.ID, "u1", entity.RoleScrumMaster, WorkItemInput{Type: entity.ItemEpic, Title: "big thing"})
	require.NoError(t, err)
	assert.Equal(t, entity.ItemEpic, epic.Type)

	_, err = svc.CreateWorkItem(ctx, p.ID, "u1", entity.RoleAdmin, WorkItemInput{Type: "SAGA", Title: "nope"})
	assert.ErrorIs(t, err, ErrInvalidItemType)
	_, err = svc.CreateWorkItem(ctx, "missing", "u1", entity.RoleAdmin, WorkItemInput{Type: entity.ItemTask, Title: "x"})
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestWorkItemUpdateAndDelete(t *testing.T) {
	svc := newProjectService()
	ctx := context.Background()
	p, err := svc.CreateProject(ctx, "u1", ProjectInput{Name: "Alpha", Key: "ALP"})
	require.NoError(t, err)
	w, err := svc.CreateWorkItem(ctx, p.ID, "u1", entity.RoleAdmin, WorkItemInput{Type: entity.ItemBug, Title: "crash"})
	require.NoError(t, err)

	upd, err := svc.UpdateWorkItem(ctx, w.ID, WorkItemInput{Status: entity.StatusInProgress, Priority: 2})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInProgress, upd.Status)
	assert.Equal(t, 2, upd.Priority)

	_, err = svc.UpdateWorkItem(ctx, w.ID, WorkItemInput{Status: "PARKED"})
	assert.ErrorIs(t, err, ErrInvalidItemStatus)

	items, err := svc.ListWorkItems(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, svc.DeleteWorkItem(ctx, w.ID))
	assert.ErrorIs(t, svc.DeleteWorkItem(ctx, w.ID), ErrWorkItemNotFound)
	_, err = svc.UpdateWorkItem(ctx, w.ID, WorkItemInput{Title: "gone"})
	assert.ErrorIs(t, err, ErrWorkItemNotFound)
}

func TestProjectCacheInvalidation(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	svc := NewProjectService(newMemProjectRepo(), newMemTeamRepo(), newMemWorkItemRepo(), rdb, nil, "", logrus.New())
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, "u1", ProjectInput{Name: "Alpha", Key: "ALP"})
	require.NoError(t, err)

	_, err = svc.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists("cache:project:"+p.ID))

	// Cached copy is served on the next read
	got, err := svc.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Name)

	_, err = svc.UpdateProject(ctx, p.ID, ProjectInput{Name: "Beta"})
	require.NoError(t, err)
	assert.False(t, mr.Exists("cache:project:"+p.ID))

	got, err = svc.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beta", got.Name)
}

func TestTeamsAndMembers(t *testing.T) {
	svc := newProjectService()
	ctx := context.Background()
	p, err := svc.CreateProject(ctx, "u1", ProjectInput{Name: "Alpha", Key: "ALP"})
	require.NoError(t, err)

	team, err := svc.CreateTeam(ctx, p.ID, "Core")
	require.NoError(t, err)
	_, err = svc.CreateTeam(ctx, p.ID, "Core")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.CreateTeam(ctx, "missing", "Core")
	assert.ErrorIs(t, err, ErrProjectNotFound)

	m, err := svc.AddTeamMember(ctx, team.ID, "u2", entity.TeamRoleMember)
	require.NoError(t, err)
	assert.Equal(t, entity.TeamRoleMember, m.Role)

	_, err = svc.AddTeamMember(ctx, team.ID, "u2", entity.TeamRoleMember)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.AddTeamMember(ctx, team.ID, "u3", entity.TeamRole("CAPTAIN"))
	assert.ErrorIs(t, err, ErrInvalidTeamRole)
}
