package project

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/amirhosseinghanipour/atelier/internal/application/authz"
	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
	domerrors "github.com/amirhosseinghanipour/atelier/internal/domain/errors"
)

var (
	_ ports.ProjectRepository         = (*fakeProjectRepo)(nil)
	_ ports.ProjectMemberRepository   = (*fakeProjMembers)(nil)
	_ ports.WorkspaceRepository       = (*fakeWorkspaceRepo)(nil)
	_ ports.WorkspaceMemberRepository = (*fakeWSMembers)(nil)
	_ ports.UserRepository            = (*fakeUsers)(nil)
)

type fakeProjectRepo struct {
	projects map[string]*domain.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: map[string]*domain.Project{}}
}

func (r *fakeProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	cp := *p
	r.projects[p.ID.String()] = &cp
	return nil
}

func (r *fakeProjectRepo) GetByID(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	p, ok := r.projects[id.String()]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProjectRepo) ListByWorkspace(ctx context.Context, workspaceID domain.WorkspaceID) ([]*domain.Project, error) {
	var out []*domain.Project
	for _, p := range r.projects {
		if p.WorkspaceID == workspaceID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeProjectRepo) Update(ctx context.Context, id domain.ProjectID, name, description string) error {
	if p, ok := r.projects[id.String()]; ok {
		p.Name, p.Description = name, description
	}
	return nil
}

func (r *fakeProjectRepo) Delete(ctx context.Context, id domain.ProjectID) error {
	delete(r.projects, id.String())
	return nil
}

type fakeProjMembers struct {
	roles map[string]domain.ProjectRole
}

func newFakeProjMembers() *fakeProjMembers {
	return &fakeProjMembers{roles: map[string]domain.ProjectRole{}}
}

func projKey(p domain.ProjectID, u domain.UserID) string { return p.String() + "|" + u.String() }

func (r *fakeProjMembers) Add(ctx context.Context, m *domain.ProjectMember) error {
	if _, ok := r.roles[projKey(m.ProjectID, m.UserID)]; ok {
		return domerrors.ErrAlreadyMember
	}
	r.roles[projKey(m.ProjectID, m.UserID)] = m.Role
	return nil
}

func (r *fakeProjMembers) GetRole(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (domain.ProjectRole, bool, error) {
	role, ok := r.roles[projKey(projectID, userID)]
	return role, ok, nil
}

func (r *fakeProjMembers) IsMember(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (bool, error) {
	_, ok := r.roles[projKey(projectID, userID)]
	return ok, nil
}

func (r *fakeProjMembers) UpdateRole(ctx context.Context, projectID domain.ProjectID, userID domain.UserID, role domain.ProjectRole) error {
	r.roles[projKey(projectID, userID)] = role
	return nil
}

func (r *fakeProjMembers) Remove(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) error {
	delete(r.roles, projKey(projectID, userID))
	return nil
}

func (r *fakeProjMembers) ListMembers(ctx context.Context, projectID domain.ProjectID) ([]*domain.ProjectMemberRecord, error) {
	var out []*domain.ProjectMemberRecord
	for key, role := range r.roles {
		if len(key) > 36 && key[:36] == projectID.String() {
			out = append(out, &domain.ProjectMemberRecord{ProjectMember: domain.ProjectMember{
				ProjectID: projectID,
				Role:      role,
			}})
		}
	}
	return out, nil
}

type fakeWSMembers struct {
	roles map[string]domain.WorkspaceRole
}

func newFakeWSMembers() *fakeWSMembers {
	return &fakeWSMembers{roles: map[string]domain.WorkspaceRole{}}
}

func wsKey(w domain.WorkspaceID, u domain.UserID) string { return w.String() + "|" + u.String() }

func (r *fakeWSMembers) put(w domain.WorkspaceID, u domain.UserID, role domain.WorkspaceRole) {
	r.roles[wsKey(w, u)] = role
}

func (r *fakeWSMembers) Add(ctx context.Context, m *domain.WorkspaceMember) error {
	r.roles[wsKey(m.WorkspaceID, m.UserID)] = m.Role
	return nil
}

func (r *fakeWSMembers) GetRole(ctx context.Context, workspaceID domain.WorkspaceID, userID domain.UserID) (domain.WorkspaceRole, bool, error) {
	role, ok := r.roles[wsKey(workspaceID, userID)]
	return role, ok, nil
}

func (r *fakeWSMembers) IsMember(ctx context.Context, workspaceID domain.WorkspaceID, userID domain.UserID) (bool, error) {
	_, ok := r.roles[wsKey(workspaceID, userID)]
	return ok, nil
}

func (r *fakeWSMembers) UpdateRole(ctx context.Context, workspaceID domain.WorkspaceID, userID domain.UserID, role domain.WorkspaceRole) error {
	r.roles[wsKey(workspaceID, userID)] = role
	return nil
}

func (r *fakeWSMembers) Remove(ctx context.Context, workspaceID domain.WorkspaceID, userID domain.UserID) error {
	delete(r.roles, wsKey(workspaceID, userID))
	return nil
}

func (r *fakeWSMembers) ListMembers(ctx context.Context, workspaceID domain.WorkspaceID) ([]*domain.MemberRecord, error) {
	return nil, nil
}

type fakeWorkspaceRepo struct {
	workspaces map[string]*domain.Workspace
}

func newFakeWorkspaceRepo() *fakeWorkspaceRepo {
	return &fakeWorkspaceRepo{workspaces: map[string]*domain.Workspace{}}
}

func (r *fakeWorkspaceRepo) CreateWithOwner(ctx context.Context, ws *domain.Workspace) error {
	cp := *ws
	r.workspaces[ws.ID.String()] = &cp
	return nil
}

func (r *fakeWorkspaceRepo) GetByID(ctx context.Context, id domain.WorkspaceID) (*domain.Workspace, error) {
	ws, ok := r.workspaces[id.String()]
	if !ok {
		return nil, nil
	}
	cp := *ws
	return &cp, nil
}

func (r *fakeWorkspaceRepo) ListForUser(ctx context.Context, userID domain.UserID) ([]*domain.Workspace, error) {
	return nil, nil
}

func (r *fakeWorkspaceRepo) ListAll(ctx context.Context) ([]*domain.Workspace, error) {
	return nil, nil
}

func (r *fakeWorkspaceRepo) UpdateName(ctx context.Context, id domain.WorkspaceID, name string) error {
	return nil
}

func (r *fakeWorkspaceRepo) Delete(ctx context.Context, id domain.WorkspaceID) error {
	delete(r.workspaces, id.String())
	return nil
}

type fakeUsers struct {
	users map[string]*domain.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{users: map[string]*domain.User{}} }

func (r *fakeUsers) add() domain.Principal {
	id := domain.NewUserID(uuid.New())
	r.users[id.String()] = &domain.User{ID: id, GlobalStatus: domain.StatusActive}
	return domain.Principal{UserID: id, GlobalStatus: domain.StatusActive}
}

func (r *fakeUsers) Create(ctx context.Context, u *domain.User) error { return nil }

func (r *fakeUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, nil
}

func (r *fakeUsers) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	u, ok := r.users[id.String()]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (r *fakeUsers) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	return nil, nil
}

func (r *fakeUsers) UpdatePassword(ctx context.Context, id domain.UserID, hash string) error {
	return nil
}

func (r *fakeUsers) UpdateStatus(ctx context.Context, id domain.UserID, status domain.GlobalStatus) error {
	return nil
}

type fixture struct {
	svc   *Service
	users *fakeUsers
	ws    *fakeWSMembers
	pm    *fakeProjMembers

	workspaceID domain.WorkspaceID

	owner    domain.Principal
	member   domain.Principal
	viewer   domain.Principal
	outsider domain.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:       newFakeUsers(),
		ws:          newFakeWSMembers(),
		pm:          newFakeProjMembers(),
		workspaceID: domain.NewWorkspaceID(uuid.New()),
	}
	f.owner = f.users.add()
	f.member = f.users.add()
	f.viewer = f.users.add()
	f.outsider = f.users.add()

	f.ws.put(f.workspaceID, f.owner.UserID, domain.RoleOwner)
	f.ws.put(f.workspaceID, f.member.UserID, domain.RoleMember)
	f.ws.put(f.workspaceID, f.viewer.UserID, domain.RoleViewer)

	workspaces := newFakeWorkspaceRepo()
	_ = workspaces.CreateWithOwner(context.Background(), &domain.Workspace{
		ID:        f.workspaceID,
		Name:      "studio",
		OwnerID:   f.owner.UserID,
		CreatedAt: time.Now(),
	})

	evaluator := authz.NewEvaluator(f.ws, f.pm)
	f.svc = NewService(newFakeProjectRepo(), f.pm, workspaces, f.ws, f.users, evaluator)
	return f
}

func (f *fixture) seedProject(t *testing.T) *domain.Project {
	t.Helper()
	p, err := f.svc.Create(context.Background(), f.member, f.workspaceID, "launch", "Q4 launch plan")
	if err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return p
}

func TestCreateProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.seedProject(t)
	if p.WorkspaceID != f.workspaceID {
		t.Errorf("project workspace = %v, want %v", p.WorkspaceID, f.workspaceID)
	}

	// Workspace VIEWERs do not create projects.
	if _, err := f.svc.Create(ctx, f.viewer, f.workspaceID, "x", ""); !errors.Is(err, domerrors.ErrAccessDenied) {
		t.Errorf("viewer create: got %v, want ErrAccessDenied", err)
	}
	if _, err := f.svc.Create(ctx, f.outsider, f.workspaceID, "x", ""); !errors.Is(err, domerrors.ErrAccessDenied) {
		t.Errorf("outsider create: got %v, want ErrAccessDenied", err)
	}
	ghost := domain.NewWorkspaceID(uuid.New())
	if _, err := f.svc.Create(ctx, f.owner, ghost, "x", ""); !errors.Is(err, domerrors.ErrWorkspaceNotFound) {
		t.Errorf("create in missing workspace: got %v, want ErrWorkspaceNotFound", err)
	}
}

// A workspace VIEWER sees a project in the listing but reads its content
// only with a project membership of their own.
func TestViewerNeedsProjectRoleToRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProject(t)

	list, err := f.svc.ListByWorkspace(ctx, f.viewer, f.workspaceID)
	if err != nil {
		t.Fatalf("viewer list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("listed projects = %d, want 1", len(list))
	}

	if _, err := f.svc.Get(ctx, f.viewer, p.ID); !errors.Is(err, domerrors.ErrAccessDenied) {
		t.Fatalf("viewer read without project role: got %v, want ErrAccessDenied", err)
	}
	if _, err := f.svc.AddMember(ctx, f.owner, p.ID, f.viewer.UserID, domain.RoleProjectViewer); err != nil {
		t.Fatalf("add project viewer: %v", err)
	}
	if _, err := f.svc.Get(ctx, f.viewer, p.ID); err != nil {
		t.Errorf("viewer read with project role: %v", err)
	}
	// OWNER and MEMBER read without any project membership.
	if _, err := f.svc.Get(ctx, f.member, p.ID); err != nil {
		t.Errorf("member read: %v", err)
	}
}

func TestProjectMutationRights(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProject(t)

	// The member holds no project role yet still updates: workspace MEMBER
	// covers project updates. Delete is owner-or-lead only.
	if _, err := f.svc.Update(ctx, f.member, p.ID, "renamed", ""); err != nil {
		t.Fatalf("member update: %v", err)
	}
	if err := f.svc.Delete(ctx, f.member, p.ID); !errors.Is(err, domerrors.ErrAccessDenied) {
		t.Fatalf("member delete: got %v, want ErrAccessDenied", err)
	}

	// PROJECT_LEAD grants delete even to a workspace VIEWER.
	if _, err := f.svc.AddMember(ctx, f.owner, p.ID, f.viewer.UserID, domain.RoleProjectLead); err != nil {
		t.Fatalf("add lead: %v", err)
	}
	if err := f.svc.Delete(ctx, f.viewer, p.ID); err != nil {
		t.Fatalf("lead delete: %v", err)
	}
}

func TestAddProjectMemberRequiresWorkspaceMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProject(t)

	_, err := f.svc.AddMember(ctx, f.owner, p.ID, f.outsider.UserID, domain.RoleContributor)
	if !errors.Is(err, domerrors.ErrNotWorkspaceMember) {
		t.Fatalf("outsider as project member: got %v, want ErrNotWorkspaceMember", err)
	}

	if _, err := f.svc.AddMember(ctx, f.owner, p.ID, f.member.UserID, "SUPERLEAD"); !errors.Is(err, domerrors.ErrInvalidRole) {
		t.Errorf("invalid role: got %v, want ErrInvalidRole", err)
	}
	if _, err := f.svc.AddMember(ctx, f.owner, p.ID, domain.NewUserID(uuid.New()), domain.RoleContributor); !errors.Is(err, domerrors.ErrUserNotFound) {
		t.Errorf("unknown user: got %v, want ErrUserNotFound", err)
	}

	if _, err := f.svc.AddMember(ctx, f.owner, p.ID, f.member.UserID, domain.RoleContributor); err != nil {
		t.Fatalf("add contributor: %v", err)
	}
	if _, err := f.svc.AddMember(ctx, f.owner, p.ID, f.member.UserID, domain.RoleContributor); !errors.Is(err, domerrors.ErrAlreadyMember) {
		t.Errorf("duplicate project member: got %v, want ErrAlreadyMember", err)
	}

	// A workspace MEMBER without a lead role does not manage membership.
	if _, err := f.svc.AddMember(ctx, f.member, p.ID, f.viewer.UserID, domain.RoleContributor); !errors.Is(err, domerrors.ErrAccessDenied) {
		t.Errorf("non-lead managing members: got %v, want ErrAccessDenied", err)
	}
}

func TestProjectMemberLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProject(t)

	if _, err := f.svc.AddMember(ctx, f.owner, p.ID, f.member.UserID, domain.RoleContributor); err != nil {
		t.Fatalf("add: %v", err)
	}
	m, err := f.svc.UpdateMemberRole(ctx, f.owner, p.ID, f.member.UserID, domain.RoleProjectLead)
	if err != nil {
		t.Fatalf("update role: %v", err)
	}
	if m.Role != domain.RoleProjectLead {
		t.Errorf("role = %q, want PROJECT_LEAD", m.Role)
	}

	if err := f.svc.RemoveMember(ctx, f.owner, p.ID, f.member.UserID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := f.svc.UpdateMemberRole(ctx, f.owner, p.ID, f.member.UserID, domain.RoleContributor); !errors.Is(err, domerrors.ErrMemberNotFound) {
		t.Errorf("update removed member: got %v, want ErrMemberNotFound", err)
	}
	if err := f.svc.RemoveMember(ctx, f.owner, p.ID, f.member.UserID); !errors.Is(err, domerrors.ErrMemberNotFound) {
		t.Errorf("remove removed member: got %v, want ErrMemberNotFound", err)
	}
}

func TestProjectNotFound(t *testing.T) {
	f := newFixture(t)
	ghost := domain.NewProjectID(uuid.New())
	if _, err := f.svc.Get(context.Background(), f.owner, ghost); !errors.Is(err, domerrors.ErrProjectNotFound) {
		t.Errorf("get missing project: got %v, want ErrProjectNotFound", err)
	}
}
