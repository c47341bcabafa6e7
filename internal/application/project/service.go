package project

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/amirhosseinghanipour/atelier/internal/application/authz"
	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
	domerrors "github.com/amirhosseinghanipour/atelier/internal/domain/errors"
)

// Service implements project operations within a workspace.
type Service struct {
	projects   ports.ProjectRepository
	members    ports.ProjectMemberRepository
	workspaces ports.WorkspaceRepository
	wsMembers  ports.WorkspaceMemberRepository
	users      ports.UserRepository
	evaluator  *authz.Evaluator
}

func NewService(projects ports.ProjectRepository, members ports.ProjectMemberRepository, workspaces ports.WorkspaceRepository, wsMembers ports.WorkspaceMemberRepository, users ports.UserRepository, evaluator *authz.Evaluator) *Service {
	return &Service{
		projects:   projects,
		members:    members,
		workspaces: workspaces,
		wsMembers:  wsMembers,
		users:      users,
		evaluator:  evaluator,
	}
}

func (s *Service) Create(ctx context.Context, actor domain.Principal, workspaceID domain.WorkspaceID, name, description string) (*domain.Project, error) {
	ws, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, domerrors.ErrWorkspaceNotFound
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: workspaceID}, authz.CreateProject); err != nil {
		return nil, err
	}
	now := time.Now()
	p := &domain.Project{
		ID:          domain.NewProjectID(uuid.New()),
		Name:        name,
		Description: description,
		WorkspaceID: workspaceID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, actor domain.Principal, id domain.ProjectID) (*domain.Project, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: p.WorkspaceID, ProjectID: &p.ID}, authz.ReadProject); err != nil {
		return nil, err
	}
	return p, nil
}

// ListByWorkspace needs workspace membership in any role; the per-project
// viewer restriction applies to reading a project's content, not to seeing
// that it exists in the listing.
func (s *Service) ListByWorkspace(ctx context.Context, actor domain.Principal, workspaceID domain.WorkspaceID) ([]*domain.Project, error) {
	ws, err := s.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, domerrors.ErrWorkspaceNotFound
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: workspaceID}, authz.ReadWorkspace); err != nil {
		return nil, err
	}
	return s.projects.ListByWorkspace(ctx, workspaceID)
}

func (s *Service) Update(ctx context.Context, actor domain.Principal, id domain.ProjectID, name, description string) (*domain.Project, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: p.WorkspaceID, ProjectID: &p.ID}, authz.UpdateProject); err != nil {
		return nil, err
	}
	if err := s.projects.Update(ctx, id, name, description); err != nil {
		return nil, err
	}
	p.Name, p.Description = name, description
	return p, nil
}

func (s *Service) Delete(ctx context.Context, actor domain.Principal, id domain.ProjectID) error {
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: p.WorkspaceID, ProjectID: &p.ID}, authz.DeleteProject); err != nil {
		return err
	}
	return s.projects.Delete(ctx, id)
}

// AddMember requires the target to already hold workspace membership in the
// project's parent workspace.
func (s *Service) AddMember(ctx context.Context, actor domain.Principal, projectID domain.ProjectID, userID domain.UserID, role domain.ProjectRole) (*domain.ProjectMember, error) {
	if !role.Valid() {
		return nil, domerrors.ErrInvalidRole
	}
	p, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: p.WorkspaceID, ProjectID: &p.ID}, authz.ManageProjectMembers); err != nil {
		return nil, err
	}
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domerrors.ErrUserNotFound
	}
	isMember, err := s.wsMembers.IsMember(ctx, p.WorkspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, domerrors.ErrNotWorkspaceMember
	}
	m := &domain.ProjectMember{
		ID:        uuid.New(),
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		JoinedAt:  time.Now(),
	}
	if err := s.members.Add(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) UpdateMemberRole(ctx context.Context, actor domain.Principal, projectID domain.ProjectID, userID domain.UserID, role domain.ProjectRole) (*domain.ProjectMember, error) {
	if !role.Valid() {
		return nil, domerrors.ErrInvalidRole
	}
	p, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: p.WorkspaceID, ProjectID: &p.ID}, authz.ManageProjectMembers); err != nil {
		return nil, err
	}
	_, ok, err := s.members.GetRole(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domerrors.ErrMemberNotFound
	}
	if err := s.members.UpdateRole(ctx, projectID, userID, role); err != nil {
		return nil, err
	}
	return &domain.ProjectMember{ProjectID: projectID, UserID: userID, Role: role}, nil
}

func (s *Service) RemoveMember(ctx context.Context, actor domain.Principal, projectID domain.ProjectID, userID domain.UserID) error {
	p, err := s.load(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: p.WorkspaceID, ProjectID: &p.ID}, authz.ManageProjectMembers); err != nil {
		return err
	}
	_, ok, err := s.members.GetRole(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domerrors.ErrMemberNotFound
	}
	return s.members.Remove(ctx, projectID, userID)
}

func (s *Service) ListMembers(ctx context.Context, actor domain.Principal, projectID domain.ProjectID) ([]*domain.ProjectMemberRecord, error) {
	p, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: p.WorkspaceID, ProjectID: &p.ID}, authz.ReadProject); err != nil {
		return nil, err
	}
	return s.members.ListMembers(ctx, projectID)
}

func (s *Service) load(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domerrors.ErrProjectNotFound
	}
	return p, nil
}
