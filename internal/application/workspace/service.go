package workspace

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/amirhosseinghanipour/atelier/internal/application/authz"
	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
	domerrors "github.com/amirhosseinghanipour/atelier/internal/domain/errors"
)

// Service implements workspace operations. Entity existence is checked
// before membership, so an absent workspace surfaces as NotFound rather
// than AccessDenied.
type Service struct {
	workspaces ports.WorkspaceRepository
	members    ports.WorkspaceMemberRepository
	users      ports.UserRepository
	evaluator  *authz.Evaluator
}

func NewService(workspaces ports.WorkspaceRepository, members ports.WorkspaceMemberRepository, users ports.UserRepository, evaluator *authz.Evaluator) *Service {
	return &Service{
		workspaces: workspaces,
		members:    members,
		users:      users,
		evaluator:  evaluator,
	}
}

// Create makes the actor the workspace's OWNER. Any authenticated,
// non-banned user may create workspaces.
func (s *Service) Create(ctx context.Context, actor domain.Principal, name string) (*domain.Workspace, error) {
	if actor.GlobalStatus == domain.StatusBanned {
		return nil, domerrors.ErrBanned
	}
	now := time.Now()
	ws := &domain.Workspace{
		ID:        domain.NewWorkspaceID(uuid.New()),
		Name:      name,
		OwnerID:   actor.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.workspaces.CreateWithOwner(ctx, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

func (s *Service) Get(ctx context.Context, actor domain.Principal, id domain.WorkspaceID) (*domain.Workspace, error) {
	ws, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: id}, authz.ReadWorkspace); err != nil {
		return nil, err
	}
	return ws, nil
}

// ListMine returns the workspaces the actor belongs to, in any role.
func (s *Service) ListMine(ctx context.Context, actor domain.Principal) ([]*domain.Workspace, error) {
	if actor.GlobalStatus == domain.StatusBanned {
		return nil, domerrors.ErrBanned
	}
	return s.workspaces.ListForUser(ctx, actor.UserID)
}

// ListAll is admin-flagged: it bypasses membership but requires ADMIN.
func (s *Service) ListAll(ctx context.Context, actor domain.Principal) ([]*domain.Workspace, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.workspaces.ListAll(ctx)
}

func (s *Service) Update(ctx context.Context, actor domain.Principal, id domain.WorkspaceID, name string) (*domain.Workspace, error) {
	ws, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: id}, authz.UpdateWorkspace); err != nil {
		return nil, err
	}
	if err := s.workspaces.UpdateName(ctx, id, name); err != nil {
		return nil, err
	}
	ws.Name = name
	return ws, nil
}

func (s *Service) Delete(ctx context.Context, actor domain.Principal, id domain.WorkspaceID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: id}, authz.DeleteWorkspace); err != nil {
		return err
	}
	return s.workspaces.Delete(ctx, id)
}

func (s *Service) AddMember(ctx context.Context, actor domain.Principal, workspaceID domain.WorkspaceID, userID domain.UserID, role domain.WorkspaceRole) (*domain.WorkspaceMember, error) {
	if !role.Valid() {
		return nil, domerrors.ErrInvalidRole
	}
	if _, err := s.load(ctx, workspaceID); err != nil {
		return nil, err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: workspaceID}, authz.ManageWorkspaceMembers); err != nil {
		return nil, err
	}
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domerrors.ErrUserNotFound
	}
	m := &domain.WorkspaceMember{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		JoinedAt:    time.Now(),
	}
	// Duplicate membership surfaces as ErrAlreadyMember from the store's
	// uniqueness constraint; concurrent adds cannot both succeed.
	if err := s.members.Add(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) UpdateMemberRole(ctx context.Context, actor domain.Principal, workspaceID domain.WorkspaceID, userID domain.UserID, role domain.WorkspaceRole) (*domain.WorkspaceMember, error) {
	if !role.Valid() {
		return nil, domerrors.ErrInvalidRole
	}
	ws, err := s.load(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: workspaceID}, authz.ManageWorkspaceMembers); err != nil {
		return nil, err
	}
	if userID == ws.OwnerID {
		return nil, domerrors.ErrOwnerImmutable
	}
	_, ok, err := s.members.GetRole(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domerrors.ErrMemberNotFound
	}
	if err := s.members.UpdateRole(ctx, workspaceID, userID, role); err != nil {
		return nil, err
	}
	return &domain.WorkspaceMember{WorkspaceID: workspaceID, UserID: userID, Role: role}, nil
}

func (s *Service) RemoveMember(ctx context.Context, actor domain.Principal, workspaceID domain.WorkspaceID, userID domain.UserID) error {
	ws, err := s.load(ctx, workspaceID)
	if err != nil {
		return err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: workspaceID}, authz.ManageWorkspaceMembers); err != nil {
		return err
	}
	if userID == ws.OwnerID {
		return domerrors.ErrOwnerImmutable
	}
	_, ok, err := s.members.GetRole(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domerrors.ErrMemberNotFound
	}
	return s.members.Remove(ctx, workspaceID, userID)
}

func (s *Service) ListMembers(ctx context.Context, actor domain.Principal, workspaceID domain.WorkspaceID) ([]*domain.MemberRecord, error) {
	if _, err := s.load(ctx, workspaceID); err != nil {
		return nil, err
	}
	if err := s.evaluator.Authorize(ctx, actor, authz.Target{WorkspaceID: workspaceID}, authz.ReadWorkspace); err != nil {
		return nil, err
	}
	return s.members.ListMembers(ctx, workspaceID)
}

func (s *Service) load(ctx context.Context, id domain.WorkspaceID) (*domain.Workspace, error) {
	ws, err := s.workspaces.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, domerrors.ErrWorkspaceNotFound
	}
	return ws, nil
}
