package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
	domerrors "github.com/amirhosseinghanipour/atelier/internal/domain/errors"
)

const (
	createWorkspaceSQL = `INSERT INTO workspaces (id, name, owner_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)`
	getWorkspaceSQL = `SELECT id, name, owner_id, created_at, updated_at
FROM workspaces WHERE id = $1`
	listWorkspacesForUserSQL = `SELECT w.id, w.name, w.owner_id, w.created_at, w.updated_at
FROM workspaces w
JOIN workspace_members m ON m.workspace_id = w.id
WHERE m.user_id = $1 ORDER BY w.created_at ASC`
	listAllWorkspacesSQL = `SELECT id, name, owner_id, created_at, updated_at
FROM workspaces ORDER BY created_at ASC`
	updateWorkspaceNameSQL = `UPDATE workspaces SET name = $1, updated_at = NOW() WHERE id = $2`
	deleteWorkspaceSQL     = `DELETE FROM workspaces WHERE id = $1`

	addWorkspaceMemberSQL = `INSERT INTO workspace_members (id, workspace_id, user_id, role, joined_at)
VALUES ($1, $2, $3, $4, $5)`
	getWorkspaceRoleSQL = `SELECT role FROM workspace_members WHERE workspace_id = $1 AND user_id = $2`
	updateWorkspaceRoleSQL = `UPDATE workspace_members SET role = $1
WHERE workspace_id = $2 AND user_id = $3`
	removeWorkspaceMemberSQL = `DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id = $2`
	listWorkspaceMembersSQL  = `SELECT m.id, m.workspace_id, m.user_id, m.role, m.joined_at, u.email, u.first_name, u.last_name
FROM workspace_members m
JOIN users u ON u.id = m.user_id
WHERE m.workspace_id = $1 ORDER BY m.joined_at ASC`
)

type WorkspaceRepository struct {
	pool *pgxpool.Pool
}

func NewWorkspaceRepository(pool *pgxpool.Pool) *WorkspaceRepository {
	return &WorkspaceRepository{pool: pool}
}

func (r *WorkspaceRepository) CreateWithOwner(ctx context.Context, ws *domain.Workspace) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, createWorkspaceSQL,
		ws.ID.UUID, ws.Name, ws.OwnerID.UUID, ws.CreatedAt, ws.UpdatedAt); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, addWorkspaceMemberSQL,
		uuid.New(), ws.ID.UUID, ws.OwnerID.UUID, string(domain.RoleOwner), ws.CreatedAt); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *WorkspaceRepository) GetByID(ctx context.Context, id domain.WorkspaceID) (*domain.Workspace, error) {
	ws, err := scanWorkspace(r.pool.QueryRow(ctx, getWorkspaceSQL, id.UUID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ws, nil
}

func (r *WorkspaceRepository) ListForUser(ctx context.Context, userID domain.UserID) ([]*domain.Workspace, error) {
	return r.list(ctx, listWorkspacesForUserSQL, userID.UUID)
}

func (r *WorkspaceRepository) ListAll(ctx context.Context) ([]*domain.Workspace, error) {
	return r.list(ctx, listAllWorkspacesSQL)
}

func (r *WorkspaceRepository) list(ctx context.Context, sql string, args ...any) ([]*domain.Workspace, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Workspace
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ws)
	}
	return out, rows.Err()
}

func (r *WorkspaceRepository) UpdateName(ctx context.Context, id domain.WorkspaceID, name string) error {
	_, err := r.pool.Exec(ctx, updateWorkspaceNameSQL, name, id.UUID)
	return err
}

func (r *WorkspaceRepository) Delete(ctx context.Context, id domain.WorkspaceID) error {
	_, err := r.pool.Exec(ctx, deleteWorkspaceSQL, id.UUID)
	return err
}

func scanWorkspace(row pgx.Row) (*domain.Workspace, error) {
	var ws domain.Workspace
	if err := row.Scan(&ws.ID.UUID, &ws.Name, &ws.OwnerID.UUID, &ws.CreatedAt, &ws.UpdatedAt); err != nil {
		return nil, err
	}
	return &ws, nil
}

type WorkspaceMemberRepository struct {
	pool *pgxpool.Pool
}

func NewWorkspaceMemberRepository(pool *pgxpool.Pool) *WorkspaceMemberRepository {
	return &WorkspaceMemberRepository{pool: pool}
}

func (r *WorkspaceMemberRepository) Add(ctx context.Context, m *domain.WorkspaceMember) error {
	_, err := r.pool.Exec(ctx, addWorkspaceMemberSQL,
		m.ID, m.WorkspaceID.UUID, m.UserID.UUID, string(m.Role), m.JoinedAt)
	if isUniqueViolation(err) {
		return domerrors.ErrAlreadyMember
	}
	return err
}

func (r *WorkspaceMemberRepository) GetRole(ctx context.Context, workspaceID domain.WorkspaceID, userID domain.UserID) (domain.WorkspaceRole, bool, error) {
	var role string
	err := r.pool.QueryRow(ctx, getWorkspaceRoleSQL, workspaceID.UUID, userID.UUID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return domain.WorkspaceRole(role), true, nil
}

func (r *WorkspaceMemberRepository) IsMember(ctx context.Context, workspaceID domain.WorkspaceID, userID domain.UserID) (bool, error) {
	_, ok, err := r.GetRole(ctx, workspaceID, userID)
	return ok, err
}

func (r *WorkspaceMemberRepository) UpdateRole(ctx context.Context, workspaceID domain.WorkspaceID, userID domain.UserID, role domain.WorkspaceRole) error {
	tag, err := r.pool.Exec(ctx, updateWorkspaceRoleSQL, string(role), workspaceID.UUID, userID.UUID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.ErrMemberNotFound
	}
	return nil
}

func (r *WorkspaceMemberRepository) Remove(ctx context.Context, workspaceID domain.WorkspaceID, userID domain.UserID) error {
	tag, err := r.pool.Exec(ctx, removeWorkspaceMemberSQL, workspaceID.UUID, userID.UUID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.ErrMemberNotFound
	}
	return nil
}

func (r *WorkspaceMemberRepository) ListMembers(ctx context.Context, workspaceID domain.WorkspaceID) ([]*domain.MemberRecord, error) {
	rows, err := r.pool.Query(ctx, listWorkspaceMembersSQL, workspaceID.UUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.MemberRecord
	for rows.Next() {
		var rec domain.MemberRecord
		var role string
		if err := rows.Scan(&rec.ID, &rec.WorkspaceID.UUID, &rec.UserID.UUID, &role, &rec.JoinedAt,
			&rec.Email, &rec.FirstName, &rec.LastName); err != nil {
			return nil, err
		}
		rec.Role = domain.WorkspaceRole(role)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

var (
	_ ports.WorkspaceRepository       = (*WorkspaceRepository)(nil)
	_ ports.WorkspaceMemberRepository = (*WorkspaceMemberRepository)(nil)
)
