package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
	domerrors "github.com/amirhosseinghanipour/atelier/internal/domain/errors"
)

const (
	createProjectSQL = `INSERT INTO projects (id, name, description, workspace_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	getProjectSQL = `SELECT id, name, description, workspace_id, created_at, updated_at
FROM projects WHERE id = $1`
	listProjectsByWorkspaceSQL = `SELECT id, name, description, workspace_id, created_at, updated_at
FROM projects WHERE workspace_id = $1 ORDER BY created_at ASC`
	updateProjectSQL = `UPDATE projects SET name = $1, description = $2, updated_at = NOW() WHERE id = $3`
	deleteProjectSQL = `DELETE FROM projects WHERE id = $1`

	addProjectMemberSQL = `INSERT INTO project_members (id, project_id, user_id, role, joined_at)
VALUES ($1, $2, $3, $4, $5)`
	getProjectRoleSQL = `SELECT role FROM project_members WHERE project_id = $1 AND user_id = $2`
	updateProjectRoleSQL = `UPDATE project_members SET role = $1
WHERE project_id = $2 AND user_id = $3`
	removeProjectMemberSQL = `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`
	listProjectMembersSQL  = `SELECT m.id, m.project_id, m.user_id, m.role, m.joined_at, u.email, u.first_name, u.last_name
FROM project_members m
JOIN users u ON u.id = m.user_id
WHERE m.project_id = $1 ORDER BY m.joined_at ASC`
)

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	_, err := r.pool.Exec(ctx, createProjectSQL,
		p.ID.UUID, p.Name, p.Description, p.WorkspaceID.UUID, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *ProjectRepository) GetByID(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	p, err := scanProject(r.pool.QueryRow(ctx, getProjectSQL, id.UUID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) ListByWorkspace(ctx context.Context, workspaceID domain.WorkspaceID) ([]*domain.Project, error) {
	rows, err := r.pool.Query(ctx, listProjectsByWorkspaceSQL, workspaceID.UUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, id domain.ProjectID, name, description string) error {
	_, err := r.pool.Exec(ctx, updateProjectSQL, name, description, id.UUID)
	return err
}

func (r *ProjectRepository) Delete(ctx context.Context, id domain.ProjectID) error {
	_, err := r.pool.Exec(ctx, deleteProjectSQL, id.UUID)
	return err
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	if err := row.Scan(&p.ID.UUID, &p.Name, &p.Description, &p.WorkspaceID.UUID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

type ProjectMemberRepository struct {
	pool *pgxpool.Pool
}

func NewProjectMemberRepository(pool *pgxpool.Pool) *ProjectMemberRepository {
	return &ProjectMemberRepository{pool: pool}
}

func (r *ProjectMemberRepository) Add(ctx context.Context, m *domain.ProjectMember) error {
	_, err := r.pool.Exec(ctx, addProjectMemberSQL,
		m.ID, m.ProjectID.UUID, m.UserID.UUID, string(m.Role), m.JoinedAt)
	if isUniqueViolation(err) {
		return domerrors.ErrAlreadyMember
	}
	return err
}

func (r *ProjectMemberRepository) GetRole(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (domain.ProjectRole, bool, error) {
	var role string
	err := r.pool.QueryRow(ctx, getProjectRoleSQL, projectID.UUID, userID.UUID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return domain.ProjectRole(role), true, nil
}

func (r *ProjectMemberRepository) IsMember(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) (bool, error) {
	_, ok, err := r.GetRole(ctx, projectID, userID)
	return ok, err
}

func (r *ProjectMemberRepository) UpdateRole(ctx context.Context, projectID domain.ProjectID, userID domain.UserID, role domain.ProjectRole) error {
	tag, err := r.pool.Exec(ctx, updateProjectRoleSQL, string(role), projectID.UUID, userID.UUID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.ErrMemberNotFound
	}
	return nil
}

func (r *ProjectMemberRepository) Remove(ctx context.Context, projectID domain.ProjectID, userID domain.UserID) error {
	tag, err := r.pool.Exec(ctx, removeProjectMemberSQL, projectID.UUID, userID.UUID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.ErrMemberNotFound
	}
	return nil
}

func (r *ProjectMemberRepository) ListMembers(ctx context.Context, projectID domain.ProjectID) ([]*domain.ProjectMemberRecord, error) {
	rows, err := r.pool.Query(ctx, listProjectMembersSQL, projectID.UUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.ProjectMemberRecord
	for rows.Next() {
		var rec domain.ProjectMemberRecord
		var role string
		if err := rows.Scan(&rec.ID, &rec.ProjectID.UUID, &rec.UserID.UUID, &role, &rec.JoinedAt,
			&rec.Email, &rec.FirstName, &rec.LastName); err != nil {
			return nil, err
		}
		rec.Role = domain.ProjectRole(role)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

var (
	_ ports.ProjectRepository       = (*ProjectRepository)(nil)
	_ ports.ProjectMemberRepository = (*ProjectMemberRepository)(nil)
)
