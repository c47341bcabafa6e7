package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
)

const (
	createTaskSQL = `INSERT INTO tasks (id, title, description, status, project_id, created_by_id, assigned_to_ids, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	getTaskSQL = `SELECT id, title, description, status, project_id, created_by_id, assigned_to_ids, created_at, updated_at
FROM tasks WHERE id = $1`
	listTasksByProjectSQL = `SELECT id, title, description, status, project_id, created_by_id, assigned_to_ids, created_at, updated_at
FROM tasks WHERE project_id = $1 ORDER BY created_at ASC`
	listTasksAssignedToSQL = `SELECT id, title, description, status, project_id, created_by_id, assigned_to_ids, created_at, updated_at
FROM tasks WHERE $1 = ANY(assigned_to_ids) ORDER BY created_at ASC`
	updateTaskSQL = `UPDATE tasks SET title = $1, description = $2, status = $3, assigned_to_ids = $4, updated_at = NOW()
WHERE id = $5`
	updateTaskStatusSQL = `UPDATE tasks SET status = $1, updated_at = NOW() WHERE id = $2`
	deleteTaskSQL       = `DELETE FROM tasks WHERE id = $1`
)

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.pool.Exec(ctx, createTaskSQL,
		t.ID.UUID, t.Title, t.Description, string(t.Status),
		t.ProjectID.UUID, t.CreatedByID.UUID, assigneeUUIDs(t.AssignedToIDs),
		t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *TaskRepository) GetByID(ctx context.Context, id domain.TaskID) (*domain.Task, error) {
	t, err := scanTask(r.pool.QueryRow(ctx, getTaskSQL, id.UUID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID domain.ProjectID) ([]*domain.Task, error) {
	return r.list(ctx, listTasksByProjectSQL, projectID.UUID)
}

func (r *TaskRepository) ListAssignedTo(ctx context.Context, userID domain.UserID) ([]*domain.Task, error) {
	return r.list(ctx, listTasksAssignedToSQL, userID.UUID)
}

func (r *TaskRepository) list(ctx context.Context, sql string, args ...any) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	_, err := r.pool.Exec(ctx, updateTaskSQL,
		t.Title, t.Description, string(t.Status), assigneeUUIDs(t.AssignedToIDs), t.ID.UUID)
	return err
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id domain.TaskID, status domain.TaskStatus) error {
	_, err := r.pool.Exec(ctx, updateTaskStatusSQL, string(status), id.UUID)
	return err
}

func (r *TaskRepository) Delete(ctx context.Context, id domain.TaskID) error {
	_, err := r.pool.Exec(ctx, deleteTaskSQL, id.UUID)
	return err
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	var status string
	var assignees []uuid.UUID
	if err := row.Scan(&t.ID.UUID, &t.Title, &t.Description, &status,
		&t.ProjectID.UUID, &t.CreatedByID.UUID, &assignees, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = domain.TaskStatus(status)
	t.AssignedToIDs = make([]domain.UserID, len(assignees))
	for i, id := range assignees {
		t.AssignedToIDs[i] = domain.NewUserID(id)
	}
	return &t, nil
}

func assigneeUUIDs(ids []domain.UserID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	for i, id := range ids {
		out[i] = id.UUID
	}
	return out
}

// Ensure TaskRepository implements ports.TaskRepository.
var _ ports.TaskRepository = (*TaskRepository)(nil)
