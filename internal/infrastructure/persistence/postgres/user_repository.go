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
	createUserSQL = `INSERT INTO users (id, email, password_hash, first_name, last_name, global_status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	getUserByEmailSQL = `SELECT id, email, password_hash, first_name, last_name, global_status, created_at, updated_at
FROM users WHERE email = $1`
	getUserByIDSQL = `SELECT id, email, password_hash, first_name, last_name, global_status, created_at, updated_at
FROM users WHERE id = $1`
	listUsersSQL = `SELECT id, email, password_hash, first_name, last_name, global_status, created_at, updated_at
FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	updateUserPasswordSQL = `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	updateUserStatusSQL   = `UPDATE users SET global_status = $1, updated_at = NOW() WHERE id = $2`
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.pool.Exec(ctx, createUserSQL,
		user.ID.UUID, user.Email, user.PasswordHash,
		user.FirstName, user.LastName, string(user.GlobalStatus),
		user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domerrors.ErrUserExists
	}
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, getUserByEmailSQL, email))
}

func (r *UserRepository) GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, getUserByIDSQL, userID.UUID))
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx, listUsersSQL, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID domain.UserID, passwordHash string) error {
	_, err := r.pool.Exec(ctx, updateUserPasswordSQL, passwordHash, userID.UUID)
	return err
}

func (r *UserRepository) UpdateStatus(ctx context.Context, userID domain.UserID, status domain.GlobalStatus) error {
	_, err := r.pool.Exec(ctx, updateUserStatusSQL, string(status), userID.UUID)
	return err
}

func (r *UserRepository) scanOne(row pgx.Row) (*domain.User, error) {
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var status string
	if err := row.Scan(&u.ID.UUID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.GlobalStatus = domain.GlobalStatus(status)
	return &u, nil
}

// Ensure UserRepository implements ports.UserRepository.
var _ ports.UserRepository = (*UserRepository)(nil)
