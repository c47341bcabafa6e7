package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
)

const (
	registerSessionSQL = `INSERT INTO user_devices (id, user_id, refresh_token, ip_address, user_agent, login_time, is_revoked)
VALUES ($1, $2, $3, $4, $5, $6, FALSE)`
	findActiveSessionSQL = `SELECT id, user_id, refresh_token, ip_address, user_agent, login_time, is_revoked
FROM user_devices WHERE refresh_token = $1 AND is_revoked = FALSE`
	// The WHERE clause makes consumption atomic: of N concurrent updates on
	// the same token exactly one matches the non-revoked row.
	consumeSessionSQL = `UPDATE user_devices SET is_revoked = TRUE
WHERE refresh_token = $1 AND is_revoked = FALSE
RETURNING id, user_id, refresh_token, ip_address, user_agent, login_time, is_revoked`
	revokeSessionSQL      = `UPDATE user_devices SET is_revoked = TRUE WHERE refresh_token = $1`
	revokeAllSessionsSQL  = `UPDATE user_devices SET is_revoked = TRUE WHERE user_id = $1 AND is_revoked = FALSE`
	listActiveSessionsSQL = `SELECT id, user_id, refresh_token, ip_address, user_agent, login_time, is_revoked
FROM user_devices WHERE user_id = $1 AND is_revoked = FALSE ORDER BY login_time DESC`
	purgeSessionsSQL = `DELETE FROM user_devices WHERE login_time < $1`
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Register(ctx context.Context, s *domain.Session) error {
	_, err := r.pool.Exec(ctx, registerSessionSQL,
		s.ID.UUID, s.UserID.UUID, s.RefreshToken, s.IPAddress, s.UserAgent, s.LoginTime)
	return err
}

func (r *SessionRepository) FindActiveByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	return r.scanOne(r.pool.QueryRow(ctx, findActiveSessionSQL, token))
}

func (r *SessionRepository) Consume(ctx context.Context, token string) (*domain.Session, error) {
	return r.scanOne(r.pool.QueryRow(ctx, consumeSessionSQL, token))
}

func (r *SessionRepository) Revoke(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, revokeSessionSQL, token)
	return err
}

func (r *SessionRepository) RevokeAll(ctx context.Context, userID domain.UserID) error {
	_, err := r.pool.Exec(ctx, revokeAllSessionsSQL, userID.UUID)
	return err
}

func (r *SessionRepository) ListActiveForUser(ctx context.Context, userID domain.UserID) ([]*domain.Session, error) {
	rows, err := r.pool.Query(ctx, listActiveSessionsSQL, userID.UUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SessionRepository) PurgeExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, purgeSessionsSQL, olderThan)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *SessionRepository) scanOne(row pgx.Row) (*domain.Session, error) {
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	if err := row.Scan(&s.ID.UUID, &s.UserID.UUID, &s.RefreshToken, &s.IPAddress, &s.UserAgent, &s.LoginTime, &s.IsRevoked); err != nil {
		return nil, err
	}
	return &s, nil
}

// Ensure SessionRepository implements ports.SessionRepository.
var _ ports.SessionRepository = (*SessionRepository)(nil)
