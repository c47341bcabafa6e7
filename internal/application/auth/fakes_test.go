package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amirhosseinghanipour/atelier/internal/application/ports"
	"github.com/amirhosseinghanipour/atelier/internal/domain"
	domerrors "github.com/amirhosseinghanipour/atelier/internal/domain/errors"
)

// In-memory fakes for the persistence and crypto ports. The session store
// mirrors the real repository's semantics, including atomic Consume.

var (
	_ ports.UserRepository    = (*fakeUserRepo)(nil)
	_ ports.SessionRepository = (*fakeSessionRepo)(nil)
	_ ports.PasswordHasher    = fakeHasher{}
	_ ports.TokenIssuer       = fakeIssuer{}
	_ ports.LoginLockoutStore = (*fakeLockout)(nil)
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // keyed by user ID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domerrors.ErrUserExists
		}
	}
	cp := *u
	r.users[u.ID.String()] = &cp
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id.String()]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id domain.UserID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id.String()]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (r *fakeUserRepo) UpdateStatus(ctx context.Context, id domain.UserID, status domain.GlobalStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id.String()]; ok {
		u.GlobalStatus = status
	}
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session // keyed by refresh token
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*domain.Session{}}
}

func (r *fakeSessionRepo) Register(ctx context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.RefreshToken] = &cp
	return nil
}

func (r *fakeSessionRepo) FindActiveByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok || s.IsRevoked {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) Consume(ctx context.Context, token string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok || s.IsRevoked {
		return nil, nil
	}
	s.IsRevoked = true
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) Revoke(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[token]; ok {
		s.IsRevoked = true
	}
	return nil
}

func (r *fakeSessionRepo) RevokeAll(ctx context.Context, userID domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.UserID == userID {
			s.IsRevoked = true
		}
	}
	return nil
}

func (r *fakeSessionRepo) ListActiveForUser(ctx context.Context, userID domain.UserID) ([]*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Session
	for _, s := range r.sessions {
		if s.UserID == userID && !s.IsRevoked {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) PurgeExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for tok, s := range r.sessions {
		if s.LoginTime.Before(olderThan) {
			delete(r.sessions, tok)
			n++
		}
	}
	return n, nil
}

func (r *fakeSessionRepo) activeCount(userID domain.UserID) int {
	list, _ := r.ListActiveForUser(context.Background(), userID)
	return len(list)
}

// fakeHasher is a transparent stand-in so tests don't pay argon2 cost.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Verify(password, hash string) (bool, error) {
	if !strings.HasPrefix(hash, "hashed:") {
		return false, domerrors.ErrCorruptHash
	}
	return hash == "hashed:"+password, nil
}

// fakeIssuer encodes the principal into the token string.
type fakeIssuer struct{}

func (fakeIssuer) IssueAccessToken(p domain.Principal, expiresInSeconds int64) (string, error) {
	return "access|" + p.UserID.String() + "|" + string(p.GlobalStatus), nil
}

func (fakeIssuer) VerifyAccessToken(token string) (domain.Principal, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 3 || parts[0] != "access" {
		return domain.Principal{}, domerrors.ErrInvalidToken
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return domain.Principal{}, domerrors.ErrInvalidToken
	}
	return domain.Principal{UserID: domain.NewUserID(id), GlobalStatus: domain.GlobalStatus(parts[2])}, nil
}

// fakeLockout locks an email after maxFailures consecutive failures.
type fakeLockout struct {
	mu          sync.Mutex
	maxFailures int
	failures    map[string]int
}

func newFakeLockout(maxFailures int) *fakeLockout {
	return &fakeLockout{maxFailures: maxFailures, failures: map[string]int{}}
}

func (l *fakeLockout) IsLocked(ctx context.Context, email string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failures[email] >= l.maxFailures {
		return true, 900
	}
	return false, 0
}

func (l *fakeLockout) RecordFailure(ctx context.Context, email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[email]++
}

func (l *fakeLockout) RecordSuccess(ctx context.Context, email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, email)
}

func seedUser(r *fakeUserRepo, email, password string, status domain.GlobalStatus) *domain.User {
	u := &domain.User{
		ID:           domain.NewUserID(uuid.New()),
		Email:        email,
		PasswordHash: "hashed:" + password,
		GlobalStatus: status,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	_ = r.Create(context.Background(), u)
	return u
}
