package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/amirhosseinghanipour/atelier/internal/domain"
	domerrors "github.com/amirhosseinghanipour/atelier/internal/domain/errors"
)

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	uc := NewRegisterUser(users, fakeHasher{})

	res, err := uc.Execute(ctx, RegisterUserInput{
		Email:     "ada@example.com",
		Password:  "correct horse",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.User.GlobalStatus != domain.StatusActive {
		t.Errorf("new user status = %q, want ACTIVE", res.User.GlobalStatus)
	}
	if res.User.PasswordHash == "correct horse" {
		t.Error("password stored in the clear")
	}

	_, err = uc.Execute(ctx, RegisterUserInput{Email: "ada@example.com", Password: "other"})
	if !errors.Is(err, domerrors.ErrUserExists) {
		t.Errorf("duplicate email: got %v, want ErrUserExists", err)
	}

	_, err = uc.Execute(ctx, RegisterUserInput{Email: "not-an-email", Password: "pw"})
	if !errors.Is(err, domerrors.ErrInvalidCredentials) {
		t.Errorf("malformed email: got %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginSuccess(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	u := seedUser(users, "ada@example.com", "correct horse", domain.StatusActive)

	uc := NewLogin(users, sessions, fakeHasher{}, fakeIssuer{}, newFakeLockout(5), 900)
	res, err := uc.Execute(ctx, LoginInput{
		Email:     "ada@example.com",
		Password:  "correct horse",
		IPAddress: "10.0.0.1",
		UserAgent: "cli/1.0",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("login returned empty tokens")
	}
	if res.ExpiresIn != 900 {
		t.Errorf("ExpiresIn = %d, want 900", res.ExpiresIn)
	}
	sess, err := sessions.FindActiveByRefreshToken(ctx, res.RefreshToken)
	if err != nil || sess == nil {
		t.Fatalf("session not registered: sess=%v err=%v", sess, err)
	}
	if sess.UserID != u.ID {
		t.Errorf("session owner = %v, want %v", sess.UserID, u.ID)
	}
	if sess.IPAddress != "10.0.0.1" || sess.UserAgent != "cli/1.0" {
		t.Errorf("device metadata not recorded: %q %q", sess.IPAddress, sess.UserAgent)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	u := seedUser(users, "ada@example.com", "correct horse", domain.StatusActive)
	lockout := newFakeLockout(5)

	uc := NewLogin(users, sessions, fakeHasher{}, fakeIssuer{}, lockout, 900)
	_, err := uc.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "wrong"})
	if !errors.Is(err, domerrors.ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if lockout.failures["ada@example.com"] != 1 {
		t.Errorf("failure count = %d, want 1", lockout.failures["ada@example.com"])
	}
	if n := sessions.activeCount(u.ID); n != 0 {
		t.Errorf("sessions after failed login = %d, want 0", n)
	}
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	ctx := context.Background()
	uc := NewLogin(newFakeUserRepo(), newFakeSessionRepo(), fakeHasher{}, fakeIssuer{}, newFakeLockout(5), 900)
	_, err := uc.Execute(ctx, LoginInput{Email: "ghost@example.com", Password: "anything"})
	if !errors.Is(err, domerrors.ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginBannedAfterVerify(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	seedUser(users, "ada@example.com", "correct horse", domain.StatusBanned)

	uc := NewLogin(users, newFakeSessionRepo(), fakeHasher{}, fakeIssuer{}, newFakeLockout(5), 900)

	// Wrong password on a banned account still reads as bad credentials,
	// so the ban is not observable without the password.
	_, err := uc.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "wrong"})
	if !errors.Is(err, domerrors.ErrInvalidCredentials) {
		t.Fatalf("banned + wrong password: got %v, want ErrInvalidCredentials", err)
	}
	_, err = uc.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "correct horse"})
	if !errors.Is(err, domerrors.ErrBanned) {
		t.Fatalf("banned + correct password: got %v, want ErrBanned", err)
	}
}

func TestLoginLockout(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	seedUser(users, "ada@example.com", "correct horse", domain.StatusActive)
	lockout := newFakeLockout(3)
	uc := NewLogin(users, newFakeSessionRepo(), fakeHasher{}, fakeIssuer{}, lockout, 900)

	for i := 0; i < 3; i++ {
		if _, err := uc.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "wrong"}); err == nil {
			t.Fatal("expected failure")
		}
	}
	// Locked out: even the correct password is rejected now.
	_, err := uc.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "correct horse"})
	if !errors.Is(err, domerrors.ErrInvalidCredentials) {
		t.Fatalf("locked login: got %v, want ErrInvalidCredentials", err)
	}

	lockout.RecordSuccess(ctx, "ada@example.com")
	if _, err := uc.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "correct horse"}); err != nil {
		t.Fatalf("login after reset: %v", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	u := seedUser(users, "ada@example.com", "correct horse", domain.StatusActive)

	login := NewLogin(users, sessions, fakeHasher{}, fakeIssuer{}, nil, 900)
	lr, err := login.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refresh := NewRefresh(users, sessions, fakeIssuer{}, 900)
	rr, err := refresh.Execute(ctx, RefreshInput{RefreshToken: lr.RefreshToken, IPAddress: "10.0.0.2"})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rr.RefreshToken == lr.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}

	// The predecessor is consumed; replaying it must fail like an unknown token.
	if _, err := refresh.Execute(ctx, RefreshInput{RefreshToken: lr.RefreshToken}); !errors.Is(err, domerrors.ErrInvalidToken) {
		t.Fatalf("replay of consumed token: got %v, want ErrInvalidToken", err)
	}

	// Exactly one active session remains, under the new token.
	if n := sessions.activeCount(u.ID); n != 1 {
		t.Fatalf("active sessions after rotation = %d, want 1", n)
	}
	if s, _ := sessions.FindActiveByRefreshToken(ctx, rr.RefreshToken); s == nil {
		t.Fatal("successor session not active")
	}
}

func TestRefreshRejectsEmptyAndUnknown(t *testing.T) {
	ctx := context.Background()
	refresh := NewRefresh(newFakeUserRepo(), newFakeSessionRepo(), fakeIssuer{}, 900)

	if _, err := refresh.Execute(ctx, RefreshInput{RefreshToken: ""}); !errors.Is(err, domerrors.ErrInvalidToken) {
		t.Errorf("empty token: got %v, want ErrInvalidToken", err)
	}
	if _, err := refresh.Execute(ctx, RefreshInput{RefreshToken: "deadbeef"}); !errors.Is(err, domerrors.ErrInvalidToken) {
		t.Errorf("unknown token: got %v, want ErrInvalidToken", err)
	}
}

func TestRefreshLivenessCheck(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	u := seedUser(users, "ada@example.com", "correct horse", domain.StatusActive)

	login := NewLogin(users, sessions, fakeHasher{}, fakeIssuer{}, nil, 900)
	lr, err := login.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Ban lands between login and refresh: rotation must fail even though
	// the session row itself was still active.
	if err := users.UpdateStatus(ctx, u.ID, domain.StatusBanned); err != nil {
		t.Fatalf("update status: %v", err)
	}
	refresh := NewRefresh(users, sessions, fakeIssuer{}, 900)
	if _, err := refresh.Execute(ctx, RefreshInput{RefreshToken: lr.RefreshToken}); !errors.Is(err, domerrors.ErrInvalidToken) {
		t.Fatalf("refresh for banned user: got %v, want ErrInvalidToken", err)
	}

	// Deleted owner behaves the same way.
	sessions2 := newFakeSessionRepo()
	ghostID := domain.NewUserID(uuid.New())
	_ = sessions2.Register(ctx, &domain.Session{
		ID:           domain.NewSessionID(uuid.New()),
		UserID:       ghostID,
		RefreshToken: "orphan-token",
	})
	refresh2 := NewRefresh(users, sessions2, fakeIssuer{}, 900)
	if _, err := refresh2.Execute(ctx, RefreshInput{RefreshToken: "orphan-token"}); !errors.Is(err, domerrors.ErrInvalidToken) {
		t.Fatalf("refresh for deleted user: got %v, want ErrInvalidToken", err)
	}
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	u := seedUser(users, "ada@example.com", "correct horse", domain.StatusActive)

	login := NewLogin(users, sessions, fakeHasher{}, fakeIssuer{}, nil, 900)
	lr, err := login.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	logout := NewLogout(sessions)
	if err := logout.Execute(ctx, lr.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if s, _ := sessions.FindActiveByRefreshToken(ctx, lr.RefreshToken); s != nil {
		t.Fatal("session still active after logout")
	}
	// Idempotent: repeating and unknown tokens succeed silently.
	if err := logout.Execute(ctx, lr.RefreshToken); err != nil {
		t.Errorf("repeated logout: %v", err)
	}
	if err := logout.Execute(ctx, "never-issued"); err != nil {
		t.Errorf("logout of unknown token: %v", err)
	}
	if err := logout.Execute(ctx, ""); err != nil {
		t.Errorf("logout with empty token: %v", err)
	}
	_ = u
}

func TestLogoutAll(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	u := seedUser(users, "ada@example.com", "correct horse", domain.StatusActive)
	other := seedUser(users, "grace@example.com", "enigma", domain.StatusActive)

	login := NewLogin(users, sessions, fakeHasher{}, fakeIssuer{}, nil, 900)
	for i := 0; i < 3; i++ {
		if _, err := login.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "correct horse"}); err != nil {
			t.Fatalf("login %d: %v", i, err)
		}
	}
	if _, err := login.Execute(ctx, LoginInput{Email: "grace@example.com", Password: "enigma"}); err != nil {
		t.Fatalf("login other: %v", err)
	}

	if err := NewLogout(sessions).ExecuteAll(ctx, u.ID); err != nil {
		t.Fatalf("logout all: %v", err)
	}
	if n := sessions.activeCount(u.ID); n != 0 {
		t.Errorf("sessions after logout-all = %d, want 0", n)
	}
	if n := sessions.activeCount(other.ID); n != 1 {
		t.Errorf("unrelated user's sessions = %d, want 1", n)
	}
}

func TestListSessionsOnePerDevice(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	u := seedUser(users, "ada@example.com", "correct horse", domain.StatusActive)
	seedUser(users, "grace@example.com", "enigma", domain.StatusActive)

	login := NewLogin(users, sessions, fakeHasher{}, fakeIssuer{}, nil, 900)
	laptop, err := login.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "correct horse", UserAgent: "laptop/1.0"})
	if err != nil {
		t.Fatalf("login laptop: %v", err)
	}
	if _, err := login.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "correct horse", UserAgent: "phone/2.0"}); err != nil {
		t.Fatalf("login phone: %v", err)
	}
	if _, err := login.Execute(ctx, LoginInput{Email: "grace@example.com", Password: "enigma"}); err != nil {
		t.Fatalf("login other: %v", err)
	}

	uc := NewListSessions(sessions)
	list, err := uc.Execute(ctx, u.ID)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("sessions = %d, want 2", len(list))
	}
	for _, s := range list {
		if s.UserID != u.ID {
			t.Errorf("session for user %s, want %s", s.UserID.String(), u.ID.String())
		}
		if s.IsRevoked {
			t.Error("revoked session listed as active")
		}
	}

	if err := NewLogout(sessions).Execute(ctx, laptop.RefreshToken); err != nil {
		t.Fatalf("logout laptop: %v", err)
	}
	list, err = uc.Execute(ctx, u.ID)
	if err != nil {
		t.Fatalf("list after logout: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("sessions after logout = %d, want 1", len(list))
	}
	if list[0].UserAgent != "phone/2.0" {
		t.Errorf("remaining session agent = %q, want phone/2.0", list[0].UserAgent)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	u := seedUser(users, "ada@example.com", "old password", domain.StatusActive)

	login := NewLogin(users, sessions, fakeHasher{}, fakeIssuer{}, nil, 900)
	if _, err := login.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "old password"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	uc := NewChangePassword(users, sessions, fakeHasher{})

	err := uc.Execute(ctx, ChangePasswordInput{UserID: u.ID, CurrentPassword: "guess", NewPassword: "new password"})
	if !errors.Is(err, domerrors.ErrWrongPassword) {
		t.Fatalf("wrong current password: got %v, want ErrWrongPassword", err)
	}
	if n := sessions.activeCount(u.ID); n != 1 {
		t.Fatalf("sessions after failed change = %d, want 1", n)
	}

	if err := uc.Execute(ctx, ChangePasswordInput{UserID: u.ID, CurrentPassword: "old password", NewPassword: "new password"}); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if n := sessions.activeCount(u.ID); n != 0 {
		t.Errorf("sessions after password change = %d, want 0", n)
	}
	if _, err := login.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "old password"}); !errors.Is(err, domerrors.ErrInvalidCredentials) {
		t.Errorf("old password after change: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := login.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "new password"}); err != nil {
		t.Errorf("new password after change: %v", err)
	}

	ghost := domain.NewUserID(uuid.New())
	err = uc.Execute(ctx, ChangePasswordInput{UserID: ghost, CurrentPassword: "x", NewPassword: "y"})
	if !errors.Is(err, domerrors.ErrUserNotFound) {
		t.Errorf("unknown user: got %v, want ErrUserNotFound", err)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	u := seedUser(users, "ada@example.com", "pw", domain.StatusActive)
	uc := NewAuthenticate(fakeIssuer{}, users)

	tok, _ := fakeIssuer{}.IssueAccessToken(domain.Principal{UserID: u.ID, GlobalStatus: u.GlobalStatus}, 900)
	p, err := uc.Execute(ctx, tok)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if p.UserID != u.ID || p.Email != u.Email {
		t.Errorf("principal = %+v, want user %v", p, u.ID)
	}

	// A ban invalidates already-issued tokens on the next request.
	_ = users.UpdateStatus(ctx, u.ID, domain.StatusBanned)
	if _, err := uc.Execute(ctx, tok); !errors.Is(err, domerrors.ErrInvalidToken) {
		t.Errorf("token of banned user: got %v, want ErrInvalidToken", err)
	}

	ghostTok, _ := fakeIssuer{}.IssueAccessToken(domain.Principal{UserID: domain.NewUserID(uuid.New())}, 900)
	if _, err := uc.Execute(ctx, ghostTok); !errors.Is(err, domerrors.ErrInvalidToken) {
		t.Errorf("token of deleted user: got %v, want ErrInvalidToken", err)
	}
	if _, err := uc.Execute(ctx, "garbage"); !errors.Is(err, domerrors.ErrInvalidToken) {
		t.Errorf("garbage token: got %v, want ErrInvalidToken", err)
	}
}

func TestAdminBanRevokesSessions(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	admin := seedUser(users, "root@example.com", "pw", domain.StatusAdmin)
	target := seedUser(users, "ada@example.com", "pw", domain.StatusActive)

	login := NewLogin(users, sessions, fakeHasher{}, fakeIssuer{}, nil, 900)
	if _, err := login.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	uc := NewAdminUsers(users, sessions, fakeHasher{})
	actor := domain.Principal{UserID: admin.ID, GlobalStatus: domain.StatusAdmin}

	if err := uc.Ban(ctx, actor, target.ID); err != nil {
		t.Fatalf("ban: %v", err)
	}
	got, _ := users.GetByID(ctx, target.ID)
	if got.GlobalStatus != domain.StatusBanned {
		t.Errorf("status after ban = %q, want BANNED", got.GlobalStatus)
	}
	if n := sessions.activeCount(target.ID); n != 0 {
		t.Errorf("sessions after ban = %d, want 0", n)
	}

	if err := uc.Unban(ctx, actor, target.ID); err != nil {
		t.Fatalf("unban: %v", err)
	}
	got, _ = users.GetByID(ctx, target.ID)
	if got.GlobalStatus != domain.StatusActive {
		t.Errorf("status after unban = %q, want ACTIVE", got.GlobalStatus)
	}

	if err := uc.Ban(ctx, actor, domain.NewUserID(uuid.New())); !errors.Is(err, domerrors.ErrUserNotFound) {
		t.Errorf("ban of unknown user: got %v, want ErrUserNotFound", err)
	}
}

func TestAdminRequiresAdminStatus(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	target := seedUser(users, "ada@example.com", "pw", domain.StatusActive)
	uc := NewAdminUsers(users, newFakeSessionRepo(), fakeHasher{})

	nonAdmin := domain.Principal{UserID: domain.NewUserID(uuid.New()), GlobalStatus: domain.StatusActive}
	if err := uc.Ban(ctx, nonAdmin, target.ID); !errors.Is(err, domerrors.ErrAdminRequired) {
		t.Errorf("ban by non-admin: got %v, want ErrAdminRequired", err)
	}
	if _, err := uc.List(ctx, nonAdmin, 50, 0); !errors.Is(err, domerrors.ErrAdminRequired) {
		t.Errorf("list by non-admin: got %v, want ErrAdminRequired", err)
	}
	if _, err := uc.ResetPassword(ctx, nonAdmin, target.ID); !errors.Is(err, domerrors.ErrAdminRequired) {
		t.Errorf("reset by non-admin: got %v, want ErrAdminRequired", err)
	}
}

func TestAdminResetPassword(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	admin := seedUser(users, "root@example.com", "pw", domain.StatusAdmin)
	target := seedUser(users, "ada@example.com", "old password", domain.StatusActive)

	login := NewLogin(users, sessions, fakeHasher{}, fakeIssuer{}, nil, 900)
	if _, err := login.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "old password"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	uc := NewAdminUsers(users, sessions, fakeHasher{})
	actor := domain.Principal{UserID: admin.ID, GlobalStatus: domain.StatusAdmin}

	temp, err := uc.ResetPassword(ctx, actor, target.ID)
	if err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if temp == "" {
		t.Fatal("empty temporary password")
	}
	if n := sessions.activeCount(target.ID); n != 0 {
		t.Errorf("sessions after reset = %d, want 0", n)
	}
	if _, err := login.Execute(ctx, LoginInput{Email: "ada@example.com", Password: temp}); err != nil {
		t.Errorf("login with temporary password: %v", err)
	}
	if _, err := login.Execute(ctx, LoginInput{Email: "ada@example.com", Password: "old password"}); !errors.Is(err, domerrors.ErrInvalidCredentials) {
		t.Errorf("old password after reset: got %v, want ErrInvalidCredentials", err)
	}
}
