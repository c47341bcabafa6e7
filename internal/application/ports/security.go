package ports

import "github.com/amirhosseinghanipour/atelier/internal/domain"

// PasswordHasher hashes and verifies passwords (Argon2id). Verify returns an
// error only for a malformed stored hash, which callers surface as an
// internal failure rather than a wrong password.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// TokenIssuer signs and validates access tokens (RS256). Claims carry the
// principal's identity and global status; verification needs no storage.
type TokenIssuer interface {
	IssueAccessToken(p domain.Principal, expiresInSeconds int64) (string, error)
	// VerifyAccessToken checks signature and expiry. Any tamper,
	// malformation, or expiry yields an error; the caller treats all of
	// them as one unauthenticated outcome.
	VerifyAccessToken(token string) (domain.Principal, error)
}
