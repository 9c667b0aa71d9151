package domain

import "time"

// TokenIssuer issues bearer tokens for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a bearer token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// AccessTokenHasher creates and checks the secret tokens token-based participants use to open
// their result.
type AccessTokenHasher interface {
	Generate() (string, error)
	Hash(token string) (string, error)
	Compare(hash, token string) error
}
