package auth

import (
	"context"
	"time"
)

// SessionStore keeps the single currently valid refresh token per username.
// Get returns "" with a nil error when there is no live entry.
type SessionStore interface {
	Put(ctx context.Context, username, token string, ttl time.Duration) error
	Get(ctx context.Context, username string) (string, error)
	Delete(ctx context.Context, username string) error
	Ping(ctx context.Context) error
}

type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (*ClaimSet, error)
}

type TokenIssuer interface {
	IssueAccessToken(c ClaimSet) (string, error)
	IssueRefreshToken(c ClaimSet) (string, error)
	ParseAccessToken(token string) (*ClaimSet, error)
	ParseAccessTokenAllowExpired(token string) (*ClaimSet, error)
	ParseRefreshToken(token string) (*ClaimSet, error)
}
