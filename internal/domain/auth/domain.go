package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token provided")
	ErrMissingClaims       = errors.New("missing or invalid access token")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("invalid token")
)

// ClaimSet is the identity embedded in both access and refresh tokens.
// IssuedAt and ExpiresAt are populated only when a token is parsed; the
// issuer ignores them.
type ClaimSet struct {
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	RoleID    int       `json:"roleId"`
	IssuedAt  time.Time `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// Identity drops the issuer-stamped fields.
func (c ClaimSet) Identity() ClaimSet {
	return ClaimSet{UserID: c.UserID, Username: c.Username, RoleID: c.RoleID}
}

type Session struct {
	ClaimSet
	AccessToken  string
	RefreshToken string
}

const (
	RoleAdmin   = 1
	RoleManager = 2
	RoleUser    = 3
)
