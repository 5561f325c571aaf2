package auth

import (
	"errors"
	"fmt"
	"time"

	domainauth "github.com/NordCoder/crmdesk/internal/domain/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type tokenClaims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	RoleID   int    `json:"roleId"`
	jwt.RegisteredClaims
}

type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Now           func() time.Time
}

// Issuer signs HS256 tokens with a separate secret and lifetime per kind.
// Every token gets a random jti, so two tokens minted in the same second for
// the same identity still differ.
type Issuer struct {
	cfg TokenConfig
}

var _ domainauth.TokenIssuer = (*Issuer)(nil)

func NewIssuer(cfg TokenConfig) (*Issuer, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("token secrets must not be empty")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token ttls must be positive")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Issuer{cfg: cfg}, nil
}

func (i *Issuer) AccessTTL() time.Duration  { return i.cfg.AccessTTL }
func (i *Issuer) RefreshTTL() time.Duration { return i.cfg.RefreshTTL }

func (i *Issuer) IssueAccessToken(c domainauth.ClaimSet) (string, error) {
	return i.sign(c, i.cfg.AccessSecret, i.cfg.AccessTTL)
}

func (i *Issuer) IssueRefreshToken(c domainauth.ClaimSet) (string, error) {
	return i.sign(c, i.cfg.RefreshSecret, i.cfg.RefreshTTL)
}

func (i *Issuer) sign(c domainauth.ClaimSet, secret []byte, ttl time.Duration) (string, error) {
	id := c.Identity()
	now := i.cfg.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID:   id.UserID,
		Username: id.Username,
		RoleID:   id.RoleID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	s, err := tok.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

func (i *Issuer) ParseAccessToken(token string) (*domainauth.ClaimSet, error) {
	return i.parse(token, i.cfg.AccessSecret, true)
}

// ParseAccessTokenAllowExpired checks the signature but not the expiry.
func (i *Issuer) ParseAccessTokenAllowExpired(token string) (*domainauth.ClaimSet, error) {
	return i.parse(token, i.cfg.AccessSecret, false)
}

func (i *Issuer) ParseRefreshToken(token string) (*domainauth.ClaimSet, error) {
	return i.parse(token, i.cfg.RefreshSecret, true)
}

func (i *Issuer) parse(token string, secret []byte, checkExpiry bool) (*domainauth.ClaimSet, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.cfg.Now),
	}
	if checkExpiry {
		opts = append(opts, jwt.WithExpirationRequired())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	var cl tokenClaims
	_, err := jwt.ParseWithClaims(token, &cl, func(*jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, domainauth.ErrTokenExpired
	default:
		return nil, fmt.Errorf("%w: %v", domainauth.ErrTokenInvalid, err)
	}
	if cl.Username == "" {
		return nil, fmt.Errorf("%w: no username", domainauth.ErrTokenInvalid)
	}

	out := &domainauth.ClaimSet{UserID: cl.UserID, Username: cl.Username, RoleID: cl.RoleID}
	if cl.IssuedAt != nil {
		out.IssuedAt = cl.IssuedAt.Time
	}
	if cl.ExpiresAt != nil {
		out.ExpiresAt = cl.ExpiresAt.Time
	}
	return out, nil
}
