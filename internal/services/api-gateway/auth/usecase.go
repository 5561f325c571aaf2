package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	domainauth "github.com/NordCoder/crmdesk/internal/domain/auth"
	"github.com/NordCoder/crmdesk/internal/obs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var authOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "auth_requests_total",
	Help: "Login and refresh attempts by outcome.",
}, []string{"op", "result"})

// Coordinator runs the login and refresh flows over the verifier, the token
// issuer and the session store. It is the only writer of session entries.
type Coordinator struct {
	log        *zap.Logger
	verifier   domainauth.CredentialVerifier
	tokens     domainauth.TokenIssuer
	sessions   domainauth.SessionStore
	refreshTTL time.Duration
}

func NewCoordinator(
	log *zap.Logger,
	verifier domainauth.CredentialVerifier,
	tokens domainauth.TokenIssuer,
	sessions domainauth.SessionStore,
	refreshTTL time.Duration,
) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{log: log, verifier: verifier, tokens: tokens, sessions: sessions, refreshTTL: refreshTTL}
}

// Login returns ErrInvalidCredentials both for bad credentials and for a
// failed user lookup; the two are only told apart in logs and metrics. A
// failure after the credentials matched is returned as is.
func (c *Coordinator) Login(ctx context.Context, username, password string) (*domainauth.Session, error) {
	log := obs.WithTrace(ctx, c.log)

	claims, err := c.verifier.Verify(ctx, username, password)
	switch {
	case errors.Is(err, domainauth.ErrInvalidCredentials):
		authOutcomes.WithLabelValues("login", "invalid_credentials").Inc()
		log.Info("login rejected", zap.String("username", username))
		return nil, domainauth.ErrInvalidCredentials
	case err != nil:
		authOutcomes.WithLabelValues("login", "lookup_error").Inc()
		log.Error("login lookup failed", zap.String("username", username), zap.Error(err))
		return nil, domainauth.ErrInvalidCredentials
	}

	id := claims.Identity()
	access, err := c.tokens.IssueAccessToken(id)
	if err != nil {
		authOutcomes.WithLabelValues("login", "error").Inc()
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := c.tokens.IssueRefreshToken(id)
	if err != nil {
		authOutcomes.WithLabelValues("login", "error").Inc()
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := c.sessions.Put(ctx, id.Username, refresh, c.refreshTTL); err != nil {
		authOutcomes.WithLabelValues("login", "error").Inc()
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	authOutcomes.WithLabelValues("login", "ok").Inc()
	log.Info("login ok", zap.Int64("user_id", id.UserID), zap.Int("role_id", id.RoleID))
	return &domainauth.Session{ClaimSet: id, AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh mints a new access token when presented matches the stored
// refresh token for claims.Username. The stored token is left in place.
func (c *Coordinator) Refresh(ctx context.Context, claims *domainauth.ClaimSet, presented string) (string, error) {
	if claims == nil || claims.Username == "" {
		authOutcomes.WithLabelValues("refresh", "missing_claims").Inc()
		return "", domainauth.ErrMissingClaims
	}

	stored, err := c.sessions.Get(ctx, claims.Username)
	if err != nil {
		authOutcomes.WithLabelValues("refresh", "error").Inc()
		return "", fmt.Errorf("read refresh token: %w", err)
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		authOutcomes.WithLabelValues("refresh", "invalid_token").Inc()
		return "", domainauth.ErrInvalidRefreshToken
	}

	access, err := c.tokens.IssueAccessToken(claims.Identity())
	if err != nil {
		authOutcomes.WithLabelValues("refresh", "error").Inc()
		return "", fmt.Errorf("issue access token: %w", err)
	}
	authOutcomes.WithLabelValues("refresh", "ok").Inc()
	return access, nil
}

// Logout drops the session entry; a missing entry is not an error.
func (c *Coordinator) Logout(ctx context.Context, username string) error {
	if err := c.sessions.Delete(ctx, username); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}
