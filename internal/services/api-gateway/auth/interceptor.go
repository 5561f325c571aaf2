package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"slices"
	"strings"

	domainauth "github.com/NordCoder/crmdesk/internal/domain/auth"
	"github.com/NordCoder/crmdesk/internal/httpx"
)

const (
	AccessCookie       = "accessToken"
	RefreshCookie      = "refreshToken"
	refreshTokenHeader = "X-Refresh-Token"
	AdminTokenHeader   = "X-Admin-Token"
)

type ctxKey int

const claimsKey ctxKey = 1

func WithClaims(ctx context.Context, c *domainauth.ClaimSet) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func ClaimsFromCtx(ctx context.Context) (*domainauth.ClaimSet, bool) {
	c, ok := ctx.Value(claimsKey).(*domainauth.ClaimSet)
	return c, ok && c != nil
}

type Middleware struct {
	tokens     domainauth.TokenIssuer
	rs         *httpx.Responder
	adminToken string
}

func NewMiddleware(tokens domainauth.TokenIssuer, rs *httpx.Responder, adminToken string) *Middleware {
	return &Middleware{tokens: tokens, rs: rs, adminToken: adminToken}
}

// RequireAccess rejects the request unless it carries a valid, unexpired
// access token, and puts the verified claims into the request context.
func (m *Middleware) RequireAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := accessTokenFrom(r)
		if raw == "" {
			m.rs.Fail(w, r, httpx.Unauthorized("No access token provided, authorization denied"))
			return
		}
		claims, err := m.tokens.ParseAccessToken(raw)
		switch {
		case errors.Is(err, domainauth.ErrTokenExpired):
			m.rs.Fail(w, r, httpx.Unauthorized("Access token expired"))
			return
		case err != nil:
			m.rs.Fail(w, r, httpx.Unauthorized("Invalid access token"))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RefreshClaims attaches claims for the refresh flow without rejecting
// anything itself. An access token is accepted past its expiry but must
// carry a valid signature; without one the refresh token is verified
// instead. The handler answers 401 when no claims end up in the context.
func (m *Middleware) RefreshClaims(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			claims *domainauth.ClaimSet
			err    error
		)
		if raw := accessTokenFrom(r); raw != "" {
			claims, err = m.tokens.ParseAccessTokenAllowExpired(raw)
		} else if raw := refreshTokenFrom(r); raw != "" {
			claims, err = m.tokens.ParseRefreshToken(raw)
		}
		if err == nil && claims != nil {
			r = r.WithContext(WithClaims(r.Context(), claims))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole must run after RequireAccess.
func (m *Middleware) RequireRole(roleIDs ...int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromCtx(r.Context())
			if !ok {
				m.rs.Fail(w, r, httpx.Unauthorized("Unauthorized: missing or invalid access token"))
				return
			}
			if !slices.Contains(roleIDs, claims.RoleID) {
				m.rs.Fail(w, r, httpx.Forbidden("Access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) RequireAdminToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := strings.TrimSpace(r.Header.Get(AdminTokenHeader))
		if got == "" {
			m.rs.Fail(w, r, httpx.Unauthorized("No admin token provided, authorization denied"))
			return
		}
		if m.adminToken == "" || subtle.ConstantTimeCompare([]byte(got), []byte(m.adminToken)) != 1 {
			m.rs.Fail(w, r, httpx.Unauthorized("Invalid admin token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func accessTokenFrom(r *http.Request) string {
	if c, err := r.Cookie(AccessCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return bearer(r)
}

func refreshTokenFrom(r *http.Request) string {
	if c, err := r.Cookie(RefreshCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return strings.TrimSpace(r.Header.Get(refreshTokenHeader))
}

func bearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
		return strings.TrimSpace(v[7:])
	}
	return ""
}
