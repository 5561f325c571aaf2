package auth

import (
	"errors"
	"net/http"
	"time"

	domainauth "github.com/NordCoder/crmdesk/internal/domain/auth"
	"github.com/NordCoder/crmdesk/internal/httpx"
	"go.uber.org/zap"
)

type CookieOpts struct {
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

type Opts struct {
	Logger       *zap.Logger
	Cookies      CookieOpts
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	MaxBodyBytes int64
}

type Controller struct {
	log     *zap.Logger
	uc      *Coordinator
	rs      *httpx.Responder
	o       Opts
	nowFunc func() time.Time
}

func NewController(uc *Coordinator, rs *httpx.Responder, o Opts) *Controller {
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if o.Cookies.Path == "" {
		o.Cookies.Path = "/"
	}
	if o.Cookies.SameSite == 0 {
		o.Cookies.SameSite = http.SameSiteLaxMode
	}
	return &Controller{log: log, uc: uc, rs: rs, o: o, nowFunc: time.Now}
}

func (c *Controller) Register(mux *http.ServeMux, mw *Middleware) {
	mux.HandleFunc("POST /api/auth/login", c.Login)
	mux.Handle("POST /api/auth/refresh-token", mw.RefreshClaims(http.HandlerFunc(c.Refresh)))
	mux.Handle("POST /api/auth/logout", mw.RequireAccess(http.HandlerFunc(c.Logout)))
	mux.Handle("GET /api/auth/me", mw.RequireAccess(http.HandlerFunc(c.Me)))
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

type loginResponse struct {
	domainauth.ClaimSet
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// webClient reports whether tokens go into http-only cookies instead of the body.
func webClient(r *http.Request) bool {
	return r.URL.Query().Get("client") == "web"
}

func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(w, r, c.o.MaxBodyBytes, &req); err != nil {
		msg := "Invalid request body"
		var he *httpx.Error
		if errors.As(err, &he) {
			msg = he.Message
		}
		c.rs.Fail(w, r, httpx.Unauthorized(msg))
		return
	}

	sess, err := c.uc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}

	resp := loginResponse{ClaimSet: sess.ClaimSet}
	if webClient(r) {
		c.setCookie(w, AccessCookie, sess.AccessToken, c.o.AccessTTL)
		c.setCookie(w, RefreshCookie, sess.RefreshToken, c.o.RefreshTTL)
	} else {
		resp.AccessToken = sess.AccessToken
		resp.RefreshToken = sess.RefreshToken
	}
	c.rs.OK(w, "Log in successful", resp)
}

func (c *Controller) Refresh(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromCtx(r.Context())
	access, err := c.uc.Refresh(r.Context(), claims, refreshTokenFrom(r))
	if err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}
	if webClient(r) {
		c.setCookie(w, AccessCookie, access, c.o.AccessTTL)
		c.rs.OK(w, "Access token refreshed successfully", nil)
		return
	}
	c.rs.OK(w, "Access token refreshed successfully", refreshResponse{AccessToken: access})
}

func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromCtx(r.Context())
	if err := c.uc.Logout(r.Context(), claims.Username); err != nil {
		c.rs.Fail(w, r, httpx.Internal(err))
		return
	}
	c.clearCookie(w, AccessCookie)
	c.clearCookie(w, RefreshCookie)
	c.rs.OK(w, "Logged out successfully", nil)
}

func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFromCtx(r.Context())
	c.rs.OK(w, "Authenticated user", claims.Identity())
}

func (c *Controller) mapErr(err error) error {
	switch {
	case errors.Is(err, domainauth.ErrInvalidCredentials):
		return httpx.Unauthorized("Invalid username or password")
	case errors.Is(err, domainauth.ErrMissingClaims):
		return httpx.Unauthorized("Unauthorized: missing or invalid access token")
	case errors.Is(err, domainauth.ErrInvalidRefreshToken):
		return httpx.Unauthorized("Invalid refresh token provided")
	default:
		return httpx.Internal(err)
	}
}

func (c *Controller) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     c.o.Cookies.Path,
		Domain:   c.o.Cookies.Domain,
		HttpOnly: true,
		Secure:   c.o.Cookies.Secure,
		SameSite: c.o.Cookies.SameSite,
		MaxAge:   int(ttl.Seconds()),
		Expires:  c.nowFunc().Add(ttl).UTC(),
	})
}

func (c *Controller) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     c.o.Cookies.Path,
		Domain:   c.o.Cookies.Domain,
		HttpOnly: true,
		Secure:   c.o.Cookies.Secure,
		SameSite: c.o.Cookies.SameSite,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}
