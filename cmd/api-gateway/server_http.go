package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	config "github.com/NordCoder/crmdesk/internal/config/api-gateway"
	domainauth "github.com/NordCoder/crmdesk/internal/domain/auth"
	"github.com/NordCoder/crmdesk/internal/httpx"
	"github.com/NordCoder/crmdesk/internal/obs"
	pg "github.com/NordCoder/crmdesk/internal/repository/postgres"
	"github.com/NordCoder/crmdesk/internal/services/api-gateway/auth"
	"github.com/NordCoder/crmdesk/internal/services/api-gateway/sysadmin"
	"github.com/NordCoder/crmdesk/internal/services/api-gateway/task"
	"github.com/NordCoder/crmdesk/internal/services/api-gateway/trader"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type deps struct {
	db       *pg.DB
	sessions domainauth.SessionStore
}

func buildHTTPServer(cfg *config.Config, logger *zap.Logger, d deps) (*http.Server, error) {
	issuer, err := auth.NewIssuer(auth.TokenConfig{
		AccessSecret:  []byte(cfg.Auth.AccessSecret),
		RefreshSecret: []byte(cfg.Auth.RefreshSecret),
		AccessTTL:     cfg.Auth.AccessTTL,
		RefreshTTL:    cfg.Auth.RefreshTTL,
	})
	if err != nil {
		return nil, err
	}

	rs := httpx.NewResponder(logger, cfg.App.Env)
	mw := auth.NewMiddleware(issuer, rs, cfg.Auth.AdminToken)
	users := pg.NewUserRepo(d.db)
	tx := pg.NewTransactor(d.db, logger)
	events := pg.NewOutboxRepo(d.db)
	maxBody := cfg.HTTP.MaxBodyBytes

	mux := http.NewServeMux()

	coord := auth.NewCoordinator(logger.Named("auth"), auth.NewBcryptVerifier(users), issuer, d.sessions, cfg.Auth.RefreshTTL)
	auth.NewController(coord, rs, auth.Opts{
		Logger: logger.Named("auth"),
		Cookies: auth.CookieOpts{
			Domain:   cfg.Auth.CookieDomain,
			Path:     cfg.Auth.CookiePath,
			Secure:   cfg.Auth.CookieSecure,
			SameSite: parseSameSite(cfg.Auth.CookieSameSite),
		},
		AccessTTL:    cfg.Auth.AccessTTL,
		RefreshTTL:   cfg.Auth.RefreshTTL,
		MaxBodyBytes: maxBody,
	}).Register(mux, mw)

	sysadmin.NewController(
		sysadmin.New(logger.Named("sysadmin"), users, d.sessions, cfg.Auth.BcryptCost),
		rs, maxBody,
	).Register(mux, mw)

	trader.NewController(logger.Named("trader"),
		trader.New(pg.NewTraderRepo(d.db), tx, events, nil),
		rs, maxBody,
	).Register(mux, mw)

	task.NewController(logger.Named("task"),
		task.New(pg.NewTaskRepo(d.db), tx, events, nil),
		rs, maxBody,
	).Register(mux, mw)

	healthy := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Healthy"}`))
	}
	mux.HandleFunc("GET /health", healthy)
	mux.HandleFunc("GET /{$}", healthy)
	obs.RegisterDiagnostics(mux, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return errors.Join(d.db.Ping(hctx), d.sessions.Ping(hctx))
	})

	var handler http.Handler = obs.HTTPMiddleware(logger.Named("http"), mux)
	handler = httpx.MaxBody(maxBody, handler)
	handler = httpx.RateLimit(cfg.HTTP.AsRateLimitConfig(), rs, handler)
	handler = httpx.Recover(logger, rs, handler)
	handler = otelhttp.NewHandler(handler, cfg.App.Name)
	handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Refresh-Token", auth.AdminTokenHeader},
		AllowCredentials: true,
	}).Handler(handler)

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ErrorLog:          zap.NewStdLog(logger.Named("http")),
	}, nil
}

func serveHTTP(srv *http.Server, logger *zap.Logger) error {
	logger.Info("http listening", zap.String("addr", srv.Addr))
	return srv.ListenAndServe()
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
