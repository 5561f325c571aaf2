package httpx

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/NordCoder/crmdesk/internal/obs"
	"go.uber.org/zap"
)

// Recover turns a handler panic into a 500 envelope. http.ErrAbortHandler is
// re-raised so the server can abort the connection.
func Recover(log *zap.Logger, rs *Responder, next http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			obs.WithTrace(r.Context(), log).Error("panic in handler",
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
			rs.Fail(w, r, Internal(fmt.Errorf("panic: %v", rec)))
		}()
		next.ServeHTTP(w, r)
	})
}

// MaxBody caps every request body; DecodeJSON applies the same limit per call.
func MaxBody(limit int64, next http.Handler) http.Handler {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}
