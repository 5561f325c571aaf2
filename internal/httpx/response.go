package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/NordCoder/crmdesk/internal/obs"
	"go.uber.org/zap"
)

// Envelope is the body of every JSON response the API writes.
type Envelope struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Details string `json:"details,omitempty"`
}

// Error carries the status and public message for a failed request. Err is
// the internal cause and is only exposed outside prod on 5xx responses.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(status int, msg string, cause error) *Error {
	return &Error{Status: status, Message: msg, Err: cause}
}

func BadRequest(msg string) *Error   { return &Error{Status: http.StatusBadRequest, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Status: http.StatusUnauthorized, Message: msg} }
func Forbidden(msg string) *Error    { return &Error{Status: http.StatusForbidden, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Status: http.StatusNotFound, Message: msg} }
func Conflict(msg string) *Error     { return &Error{Status: http.StatusConflict, Message: msg} }

func Internal(cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Internal server error", Err: cause}
}

type Responder struct {
	log           *zap.Logger
	exposeDetails bool
}

// NewResponder returns a Responder; env "prod" hides 5xx error details.
func NewResponder(log *zap.Logger, env string) *Responder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Responder{log: log, exposeDetails: env != "prod"}
}

func (rs *Responder) JSON(w http.ResponseWriter, status int, msg string, data any) {
	write(w, status, Envelope{
		Success: status < http.StatusBadRequest,
		Status:  status,
		Message: msg,
		Data:    data,
	})
}

func (rs *Responder) OK(w http.ResponseWriter, msg string, data any) {
	rs.JSON(w, http.StatusOK, msg, data)
}

func (rs *Responder) Created(w http.ResponseWriter, msg string, data any) {
	rs.JSON(w, http.StatusCreated, msg, data)
}

// Fail renders err. Anything that is not an *Error becomes a 500.
func (rs *Responder) Fail(w http.ResponseWriter, r *http.Request, err error) {
	var he *Error
	if !errors.As(err, &he) {
		he = Internal(err)
	}

	env := Envelope{Status: he.Status, Message: he.Message}
	if he.Status >= http.StatusInternalServerError {
		obs.WithTrace(r.Context(), rs.log).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(he.Err),
		)
		if rs.exposeDetails && he.Err != nil {
			env.Details = he.Err.Error()
		}
	}
	write(w, he.Status, env)
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
