package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestResponder_OK(t *testing.T) {
	rs := NewResponder(zap.NewNop(), "dev")
	rec := httptest.NewRecorder()
	rs.OK(rec, "Fetched", []int{})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"status":200,"message":"Fetched","data":[]}`, rec.Body.String())
}

func TestResponder_FailTyped(t *testing.T) {
	rs := NewResponder(zap.NewNop(), "dev")
	rec := httptest.NewRecorder()
	rs.Fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), NotFound("Trader not found"))

	env := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Trader not found", env.Message)
	assert.Empty(t, env.Details)
}

func TestResponder_FailUntypedHidesDetailsInProd(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	cause := errors.New("pool exhausted")

	rec := httptest.NewRecorder()
	NewResponder(zap.NewNop(), "dev").Fail(rec, req, cause)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", env.Message)
	assert.Equal(t, "pool exhausted", env.Details)

	rec = httptest.NewRecorder()
	NewResponder(zap.NewNop(), "prod").Fail(rec, req, cause)
	assert.Empty(t, decodeEnvelope(t, rec).Details)
}

type loginBody struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func TestDecodeJSON(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
		msg    string
	}{
		{"ok", `{"username":"alice","password":"pw"}`, 0, ""},
		{"unknown field", `{"username":"alice","password":"pw","x":1}`, http.StatusBadRequest, "Invalid request body"},
		{"broken json", `{"username":`, http.StatusBadRequest, "Invalid request body"},
		{"empty", ``, http.StatusBadRequest, "Request body is required"},
		{"trailing data", `{"username":"a","password":"b"}{}`, http.StatusBadRequest, "Invalid request body"},
		{"missing field", `{"username":"alice"}`, http.StatusBadRequest, "password is required"},
		{"too large", `{"username":"` + strings.Repeat("a", 64) + `","password":"pw"}`, http.StatusRequestEntityTooLarge, "Request body too large"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dst loginBody
			err := DecodeJSON(httptest.NewRecorder(), req, 48, &dst)
			if tc.status == 0 {
				require.NoError(t, err)
				assert.Equal(t, "alice", dst.Username)
				return
			}
			var he *Error
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tc.status, he.Status)
			assert.Equal(t, tc.msg, he.Message)
		})
	}
}

func TestQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?search=%20acme%20&limit=10&bad=x&priority=high&from=2024-03-01&blank=", nil)

	assert.Equal(t, "acme", *QueryString(req, "search"))
	assert.Nil(t, QueryString(req, "blank"))
	assert.Nil(t, QueryString(req, "absent"))

	n, err := QueryInt(req, "limit")
	require.NoError(t, err)
	assert.Equal(t, 10, *n)

	_, err = QueryInt64(req, "bad")
	var he *Error
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Status)

	p, err := QueryEnum(req, "priority", "LOW", "MEDIUM", "HIGH")
	require.NoError(t, err)
	assert.Equal(t, "HIGH", *p)
	_, err = QueryEnum(req, "search", "LOW")
	require.Error(t, err)

	from, err := QueryTime(req, "from")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *from)
	_, err = QueryTime(req, "search")
	require.Error(t, err)
}

func TestPathInt64(t *testing.T) {
	mux := http.NewServeMux()
	var got int64
	var gotErr error
	mux.HandleFunc("GET /tasks/{id}", func(_ http.ResponseWriter, r *http.Request) {
		got, gotErr = PathInt64(r, "id")
	})

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tasks/12", nil))
	require.NoError(t, gotErr)
	assert.Equal(t, int64(12), got)

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tasks/abc", nil))
	require.Error(t, gotErr)
}

func TestRateLimit_PerIP(t *testing.T) {
	rs := NewResponder(zap.NewNop(), "dev")
	ml := newMultiLimiter(rate.Every(time.Hour), 2, time.Hour)
	h := rateLimit(ml, false, rs, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:1001").Code)
	rec := call("10.0.0.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, rateLimitMessage, decodeEnvelope(t, rec).Message)

	assert.Equal(t, http.StatusNoContent, call("10.0.0.2:1000").Code)
}

func TestMultiLimiter_EvictsIdle(t *testing.T) {
	ml := newMultiLimiter(rate.Every(time.Hour), 1, time.Minute)
	base := time.Now()
	ml.now = func() time.Time { return base }
	require.True(t, ml.allow("a"))

	ml.now = func() time.Time { return base.Add(2 * time.Minute) }
	require.True(t, ml.allow("b"))
	_, ok := ml.entries["a"]
	assert.False(t, ok)
}

func TestMultiLimiter_SweepsOncePerTTL(t *testing.T) {
	ml := newMultiLimiter(rate.Every(time.Hour), 1, time.Minute)
	base := time.Now()
	ml.lastSweep = base
	ml.entries["old"] = &limBucket{lim: rate.NewLimiter(ml.limit, ml.burst), lastSeen: base.Add(-10 * time.Minute)}

	ml.now = func() time.Time { return base.Add(30 * time.Second) }
	require.True(t, ml.allow("a"))
	_, ok := ml.entries["old"]
	assert.True(t, ok, "no sweep before ttl has passed")

	ml.now = func() time.Time { return base.Add(61 * time.Second) }
	require.True(t, ml.allow("b"))
	_, ok = ml.entries["old"]
	assert.False(t, ok)
	_, ok = ml.entries["a"]
	assert.True(t, ok)
	assert.Equal(t, base.Add(61*time.Second), ml.lastSweep)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	assert.Equal(t, "192.0.2.1", clientIP(req, false))
	assert.Equal(t, "203.0.113.9", clientIP(req, true))
}

func TestRecover(t *testing.T) {
	rs := NewResponder(zap.NewNop(), "prod")
	h := Recover(zap.NewNop(), rs, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Internal server error", env.Message)
	assert.Empty(t, env.Details)
}
