package sysadmin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NordCoder/crmdesk/internal/domain/user"
	"github.com/NordCoder/crmdesk/internal/httpx"
	redisrepo "github.com/NordCoder/crmdesk/internal/repository/redis"
	"github.com/NordCoder/crmdesk/internal/services/api-gateway/auth"
	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const adminToken = "s3cret-admin"

type fakeUsers struct {
	created     []*user.User
	updated     []*user.User
	exists      bool
	updateOK    bool
	deactivated map[int64]string
	err         error
}

func (f *fakeUsers) Create(_ context.Context, u *user.User) error {
	if f.err != nil {
		return f.err
	}
	u.ID = int64(len(f.created) + 1)
	f.created = append(f.created, u)
	return nil
}

func (f *fakeUsers) GetActiveByUsername(_ context.Context, username string) (*user.User, error) {
	for _, u := range f.created {
		if u.Username == username && u.IsActive {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (f *fakeUsers) Exists(context.Context, string, string) (bool, error) { return f.exists, f.err }

func (f *fakeUsers) Update(_ context.Context, u *user.User) (bool, error) {
	f.updated = append(f.updated, u)
	return f.updateOK, f.err
}

func (f *fakeUsers) Deactivate(_ context.Context, id int64) (string, error) {
	name, ok := f.deactivated[id]
	if !ok {
		return "", user.ErrNotFound
	}
	delete(f.deactivated, id)
	return name, nil
}

type harness struct {
	h     http.Handler
	users *fakeUsers
	mr    *miniredis.Miniredis
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	iss, err := auth.NewIssuer(auth.TokenConfig{
		AccessSecret:  []byte("a"),
		RefreshSecret: []byte("r"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)

	users := &fakeUsers{deactivated: map[int64]string{}}
	rs := httpx.NewResponder(zap.NewNop(), "test")
	uc := New(zap.NewNop(), users, redisrepo.NewSessionStore(rdb), bcrypt.MinCost)
	mux := http.NewServeMux()
	NewController(uc, rs, 0).Register(mux, auth.NewMiddleware(iss, rs, adminToken))
	return &harness{h: mux, users: users, mr: mr}
}

func (h *harness) call(t *testing.T, method, target, body, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set(auth.AdminTokenHeader, token)
	}
	rec := httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)
	var env struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env.Message
}

const validRegister = `{"firstName":"Ana","lastName":"Lee","username":"ana","email":"ana@crm.io","password":"longenough","roleId":3}`

func TestRegister(t *testing.T) {
	h := newHarness(t)

	code, msg := h.call(t, http.MethodPost, "/api/sysadmin/register", validRegister, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "No admin token provided, authorization denied", msg)

	code, msg = h.call(t, http.MethodPost, "/api/sysadmin/register", validRegister, "wrong")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid admin token", msg)

	code, _ = h.call(t, http.MethodPost, "/api/sysadmin/register", validRegister, adminToken)
	require.Equal(t, http.StatusCreated, code)
	require.Len(t, h.users.created, 1)
	u := h.users.created[0]
	assert.True(t, u.IsActive)
	assert.Equal(t, user.StatusOffline, u.Status)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("longenough")))

	h.users.exists = true
	code, msg = h.call(t, http.MethodPost, "/api/sysadmin/register", validRegister, adminToken)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "User with this userId or username already exists", msg)
}

func TestRegister_PaddedPasswordCanLogIn(t *testing.T) {
	h := newHarness(t)
	body := `{"firstName":"Bob","lastName":"Ray","username":"bob","email":"bob@crm.io","password":" padded-password ","roleId":3}`

	code, _ := h.call(t, http.MethodPost, "/api/sysadmin/register", body, adminToken)
	require.Equal(t, http.StatusCreated, code)

	v := auth.NewBcryptVerifier(h.users)
	claims, err := v.Verify(context.Background(), "bob", " padded-password ")
	require.NoError(t, err)
	assert.Equal(t, "bob", claims.Username)

	claims, err = v.Verify(context.Background(), "bob", "padded-password")
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
}

func TestRegister_Validation(t *testing.T) {
	h := newHarness(t)
	body := strings.Replace(validRegister, `"roleId":3`, `"roleId":9`, 1)

	code, _ := h.call(t, http.MethodPost, "/api/sysadmin/register", body, adminToken)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Empty(t, h.users.created)
}

func TestUpdate(t *testing.T) {
	h := newHarness(t)
	body := `{"userId":3,"firstName":"Ana","lastName":"Lee","email":"ana@crm.io","roleId":2}`

	code, msg := h.call(t, http.MethodPut, "/api/sysadmin/update", body, adminToken)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found or inactive", msg)

	h.users.updateOK = true
	code, msg = h.call(t, http.MethodPut, "/api/sysadmin/update", body, adminToken)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User updated successfully", msg)
	assert.Equal(t, int64(3), h.users.updated[1].ID)
}

func TestDelete_DropsSession(t *testing.T) {
	h := newHarness(t)
	h.users.deactivated[5] = "ana"
	require.NoError(t, h.mr.Set("refresh_token:ana", "tok"))

	code, msg := h.call(t, http.MethodDelete, "/api/sysadmin/delete", `{"userId":5}`, adminToken)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User deleted successfully", msg)
	assert.False(t, h.mr.Exists("refresh_token:ana"))

	code, msg = h.call(t, http.MethodDelete, "/api/sysadmin/delete", `{"userId":5}`, adminToken)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found or already deleted", msg)
}

func TestDelete_SessionStoreDownStillDeactivates(t *testing.T) {
	h := newHarness(t)
	h.users.deactivated[5] = "ana"
	h.mr.Close()

	code, _ := h.call(t, http.MethodDelete, "/api/sysadmin/delete", `{"userId":5}`, adminToken)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, h.users.deactivated)
}

func TestRegister_RepoErrorIs500(t *testing.T) {
	h := newHarness(t)
	h.users.err = errors.New("db down")

	code, _ := h.call(t, http.MethodPost, "/api/sysadmin/register", validRegister, adminToken)
	assert.Equal(t, http.StatusInternalServerError, code)
}
