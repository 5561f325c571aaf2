package task

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domainauth "github.com/NordCoder/crmdesk/internal/domain/auth"
	"github.com/NordCoder/crmdesk/internal/domain/task"
	"github.com/NordCoder/crmdesk/internal/httpx"
	"github.com/NordCoder/crmdesk/internal/services/api-gateway/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool            `json:"success"`
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	h    http.Handler
	repo *fakeRepo
	ob   *fakeOutbox
	iss  *auth.Issuer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	iss, err := auth.NewIssuer(auth.TokenConfig{
		AccessSecret:  []byte("a"),
		RefreshSecret: []byte("r"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)
	rs := httpx.NewResponder(zap.NewNop(), "test")
	repo := &fakeRepo{nextID: 55}
	ob := &fakeOutbox{}
	ctrl := NewController(zap.NewNop(), New(repo, &fakeTx{}, ob, fixedNow), rs, 0)
	mux := http.NewServeMux()
	ctrl.Register(mux, auth.NewMiddleware(iss, rs, ""))
	return &harness{h: mux, repo: repo, ob: ob, iss: iss}
}

func (h *harness) call(t *testing.T, method, target, body string, role int) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if role != 0 {
		tok, err := h.iss.IssueAccessToken(domainauth.ClaimSet{UserID: 4, Username: "bob", RoleID: role})
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	h.h.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestTaskTypes_AdminOnly(t *testing.T) {
	h := newHarness(t)
	body := `{"taskTypeId":3,"taskTypeName":"Call","taskTypeCode":"CALL"}`

	rec, env := h.call(t, http.MethodPost, "/api/tasks/task-types", body, domainauth.RoleManager)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied", env.Message)

	rec, env = h.call(t, http.MethodPost, "/api/tasks/task-types", body, domainauth.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"task_type_id":3}`, string(env.Data))
	require.Len(t, h.repo.types, 1)
	assert.True(t, h.repo.types[0].IsActive)

	rec, _ = h.call(t, http.MethodPut, "/api/tasks/task-types/active", `{"activeTaskTypeIds":[1,3]}`, domainauth.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4), h.repo.active[0].UpdatedByUserID)
}

func TestInsertTask(t *testing.T) {
	h := newHarness(t)
	body := `{"taskTypeId":1,"transactionId":10,"status":"IN_PROGRESS","subject":"Call back","description":"re: invoice","priority":"HIGH"}`

	rec, env := h.call(t, http.MethodPost, "/api/tasks", body, domainauth.RoleUser)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task inserted successfully", env.Message)
	assert.JSONEq(t, `{"task_id":55}`, string(env.Data))
	require.Len(t, h.repo.inserted, 1)
	assert.Equal(t, int64(4), h.repo.inserted[0].HandledByUserID)
	assert.Equal(t, "HIGH", *h.repo.inserted[0].Priority)

	bad := strings.Replace(body, `"HIGH"`, `"URGENT"`, 1)
	rec, _ = h.call(t, http.MethodPost, "/api/tasks", bad, domainauth.RoleUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComments(t *testing.T) {
	h := newHarness(t)

	rec, env := h.call(t, http.MethodPost, "/api/tasks/12/comments", `{"comment":"left a voicemail"}`, domainauth.RoleUser)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Comment added successfully", env.Message)
	assert.JSONEq(t, `{"commentId":55}`, string(env.Data))
	assert.Equal(t, int64(12), h.repo.comments[0].TaskID)

	h.repo.err = task.ErrNotFound
	rec, env = h.call(t, http.MethodPost, "/api/tasks/12/comments", `{"comment":"x"}`, domainauth.RoleUser)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", env.Message)

	rec, _ = h.call(t, http.MethodGet, "/api/tasks/0/comments", "", domainauth.RoleUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFilterQuery(t *testing.T) {
	h := newHarness(t)

	rec, env := h.call(t, http.MethodGet, "/api/tasks/filter?priority=high&dateFrom=2025-01-02&clientCodePrefix=TR", "", domainauth.RoleUser)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Tasks filtered successfully", env.Message)
	assert.JSONEq(t, `{"tasks":[]}`, string(env.Data))
	f := h.repo.filters[0]
	assert.Equal(t, "HIGH", *f.Priority)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), *f.DateFrom)
	assert.Equal(t, "TR", *f.ClientCodePrefix)
	assert.Nil(t, f.Status)

	for _, q := range []string{"status=OPEN", "taskId=x", "dateTo=yesterday"} {
		rec, _ = h.call(t, http.MethodGet, "/api/tasks/filter?"+q, "", domainauth.RoleUser)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestSearchAndMine(t *testing.T) {
	h := newHarness(t)

	rec, _ := h.call(t, http.MethodGet, "/api/tasks/search?scope=my&search=acme", "", domainauth.RoleUser)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.repo.searches, 1)
	assert.Equal(t, task.ScopeMine, h.repo.searches[0].Scope)
	assert.Equal(t, "acme", *h.repo.searches[0].Search)
	assert.Equal(t, int64(4), h.repo.searchBy)

	rec, _ = h.call(t, http.MethodGet, "/api/tasks/search?scope=everyone", "", domainauth.RoleUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.repo.stats = task.MyStats{TotalTasks: 5, AssignedToday: 1, TotalUrgent: 2}
	rec, env := h.call(t, http.MethodGet, "/api/tasks/my/stats", "", domainauth.RoleUser)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalTasks":5,"assignedToday":1,"totalUrgent":2}`, string(env.Data))

	rec, env = h.call(t, http.MethodGet, "/api/tasks/my", "", domainauth.RoleUser)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "My tasks fetched successfully", env.Message)
	assert.Equal(t, int64(4), h.repo.mineFor)

	rec, _ = h.call(t, http.MethodGet, "/api/tasks/clients?search=ac", "", domainauth.RoleUser)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ac", *h.repo.clientQ)
}
