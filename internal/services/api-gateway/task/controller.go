package task

import (
	"errors"
	"net/http"

	domainauth "github.com/NordCoder/crmdesk/internal/domain/auth"
	"github.com/NordCoder/crmdesk/internal/domain/task"
	"github.com/NordCoder/crmdesk/internal/httpx"
	"github.com/NordCoder/crmdesk/internal/repository/postgres"
	"github.com/NordCoder/crmdesk/internal/services/api-gateway/auth"
	"go.uber.org/zap"
)

var (
	priorities = []string{"LOW", "MEDIUM", "HIGH"}
	statuses   = []string{"IN_PROGRESS", "COMPLETED", "CANCELLED"}
	scopes     = []string{string(task.ScopeAll), string(task.ScopeUnassigned), string(task.ScopeMine)}
)

type Controller struct {
	log     *zap.Logger
	uc      *Usecase
	rs      *httpx.Responder
	maxBody int64
}

func NewController(log *zap.Logger, uc *Usecase, rs *httpx.Responder, maxBody int64) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{log: log, uc: uc, rs: rs, maxBody: maxBody}
}

func (c *Controller) Register(mux *http.ServeMux, mw *auth.Middleware) {
	protect := func(h http.HandlerFunc) http.Handler { return mw.RequireAccess(h) }
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return mw.RequireAccess(mw.RequireRole(domainauth.RoleAdmin)(h))
	}

	mux.Handle("POST /api/tasks/task-types", adminOnly(c.InsertType))
	mux.Handle("PUT /api/tasks/task-types/active", adminOnly(c.SetActiveTypes))
	mux.Handle("POST /api/tasks", protect(c.Insert))
	mux.Handle("PUT /api/tasks", protect(c.Update))
	mux.Handle("POST /api/tasks/{id}/comments", protect(c.AddComment))
	mux.Handle("GET /api/tasks/{id}/comments", protect(c.Comments))
	mux.Handle("GET /api/tasks/unassigned", protect(c.Unassigned))
	mux.Handle("GET /api/tasks/my", protect(c.Mine))
	mux.Handle("GET /api/tasks/my/stats", protect(c.MyStats))
	mux.Handle("GET /api/tasks/filter", protect(c.Filter))
	mux.Handle("GET /api/tasks/search", protect(c.Search))
	mux.Handle("GET /api/tasks/clients", protect(c.Clients))
}

type taskTypeRequest struct {
	TaskTypeID   int    `json:"taskTypeId" validate:"required,gt=0"`
	TaskTypeName string `json:"taskTypeName" validate:"required,max=100"`
	TaskTypeCode string `json:"taskTypeCode" validate:"required,max=20"`
	IsActive     *bool  `json:"isActive"`
}

type activeTypesRequest struct {
	ActiveTaskTypeIDs []int `json:"activeTaskTypeIds" validate:"omitempty,dive,gt=0"`
}

type insertRequest struct {
	TaskTypeID          int     `json:"taskTypeId" validate:"required,gt=0"`
	TransactionID       int64   `json:"transactionId" validate:"required,gt=0"`
	Status              string  `json:"status" validate:"required,oneof=IN_PROGRESS COMPLETED CANCELLED"`
	Subject             string  `json:"subject" validate:"required,max=255"`
	Description         string  `json:"description" validate:"required"`
	AssignedToUserID    *int64  `json:"assignedToUserId" validate:"omitempty,gt=0"`
	Priority            *string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Reminder            bool    `json:"reminder"`
	CallDurationSeconds *int32  `json:"callDurationSeconds" validate:"omitempty,gte=0"`
	Location            *string `json:"location" validate:"omitempty,max=255"`
	ChainID             *int64  `json:"chainId" validate:"omitempty,gt=0"`
}

type updateRequest struct {
	TaskID              int64   `json:"taskId" validate:"required,gt=0"`
	Status              string  `json:"status" validate:"required,oneof=IN_PROGRESS COMPLETED CANCELLED"`
	Subject             string  `json:"subject" validate:"required,max=255"`
	Description         string  `json:"description" validate:"required"`
	AssignedToUserID    *int64  `json:"assignedToUserId" validate:"omitempty,gt=0"`
	Priority            *string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Reminder            bool    `json:"reminder"`
	CallDurationSeconds *int32  `json:"callDurationSeconds" validate:"omitempty,gte=0"`
	Location            *string `json:"location" validate:"omitempty,max=255"`
}

type commentRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
}

func (c *Controller) InsertType(w http.ResponseWriter, r *http.Request) {
	var req taskTypeRequest
	if err := httpx.DecodeJSON(w, r, c.maxBody, &req); err != nil {
		c.rs.Fail(w, r, err)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	id, err := c.uc.InsertType(r.Context(), task.TaskType{
		TaskTypeID:   req.TaskTypeID,
		TaskTypeName: req.TaskTypeName,
		TaskTypeCode: req.TaskTypeCode,
		IsActive:     active,
	})
	if err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}
	c.rs.OK(w, "Task type inserted successfully", map[string]int{"task_type_id": id})
}

func (c *Controller) SetActiveTypes(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromCtx(r.Context())
	var req activeTypesRequest
	if err := httpx.DecodeJSON(w, r, c.maxBody, &req); err != nil {
		c.rs.Fail(w, r, err)
		return
	}
	if err := c.uc.SetActiveTypes(r.Context(), claims.UserID, req.ActiveTaskTypeIDs); err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}
	c.rs.OK(w, "Active task types updated successfully", nil)
}

func (c *Controller) Insert(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromCtx(r.Context())
	var req insertRequest
	if err := httpx.DecodeJSON(w, r, c.maxBody, &req); err != nil {
		c.rs.Fail(w, r, err)
		return
	}
	id, err := c.uc.Insert(r.Context(), claims.UserID, task.Insert{
		TaskTypeID:          req.TaskTypeID,
		TransactionID:       req.TransactionID,
		Status:              req.Status,
		Subject:             req.Subject,
		Description:         req.Description,
		AssignedToUserID:    req.AssignedToUserID,
		Priority:            req.Priority,
		Reminder:            req.Reminder,
		CallDurationSeconds: req.CallDurationSeconds,
		Location:            req.Location,
		ChainID:             req.ChainID,
	})
	if err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}
	c.rs.OK(w, "Task inserted successfully", map[string]int64{"task_id": id})
}

func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromCtx(r.Context())
	var req updateRequest
	if err := httpx.DecodeJSON(w, r, c.maxBody, &req); err != nil {
		c.rs.Fail(w, r, err)
		return
	}
	err := c.uc.Update(r.Context(), claims.UserID, task.Update{
		TaskID:              req.TaskID,
		Status:              req.Status,
		Subject:             req.Subject,
		Description:         req.Description,
		AssignedToUserID:    req.AssignedToUserID,
		Priority:            req.Priority,
		Reminder:            req.Reminder,
		CallDurationSeconds: req.CallDurationSeconds,
		Location:            req.Location,
	})
	if err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}
	c.rs.OK(w, "Task updated successfully", nil)
}

func (c *Controller) AddComment(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromCtx(r.Context())
	taskID, err := httpx.PathInt64(r, "id")
	if err != nil {
		c.rs.Fail(w, r, err)
		return
	}
	var req commentRequest
	if err := httpx.DecodeJSON(w, r, c.maxBody, &req); err != nil {
		c.rs.Fail(w, r, err)
		return
	}
	id, err := c.uc.AddComment(r.Context(), claims.UserID, taskID, req.Comment)
	if err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}
	c.rs.Created(w, "Comment added successfully", map[string]int64{"commentId": id})
}

func (c *Controller) Comments(w http.ResponseWriter, r *http.Request) {
	taskID, err := httpx.PathInt64(r, "id")
	if err != nil {
		c.rs.Fail(w, r, err)
		return
	}
	rows, err := c.uc.Comments(r.Context(), taskID)
	if err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}
	c.rs.OK(w, "Comment fetched successfully", map[string]any{"comments": rows})
}

func (c *Controller) Unassigned(w http.ResponseWriter, r *http.Request) {
	rows, err := c.uc.Unassigned(r.Context())
	if err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}
	c.rs.OK(w, "Unassigned tasks fetched successfully", map[string]any{"tasks": rows})
}

func (c *Controller) Mine(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromCtx(r.Context())
	rows, err := c.uc.Mine(r.Context(), claims.UserID)
	if err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}
	c.rs.OK(w, "My tasks fetched successfully", map[string]any{"tasks": rows})
}

func (c *Controller) MyStats(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromCtx(r.Context())
	st, err := c.uc.MyStats(r.Context(), claims.UserID)
	if err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}
	c.rs.OK(w, "My task stats fetched successfully", st)
}

func (c *Controller) Filter(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		c.rs.Fail(w, r, err)
		return
	}
	rows, err := c.uc.Filter(r.Context(), f)
	if err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}
	c.rs.OK(w, "Tasks filtered successfully", map[string]any{"tasks": rows})
}

func (c *Controller) Search(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromCtx(r.Context())
	f, err := filterFromQuery(r)
	if err != nil {
		c.rs.Fail(w, r, err)
		return
	}
	scope, err := httpx.QueryEnum(r, "scope", scopes...)
	if err != nil {
		c.rs.Fail(w, r, err)
		return
	}
	s := task.Search{Filter: f, Search: httpx.QueryString(r, "search")}
	if scope != nil {
		s.Scope = task.Scope(*scope)
	}
	rows, err := c.uc.Search(r.Context(), claims.UserID, s)
	if err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}
	c.rs.OK(w, "Tasks fetched successfully", map[string]any{"tasks": rows})
}

func (c *Controller) Clients(w http.ResponseWriter, r *http.Request) {
	rows, err := c.uc.ClientsForForm(r.Context(), httpx.QueryString(r, "search"))
	if err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}
	c.rs.OK(w, "Clients fetched successfully", map[string]any{"clients": rows})
}

func filterFromQuery(r *http.Request) (task.Filter, error) {
	var (
		f   task.Filter
		err error
	)
	if f.TaskID, err = httpx.QueryInt64(r, "taskId"); err != nil {
		return f, err
	}
	if f.TaskTypeID, err = httpx.QueryInt(r, "taskTypeId"); err != nil {
		return f, err
	}
	if f.DateFrom, err = httpx.QueryTime(r, "dateFrom"); err != nil {
		return f, err
	}
	if f.DateTo, err = httpx.QueryTime(r, "dateTo"); err != nil {
		return f, err
	}
	if f.Priority, err = httpx.QueryEnum(r, "priority", priorities...); err != nil {
		return f, err
	}
	if f.Status, err = httpx.QueryEnum(r, "status", statuses...); err != nil {
		return f, err
	}
	f.ClientCodePrefix = httpx.QueryString(r, "clientCodePrefix")
	f.ClientNamePrefix = httpx.QueryString(r, "clientNamePrefix")
	f.ClientTimPrefix = httpx.QueryString(r, "clientTimPrefix")
	f.ClientEmailPrefix = httpx.QueryString(r, "clientEmailPrefix")
	return f, nil
}

func (c *Controller) mapErr(err error) error {
	switch {
	case errors.Is(err, task.ErrNotFound):
		return httpx.NotFound("Task not found")
	case errors.Is(err, postgres.ErrConflict):
		return httpx.Conflict("Task already exists")
	case errors.Is(err, postgres.ErrConstraint):
		return httpx.NewError(http.StatusBadRequest, "Referenced record does not exist", err)
	default:
		return httpx.Internal(err)
	}
}
