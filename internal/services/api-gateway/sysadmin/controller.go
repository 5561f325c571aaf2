package sysadmin

import (
	"errors"
	"net/http"

	"github.com/NordCoder/crmdesk/internal/domain/user"
	"github.com/NordCoder/crmdesk/internal/httpx"
	"github.com/NordCoder/crmdesk/internal/services/api-gateway/auth"
)

type Controller struct {
	uc      *Usecase
	rs      *httpx.Responder
	maxBody int64
}

func NewController(uc *Usecase, rs *httpx.Responder, maxBody int64) *Controller {
	return &Controller{uc: uc, rs: rs, maxBody: maxBody}
}

func (c *Controller) Register(mux *http.ServeMux, mw *auth.Middleware) {
	mux.Handle("POST /api/sysadmin/register", mw.RequireAdminToken(http.HandlerFunc(c.RegisterUser)))
	mux.Handle("PUT /api/sysadmin/update", mw.RequireAdminToken(http.HandlerFunc(c.UpdateUser)))
	mux.Handle("DELETE /api/sysadmin/delete", mw.RequireAdminToken(http.HandlerFunc(c.DeleteUser)))
}

type registerRequest struct {
	FirstName   string  `json:"firstName" validate:"required,max=100"`
	LastName    string  `json:"lastName" validate:"required,max=100"`
	Username    string  `json:"username" validate:"required,min=3,max=50"`
	Email       string  `json:"email" validate:"required,email,max=255"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	MobilePhone *string `json:"mobilePhone" validate:"omitempty,max=50"`
	RoleID      int     `json:"roleId" validate:"required,oneof=1 2 3"`
	Status      string  `json:"status" validate:"omitempty,oneof=ONLINE OFFLINE"`
	IsActive    *bool   `json:"isActive"`
}

type updateRequest struct {
	UserID      int64   `json:"userId" validate:"required,gt=0"`
	FirstName   string  `json:"firstName" validate:"required,max=100"`
	LastName    string  `json:"lastName" validate:"required,max=100"`
	Email       string  `json:"email" validate:"required,email,max=255"`
	RoleID      int     `json:"roleId" validate:"required,oneof=1 2 3"`
	MobilePhone *string `json:"mobilePhone" validate:"omitempty,max=50"`
}

type deleteRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

func (c *Controller) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(w, r, c.maxBody, &req); err != nil {
		c.rs.Fail(w, r, err)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	u := &user.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Username:    req.Username,
		Email:       req.Email,
		MobilePhone: req.MobilePhone,
		RoleID:      req.RoleID,
		Status:      user.Status(req.Status),
		IsActive:    active,
	}
	if err := c.uc.Register(r.Context(), u, req.Password); err != nil {
		c.rs.Fail(w, r, mapErr(err))
		return
	}
	c.rs.Created(w, "User registered successfully", u)
}

func (c *Controller) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := httpx.DecodeJSON(w, r, c.maxBody, &req); err != nil {
		c.rs.Fail(w, r, err)
		return
	}
	err := c.uc.Update(r.Context(), &user.User{
		ID:          req.UserID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		RoleID:      req.RoleID,
		MobilePhone: req.MobilePhone,
	})
	if errors.Is(err, user.ErrNotFound) {
		c.rs.Fail(w, r, httpx.NotFound("User not found or inactive"))
		return
	}
	if err != nil {
		c.rs.Fail(w, r, mapErr(err))
		return
	}
	c.rs.OK(w, "User updated successfully", nil)
}

func (c *Controller) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := httpx.DecodeJSON(w, r, c.maxBody, &req); err != nil {
		c.rs.Fail(w, r, err)
		return
	}
	err := c.uc.Delete(r.Context(), req.UserID)
	if errors.Is(err, user.ErrNotFound) {
		c.rs.Fail(w, r, httpx.NotFound("User not found or already deleted"))
		return
	}
	if err != nil {
		c.rs.Fail(w, r, mapErr(err))
		return
	}
	c.rs.OK(w, "User deleted successfully", nil)
}

func mapErr(err error) error {
	if errors.Is(err, user.ErrExists) {
		return httpx.Conflict("User with this userId or username already exists")
	}
	return httpx.Internal(err)
}
