package trader

import (
	"errors"
	"net/http"

	domainauth "github.com/NordCoder/crmdesk/internal/domain/auth"
	"github.com/NordCoder/crmdesk/internal/domain/trader"
	"github.com/NordCoder/crmdesk/internal/httpx"
	"github.com/NordCoder/crmdesk/internal/repository/postgres"
	"github.com/NordCoder/crmdesk/internal/services/api-gateway/auth"
	"go.uber.org/zap"
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

	mux.Handle("POST /api/traders/insert-client", protect(c.Insert))
	mux.Handle("PUT /api/traders/update", protect(c.Update))
	mux.Handle("DELETE /api/traders/{traderId}", mw.RequireAccess(
		mw.RequireRole(domainauth.RoleAdmin, domainauth.RoleManager)(http.HandlerFunc(c.Delete)),
	))
	mux.Handle("GET /api/traders", protect(c.List))
	mux.Handle("GET /api/traders/stats", protect(c.Stats))
	mux.Handle("GET /api/traders/filter", protect(c.FilterWithSearch))
	mux.Handle("GET /api/traders/filter-form", protect(c.Filter))
}

type insertRequest struct {
	CompanyName  string  `json:"companyName" validate:"required,max=255"`
	AccountType  *string `json:"accountType" validate:"omitempty,max=50"`
	TimNumber    string  `json:"timNumber" validate:"required,max=50"`
	Language     *string `json:"language" validate:"omitempty,max=50"`
	Phone        string  `json:"phone" validate:"required,max=50"`
	Email        string  `json:"email" validate:"required,email,max=255"`
	Address      string  `json:"address" validate:"required,max=255"`
	City         *string `json:"city" validate:"omitempty,max=100"`
	StateCountry *string `json:"stateCountry" validate:"omitempty,max=100"`
	ZipCode      *string `json:"zipCode" validate:"omitempty,max=20"`
}

type updateRequest struct {
	TraderID     int64   `json:"traderId" validate:"required,gt=0"`
	CompanyName  string  `json:"companyName" validate:"required,max=255"`
	TimNumber    string  `json:"timNumber" validate:"required,max=50"`
	Phone        string  `json:"phone" validate:"required,max=50"`
	Email        string  `json:"email" validate:"required,email,max=255"`
	Address      string  `json:"address" validate:"required,max=255"`
	City         *string `json:"city" validate:"omitempty,max=100"`
	StateCountry *string `json:"stateCountry" validate:"omitempty,max=100"`
	ZipCode      *string `json:"zipCode" validate:"omitempty,max=20"`
	Language     *string `json:"language" validate:"omitempty,max=50"`
	AccountType  *string `json:"accountType" validate:"omitempty,max=50"`
	Status       *bool   `json:"status"`
}

type insertResponse struct {
	TraderID int64 `json:"trader_id"`
}

func (c *Controller) Insert(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromCtx(r.Context())
	var req insertRequest
	if err := httpx.DecodeJSON(w, r, c.maxBody, &req); err != nil {
		c.rs.Fail(w, r, err)
		return
	}
	id, err := c.uc.Insert(r.Context(), claims.UserID, trader.Insert{
		CompanyName:  req.CompanyName,
		AccountType:  req.AccountType,
		TimNumber:    req.TimNumber,
		Language:     req.Language,
		Phone:        req.Phone,
		Email:        req.Email,
		Address:      req.Address,
		City:         req.City,
		StateCountry: req.StateCountry,
		ZipCode:      req.ZipCode,
	})
	if err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}
	c.rs.OK(w, "Client inserted successfully", insertResponse{TraderID: id})
}

func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromCtx(r.Context())
	var req updateRequest
	if err := httpx.DecodeJSON(w, r, c.maxBody, &req); err != nil {
		c.rs.Fail(w, r, err)
		return
	}
	err := c.uc.Update(r.Context(), claims.UserID, trader.Update{
		TraderID:     req.TraderID,
		CompanyName:  req.CompanyName,
		TimNumber:    req.TimNumber,
		Phone:        req.Phone,
		Email:        req.Email,
		Address:      req.Address,
		City:         req.City,
		StateCountry: req.StateCountry,
		ZipCode:      req.ZipCode,
		Language:     req.Language,
		AccountType:  req.AccountType,
		Status:       req.Status,
	})
	if err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}
	c.rs.OK(w, "Client updated successfully", nil)
}

func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromCtx(r.Context())
	id, err := httpx.PathInt64(r, "traderId")
	if err != nil {
		c.rs.Fail(w, r, err)
		return
	}
	if err := c.uc.Delete(r.Context(), claims.UserID, id); err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}
	c.rs.OK(w, "Trader deleted successfully", true)
}

func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	rows, err := c.uc.ListActive(r.Context())
	if err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}
	c.rs.OK(w, "Traders retrieved successfully", rows)
}

func (c *Controller) Stats(w http.ResponseWriter, r *http.Request) {
	rows, err := c.uc.Stats(r.Context())
	if err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}
	c.rs.OK(w, "Trader stats retrieved successfully", rows)
}

func (c *Controller) FilterWithSearch(w http.ResponseWriter, r *http.Request) {
	c.filter(w, r, true)
}

func (c *Controller) Filter(w http.ResponseWriter, r *http.Request) {
	c.filter(w, r, false)
}

func (c *Controller) filter(w http.ResponseWriter, r *http.Request, withSearch bool) {
	f, err := filterFromQuery(r)
	if err != nil {
		c.rs.Fail(w, r, err)
		return
	}
	rows, err := c.uc.Filter(r.Context(), f, withSearch)
	if err != nil {
		c.rs.Fail(w, r, c.mapErr(err))
		return
	}
	c.rs.OK(w, "Filtered clients retrieved successfully", rows)
}

func filterFromQuery(r *http.Request) (trader.Filter, error) {
	f := trader.Filter{
		Search:      httpx.QueryString(r, "search"),
		CodePrefix:  httpx.QueryString(r, "codePrefix"),
		NamePrefix:  httpx.QueryString(r, "namePrefix"),
		TimPrefix:   httpx.QueryString(r, "timPrefix"),
		EmailPrefix: httpx.QueryString(r, "emailPrefix"),
		PhonePrefix: httpx.QueryString(r, "phonePrefix"),
	}
	if s := httpx.QueryString(r, "status"); s != nil {
		f.Status = *s
	}
	limit, err := httpx.QueryInt(r, "limit")
	if err != nil {
		return f, err
	}
	if limit != nil {
		f.Limit = *limit
	}
	offset, err := httpx.QueryInt(r, "offset")
	if err != nil {
		return f, err
	}
	if offset != nil {
		f.Offset = *offset
	}
	return f, nil
}

func (c *Controller) mapErr(err error) error {
	switch {
	case errors.Is(err, trader.ErrNotFound):
		return httpx.NotFound("Trader not found")
	case errors.Is(err, postgres.ErrConflict):
		return httpx.Conflict("Trader already exists")
	case errors.Is(err, postgres.ErrConstraint):
		return httpx.NewError(http.StatusBadRequest, "Referenced record does not exist", err)
	default:
		return httpx.Internal(err)
	}
}
