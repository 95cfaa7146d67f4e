package billing

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/smilecare/smilecare/internal/platform/apperr"
	"github.com/smilecare/smilecare/internal/platform/auth"
	"github.com/smilecare/smilecare/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/billing", h.ListInvoices)
	api.GET("/billing/payments", h.ListPayments)
	api.GET("/billing/:id", h.GetInvoice)
	api.POST("/billing", h.CreateInvoice,
		auth.RequireRole(auth.RoleDentist, auth.RoleReceptionist, auth.RoleAdmin))
	api.PUT("/billing/:id", h.UpdateInvoice,
		auth.RequireRole(auth.RoleReceptionist, auth.RoleAdmin))
	api.POST("/billing/payments", h.ApplyPayment,
		auth.RequireRole(auth.RoleReceptionist, auth.RoleAdmin))
}

func (h *Handler) CreateInvoice(c echo.Context) error {
	var req CreateInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	inv, err := h.svc.CreateInvoice(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, inv)
}

func (h *Handler) GetInvoice(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	inv, err := h.svc.GetInvoice(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) ListInvoices(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())

	var filter ListFilter
	if s := c.QueryParam("status"); s != "" {
		if !ValidStatus(s) {
			return apperr.Validation("invalid status: %s", s)
		}
		filter.Status = &s
	}
	if p := c.QueryParam("patient_id"); p != "" {
		pid, err := uuid.Parse(p)
		if err != nil {
			return apperr.Validation("invalid patient_id")
		}
		filter.PatientID = &pid
	}

	items, total, err := h.svc.ListInvoices(c.Request().Context(), actor, filter, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListPayments(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())

	items, total, err := h.svc.ListPayments(c.Request().Context(), actor, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateInvoice(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var patch InvoicePatch
	if err := c.Bind(&patch); err != nil {
		return apperr.Validation("invalid request body")
	}
	inv, err := h.svc.UpdateInvoice(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) ApplyPayment(c echo.Context) error {
	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	inv, err := h.svc.ApplyPayment(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, inv)
}
