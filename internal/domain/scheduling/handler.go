package scheduling

import (
	"net/http"
	"time"

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
	api.POST("/appointments", h.Create)
	api.GET("/appointments", h.List)
	api.GET("/appointments/available-slots", h.AvailableSlots)
	api.GET("/appointments/:id", h.Get)
	api.PUT("/appointments/:id", h.Update, auth.RequireStaff())
	api.DELETE("/appointments/:id/cancel", h.Cancel)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	appt, err := h.svc.Create(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	appt, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())

	var filter ListFilter
	if s := c.QueryParam("status"); s != "" {
		if !ValidStatus(s) {
			return apperr.Validation("invalid status: %s", s)
		}
		filter.Status = &s
	}
	if from := c.QueryParam("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return apperr.Validation("invalid from timestamp")
		}
		filter.From = &t
	}
	if to := c.QueryParam("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return apperr.Validation("invalid to timestamp")
		}
		filter.To = &t
	}

	items, total, err := h.svc.List(c.Request().Context(), actor, filter, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) AvailableSlots(c echo.Context) error {
	dentistID, err := uuid.Parse(c.QueryParam("dentist_id"))
	if err != nil {
		return apperr.Validation("dentist_id is required")
	}
	day, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return apperr.Validation("date must be YYYY-MM-DD")
	}

	slots, err := h.svc.AvailableSlots(c.Request().Context(), dentistID, day)
	if err != nil {
		return err
	}

	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Format(time.RFC3339))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"available_slots": out})
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var patch Patch
	if err := c.Bind(&patch); err != nil {
		return apperr.Validation("invalid request body")
	}
	appt, err := h.svc.Update(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	appt, err := h.svc.Cancel(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, appt)
}
