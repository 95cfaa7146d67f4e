package treatment

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
	api.GET("/treatments", h.ListPlans)
	api.GET("/treatments/:id", h.GetPlan)
	api.POST("/treatments", h.CreatePlan, auth.RequireRole(auth.RoleDentist, auth.RoleAdmin))
	api.PUT("/treatments/:id", h.UpdatePlan, auth.RequireRole(auth.RoleDentist, auth.RoleAdmin))
	api.PUT("/treatments/:id/steps/:stepId", h.UpdateStep,
		auth.RequireRole(auth.RoleDentist, auth.RoleHygienist, auth.RoleAdmin))
}

func (h *Handler) CreatePlan(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	plan, err := h.svc.CreatePlan(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, plan)
}

func (h *Handler) GetPlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	plan, err := h.svc.GetPlan(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) ListPlans(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())

	var filter ListFilter
	if s := c.QueryParam("status"); s != "" {
		if !ValidStatus(s) {
			return apperr.Validation("invalid status: %s", s)
		}
		filter.Status = &s
	}

	items, total, err := h.svc.ListPlans(c.Request().Context(), actor, filter, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid id")
	}
	var patch PlanPatch
	if err := c.Bind(&patch); err != nil {
		return apperr.Validation("invalid request body")
	}
	plan, err := h.svc.UpdatePlan(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) UpdateStep(c echo.Context) error {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid plan id")
	}
	stepID, err := uuid.Parse(c.Param("stepId"))
	if err != nil {
		return apperr.Validation("invalid step id")
	}
	var patch StepPatch
	if err := c.Bind(&patch); err != nil {
		return apperr.Validation("invalid request body")
	}
	plan, err := h.svc.UpdateStep(c.Request().Context(), planID, stepID, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plan)
}
