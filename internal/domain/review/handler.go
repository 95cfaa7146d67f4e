package review

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
	api.POST("/reviews", h.Create, auth.RequireRole(auth.RolePatient))
	api.GET("/reviews/dentist/:dentistId", h.ListByDentist)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	rev, err := h.svc.Create(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rev)
}

func (h *Handler) ListByDentist(c echo.Context) error {
	dentistID, err := uuid.Parse(c.Param("dentistId"))
	if err != nil {
		return apperr.Validation("invalid dentist id")
	}
	pg := pagination.FromContext(c)
	summary, err := h.svc.ListByDentist(c.Request().Context(), dentistID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
