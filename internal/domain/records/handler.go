package records

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
	api.GET("/patients/:id/medical-record", h.GetMedicalRecord)
	api.PUT("/patients/:id/medical-record", h.UpdateMedicalRecord,
		auth.RequireRole(auth.RoleDentist, auth.RoleHygienist, auth.RoleAdmin))
	api.GET("/patients/:id/dental-records", h.ListDentalRecords)
	api.POST("/patients/:id/dental-records", h.CreateDentalRecord,
		auth.RequireRole(auth.RoleDentist, auth.RoleHygienist))
}

func (h *Handler) GetMedicalRecord(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid patient id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	rec, err := h.svc.GetMedicalRecord(c.Request().Context(), actor, patientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) UpdateMedicalRecord(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid patient id")
	}
	var patch MedicalRecordPatch
	if err := c.Bind(&patch); err != nil {
		return apperr.Validation("invalid request body")
	}
	rec, err := h.svc.UpdateMedicalRecord(c.Request().Context(), patientID, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) CreateDentalRecord(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid patient id")
	}
	var req CreateDentalRecordRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	rec, err := h.svc.CreateDentalRecord(c.Request().Context(), actor, patientID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ListDentalRecords(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.Validation("invalid patient id")
	}
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())
	items, total, err := h.svc.ListDentalRecords(c.Request().Context(), actor, patientID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
