package handlers

import (
	"net/http"

	"vetdesk/internal/models"
	"vetdesk/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ClinicHandlers struct {
	clinicRepo repositories.ClinicRepository
}

func NewClinicHandlers(clinicRepo repositories.ClinicRepository) *ClinicHandlers {
	return &ClinicHandlers{clinicRepo: clinicRepo}
}

type createClinicRequest struct {
	Name    string  `json:"name" validate:"required"`
	Address string  `json:"address" validate:"required"`
	City    string  `json:"city" validate:"required"`
	Country string  `json:"country" validate:"required"`
	Phone   *string `json:"phone"`
}

// CreateClinic handles POST /clinics. Clinic onboarding is a platform
// operation, not part of the staff lifecycle.
func (h *ClinicHandlers) CreateClinic(c echo.Context) error {
	req := new(createClinicRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	clinic := &models.Clinic{
		ID:      uuid.New(),
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		Country: req.Country,
		Phone:   req.Phone,
	}
	if err := h.clinicRepo.Create(c.Request().Context(), clinic); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, clinic)
}

// GetClinic handles GET /clinics/:clinicID.
func (h *ClinicHandlers) GetClinic(c echo.Context) error {
	clinicID, err := pathUUID(c, "clinicID")
	if err != nil {
		return err
	}

	clinic, err := h.clinicRepo.GetByID(c.Request().Context(), clinicID)
	if err != nil {
		return err
	}
	if clinic == nil {
		return echo.NewHTTPError(http.StatusNotFound, "clinic not found")
	}
	return c.JSON(http.StatusOK, clinic)
}
