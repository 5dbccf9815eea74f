package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smartcare/smartcare-api/internal/core/domain"
	"github.com/smartcare/smartcare-api/internal/core/ports"
	"github.com/smartcare/smartcare-api/internal/infrastructure/export"
)

type VitalsHandler struct {
	service ports.VitalsService
}

func NewVitalsHandler(service ports.VitalsService) *VitalsHandler {
	return &VitalsHandler{service: service}
}

type latestVitalsResponse struct {
	*domain.VitalsSnapshot
	Assessment domain.Assessment `json:"assessment"`
}

// Latest handles GET /api/health/latest/:userId.
//
// @Summary      Latest vitals snapshot
// @Tags         health
// @Produce      json
// @Param        userId  path      string  true  "User id"
// @Success      200     {object}  latestVitalsResponse
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /api/health/latest/{userId} [get]
func (h *VitalsHandler) Latest(c echo.Context) error {
	snapshot, err := h.service.GetLatestVitals(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, latestVitalsResponse{VitalsSnapshot: snapshot, Assessment: snapshot.Assessment()})
}

// Export handles GET /api/health/export/:userId.
//
// @Summary      Download the latest snapshot as XLSX
// @Tags         health
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        userId  path  string  true  "User id"
// @Success      200     {file}    file
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /api/health/export/{userId} [get]
func (h *VitalsHandler) Export(c echo.Context) error {
	userID := c.Param("userId")
	snapshot, err := h.service.GetLatestVitals(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	raw, err := export.VitalsWorkbook(snapshot)
	if err != nil {
		return fmt.Errorf("export vitals: %w", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", export.Filename(userID, time.Now())))
	return c.Blob(http.StatusOK, export.ContentType, raw)
}
