package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartcare/smartcare-api/internal/core/domain"
	"github.com/smartcare/smartcare-api/internal/core/ports"
)

type BmiHandler struct {
	service ports.BmiService
}

func NewBmiHandler(service ports.BmiService) *BmiHandler {
	return &BmiHandler{service: service}
}

type saveBmiRequest struct {
	UserID string  `json:"userId" validate:"required"`
	Height float64 `json:"height" validate:"required,gt=0"`
	Weight float64 `json:"weight" validate:"required,gt=0"`
}

type bmiResponse struct {
	*domain.BmiRecord
	Bmi      float64 `json:"bmi"`
	Category string  `json:"category"`
}

type saveBmiResponse struct {
	Message string      `json:"message"`
	Bmi     bmiResponse `json:"bmi"`
}

func toBmiResponse(r *domain.BmiRecord) bmiResponse {
	return bmiResponse{BmiRecord: r, Bmi: r.Index(), Category: r.Category()}
}

// Save handles POST /api/bmi/save. 201 on first save, 200 on update.
//
// @Summary      Save height and weight
// @Tags         bmi
// @Accept       json
// @Produce      json
// @Param        body  body      saveBmiRequest  true  "BMI input"
// @Success      200   {object}  saveBmiResponse
// @Success      201   {object}  saveBmiResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/bmi/save [post]
func (h *BmiHandler) Save(c echo.Context) error {
	var req saveBmiRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	record, created, err := h.service.UpsertBmi(c.Request().Context(), req.UserID, req.Height, req.Weight)
	if err != nil {
		return err
	}

	if created {
		return c.JSON(http.StatusCreated, saveBmiResponse{Message: "BMI data saved", Bmi: toBmiResponse(record)})
	}
	return c.JSON(http.StatusOK, saveBmiResponse{Message: "BMI data updated", Bmi: toBmiResponse(record)})
}

// Get handles GET /api/bmi/:userId.
//
// @Summary      Stored BMI record
// @Tags         bmi
// @Produce      json
// @Param        userId  path      string  true  "User id"
// @Success      200     {object}  bmiResponse
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /api/bmi/{userId} [get]
func (h *BmiHandler) Get(c echo.Context) error {
	record, err := h.service.GetBmi(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBmiResponse(record))
}
