package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smartcare/smartcare-api/internal/core/domain"
	"github.com/smartcare/smartcare-api/internal/core/ports"
)

// SimulationHandler serves manual runs, the auto-simulation switch and the
// instant reading.
type SimulationHandler struct {
	service  ports.SimulationService
	auto     ports.AutoSimulator
	interval time.Duration
}

func NewSimulationHandler(service ports.SimulationService, auto ports.AutoSimulator, interval time.Duration) *SimulationHandler {
	return &SimulationHandler{service: service, auto: auto, interval: interval}
}

type simulateRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type stopRequest struct {
	UserID string `json:"userId"`
}

type messageResponse struct {
	Msg string `json:"msg"`
}

type simulateResponse struct {
	Msg     string          `json:"msg"`
	RunID   string          `json:"runId"`
	Stream  []domain.Sample `json:"stream"`
	Average domain.Average  `json:"average"`
}

type activeResponse struct {
	Active []domain.ActiveSimulation `json:"active"`
}

// Simulate handles POST /api/health/simulate.
//
// The run is detached from the request so that a client disconnect does not
// abort it half way.
//
// @Summary      Run one simulation
// @Tags         health
// @Accept       json
// @Produce      json
// @Param        body  body      simulateRequest  true  "Target user"
// @Success      200   {object}  simulateResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/health/simulate [post]
func (h *SimulationHandler) Simulate(c echo.Context) error {
	var req simulateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := context.WithoutCancel(c.Request().Context())
	res, err := h.service.RunSimulation(ctx, req.UserID, domain.TriggerManual)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, simulateResponse{
		Msg:     "Simulation complete",
		RunID:   res.RunID,
		Stream:  res.Stream,
		Average: res.Average,
	})
}

// Start handles POST /api/health/simulate/start.
//
// @Summary      Start auto simulation for a user
// @Tags         health
// @Accept       json
// @Produce      json
// @Param        body  body      simulateRequest  true  "Target user"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/health/simulate/start [post]
func (h *SimulationHandler) Start(c echo.Context) error {
	var req simulateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	replaced, err := h.auto.Start(req.UserID)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("Auto simulation started every %s", h.interval)
	if replaced {
		msg = fmt.Sprintf("Auto simulation restarted every %s", h.interval)
	}
	return c.JSON(http.StatusOK, messageResponse{Msg: msg})
}

// Stop handles POST /api/health/simulate/stop. An empty userId stops every
// running job.
//
// @Summary      Stop auto simulation
// @Tags         health
// @Accept       json
// @Produce      json
// @Param        body  body      stopRequest  false  "Target user; omit to stop all"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/health/simulate/stop [post]
func (h *SimulationHandler) Stop(c echo.Context) error {
	var req stopRequest
	if err := c.Bind(&req); err != nil {
		return invalidPayload
	}

	if req.UserID == "" {
		n, err := h.auto.StopAll()
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, messageResponse{Msg: fmt.Sprintf("Simulation stopped (%d)", n)})
	}

	if err := h.auto.Stop(req.UserID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Msg: "Simulation stopped"})
}

// Active handles GET /api/health/simulate/active.
//
// @Summary      List running auto simulations
// @Tags         health
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  activeResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/health/simulate/active [get]
func (h *SimulationHandler) Active(c echo.Context) error {
	return c.JSON(http.StatusOK, activeResponse{Active: h.auto.Active()})
}

// CurrentReading handles GET /api/health-data.
//
// @Summary      Instant synthetic reading
// @Tags         health
// @Produce      json
// @Success      200  {object}  domain.Sample
// @Router       /api/health-data [get]
func (h *SimulationHandler) CurrentReading(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.CurrentReading())
}
