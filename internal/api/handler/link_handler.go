package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartcare/smartcare-api/internal/core/domain"
	"github.com/smartcare/smartcare-api/internal/core/ports"
)

// LinkHandler exposes the patient/caregiver linking workflow.
type LinkHandler struct {
	service ports.LinkService
}

func NewLinkHandler(service ports.LinkService) *LinkHandler {
	return &LinkHandler{service: service}
}

type requestLinkRequest struct {
	PatientID   string `json:"patientId" validate:"required"`
	TargetEmail string `json:"targetEmail" validate:"required,email"`
}

type approveRequest struct {
	ApproverID string `json:"approverId" validate:"required"`
	PatientID  string `json:"patientId" validate:"required"`
}

type pendingResponse struct {
	PendingRequests []domain.UserSummary `json:"pendingRequests"`
}

type approvedResponse struct {
	ApprovedPatients []domain.UserSummary `json:"approvedPatients"`
}

type linkedResponse struct {
	LinkedPatients []ports.LinkedPatient `json:"linkedPatients"`
}

// RequestLink handles POST /api/link/request-link.
//
// @Summary      Ask a caregiver or hospital to link
// @Tags         link
// @Accept       json
// @Produce      json
// @Param        body  body      requestLinkRequest  true  "Patient and target"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/link/request-link [post]
func (h *LinkHandler) RequestLink(c echo.Context) error {
	var req requestLinkRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.service.RequestLink(c.Request().Context(), req.PatientID, req.TargetEmail); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Msg: "Link request sent successfully"})
}

// Pending handles GET /api/link/pending-requests/:userId.
//
// @Summary      Patients waiting for approval
// @Tags         link
// @Produce      json
// @Param        userId  path      string  true  "Caregiver or hospital id"
// @Success      200     {object}  pendingResponse
// @Failure      404     {object}  map[string]string
// @Router       /api/link/pending-requests/{userId} [get]
func (h *LinkHandler) Pending(c echo.Context) error {
	pending, err := h.service.ListPending(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pendingResponse{PendingRequests: pending})
}

// Approve handles POST /api/link/approve-request.
//
// @Summary      Approve a pending link
// @Tags         link
// @Accept       json
// @Produce      json
// @Param        body  body      approveRequest  true  "Approver and patient"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/link/approve-request [post]
func (h *LinkHandler) Approve(c echo.Context) error {
	var req approveRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.service.ApproveLink(c.Request().Context(), req.ApproverID, req.PatientID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Msg: "Request approved. Patient linked."})
}

// Linked handles GET /api/link/linked-patients/:userId.
//
// @Summary      Linked patients with their latest vitals
// @Tags         link
// @Produce      json
// @Param        userId  path      string  true  "Caregiver or hospital id"
// @Success      200     {object}  linkedResponse
// @Failure      404     {object}  map[string]string
// @Router       /api/link/linked-patients/{userId} [get]
func (h *LinkHandler) Linked(c echo.Context) error {
	linked, err := h.service.ListLinkedPatientsWithLatestVitals(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, linkedResponse{LinkedPatients: linked})
}

// Approved handles GET /api/link/approved/:caregiverId.
//
// @Summary      Approved patients
// @Tags         link
// @Produce      json
// @Param        caregiverId  path      string  true  "Caregiver or hospital id"
// @Success      200          {object}  approvedResponse
// @Failure      404          {object}  map[string]string
// @Router       /api/link/approved/{caregiverId} [get]
func (h *LinkHandler) Approved(c echo.Context) error {
	approved, err := h.service.ListApprovedPatients(c.Request().Context(), c.Param("caregiverId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, approvedResponse{ApprovedPatients: approved})
}
