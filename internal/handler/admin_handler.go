package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"showbiz/internal/errors"
	"showbiz/internal/model"
	"showbiz/internal/service"
)

// AdminHandler handles the hirer approval dashboard.
type AdminHandler struct {
	hirers    service.LifecycleService
	directory service.DirectoryService
}

// NewAdminHandler creates a new admin handler. hirers must be the hirer lifecycle.
func NewAdminHandler(hirers service.LifecycleService, directory service.DirectoryService) *AdminHandler {
	return &AdminHandler{hirers: hirers, directory: directory}
}

// ManageStatusRequest carries the admin decision.
type ManageStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// StatusResponse reports the hirer after a decision.
type StatusResponse struct {
	Message string               `json:"message"`
	Hirer   *model.PublicAccount `json:"hirer"`
}

// HirersResponse lists hirers.
type HirersResponse struct {
	Hirers []model.PublicAccount `json:"hirers"`
}

// ManageStatus godoc
// @Summary Approve or reject a verified hirer
// @Tags admin
// @Accept json
// @Produce json
// @Security AdminKey
// @Param hirerId path string true "Hirer ID"
// @Param request body ManageStatusRequest true "approved or rejected"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /hirer/manage-status/{hirerId} [post]
func (h *AdminHandler) ManageStatus(c echo.Context) error {
	hirerID, err := uuid.Parse(c.Param("hirerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid hirer ID",
			Code:  "INVALID_UUID",
		})
	}

	var req ManageStatusRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	hirer, err := h.hirers.ManageStatus(c.Request().Context(), hirerID, req.Status)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, StatusResponse{
		Message: "hirer status updated to " + string(hirer.Status),
		Hirer:   hirer,
	})
}

func (h *AdminHandler) list(c echo.Context, which service.HirerListing) error {
	hirers, err := h.directory.ListHirers(c.Request().Context(), which)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, HirersResponse{Hirers: hirers})
}

// PendingHirers godoc
// @Summary List verified hirers awaiting a decision
// @Tags admin
// @Produce json
// @Security AdminKey
// @Success 200 {object} HirersResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /hirer/pending-hirers [get]
func (h *AdminHandler) PendingHirers(c echo.Context) error {
	return h.list(c, service.ListPendingHirers)
}

// AllHirers godoc
// @Summary List every hirer
// @Tags admin
// @Produce json
// @Security AdminKey
// @Success 200 {object} HirersResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /hirer/all-hirers [get]
func (h *AdminHandler) AllHirers(c echo.Context) error {
	return h.list(c, service.ListAllHirers)
}

// AcceptedHirers godoc
// @Summary List approved hirers
// @Tags admin
// @Produce json
// @Security AdminKey
// @Success 200 {object} HirersResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /hirer/accepted-hirers [get]
func (h *AdminHandler) AcceptedHirers(c echo.Context) error {
	return h.list(c, service.ListApprovedHirers)
}
