package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"showbiz/internal/model"
	"showbiz/internal/service"
)

// TalentHandler serves the talent directory.
type TalentHandler struct {
	directory service.DirectoryService
}

// NewTalentHandler creates a new talent handler.
func NewTalentHandler(directory service.DirectoryService) *TalentHandler {
	return &TalentHandler{directory: directory}
}

// TalentsResponse lists talents.
type TalentsResponse struct {
	Talents []service.TalentCard `json:"talents"`
}

// ForHirer godoc
// @Summary List verified talents for an approved hirer
// @Description Contact details are withheld.
// @Tags talents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} TalentsResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /talent/all-talents [get]
func (h *TalentHandler) ForHirer(c echo.Context) error {
	claims, err := claimsOf(c, model.KindHirer)
	if err != nil {
		return err
	}

	talents, err := h.directory.TalentsForHirer(c.Request().Context(), claims.AccountID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, TalentsResponse{Talents: talents})
}

// Public godoc
// @Summary List verified talents with contact details
// @Tags talents
// @Produce json
// @Success 200 {object} TalentsResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /talent/public-talents [get]
func (h *TalentHandler) Public(c echo.Context) error {
	talents, err := h.directory.PublicTalents(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, TalentsResponse{Talents: talents})
}
