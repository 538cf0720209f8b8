package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"showbiz/internal/errors"
	"showbiz/internal/model"
	"showbiz/internal/service"
)

// SubmissionHandler handles casting calls posted by hirers.
type SubmissionHandler struct {
	submissions service.SubmissionService
}

// NewSubmissionHandler creates a new submission handler.
func NewSubmissionHandler(submissions service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// SubmissionRequest represents a new casting call.
type SubmissionRequest struct {
	Subject     string `json:"subject" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// UpdateSubmissionRequest changes a casting call. Empty fields are kept.
type UpdateSubmissionRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// SubmissionResponse wraps one submission.
type SubmissionResponse struct {
	Message    string                  `json:"message"`
	Submission *service.SubmissionView `json:"submission"`
}

// SubmissionsResponse lists submissions.
type SubmissionsResponse struct {
	Submissions []service.SubmissionView `json:"submissions"`
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid " + name,
			Code:  "INVALID_UUID",
		})
	}
	return id, nil
}

// Create godoc
// @Summary Post a casting call
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubmissionRequest true "Casting call"
// @Success 201 {object} SubmissionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /hirer/submit [post]
func (h *SubmissionHandler) Create(c echo.Context) error {
	claims, err := claimsOf(c, model.KindHirer)
	if err != nil {
		return err
	}

	var req SubmissionRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	view, err := h.submissions.Create(c.Request().Context(), claims.AccountID, req.Subject, req.Description)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusCreated, SubmissionResponse{Message: "submission created successfully", Submission: view})
}

// Update godoc
// @Summary Edit one of the caller's casting calls
// @Tags submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param submissionId path string true "Submission ID"
// @Param request body UpdateSubmissionRequest true "Changed fields"
// @Success 200 {object} SubmissionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /hirer/submissions/{submissionId} [put]
func (h *SubmissionHandler) Update(c echo.Context) error {
	claims, err := claimsOf(c, model.KindHirer)
	if err != nil {
		return err
	}
	id, err := pathID(c, "submissionId")
	if err != nil {
		return err
	}

	var req UpdateSubmissionRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	view, err := h.submissions.Update(c.Request().Context(), claims.AccountID, id, req.Subject, req.Description)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, SubmissionResponse{Message: "submission updated successfully", Submission: view})
}

// Delete godoc
// @Summary Delete one of the caller's casting calls
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param submissionId path string true "Submission ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /hirer/submissions/{submissionId} [delete]
func (h *SubmissionHandler) Delete(c echo.Context) error {
	claims, err := claimsOf(c, model.KindHirer)
	if err != nil {
		return err
	}
	id, err := pathID(c, "submissionId")
	if err != nil {
		return err
	}

	if err := h.submissions.Delete(c.Request().Context(), claims.AccountID, id); err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "submission deleted successfully"})
}

// List godoc
// @Summary List every casting call
// @Tags submissions
// @Produce json
// @Success 200 {object} SubmissionsResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /hirer/submissions [get]
func (h *SubmissionHandler) List(c echo.Context) error {
	views, err := h.submissions.List(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, SubmissionsResponse{Submissions: views})
}

// ListByHirer godoc
// @Summary List the caller's own casting calls
// @Tags submissions
// @Produce json
// @Security BearerAuth
// @Param hirerId path string true "Hirer ID"
// @Success 200 {object} SubmissionsResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /hirer/hirer/{hirerId}/submissions [get]
func (h *SubmissionHandler) ListByHirer(c echo.Context) error {
	claims, err := claimsOf(c, model.KindHirer)
	if err != nil {
		return err
	}
	hirerID, err := pathID(c, "hirerId")
	if err != nil {
		return err
	}

	views, err := h.submissions.ListByHirer(c.Request().Context(), claims.AccountID, hirerID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, SubmissionsResponse{Submissions: views})
}
