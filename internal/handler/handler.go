package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"showbiz/internal/auth"
	"showbiz/internal/errors"
	"showbiz/internal/model"
)

// ClaimsContextKey is where the bearer middleware stores *auth.Claims.
const ClaimsContextKey = "claims"

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

func fail(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func invalidBody() error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: "invalid request body",
		Code:  "INVALID_REQUEST",
	})
}

func invalidInput(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

// bindValid binds and validates a request body.
func bindValid(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(req); err != nil {
		return invalidInput(err)
	}
	return nil
}

// claimsOf returns the caller's claims, which must belong to an account of kind.
func claimsOf(c echo.Context, kind model.Kind) (*auth.Claims, error) {
	claims, ok := c.Get(ClaimsContextKey).(*auth.Claims)
	if !ok || claims.Kind != kind {
		return nil, fail(errors.ErrNotAuthenticated)
	}
	return claims, nil
}
