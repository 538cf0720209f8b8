package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedText string
	}{
		{"validation", Validation("all fields are required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"conflict", ErrAlreadyRegistered, http.StatusConflict, "ALREADY_REGISTERED"},
		{"auth", ErrInvalidOTP, http.StatusUnauthorized, "INVALID_OTP"},
		{"state", ErrNotApproved, http.StatusForbidden, "NOT_APPROVED"},
		{"not found", ErrAccountNotFound, http.StatusNotFound, "ACCOUNT_NOT_FOUND"},
		{"forbidden", Forbidden("not yours"), http.StatusForbidden, "FORBIDDEN"},
		{"notification", Notification("failed to send OTP", errors.New("dial tcp: refused")), http.StatusBadGateway, "NOTIFICATION_FAILED"},
		{"wrapped", fmt.Errorf("verify otp: %w", ErrInvalidOTP), http.StatusUnauthorized, "INVALID_OTP"},
		{"config is never surfaced", Config("JWT_SECRET is not defined"), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.expectedCode, httpErr.StatusCode)
			assert.Equal(t, tt.expectedText, httpErr.Code)
		})
	}
}

func TestMapErrorToHTTP_DoesNotLeakCause(t *testing.T) {
	err := Notification("failed to send OTP", errors.New("535 bad credentials for smtp user"))

	resp := MapErrorToHTTP(err).ToErrorResponse()

	assert.Equal(t, "failed to send OTP", resp.Error)
}

func TestError_Is(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", ErrNotVerified)

	assert.ErrorIs(t, wrapped, ErrNotVerified)
	assert.ErrorIs(t, wrapped, &Error{Kind: KindState})
	assert.NotErrorIs(t, wrapped, ErrNotApproved)
	assert.NotErrorIs(t, wrapped, &Error{Kind: KindAuth})
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindAuth, KindOf(fmt.Errorf("x: %w", ErrInvalidResetToken)))
	assert.Equal(t, KindNotification, KindOf(Notification("x", nil)))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}
