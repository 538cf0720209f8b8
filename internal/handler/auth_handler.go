package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"showbiz/internal/model"
	"showbiz/internal/service"
)

// AuthHandler handles the account lifecycle endpoints of one account kind.
type AuthHandler struct {
	lifecycle service.LifecycleService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(lifecycle service.LifecycleService) *AuthHandler {
	return &AuthHandler{lifecycle: lifecycle}
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required"`
	Gender      string `json:"gender" validate:"required"`
	Role        string `json:"role" validate:"required"`
	Password    string `json:"password" validate:"required,min=6"`
	DeviceToken string `json:"deviceToken"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	DeviceToken string `json:"deviceToken"`
}

// OTPCode accepts the code as a JSON string or number.
type OTPCode string

// UnmarshalJSON implements json.Unmarshaler.
func (o *OTPCode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*o = OTPCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*o = OTPCode(n.String())
	return nil
}

// VerifyOTPRequest represents an OTP verification request.
type VerifyOTPRequest struct {
	OTP OTPCode `json:"otp" validate:"required" swaggertype:"string"`
}

// ForgotPasswordRequest represents a password reset request.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest carries the new password. The reset code is in the path.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	Message string               `json:"message"`
	ID      string               `json:"id"`
	Token   string               `json:"token"`
	Account *model.PublicAccount `json:"account,omitempty"`
}

func authResponse(message string, res *service.AuthResult) AuthResponse {
	return AuthResponse{
		Message: message,
		ID:      res.AccountID.String(),
		Token:   res.Token,
		Account: res.Account,
	}
}

// Register godoc
// @Summary Register an account and send an OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /talent/register [post]
// @Router /hirer/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	res, err := h.lifecycle.Register(c.Request().Context(), service.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Gender:      req.Gender,
		Role:        req.Role,
		Password:    req.Password,
		DeviceToken: req.DeviceToken,
	})
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusCreated, authResponse("OTP sent to your email", res))
}

// VerifyOTP godoc
// @Summary Verify the registration OTP
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body VerifyOTPRequest true "OTP"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /talent/verify-otp [post]
// @Router /hirer/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	claims, err := claimsOf(c, h.lifecycle.Kind())
	if err != nil {
		return err
	}

	var req VerifyOTPRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	res, err := h.lifecycle.VerifyOTP(c.Request().Context(), claims.AccountID, string(req.OTP))
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, authResponse("OTP verified successfully", res))
}

// ResendOTP godoc
// @Summary Send a fresh OTP
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /talent/resend-otp [post]
// @Router /hirer/resend-otp [post]
func (h *AuthHandler) ResendOTP(c echo.Context) error {
	claims, err := claimsOf(c, h.lifecycle.Kind())
	if err != nil {
		return err
	}

	if err := h.lifecycle.ResendOTP(c.Request().Context(), claims.AccountID); err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "OTP resent successfully"})
}

// Login godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /talent/login [post]
// @Router /hirer/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	res, err := h.lifecycle.Login(c.Request().Context(), service.LoginInput{
		Email:       req.Email,
		Password:    req.Password,
		DeviceToken: req.DeviceToken,
	})
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, authResponse("login successful", res))
}

// ForgotPassword godoc
// @Summary Email a password reset code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Account email"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /talent/forgot-password [post]
// @Router /hirer/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	if err := h.lifecycle.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "password reset code sent to your email"})
}

// ResetPassword godoc
// @Summary Set a new password with a reset code
// @Tags auth
// @Accept json
// @Produce json
// @Param token path string true "Reset code"
// @Param request body ResetPasswordRequest true "New password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /talent/reset-password/{token} [post]
// @Router /hirer/reset-password/{token} [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	if err := h.lifecycle.ResetPassword(c.Request().Context(), c.Param("token"), req.Password); err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "password has been reset successfully"})
}

// Logout godoc
// @Summary Revoke the current bearer token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /talent/logout [post]
// @Router /hirer/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, err := claimsOf(c, h.lifecycle.Kind())
	if err != nil {
		return err
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := h.lifecycle.Logout(c.Request().Context(), claims.ID, expiresAt); err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
}
