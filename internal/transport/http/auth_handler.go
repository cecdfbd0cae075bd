package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vitae-social/vitae-api/internal/service"
	"github.com/vitae-social/vitae-api/internal/util"
)

type AuthHandler struct {
	auth *service.AuthService
}

type signUpRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService) {
	handler := &AuthHandler{auth: auth}

	group := e.Group("/api/v1/auth")
	group.POST("/sign-up", handler.signUp)
	group.POST("/sign-in", handler.signIn)
	group.GET("/reset-password", handler.requestPasswordReset)
	group.PUT("/reset-password", handler.resetPassword)
}

func (h *AuthHandler) signUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	user, token, err := h.auth.SignUp(c.Request().Context(), req.Email, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return c.JSON(http.StatusConflict, util.Error("email is already registered"))
		case errors.Is(err, service.ErrInvalidName), errors.Is(err, util.ErrInvalidEmail):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		case isValidationError(err):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not create account"))
		}
	}

	return c.JSON(http.StatusCreated, util.Envelope{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) signIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	user, token, err := h.auth.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountLocked):
			return c.JSON(http.StatusForbidden, util.Error("account is locked; reset your password to continue"))
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, util.Error("email or password is incorrect"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not sign in"))
		}
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) requestPasswordReset(c echo.Context) error {
	email := strings.TrimSpace(c.QueryParam("email"))
	if email == "" {
		return c.JSON(http.StatusBadRequest, util.Error("email is required"))
	}

	if err := h.auth.RequestPasswordReset(c.Request().Context(), email); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, util.Error("no account with that email"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not send reset email"))
		}
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"message": "reset email sent",
	})
}

func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if strings.TrimSpace(req.Token) == "" {
		return c.JSON(http.StatusBadRequest, util.Error("token is required"))
	}

	user, token, err := h.auth.ResetPassword(c.Request().Context(), req.Token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetToken), isTokenError(err):
			return c.JSON(http.StatusUnauthorized, util.Error("reset token is invalid or expired"))
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, util.Error("account no longer exists"))
		case isValidationError(err):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not reset password"))
		}
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"user":  user,
		"token": token,
	})
}
