package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vitae-social/vitae-api/internal/media"
	"github.com/vitae-social/vitae-api/internal/pagination"
	"github.com/vitae-social/vitae-api/internal/service"
	"github.com/vitae-social/vitae-api/internal/util"
)

type UserHandler struct {
	users *service.UserService
}

func RegisterUsers(e *echo.Echo, auth *service.AuthService, users *service.UserService) {
	handler := &UserHandler{users: users}

	e.GET("/api/v1/user/:user_id", handler.getProfile, OptionalAuth(auth))

	protected := e.Group("/api/v1/user", RequireAuth(auth))
	protected.GET("", handler.getOwnProfile)
	protected.PUT("", handler.updateProfile)
	protected.DELETE("", handler.deleteAccount)

	e.GET("/api/v1/users", handler.listUsers, RequireAuth(auth))
}

func (h *UserHandler) getProfile(c echo.Context) error {
	userID, err := parseUUIDParam(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("user_id must be a valid UUID"))
	}
	viewer, _ := CurrentUser(c)

	profile, err := h.users.Profile(c.Request().Context(), userID, viewer)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, util.Error("user not found"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("unable to load profile"))
		}
	}
	return c.JSON(http.StatusOK, util.Envelope{"user": profile})
}

func (h *UserHandler) getOwnProfile(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	profile, err := h.users.Profile(c.Request().Context(), user.ID, user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load profile"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"user": profile})
}

func (h *UserHandler) updateProfile(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	input := service.UpdateProfileInput{
		Name:          c.FormValue("name"),
		Bio:           c.FormValue("bio"),
		Email:         c.FormValue("email"),
		RemovePicture: strings.EqualFold(c.FormValue("remove_picture"), "true"),
	}

	if file, err := c.FormFile("picture"); err == nil && file != nil {
		src, err := file.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, util.Error("unable to read picture"))
		}
		defer src.Close()
		input.Picture = &media.Upload{
			Reader:      src,
			Size:        file.Size,
			FileName:    file.Filename,
			ContentType: file.Header.Get(echo.HeaderContentType),
		}
	}

	updated, freshToken, err := h.users.UpdateProfile(c.Request().Context(), user, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return c.JSON(http.StatusConflict, util.Error("email is already registered"))
		case errors.Is(err, service.ErrImageTooLarge):
			return c.JSON(http.StatusRequestEntityTooLarge, util.Error("profile picture exceeds the size limit"))
		case isValidationError(err):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not update profile"))
		}
	}

	response := util.Envelope{"user": updated}
	if freshToken != "" {
		response["token"] = freshToken
	}
	return c.JSON(http.StatusOK, response)
}

func (h *UserHandler) deleteAccount(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	if err := h.users.Delete(c.Request().Context(), user); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not delete account"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"message": "account deleted"})
}

func (h *UserHandler) listUsers(c echo.Context) error {
	users, err := h.users.List(c.Request().Context(), strings.TrimSpace(c.QueryParam("range")))
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidSpan) {
			return c.JSON(http.StatusBadRequest, util.Error("range must be size[,index]"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to list users"))
	}
	return c.JSON(http.StatusOK, util.Collection("users", users, len(users)))
}
