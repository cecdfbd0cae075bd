package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vitae-social/vitae-api/internal/service"
	"github.com/vitae-social/vitae-api/internal/util"
)

type ConnectionHandler struct {
	connections *service.ConnectionService
}

func RegisterConnections(e *echo.Echo, auth *service.AuthService, connections *service.ConnectionService) {
	handler := &ConnectionHandler{connections: connections}

	e.GET("/api/v1/user/:user_id/followers", handler.followers, OptionalAuth(auth))
	e.GET("/api/v1/user/:user_id/followings", handler.followings, OptionalAuth(auth))
	e.POST("/api/v1/user/:user_id/follow", handler.toggleFollow, RequireAuth(auth))
}

func (h *ConnectionHandler) followers(c echo.Context) error {
	userID, err := parseUUIDParam(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("user_id must be a valid UUID"))
	}
	win, err := parseWindow(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("span must be a non-negative integer"))
	}
	viewer, _ := CurrentUser(c)

	cards, err := h.connections.Followers(c.Request().Context(), userID, viewer, win.span, win.after, win.before)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load followers"))
	}
	return c.JSON(http.StatusOK, util.Collection("users", cards, len(cards)))
}

func (h *ConnectionHandler) followings(c echo.Context) error {
	userID, err := parseUUIDParam(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("user_id must be a valid UUID"))
	}
	win, err := parseWindow(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("span must be a non-negative integer"))
	}
	viewer, _ := CurrentUser(c)

	cards, err := h.connections.Followings(c.Request().Context(), userID, viewer, win.span, win.after, win.before)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load followings"))
	}
	return c.JSON(http.StatusOK, util.Collection("users", cards, len(cards)))
}

func (h *ConnectionHandler) toggleFollow(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	targetID, err := parseUUIDParam(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("user_id must be a valid UUID"))
	}

	following, err := h.connections.ToggleFollow(c.Request().Context(), user, targetID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFollow):
			return c.JSON(http.StatusBadRequest, util.Error("users cannot follow themselves"))
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, util.Error("user not found"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not update follow state"))
		}
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"user_id":   targetID,
		"following": following,
	})
}
