package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vitae-social/vitae-api/internal/service"
	"github.com/vitae-social/vitae-api/internal/util"
)

type SearchHandler struct {
	search *service.SearchService
}

func RegisterSearch(e *echo.Echo, auth *service.AuthService, search *service.SearchService) {
	handler := &SearchHandler{search: search}

	e.GET("/api/v1/search/posts", handler.searchPosts, OptionalAuth(auth))
	e.GET("/api/v1/search/people", handler.searchPeople, OptionalAuth(auth))
}

func (h *SearchHandler) searchPosts(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	win, err := parseWindow(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("span must be a non-negative integer"))
	}
	viewer, _ := CurrentUser(c)

	cards, err := h.search.Posts(c.Request().Context(), query, viewer, win.span, win.after, win.before)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("search failed"))
	}
	return c.JSON(http.StatusOK, util.Collection("posts", cards, len(cards)))
}

func (h *SearchHandler) searchPeople(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	win, err := parseWindow(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("span must be a non-negative integer"))
	}
	viewer, _ := CurrentUser(c)

	cards, err := h.search.People(c.Request().Context(), query, viewer, win.span, win.after, win.before)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("search failed"))
	}
	return c.JSON(http.StatusOK, util.Collection("users", cards, len(cards)))
}
