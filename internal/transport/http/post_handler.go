package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vitae-social/vitae-api/internal/service"
	"github.com/vitae-social/vitae-api/internal/util"
)

type PostHandler struct {
	posts *service.PostService
	stats *service.PostViewStatsService
}

type postRequest struct {
	Title  string   `json:"title"`
	Quotes []string `json:"quotes"`
}

// RegisterPosts wires post routes. The single-post GET must stay under
// /api/v1/post/ because the view-stats queries aggregate request logs by
// that URI prefix.
func RegisterPosts(e *echo.Echo, auth *service.AuthService, posts *service.PostService, stats *service.PostViewStatsService) {
	handler := &PostHandler{posts: posts, stats: stats}

	e.GET("/api/v1/post/:post_id", handler.getPost, OptionalAuth(auth))
	e.GET("/api/v1/post/:post_id/stats", handler.getPostStats, RequireAuth(auth))
	e.POST("/api/v1/post", handler.createPost, RequireAuth(auth))
	e.PUT("/api/v1/post/:post_id", handler.updatePost, RequireAuth(auth))
	e.DELETE("/api/v1/post/:post_id", handler.deletePost, RequireAuth(auth))
	e.POST("/api/v1/post/:post_id/like", handler.toggleLike, RequireAuth(auth))

	e.GET("/api/v1/posts/user/:user_id", handler.userPosts, OptionalAuth(auth))
	e.GET("/api/v1/posts/likes/:user_id", handler.likedPosts, OptionalAuth(auth))
	e.GET("/api/v1/posts/feed", handler.feed, RequireAuth(auth))
	e.GET("/api/v1/posts/explore", handler.explore, OptionalAuth(auth))
}

func (h *PostHandler) getPost(c echo.Context) error {
	postID, err := parseUUIDParam(c, "post_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("post_id must be a valid UUID"))
	}
	viewer, _ := CurrentUser(c)

	card, err := h.posts.Get(c.Request().Context(), postID, viewer)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("post not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load post"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"post": card})
}

func (h *PostHandler) getPostStats(c echo.Context) error {
	postID, err := parseUUIDParam(c, "post_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("post_id must be a valid UUID"))
	}
	if h.stats == nil {
		return c.JSON(http.StatusServiceUnavailable, util.Error("view statistics are not available"))
	}
	if _, err := h.posts.Get(c.Request().Context(), postID, nil); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("post not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load post"))
	}

	stats, err := h.stats.GetViewStats(c.Request().Context(), postID)
	if err != nil {
		if errors.Is(err, service.ErrViewStatsUnavailable) {
			return c.JSON(http.StatusServiceUnavailable, util.Error("view statistics are not available"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load view statistics"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"stats": stats})
}

func (h *PostHandler) createPost(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	var req postRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	card, err := h.posts.Create(c.Request().Context(), user, req.Title, req.Quotes)
	if err != nil {
		if isValidationError(err) {
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not create post"))
	}
	return c.JSON(http.StatusCreated, util.Envelope{"post": card})
}

func (h *PostHandler) updatePost(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	postID, err := parseUUIDParam(c, "post_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("post_id must be a valid UUID"))
	}
	var req postRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	card, err := h.posts.Update(c.Request().Context(), user, postID, req.Title, req.Quotes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			return c.JSON(http.StatusNotFound, util.Error("post not found"))
		case errors.Is(err, service.ErrNotPostOwner):
			return c.JSON(http.StatusForbidden, util.Error("only the author can edit a post"))
		case isValidationError(err):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not update post"))
		}
	}
	return c.JSON(http.StatusOK, util.Envelope{"post": card})
}

func (h *PostHandler) deletePost(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	postID, err := parseUUIDParam(c, "post_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("post_id must be a valid UUID"))
	}

	if err := h.posts.Delete(c.Request().Context(), user, postID); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			return c.JSON(http.StatusNotFound, util.Error("post not found"))
		case errors.Is(err, service.ErrNotPostOwner):
			return c.JSON(http.StatusForbidden, util.Error("only the author can delete a post"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not delete post"))
		}
	}
	return c.JSON(http.StatusOK, util.Envelope{"message": "post deleted"})
}

func (h *PostHandler) toggleLike(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	postID, err := parseUUIDParam(c, "post_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("post_id must be a valid UUID"))
	}

	liked, err := h.posts.ToggleLike(c.Request().Context(), user, postID)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("post not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not update like state"))
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"post_id": postID,
		"liked":   liked,
	})
}

func (h *PostHandler) userPosts(c echo.Context) error {
	userID, err := parseUUIDParam(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("user_id must be a valid UUID"))
	}
	win, err := parseWindow(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("span must be a non-negative integer"))
	}
	viewer, _ := CurrentUser(c)

	cards, err := h.posts.UserPosts(c.Request().Context(), userID, viewer, win.span, win.after, win.before)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load posts"))
	}
	return c.JSON(http.StatusOK, util.Collection("posts", cards, len(cards)))
}

func (h *PostHandler) likedPosts(c echo.Context) error {
	userID, err := parseUUIDParam(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("user_id must be a valid UUID"))
	}
	win, err := parseWindow(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("span must be a non-negative integer"))
	}
	viewer, _ := CurrentUser(c)

	cards, err := h.posts.LikedPosts(c.Request().Context(), userID, viewer, win.span, win.after, win.before)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load liked posts"))
	}
	return c.JSON(http.StatusOK, util.Collection("posts", cards, len(cards)))
}

func (h *PostHandler) feed(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	win, err := parseWindow(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("span must be a non-negative integer"))
	}

	cards, err := h.posts.Feed(c.Request().Context(), user, win.span, win.after, win.before)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load feed"))
	}
	return c.JSON(http.StatusOK, util.Collection("posts", cards, len(cards)))
}

func (h *PostHandler) explore(c echo.Context) error {
	win, err := parseWindow(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("span must be a non-negative integer"))
	}
	viewer, _ := CurrentUser(c)

	cards, err := h.posts.Explore(c.Request().Context(), viewer, win.span, win.after, win.before)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load explore posts"))
	}
	return c.JSON(http.StatusOK, util.Collection("posts", cards, len(cards)))
}
