package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vitae-social/vitae-api/internal/service"
	"github.com/vitae-social/vitae-api/internal/util"
)

type CommentHandler struct {
	comments *service.CommentService
}

type commentRequest struct {
	PostID  string `json:"post_id"`
	Text    string `json:"text"`
	ReplyTo string `json:"reply_to,omitempty"`
}

func RegisterComments(e *echo.Echo, auth *service.AuthService, comments *service.CommentService) {
	handler := &CommentHandler{comments: comments}

	e.GET("/api/v1/comment/:comment_id", handler.getComment)
	e.GET("/api/v1/comment/:comment_id/replies", handler.replies)
	e.GET("/api/v1/comments/post/:post_id", handler.postComments)
	e.GET("/api/v1/comments/user/:user_id", handler.userComments)
	e.POST("/api/v1/comment", handler.addComment, RequireAuth(auth))
	e.DELETE("/api/v1/comment/:comment_id", handler.deleteComment, RequireAuth(auth))
}

func (h *CommentHandler) getComment(c echo.Context) error {
	commentID, err := parseUUIDParam(c, "comment_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("comment_id must be a valid UUID"))
	}

	card, err := h.comments.Get(c.Request().Context(), commentID)
	if err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("comment not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load comment"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"comment": card})
}

func (h *CommentHandler) addComment(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	postID, err := uuid.Parse(req.PostID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("post_id must be a valid UUID"))
	}
	var replyTo *uuid.UUID
	if req.ReplyTo != "" {
		parentID, err := uuid.Parse(req.ReplyTo)
		if err != nil {
			return c.JSON(http.StatusBadRequest, util.Error("reply_to must be a valid UUID"))
		}
		replyTo = &parentID
	}

	card, err := h.comments.Add(c.Request().Context(), user, postID, req.Text, replyTo)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			return c.JSON(http.StatusNotFound, util.Error("post not found"))
		case errors.Is(err, service.ErrCommentNotFound):
			return c.JSON(http.StatusNotFound, util.Error("parent comment not found"))
		case errors.Is(err, service.ErrReplyDepthLimit):
			return c.JSON(http.StatusBadRequest, util.Error("replies to replies are not supported"))
		case errors.Is(err, service.ErrReplyAcrossPosts):
			return c.JSON(http.StatusBadRequest, util.Error("reply must target a comment on the same post"))
		case isValidationError(err):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not add comment"))
		}
	}
	return c.JSON(http.StatusCreated, util.Envelope{"comment": card})
}

func (h *CommentHandler) deleteComment(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	commentID, err := parseUUIDParam(c, "comment_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("comment_id must be a valid UUID"))
	}

	if err := h.comments.Delete(c.Request().Context(), user, commentID); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			return c.JSON(http.StatusNotFound, util.Error("comment not found"))
		case errors.Is(err, service.ErrNotCommentOwner):
			return c.JSON(http.StatusForbidden, util.Error("only the author can delete a comment"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not delete comment"))
		}
	}
	return c.JSON(http.StatusOK, util.Envelope{"message": "comment deleted"})
}

func (h *CommentHandler) postComments(c echo.Context) error {
	postID, err := parseUUIDParam(c, "post_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("post_id must be a valid UUID"))
	}
	win, err := parseWindow(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("span must be a non-negative integer"))
	}

	cards, err := h.comments.PostComments(c.Request().Context(), postID, win.span, win.after, win.before)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("post not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load comments"))
	}
	return c.JSON(http.StatusOK, util.Collection("comments", cards, len(cards)))
}

func (h *CommentHandler) replies(c echo.Context) error {
	commentID, err := parseUUIDParam(c, "comment_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("comment_id must be a valid UUID"))
	}
	win, err := parseWindow(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("span must be a non-negative integer"))
	}

	cards, err := h.comments.Replies(c.Request().Context(), commentID, win.span, win.after, win.before)
	if err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("comment not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load replies"))
	}
	return c.JSON(http.StatusOK, util.Collection("comments", cards, len(cards)))
}

func (h *CommentHandler) userComments(c echo.Context) error {
	userID, err := parseUUIDParam(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("user_id must be a valid UUID"))
	}
	win, err := parseWindow(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("span must be a non-negative integer"))
	}

	cards, err := h.comments.UserComments(c.Request().Context(), userID, win.span, win.after, win.before)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load comments"))
	}
	return c.JSON(http.StatusOK, util.Collection("comments", cards, len(cards)))
}
