package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/vitae-social/vitae-api/internal/domain"
	"github.com/vitae-social/vitae-api/internal/pagination"
	"github.com/vitae-social/vitae-api/internal/repository/ports"
)

const maxCommentLength = 384

var (
	ErrCommentNotFound  = errors.New("comment not found")
	ErrNotCommentOwner  = errors.New("comment belongs to another user")
	ErrInvalidComment   = errors.New("comment must be between 1 and 384 characters")
	ErrReplyDepthLimit  = errors.New("replies to replies are not allowed")
	ErrReplyAcrossPosts = errors.New("reply must target a comment on the same post")
)

type CommentService struct {
	comments ports.CommentRepository
	posts    ports.PostRepository
	users    ports.UserRepository
}

func NewCommentService(comments ports.CommentRepository, posts ports.PostRepository, users ports.UserRepository) *CommentService {
	return &CommentService{comments: comments, posts: posts, users: users}
}

func (s *CommentService) Get(ctx context.Context, commentID uuid.UUID) (*domain.CommentCard, error) {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	cards, err := s.buildCards(ctx, []domain.Comment{*comment})
	if err != nil {
		return nil, err
	}
	return &cards[0], nil
}

// Add creates a comment, or a reply when replyTo is set. Threading is one
// level deep: replying to a reply is rejected.
func (s *CommentService) Add(ctx context.Context, user *domain.User, postID uuid.UUID, content string, replyTo *uuid.UUID) (*domain.CommentCard, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > maxCommentLength {
		return nil, ErrInvalidComment
	}
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		if isNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if replyTo != nil {
		parent, err := s.comments.FindByID(ctx, *replyTo)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrCommentNotFound
			}
			return nil, err
		}
		if parent.ParentID != nil {
			return nil, ErrReplyDepthLimit
		}
		if parent.PostID != postID {
			return nil, ErrReplyAcrossPosts
		}
	}

	comment, err := s.comments.Create(ctx, &domain.Comment{
		ID:       uuid.New(),
		PostID:   postID,
		UserID:   user.ID,
		ParentID: replyTo,
		Content:  content,
	})
	if err != nil {
		return nil, err
	}
	cards, err := s.buildCards(ctx, []domain.Comment{*comment})
	if err != nil {
		return nil, err
	}
	return &cards[0], nil
}

// Delete removes a comment and its replies. Only the author may delete.
func (s *CommentService) Delete(ctx context.Context, user *domain.User, commentID uuid.UUID) error {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		if isNotFound(err) {
			return ErrCommentNotFound
		}
		return err
	}
	if comment.UserID != user.ID {
		return ErrNotCommentOwner
	}
	return s.comments.Delete(ctx, commentID)
}

// PostComments pages through a post's top-level comments.
func (s *CommentService) PostComments(ctx context.Context, postID uuid.UUID, span int, after, before string) ([]domain.CommentCard, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		if isNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	comments, err := s.comments.ListTopLevelByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.window(ctx, comments, span, after, before, true)
}

// Replies pages through the replies of a top-level comment, oldest first.
func (s *CommentService) Replies(ctx context.Context, commentID uuid.UUID, span int, after, before string) ([]domain.CommentCard, error) {
	if _, err := s.comments.FindByID(ctx, commentID); err != nil {
		if isNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	replies, err := s.comments.ListReplies(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return s.window(ctx, replies, span, after, before, true)
}

// UserComments pages through everything a user has written.
func (s *CommentService) UserComments(ctx context.Context, userID uuid.UUID, span int, after, before string) ([]domain.CommentCard, error) {
	comments, err := s.comments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.window(ctx, comments, span, after, before, true)
}

func (s *CommentService) window(ctx context.Context, comments []domain.Comment, span int, after, before string, preferHead bool) ([]domain.CommentCard, error) {
	page := pagination.Paginate(comments, span, after, before, preferHead, func(c domain.Comment) string {
		return c.ID.String()
	})
	return s.buildCards(ctx, page)
}

func (s *CommentService) buildCards(ctx context.Context, comments []domain.Comment) ([]domain.CommentCard, error) {
	cards := make([]domain.CommentCard, 0, len(comments))
	authorCache := make(map[uuid.UUID]domain.UserCard)

	for _, comment := range comments {
		author, ok := authorCache[comment.UserID]
		if !ok {
			user, err := s.users.FindByID(ctx, comment.UserID)
			if err != nil {
				return nil, err
			}
			author = domain.UserCard{
				ID:               user.ID,
				Name:             user.Name,
				ProfilePictureID: user.ProfilePictureID,
			}
			authorCache[comment.UserID] = author
		}

		repliesCount := 0
		replyTo := ""
		if comment.ParentID == nil {
			count, err := s.comments.CountReplies(ctx, comment.ID)
			if err != nil {
				return nil, err
			}
			repliesCount = count
		} else {
			replyTo = comment.ParentID.String()
		}

		cards = append(cards, domain.CommentCard{
			ID:           comment.ID,
			Author:       author,
			PostID:       comment.PostID,
			Content:      comment.Content,
			CreatedOn:    comment.CreatedOn,
			RepliesCount: repliesCount,
			ReplyTo:      replyTo,
		})
	}
	return cards, nil
}
