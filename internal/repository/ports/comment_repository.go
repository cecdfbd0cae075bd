package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitae-social/vitae-api/internal/domain"
)

type CommentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	// Delete removes the comment and its replies.
	Delete(ctx context.Context, id uuid.UUID) error
	ListTopLevelByPost(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error)
	ListReplies(ctx context.Context, parentID uuid.UUID) ([]domain.Comment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Comment, error)
	CountTopLevelByPost(ctx context.Context, postID uuid.UUID) (int, error)
	CountReplies(ctx context.Context, parentID uuid.UUID) (int, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}
