package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitae-social/vitae-api/internal/domain"
)

type LikeRepository interface {
	Find(ctx context.Context, userID, postID uuid.UUID) (*domain.PostLike, error)
	Add(ctx context.Context, userID, postID uuid.UUID) (*domain.PostLike, error)
	Remove(ctx context.Context, userID, postID uuid.UUID) error
	CountByPost(ctx context.Context, postID uuid.UUID) (int, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}
