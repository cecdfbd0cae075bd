package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitae-social/vitae-api/internal/domain"
)

type FollowRepository interface {
	Find(ctx context.Context, followerID, followingID uuid.UUID) (*domain.UserFollowing, error)
	Add(ctx context.Context, followerID, followingID uuid.UUID) (*domain.UserFollowing, error)
	Remove(ctx context.Context, followerID, followingID uuid.UUID) error
	ListFollowers(ctx context.Context, userID uuid.UUID) ([]domain.UserFollowing, error)
	ListFollowings(ctx context.Context, userID uuid.UUID) ([]domain.UserFollowing, error)
	CountFollowers(ctx context.Context, userID uuid.UUID) (int, error)
	CountFollowings(ctx context.Context, userID uuid.UUID) (int, error)
}
