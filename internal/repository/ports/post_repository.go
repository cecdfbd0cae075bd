package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitae-social/vitae-api/internal/domain"
)

type PostRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	Create(ctx context.Context, post *domain.Post) (*domain.Post, error)
	Update(ctx context.Context, id, userID uuid.UUID, title string, quotes []string) (*domain.Post, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Post, error)
	ListLikedBy(ctx context.Context, userID uuid.UUID) ([]domain.Post, error)
	// ListByAuthors returns at most perAuthorLimit posts per author, used
	// to keep feed candidate sets bounded.
	ListByAuthors(ctx context.Context, authorIDs []uuid.UUID, perAuthorLimit int) ([]domain.Post, error)
	ListExcludingAuthors(ctx context.Context, authorIDs []uuid.UUID, limit int) ([]domain.Post, error)
	Search(ctx context.Context, query string) ([]domain.Post, error)
}
