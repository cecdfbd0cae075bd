package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitae-social/vitae-api/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, bio, email, profilePictureID string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error
	UpdateSigninAttempts(ctx context.Context, id uuid.UUID, attempts int, active bool) error
	SetResetToken(ctx context.Context, id uuid.UUID, resetToken string) error
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string) ([]domain.User, error)
}
