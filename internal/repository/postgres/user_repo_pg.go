package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vitae-social/vitae-api/internal/domain"
)

const userColumns = `id, email, name, bio, profile_picture_id, password_hash, password_salt, signin_attempts, active, reset_token, created_on, updated_on`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	const query = `
        INSERT INTO user_account (id, email, name, password_hash, password_salt, active, signin_attempts)
        VALUES ($1, $2, $3, $4, $5, TRUE, 0)
        RETURNING ` + userColumns

	row := r.db.QueryRowxContext(ctx, query, user.ID, user.Email, user.Name, user.PasswordHash, user.PasswordSalt)
	var created domain.User
	if err := row.StructScan(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM user_account WHERE id = $1`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM user_account WHERE email = $1`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, name, bio, email, profilePictureID string) (*domain.User, error) {
	const query = `
        UPDATE user_account
        SET name = $2,
            bio = $3,
            email = $4,
            profile_picture_id = $5,
            updated_on = NOW()
        WHERE id = $1
        RETURNING ` + userColumns

	row := r.db.QueryRowxContext(ctx, query, id, name, bio, email, profilePictureID)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash, passwordSalt []byte) error {
	const query = `
        UPDATE user_account
        SET password_hash = $2,
            password_salt = $3,
            reset_token = '',
            signin_attempts = 0,
            active = TRUE,
            updated_on = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, passwordHash, passwordSalt)
	return err
}

func (r *UserRepository) UpdateSigninAttempts(ctx context.Context, id uuid.UUID, attempts int, active bool) error {
	const query = `
        UPDATE user_account
        SET signin_attempts = $2,
            active = $3,
            updated_on = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, attempts, active)
	return err
}

func (r *UserRepository) SetResetToken(ctx context.Context, id uuid.UUID, resetToken string) error {
	const query = `
        UPDATE user_account
        SET reset_token = $2,
            updated_on = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, resetToken)
	return err
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM user_account ORDER BY created_on`
	var users []domain.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Posts, comments, likes and follow rows go with the account via
	// ON DELETE CASCADE.
	const query = `DELETE FROM user_account WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *UserRepository) Search(ctx context.Context, query string) ([]domain.User, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, nil
	}

	const stmt = `
        SELECT ` + userColumns + `
        FROM user_account
        WHERE to_tsvector('english', COALESCE(name, '')) @@ plainto_tsquery('english', $1)
           OR to_tsvector('english', COALESCE(bio, '')) @@ plainto_tsquery('english', $1)
        ORDER BY created_on DESC
    `
	var users []domain.User
	if err := r.db.SelectContext(ctx, &users, stmt, trimmed); err != nil {
		return nil, err
	}
	return users, nil
}
