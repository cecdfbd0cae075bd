package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vitae-social/vitae-api/internal/domain"
)

const followColumns = `id, follower_id, following_id, created_on`

type FollowRepository struct {
	db *sqlx.DB
}

func NewFollowRepo(db *sqlx.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

func (r *FollowRepository) Find(ctx context.Context, followerID, followingID uuid.UUID) (*domain.UserFollowing, error) {
	const query = `SELECT ` + followColumns + ` FROM user_following WHERE follower_id = $1 AND following_id = $2`
	var following domain.UserFollowing
	if err := r.db.GetContext(ctx, &following, query, followerID, followingID); err != nil {
		return nil, err
	}
	return &following, nil
}

func (r *FollowRepository) Add(ctx context.Context, followerID, followingID uuid.UUID) (*domain.UserFollowing, error) {
	const query = `
        INSERT INTO user_following (id, follower_id, following_id)
        VALUES ($1, $2, $3)
        RETURNING ` + followColumns

	row := r.db.QueryRowxContext(ctx, query, uuid.New(), followerID, followingID)
	var following domain.UserFollowing
	if err := row.StructScan(&following); err != nil {
		return nil, err
	}
	return &following, nil
}

func (r *FollowRepository) Remove(ctx context.Context, followerID, followingID uuid.UUID) error {
	const query = `DELETE FROM user_following WHERE follower_id = $1 AND following_id = $2`
	_, err := r.db.ExecContext(ctx, query, followerID, followingID)
	return err
}

func (r *FollowRepository) ListFollowers(ctx context.Context, userID uuid.UUID) ([]domain.UserFollowing, error) {
	const query = `
        SELECT ` + followColumns + `
        FROM user_following
        WHERE following_id = $1
        ORDER BY created_on DESC
    `
	var rows []domain.UserFollowing
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *FollowRepository) ListFollowings(ctx context.Context, userID uuid.UUID) ([]domain.UserFollowing, error) {
	const query = `
        SELECT ` + followColumns + `
        FROM user_following
        WHERE follower_id = $1
        ORDER BY created_on DESC
    `
	var rows []domain.UserFollowing
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *FollowRepository) CountFollowers(ctx context.Context, userID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM user_following WHERE following_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *FollowRepository) CountFollowings(ctx context.Context, userID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM user_following WHERE follower_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, err
	}
	return count, nil
}
