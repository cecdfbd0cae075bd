package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vitae-social/vitae-api/internal/domain"
)

const likeColumns = `id, post_id, user_id, created_on`

type LikeRepository struct {
	db *sqlx.DB
}

func NewLikeRepo(db *sqlx.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

func (r *LikeRepository) Find(ctx context.Context, userID, postID uuid.UUID) (*domain.PostLike, error) {
	const query = `SELECT ` + likeColumns + ` FROM post_like WHERE user_id = $1 AND post_id = $2`
	var like domain.PostLike
	if err := r.db.GetContext(ctx, &like, query, userID, postID); err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *LikeRepository) Add(ctx context.Context, userID, postID uuid.UUID) (*domain.PostLike, error) {
	const query = `
        INSERT INTO post_like (id, post_id, user_id)
        VALUES ($1, $2, $3)
        RETURNING ` + likeColumns

	row := r.db.QueryRowxContext(ctx, query, uuid.New(), postID, userID)
	var like domain.PostLike
	if err := row.StructScan(&like); err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *LikeRepository) Remove(ctx context.Context, userID, postID uuid.UUID) error {
	const query = `DELETE FROM post_like WHERE user_id = $1 AND post_id = $2`
	_, err := r.db.ExecContext(ctx, query, userID, postID)
	return err
}

func (r *LikeRepository) CountByPost(ctx context.Context, postID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM post_like WHERE post_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, postID); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *LikeRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM post_like WHERE user_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, err
	}
	return count, nil
}
