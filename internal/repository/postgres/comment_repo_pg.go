package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vitae-social/vitae-api/internal/domain"
)

const commentColumns = `id, post_id, user_id, parent_id, content, created_on`

type CommentRepository struct {
	db *sqlx.DB
}

func NewCommentRepo(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	const query = `SELECT ` + commentColumns + ` FROM comment WHERE id = $1`
	var comment domain.Comment
	if err := r.db.GetContext(ctx, &comment, query, id); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	const query = `
        INSERT INTO comment (id, post_id, user_id, parent_id, content)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + commentColumns

	row := r.db.QueryRowxContext(ctx, query, comment.ID, comment.PostID, comment.UserID, comment.ParentID, comment.Content)
	var created domain.Comment
	if err := row.StructScan(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Replies go with the comment via the parent_id ON DELETE CASCADE.
	const query = `DELETE FROM comment WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *CommentRepository) ListTopLevelByPost(ctx context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	const query = `
        SELECT ` + commentColumns + `
        FROM comment
        WHERE post_id = $1 AND parent_id IS NULL
        ORDER BY created_on
    `
	var comments []domain.Comment
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *CommentRepository) ListReplies(ctx context.Context, parentID uuid.UUID) ([]domain.Comment, error) {
	const query = `
        SELECT ` + commentColumns + `
        FROM comment
        WHERE parent_id = $1
        ORDER BY created_on
    `
	var comments []domain.Comment
	if err := r.db.SelectContext(ctx, &comments, query, parentID); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *CommentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Comment, error) {
	const query = `
        SELECT ` + commentColumns + `
        FROM comment
        WHERE user_id = $1
        ORDER BY created_on
    `
	var comments []domain.Comment
	if err := r.db.SelectContext(ctx, &comments, query, userID); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *CommentRepository) CountTopLevelByPost(ctx context.Context, postID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM comment WHERE post_id = $1 AND parent_id IS NULL`
	var count int
	if err := r.db.GetContext(ctx, &count, query, postID); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CommentRepository) CountReplies(ctx context.Context, parentID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM comment WHERE parent_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, parentID); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CommentRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM comment WHERE user_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, err
	}
	return count, nil
}
