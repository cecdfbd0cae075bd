package postgres

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vitae-social/vitae-api/internal/domain"
)

const postColumns = `id, user_id, title, content, created_on, updated_on`

type PostRepository struct {
	db *sqlx.DB
}

func NewPostRepo(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// postRow mirrors the post table; quotes live in a JSONB column.
type postRow struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Title     string    `db:"title"`
	Content   []byte    `db:"content"`
	CreatedOn time.Time `db:"created_on"`
	UpdatedOn time.Time `db:"updated_on"`
}

func (row postRow) toDomain() (domain.Post, error) {
	post := domain.Post{
		ID:        row.ID,
		UserID:    row.UserID,
		Title:     row.Title,
		CreatedOn: row.CreatedOn,
		UpdatedOn: row.UpdatedOn,
	}
	if len(row.Content) > 0 {
		if err := json.Unmarshal(row.Content, &post.Quotes); err != nil {
			return domain.Post{}, err
		}
	}
	return post, nil
}

func rowsToPosts(rows []postRow) ([]domain.Post, error) {
	posts := make([]domain.Post, 0, len(rows))
	for _, row := range rows {
		post, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (r *PostRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	const query = `SELECT ` + postColumns + ` FROM post WHERE id = $1`
	var row postRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	post, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	content, err := json.Marshal(post.Quotes)
	if err != nil {
		return nil, err
	}

	const query = `
        INSERT INTO post (id, user_id, title, content)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + postColumns

	var row postRow
	if err := r.db.QueryRowxContext(ctx, query, post.ID, post.UserID, post.Title, content).StructScan(&row); err != nil {
		return nil, err
	}
	created, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *PostRepository) Update(ctx context.Context, id, userID uuid.UUID, title string, quotes []string) (*domain.Post, error) {
	content, err := json.Marshal(quotes)
	if err != nil {
		return nil, err
	}

	const query = `
        UPDATE post
        SET title = $3,
            content = $4,
            updated_on = NOW()
        WHERE id = $1 AND user_id = $2
        RETURNING ` + postColumns

	var row postRow
	if err := r.db.QueryRowxContext(ctx, query, id, userID, title, content).StructScan(&row); err != nil {
		return nil, err
	}
	updated, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *PostRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	const query = `DELETE FROM post WHERE id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, userID)
	return err
}

func (r *PostRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Post, error) {
	const query = `SELECT ` + postColumns + ` FROM post WHERE user_id = $1 ORDER BY created_on DESC`
	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}
	return rowsToPosts(rows)
}

func (r *PostRepository) ListLikedBy(ctx context.Context, userID uuid.UUID) ([]domain.Post, error) {
	const query = `
        SELECT p.id, p.user_id, p.title, p.content, p.created_on, p.updated_on
        FROM post p
        JOIN post_like l ON l.post_id = p.id
        WHERE l.user_id = $1
        ORDER BY p.created_on
    `
	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}
	return rowsToPosts(rows)
}

func (r *PostRepository) ListByAuthors(ctx context.Context, authorIDs []uuid.UUID, perAuthorLimit int) ([]domain.Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}

	const query = `
        SELECT id, user_id, title, content, created_on, updated_on
        FROM (
            SELECT p.*, ROW_NUMBER() OVER (PARTITION BY user_id ORDER BY created_on DESC) AS author_rank
            FROM post p
            WHERE user_id = ANY($1::uuid[])
        ) ranked
        WHERE author_rank <= $2
        ORDER BY created_on DESC
    `
	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, uuidArray(authorIDs), perAuthorLimit); err != nil {
		return nil, err
	}
	return rowsToPosts(rows)
}

func (r *PostRepository) ListExcludingAuthors(ctx context.Context, authorIDs []uuid.UUID, limit int) ([]domain.Post, error) {
	const query = `
        SELECT ` + postColumns + `
        FROM post
        WHERE NOT (user_id = ANY($1::uuid[]))
        ORDER BY created_on DESC
        LIMIT $2
    `
	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, uuidArray(authorIDs), limit); err != nil {
		return nil, err
	}
	return rowsToPosts(rows)
}

func (r *PostRepository) Search(ctx context.Context, query string) ([]domain.Post, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, nil
	}

	const stmt = `
        SELECT ` + postColumns + `
        FROM post
        WHERE to_tsvector('english', COALESCE(title, '')) @@ plainto_tsquery('english', $1)
           OR to_tsvector('english', COALESCE(content::text, '')) @@ plainto_tsquery('english', $1)
        ORDER BY created_on DESC
    `
	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, stmt, trimmed); err != nil {
		return nil, err
	}
	return rowsToPosts(rows)
}

func uuidArray(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
