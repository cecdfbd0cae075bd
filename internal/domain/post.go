package domain

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Quotes    []string  `db:"-" json:"quotes"`
	CreatedOn time.Time `db:"created_on" json:"created_on"`
	UpdatedOn time.Time `db:"updated_on" json:"updated_on"`
}

// PostCard is the read model returned by feed, explore, profile and search
// listings. Author data is denormalized so list endpoints stay single-query.
type PostCard struct {
	ID            uuid.UUID `json:"id"`
	Author        UserCard  `json:"user"`
	Title         string    `json:"title"`
	Quotes        []string  `json:"quotes"`
	PublishedOn   time.Time `json:"published_on"`
	CommentsCount int       `json:"comments_count"`
	LikesCount    int       `json:"likes_count"`
	IsLiked       bool      `json:"is_liked"`
}
