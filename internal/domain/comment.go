package domain

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a reaction to a post. A comment with a non-nil ParentID is a
// reply to another comment on the same post; threading is one level deep.
type Comment struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	PostID    uuid.UUID  `db:"post_id" json:"post_id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	ParentID  *uuid.UUID `db:"parent_id" json:"parent_id,omitempty"`
	Content   string     `db:"content" json:"content"`
	CreatedOn time.Time  `db:"created_on" json:"created_on"`
}

type CommentCard struct {
	ID           uuid.UUID `json:"id"`
	Author       UserCard  `json:"user"`
	PostID       uuid.UUID `json:"post_id"`
	Content      string    `json:"text"`
	CreatedOn    time.Time `json:"created_on"`
	RepliesCount int       `json:"replies_count"`
	ReplyTo      string    `json:"reply_to"`
}
