package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Email            string    `db:"email" json:"email"`
	Name             string    `db:"name" json:"name"`
	Bio              string    `db:"bio" json:"bio"`
	ProfilePictureID string    `db:"profile_picture_id" json:"profile_picture_id"`
	PasswordHash     []byte    `db:"password_hash" json:"-"`
	PasswordSalt     []byte    `db:"password_salt" json:"-"`
	SigninAttempts   int       `db:"signin_attempts" json:"-"`
	Active           bool      `db:"active" json:"-"`
	ResetToken       string    `db:"reset_token" json:"-"`
	CreatedOn        time.Time `db:"created_on" json:"created_on"`
	UpdatedOn        time.Time `db:"updated_on" json:"updated_on"`
}

// UserProfile is the read model for the user endpoint: the user row plus
// the aggregate counts and the viewer-relative following flag.
type UserProfile struct {
	User
	FollowersCount  int  `json:"followers_count"`
	FollowingsCount int  `json:"followings_count"`
	PostsCount      int  `json:"posts_count"`
	LikesCount      int  `json:"likes_count"`
	CommentsCount   int  `json:"comments_count"`
	IsFollowing     bool `json:"is_following"`
}

// UserCard is the compact projection used by follower/following lists and
// people search results.
type UserCard struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	ProfilePictureID string    `json:"profile_picture_id"`
	IsFollowing      bool      `json:"is_following"`
}
