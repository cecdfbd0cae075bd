package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserFollowing records that FollowerID follows FollowingID.
type UserFollowing struct {
	ID          uuid.UUID `db:"id" json:"id"`
	FollowerID  uuid.UUID `db:"follower_id" json:"follower_id"`
	FollowingID uuid.UUID `db:"following_id" json:"following_id"`
	CreatedOn   time.Time `db:"created_on" json:"created_on"`
}
