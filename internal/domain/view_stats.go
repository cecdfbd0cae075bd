package domain

import (
	"time"

	"github.com/google/uuid"
)

type PostViewRange string

const (
	PostViewRange24h PostViewRange = "24h"
	PostViewRange7d  PostViewRange = "7d"
	PostViewRange30d PostViewRange = "30d"
	PostViewRangeAll PostViewRange = "all"
)

var PostViewRangesOrdered = []PostViewRange{
	PostViewRange24h,
	PostViewRange7d,
	PostViewRange30d,
	PostViewRangeAll,
}

func (r PostViewRange) Duration() (time.Duration, bool) {
	switch r {
	case PostViewRange24h:
		return 24 * time.Hour, true
	case PostViewRange7d:
		return 7 * 24 * time.Hour, true
	case PostViewRange30d:
		return 30 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

type PostViewStatValue struct {
	TotalViews  int       `json:"total_views"`
	UniqueUsers int       `json:"unique_users"`
	UniqueIPs   int       `json:"unique_ips"`
	BucketEnd   time.Time `json:"bucket_end"`
}

type PostViewStats struct {
	PostID uuid.UUID                           `json:"post_id"`
	Ranges map[PostViewRange]PostViewStatValue `json:"ranges"`
}
