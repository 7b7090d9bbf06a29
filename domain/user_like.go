package domain

import "time"

const (
	// LikeRecordLimit caps how many of a user's recent likes are
	// loaded into the cache at once.
	LikeRecordLimit = 300
)

// UserLike is representing a like record
type UserLike struct {
	ArticleID int64
	UserID    int64
	CreatedAt time.Time
}

type LikeStateChanges struct {
	ToAdd    []UserLike
	ToRemove []UserLike
}
