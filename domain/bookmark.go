package domain

import (
	"context"
	"time"
)

// Bookmark marks an article as saved by a user.
type Bookmark struct {
	ID        int64
	ArticleID int64
	UserID    int64
	CreatedAt time.Time
}

type BookmarkRepository interface {
	// Store saves the bookmark. Returns ErrConflict if it already exists.
	Store(ctx context.Context, b *Bookmark) error

	// Delete removes the bookmark. Returns ErrNotFound if it doesn't exist.
	Delete(ctx context.Context, articleID, userID int64) error

	// FetchByUser returns the article ids the user bookmarked, newest first.
	FetchByUser(ctx context.Context, userID int64, limit int64) ([]int64, error)

	// IsBookmarked reports whether the user bookmarked the article.
	IsBookmarked(ctx context.Context, articleID, userID int64) (bool, error)
}

type BookmarkUsecase interface {
	Add(ctx context.Context, articleID, userID int64) error
	Remove(ctx context.Context, articleID, userID int64) error
	// FetchMine resolves the user's bookmarks into full articles.
	FetchMine(ctx context.Context, userID int64, limit int64) ([]Article, error)
	IsBookmarked(ctx context.Context, articleID, userID int64) (bool, error)
}
