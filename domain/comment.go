package domain

import (
	"context"
	"time"
)

// Comment is a single comment on an article. ParentID is nil for a
// root-level comment and otherwise points at another comment on the
// same article, so the rows of one article form a forest.
//
// Replies is not persisted; it is filled in by the usecase when the
// flat rows are assembled into a tree.
type Comment struct {
	ID        int64      `json:"id"`
	ArticleID int64      `json:"article_id"`
	Username  string     `json:"username"`
	Content   string     `json:"content"`
	ParentID  *int64     `json:"parent_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	IsDeleted bool       `json:"-"`

	Replies []*Comment `json:"replies,omitempty"`
}

// IsRoot reports whether the comment is attached directly to the article.
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

// CommentUsecase 业务逻辑接口
type CommentUsecase interface {
	// Add stores a new comment and returns its id. parentID, when
	// given, must reference a live comment on the same article.
	Add(ctx context.Context, articleID int64, username, content string, parentID *int64) (int64, error)

	// FetchTree returns the article's non-deleted comments as an
	// ordered forest: root comments first (created_at ascending),
	// each carrying its nested replies.
	FetchTree(ctx context.Context, articleID int64) ([]*Comment, error)

	// Count returns the number of non-deleted comments on the
	// article, all levels flattened.
	Count(ctx context.Context, articleID int64) (int64, error)

	// Edit replaces the content of the caller's own comment.
	Edit(ctx context.Context, commentID int64, username, newContent string) error

	// Delete soft-deletes the caller's own comment. Replies are kept.
	Delete(ctx context.Context, commentID int64, username string) error
}

// CommentRepository 数据存取接口
type CommentRepository interface {
	// Store inserts the comment and backfills ID and CreatedAt.
	Store(ctx context.Context, c *Comment) error

	// GetByID returns the comment row, soft-deleted rows included.
	GetByID(ctx context.Context, id int64) (*Comment, error)

	// FetchByArticle returns all non-deleted comments of the article,
	// ordered by created_at then id.
	FetchByArticle(ctx context.Context, articleID int64) ([]*Comment, error)

	// CountByArticle counts the non-deleted comments of the article.
	CountByArticle(ctx context.Context, articleID int64) (int64, error)

	// UpdateContent rewrites content and updated_at of one comment.
	UpdateContent(ctx context.Context, id int64, content string, updatedAt time.Time) error

	// MarkDeleted sets the soft-delete flag. The row stays so that
	// replies keep their parent linkage.
	MarkDeleted(ctx context.Context, id int64) error
}
