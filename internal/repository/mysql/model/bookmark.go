package model

import (
	"time"

	"cryptoinsight/domain"
)

type Bookmark struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ArticleID int64     `gorm:"column:article_id;not null;uniqueIndex:idx_bookmark_user_article"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_bookmark_user_article"`
	CreatedAt time.Time `gorm:"type:datetime"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}

func NewBookmarkFromDomain(b *domain.Bookmark) *Bookmark {
	return &Bookmark{
		ID:        b.ID,
		ArticleID: b.ArticleID,
		UserID:    b.UserID,
		CreatedAt: b.CreatedAt,
	}
}

func (m *Bookmark) ToDomain() domain.Bookmark {
	return domain.Bookmark{
		ID:        m.ID,
		ArticleID: m.ArticleID,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
	}
}
