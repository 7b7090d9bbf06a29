package model

import (
	"time"

	"cryptoinsight/domain"
)

// Comment mirrors the comments table. parent_id is a nullable
// self-reference; the FK cascade only fires on a hard delete, which
// the repository never issues for comments.
type Comment struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	ArticleID int64      `gorm:"column:article_id;not null;index"`
	Username  string     `gorm:"type:varchar(100);not null;index"`
	Content   string     `gorm:"type:text;not null"`
	ParentID  *int64     `gorm:"column:parent_id;index"`
	CreatedAt time.Time  `gorm:"type:datetime;index"`
	UpdatedAt *time.Time `gorm:"type:datetime"`
	IsDeleted bool       `gorm:"column:is_deleted;not null;default:false"`
}

func (Comment) TableName() string {
	return "comments"
}

func NewCommentFromDomain(c *domain.Comment) *Comment {
	return &Comment{
		ID:        c.ID,
		ArticleID: c.ArticleID,
		Username:  c.Username,
		Content:   c.Content,
		ParentID:  c.ParentID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		IsDeleted: c.IsDeleted,
	}
}

func (m *Comment) ToDomain() domain.Comment {
	return domain.Comment{
		ID:        m.ID,
		ArticleID: m.ArticleID,
		Username:  m.Username,
		Content:   m.Content,
		ParentID:  m.ParentID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		IsDeleted: m.IsDeleted,
	}
}
