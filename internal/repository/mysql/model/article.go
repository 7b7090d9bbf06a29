package model

import (
	"time"

	"cryptoinsight/domain"
)

type Article struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Title     string    `gorm:"type:varchar(255);not null"`
	Content   string    `gorm:"type:longtext;not null"`
	ImageURL  string    `gorm:"column:image_url;type:varchar(512)"`
	UserID    int64     `gorm:"column:user_id;not null"`
	Views     int64     `gorm:"default:0"`
	Likes     int64     `gorm:"default:0"`
	UpdatedAt time.Time `gorm:"type:datetime"`
	CreatedAt time.Time `gorm:"type:datetime"`
}

func (Article) TableName() string {
	return "article"
}

func (m *Article) ToDomain() domain.Article {
	return domain.Article{
		ID:        m.ID,
		Title:     m.Title,
		Content:   m.Content,
		ImageURL:  m.ImageURL,
		UpdatedAt: m.UpdatedAt,
		CreatedAt: m.CreatedAt,
		User: domain.User{
			ID: m.UserID,
		},
		Views: m.Views,
		Likes: m.Likes,
	}
}

func NewArticleFromDomain(a *domain.Article) *Article {
	return &Article{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		ImageURL:  a.ImageURL,
		UserID:    a.User.ID,
		UpdatedAt: a.UpdatedAt,
		CreatedAt: a.CreatedAt,
		Views:     a.Views,
		Likes:     a.Likes,
	}
}
