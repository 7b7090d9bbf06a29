package model

import (
	"time"

	"cryptoinsight/domain"
)

type UserLike struct {
	ArticleID int64     `gorm:"column:article_id;not null;primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;primaryKey"`
	CreatedAt time.Time `gorm:"type:datetime"`
}

func (UserLike) TableName() string {
	return "user_likes"
}

func NewUserLikeFromDomain(ul domain.UserLike) UserLike {
	return UserLike{
		ArticleID: ul.ArticleID,
		UserID:    ul.UserID,
		CreatedAt: ul.CreatedAt,
	}
}
