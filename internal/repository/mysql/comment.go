package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"cryptoinsight/domain"
	"cryptoinsight/internal/repository/mysql/model"
)

type commentRepository struct {
	DB *gorm.DB
}

var _ domain.CommentRepository = (*commentRepository)(nil)

func NewCommentRepository(db *gorm.DB) *commentRepository {
	return &commentRepository{
		DB: db,
	}
}

func (c *commentRepository) Store(ctx context.Context, comment *domain.Comment) error {
	m := model.NewCommentFromDomain(comment)
	if err := c.DB.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	comment.ID = m.ID
	comment.CreatedAt = m.CreatedAt
	return nil
}

func (c *commentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	var comment model.Comment
	err := c.DB.WithContext(ctx).First(&comment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	domainComment := comment.ToDomain()
	return &domainComment, nil
}

// FetchByArticle returns the flat non-deleted rows of the article.
// The id tiebreak keeps the order stable when two comments share a
// created_at second.
func (c *commentRepository) FetchByArticle(ctx context.Context, articleID int64) ([]*domain.Comment, error) {
	var comments []model.Comment
	err := c.DB.WithContext(ctx).
		Where("article_id = ? AND is_deleted = ?", articleID, false).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	res := make([]*domain.Comment, 0, len(comments))
	for i := range comments {
		domainComment := comments[i].ToDomain()
		res = append(res, &domainComment)
	}
	return res, nil
}

func (c *commentRepository) CountByArticle(ctx context.Context, articleID int64) (int64, error) {
	var count int64
	err := c.DB.WithContext(ctx).
		Model(&model.Comment{}).
		Where("article_id = ? AND is_deleted = ?", articleID, false).
		Count(&count).Error
	return count, err
}

func (c *commentRepository) UpdateContent(ctx context.Context, id int64, content string, updatedAt time.Time) error {
	result := c.DB.WithContext(ctx).
		Model(&model.Comment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"content":    content,
			"updated_at": updatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (c *commentRepository) MarkDeleted(ctx context.Context, id int64) error {
	// No RowsAffected check: MySQL reports 0 affected rows when the
	// flag is already set, and repeated deletes are a no-op success.
	return c.DB.WithContext(ctx).
		Model(&model.Comment{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}
