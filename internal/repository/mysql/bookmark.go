package mysql

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"cryptoinsight/domain"
	"cryptoinsight/internal/repository/mysql/model"
)

const mysqlErrDuplicateEntry = 1062

type bookmarkRepository struct {
	DB *gorm.DB
}

var _ domain.BookmarkRepository = (*bookmarkRepository)(nil)

func NewBookmarkRepository(db *gorm.DB) *bookmarkRepository {
	return &bookmarkRepository{
		DB: db,
	}
}

func (b *bookmarkRepository) Store(ctx context.Context, bookmark *domain.Bookmark) error {
	m := model.NewBookmarkFromDomain(bookmark)
	err := b.DB.WithContext(ctx).Create(m).Error
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
			return domain.ErrConflict
		}
		return err
	}
	bookmark.ID = m.ID
	bookmark.CreatedAt = m.CreatedAt
	return nil
}

func (b *bookmarkRepository) Delete(ctx context.Context, articleID, userID int64) error {
	result := b.DB.WithContext(ctx).
		Where("article_id = ? AND user_id = ?", articleID, userID).
		Delete(&model.Bookmark{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (b *bookmarkRepository) FetchByUser(ctx context.Context, userID int64, limit int64) ([]int64, error) {
	var ids []int64
	err := b.DB.WithContext(ctx).
		Model(&model.Bookmark{}).
		Select("article_id").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(int(limit)).
		Find(&ids).Error
	return ids, err
}

func (b *bookmarkRepository) IsBookmarked(ctx context.Context, articleID, userID int64) (bool, error) {
	var count int64
	err := b.DB.WithContext(ctx).
		Model(&model.Bookmark{}).
		Where("article_id = ? AND user_id = ?", articleID, userID).
		Count(&count).Error
	return count > 0, err
}
