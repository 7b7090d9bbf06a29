package bookmark

import (
	"context"

	"cryptoinsight/domain"
)

type service struct {
	bookmarkRepo domain.BookmarkRepository
	articleRepo  domain.ArticleRepository
}

var _ domain.BookmarkUsecase = (*service)(nil)

func NewService(bookmarkRepo domain.BookmarkRepository, articleRepo domain.ArticleRepository) *service {
	return &service{
		bookmarkRepo: bookmarkRepo,
		articleRepo:  articleRepo,
	}
}

func (s *service) Add(ctx context.Context, articleID, userID int64) error {
	// verify the article is still there; a dangling bookmark is useless
	if _, err := s.articleRepo.GetByID(ctx, articleID); err != nil {
		return err
	}

	return s.bookmarkRepo.Store(ctx, &domain.Bookmark{
		ArticleID: articleID,
		UserID:    userID,
	})
}

func (s *service) Remove(ctx context.Context, articleID, userID int64) error {
	return s.bookmarkRepo.Delete(ctx, articleID, userID)
}

func (s *service) FetchMine(ctx context.Context, userID int64, limit int64) ([]domain.Article, error) {
	ids, err := s.bookmarkRepo.FetchByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Article{}, nil
	}

	return s.articleRepo.GetByIDs(ctx, ids)
}

func (s *service) IsBookmarked(ctx context.Context, articleID, userID int64) (bool, error) {
	return s.bookmarkRepo.IsBookmarked(ctx, articleID, userID)
}
