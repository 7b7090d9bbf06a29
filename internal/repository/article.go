package repository

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"cryptoinsight/domain"
)

// articleRepository 协调层, 协调缓存和数据库
type articleRepository struct {
	db           domain.ArticleDBRepository
	cache        domain.ArticleCache
	userRepo     domain.UserRepository
	rebuildGroup singleflight.Group
}

var _ domain.ArticleRepository = (*articleRepository)(nil)

// NewArticleRepository 创建协调层repository
func NewArticleRepository(db domain.ArticleDBRepository, cache domain.ArticleCache, userRepo domain.UserRepository) *articleRepository {
	return &articleRepository{
		db:       db,
		cache:    cache,
		userRepo: userRepo,
	}
}

// Fetch 获取文章列表, 列表页直接走数据库; 作者信息由usecase层并行填充
func (r *articleRepository) Fetch(ctx context.Context, cursor string, num int64) ([]domain.Article, error) {
	return r.db.Fetch(ctx, cursor, num)
}

// GetByID 根据ID获取文章, 未命中缓存时用singleflight避免缓存击穿
func (r *articleRepository) GetByID(ctx context.Context, id int64) (domain.Article, error) {
	article, err := r.cache.GetArticle(ctx, id)
	if err == nil {
		return article, nil
	}
	if err != domain.ErrCacheMiss {
		logrus.Warnf("article cache get failed, falling back to db: %v", err)
	}

	key := "article:" + strconv.FormatInt(id, 10)
	result, err, _ := r.rebuildGroup.Do(key, func() (any, error) {
		art, err := r.db.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		user, err := r.userRepo.GetByID(ctx, art.User.ID)
		if err != nil {
			return nil, err
		}
		art.User = user

		if err := r.cache.SetArticle(ctx, &art); err != nil {
			logrus.Warnf("failed to set article cache: %v", err)
		}
		if err := r.cache.SetLikeCount(ctx, art.ID, art.Likes); err != nil {
			logrus.Warnf("failed to seed like count cache: %v", err)
		}

		return art, nil
	})

	if err != nil {
		return domain.Article{}, err
	}

	return result.(domain.Article), nil
}

// GetByIDs 批量获取文章, 先查缓存, 缺失的部分回源数据库
func (r *articleRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cached, err := r.cache.GetArticleByIDs(ctx, ids)
	if err != nil {
		logrus.Warnf("batch article cache get failed: %v", err)
		cached = nil
	}

	found := make(map[int64]domain.Article, len(cached))
	for i := range cached {
		found[cached[i].ID] = cached[i]
	}

	missed := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missed = append(missed, id)
		}
	}

	if len(missed) > 0 {
		fromDB, err := r.db.GetByIDs(ctx, missed)
		if err != nil {
			return nil, err
		}
		fromDB, err = r.fillUserDetails(ctx, fromDB)
		if err != nil {
			return nil, err
		}

		go func(arts []domain.Article) {
			_ = r.cache.BatchSetArticle(context.Background(), arts)
		}(fromDB)

		for i := range fromDB {
			found[fromDB[i].ID] = fromDB[i]
		}
	}

	// keep the caller's id order
	res := make([]domain.Article, 0, len(ids))
	for _, id := range ids {
		if art, ok := found[id]; ok {
			res = append(res, art)
		}
	}
	return res, nil
}

func (r *articleRepository) GetByTitle(ctx context.Context, title string) (domain.Article, error) {
	// 标题查询不常用, 不走缓存
	article, err := r.db.GetByTitle(ctx, title)
	if err != nil {
		return domain.Article{}, err
	}

	user, err := r.userRepo.GetByID(ctx, article.User.ID)
	if err != nil {
		return domain.Article{}, err
	}
	article.User = user

	return article, nil
}

func (r *articleRepository) Store(ctx context.Context, a *domain.Article) error {
	return r.db.Store(ctx, a)
}

func (r *articleRepository) Update(ctx context.Context, ar *domain.Article) error {
	err := r.db.Update(ctx, ar)
	if err != nil {
		return err
	}

	// 异步删除缓存
	go func(id int64) {
		_ = r.cache.DeleteArticle(context.Background(), id)
	}(ar.ID)

	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.Delete(ctx, id)
	if err != nil {
		return err
	}

	go func(id int64) {
		_ = r.cache.DeleteArticle(context.Background(), id)
	}(id)

	return nil
}

func (r *articleRepository) FetchUserLikedArticles(ctx context.Context, uid int64, limit int64) ([]int64, error) {
	return r.db.FetchUserLikedArticles(ctx, uid, limit)
}

func (r *articleRepository) FetchArticlesByLikes(ctx context.Context, limit int64) ([]domain.Article, error) {
	return r.db.FetchArticlesByLikes(ctx, limit)
}

func (r *articleRepository) FetchIDs(ctx context.Context, cursor, limit int64) ([]int64, error) {
	return r.db.FetchIDs(ctx, cursor, limit)
}

// fillUserDetails 批量填充用户详细信息
func (r *articleRepository) fillUserDetails(ctx context.Context, articles []domain.Article) ([]domain.Article, error) {
	if len(articles) == 0 {
		return articles, nil
	}

	userIDs := make([]int64, 0, len(articles))
	existMap := make(map[int64]bool)
	for _, item := range articles {
		if !existMap[item.User.ID] {
			userIDs = append(userIDs, item.User.ID)
			existMap[item.User.ID] = true
		}
	}

	users, err := r.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	userMap := make(map[int64]domain.User)
	for _, u := range users {
		userMap[u.ID] = u
	}

	for i := range articles {
		if u, ok := userMap[articles[i].User.ID]; ok {
			articles[i].User = u
		}
	}

	return articles, nil
}
