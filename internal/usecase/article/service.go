package article

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"cryptoinsight/domain"
	"cryptoinsight/internal/repository"
)

const (
	// bloomWarmupPage is how many article ids are loaded per page
	// when the filter is rebuilt on startup.
	bloomWarmupPage = 1000

	historyRankSourceLimit = 100
)

type Service struct {
	articleRepo     domain.ArticleRepository
	userRepo        domain.UserRepository
	articleCache    domain.ArticleCache
	syncLikesWorker domain.SyncLikesWorker
	bloomRepo       domain.BloomRepository
}

var _ domain.ArticleUsecase = (*Service)(nil)

// NewService will create a new article service object
func NewService(a domain.ArticleRepository, u domain.UserRepository, ac domain.ArticleCache, s domain.SyncLikesWorker, b domain.BloomRepository) *Service {
	return &Service{
		articleRepo:     a,
		userRepo:        u,
		articleCache:    ac,
		syncLikesWorker: s,
		bloomRepo:       b,
	}
}

// fillUserDetails loads the authors of a page of articles in parallel.
func (a *Service) fillUserDetails(ctx context.Context, data []domain.Article) ([]domain.Article, error) {
	g, ctx := errgroup.WithContext(ctx)
	mapUsers := map[int64]domain.User{}

	for _, article := range data {
		mapUsers[article.User.ID] = domain.User{}
	}

	chanUser := make(chan domain.User)
	for userID := range mapUsers {
		g.Go(func() error {
			res, err := a.userRepo.GetByID(ctx, userID)
			if err != nil {
				return err
			}
			chanUser <- res
			return nil
		})
	}

	go func() {
		defer close(chanUser)
		if err := g.Wait(); err != nil {
			logrus.Error(err)
		}
	}()

	for user := range chanUser {
		if user != (domain.User{}) {
			mapUsers[user.ID] = user
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for index, item := range data {
		if u, ok := mapUsers[item.User.ID]; ok {
			data[index].User = u
		}
	}
	return data, nil
}

func (a *Service) Fetch(ctx context.Context, cursor string, num int64) (res []domain.Article, nextCursor string, err error) {
	res, err = a.articleRepo.Fetch(ctx, cursor, num)
	if err != nil {
		return nil, "", err
	}

	res, err = a.fillUserDetails(ctx, res)
	if err != nil {
		return nil, "", err
	}

	if len(res) > 0 {
		nextCursor = repository.EncodeCursor(res[len(res)-1].CreatedAt)
	}
	return
}

func (a *Service) GetByID(ctx context.Context, id int64) (domain.Article, error) {
	exists, err := a.bloomRepo.Exists(ctx, id)
	if err == nil && !exists {
		return domain.Article{}, domain.ErrNotFound
	}

	res, err := a.articleRepo.GetByID(ctx, id)
	if err != nil {
		return domain.Article{}, err
	}

	newLikes, err := a.articleCache.GetLikeCount(ctx, id)
	if errors.Is(err, domain.ErrCacheMiss) {
		_ = a.articleCache.SetLikeCount(ctx, res.ID, res.Likes)
	} else if err != nil {
		logrus.Errorf("failed to GetLikeCount from redis: %v", err)
	} else {
		res.Likes = newLikes
	}

	deltaViews, err := a.articleCache.IncrViews(ctx, id)
	if err != nil {
		logrus.Errorf("failed to IncrViews from redis: %v", err)
		return res, nil
	}
	res.Views += deltaViews
	return res, nil
}

func (a *Service) Store(ctx context.Context, m *domain.Article) error {
	author, err := a.userRepo.GetByID(ctx, m.User.ID)
	if err != nil {
		return err
	}
	if !author.CanPublish() {
		return domain.ErrForbidden
	}

	existedArticle, _ := a.articleRepo.GetByTitle(ctx, m.Title) // ignore if any error
	if existedArticle.ID != 0 {
		return domain.ErrConflict
	}

	if err := a.articleRepo.Store(ctx, m); err != nil {
		return err
	}
	m.User = author

	// a fresh id must reach the filter or reads will 404
	if err := a.bloomRepo.Add(ctx, m.ID); err != nil {
		logrus.Errorf("failed to add article %d to bloom filter: %v", m.ID, err)
	}
	return nil
}

func (a *Service) Update(ctx context.Context, ar *domain.Article) error {
	existing, err := a.articleRepo.GetByID(ctx, ar.ID)
	if err != nil {
		return err
	}
	if existing.User.ID != ar.User.ID {
		return domain.ErrForbidden
	}

	ar.UpdatedAt = time.Now()
	return a.articleRepo.Update(ctx, ar)
}

func (a *Service) Delete(ctx context.Context, id int64, actor domain.User) error {
	existing, err := a.articleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.User.ID != actor.ID && actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	return a.articleRepo.Delete(ctx, id)
}

func (a *Service) AddLikeRecord(ctx context.Context, likeRecord domain.UserLike) (bool, error) {
	ok, err := a.articleCache.AddLikeRecord(ctx, likeRecord)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logrus.Errorf("failed to AddLikeRecord to redis: %v", err)
			return false, err
		}

		// liked-set not cached yet; load it from the DB and retry once
		if err := a.loadUserLikedArticles(ctx, likeRecord.UserID); err != nil {
			return false, err
		}

		ok, err = a.articleCache.AddLikeRecord(ctx, likeRecord)
		if err != nil {
			logrus.Errorf("failed to AddLikeRecord to redis: %v", err)
			return false, err
		}
	}

	if ok {
		a.syncLikesWorker.Send(likeRecord, domain.Like)
	}
	return ok, nil
}

func (a *Service) RemoveLikeRecord(ctx context.Context, likeRecord domain.UserLike) (bool, error) {
	ok, err := a.articleCache.DecrLikeRecord(ctx, likeRecord)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logrus.Errorf("failed to DecrLikeRecord to redis: %v", err)
			return false, err
		}

		if err := a.loadUserLikedArticles(ctx, likeRecord.UserID); err != nil {
			return false, err
		}

		ok, err = a.articleCache.DecrLikeRecord(ctx, likeRecord)
		if err != nil {
			logrus.Errorf("failed to DecrLikeRecord to redis: %v", err)
			return false, err
		}
	}

	if ok {
		a.syncLikesWorker.Send(likeRecord, domain.Unlike)
	}
	return ok, nil
}

func (a *Service) loadUserLikedArticles(ctx context.Context, uid int64) error {
	likedArticles, err := a.articleRepo.FetchUserLikedArticles(ctx, uid, domain.LikeRecordLimit)
	if err != nil {
		logrus.Errorf("failed to FetchUserLikedArticles from repo: %v", err)
		return err
	}

	if err := a.articleCache.SetUserLikedArticles(ctx, uid, likedArticles); err != nil {
		logrus.Errorf("failed to SetUserLikedArticles to redis: %v", err)
		return err
	}
	return nil
}

func (a *Service) FetchDailyRank(ctx context.Context, limit int64) ([]domain.Article, error) {
	ranked, err := a.articleCache.GetDailyRank(ctx, limit)
	if err != nil {
		logrus.Errorf("failed to GetDailyRank from redis: %v", err)
		return nil, err
	}

	return a.fillRankArticles(ctx, ranked)
}

func (a *Service) FetchHistoryRank(ctx context.Context, limit int64) ([]domain.Article, error) {
	ranked, err := a.articleCache.GetHistoryRank(ctx, limit)
	if errors.Is(err, domain.ErrCacheMiss) {
		res, err := a.articleRepo.FetchArticlesByLikes(ctx, historyRankSourceLimit)
		if err != nil {
			logrus.Errorf("failed to FetchArticlesByLikes from repo: %v", err)
			return nil, err
		}
		if len(res) == 0 {
			return res, nil
		}

		ids := make([]int64, len(res))
		scores := make([]float64, len(res))
		for i := range res {
			ids[i] = res[i].ID
			scores[i] = float64(res[i].Likes)
		}

		if err := a.articleCache.SetHistoryRank(ctx, ids, scores); err != nil {
			logrus.Warnf("fail to SetHistoryRank to redis: %v", err)
		}

		return res[:min(int64(len(res)), limit)], nil
	} else if err != nil {
		logrus.Errorf("failed to GetHistoryRank from redis: %v", err)
		return nil, err
	}

	return a.fillRankArticles(ctx, ranked)
}

// fillRankArticles resolves rank entries (id + score) into full
// articles while keeping the rank order and the rank's like counts.
func (a *Service) fillRankArticles(ctx context.Context, ranked []domain.Article) ([]domain.Article, error) {
	if len(ranked) == 0 {
		return ranked, nil
	}

	ids := make([]int64, len(ranked))
	for i := range ranked {
		ids[i] = ranked[i].ID
	}

	full, err := a.articleRepo.GetByIDs(ctx, ids)
	if err != nil {
		logrus.Warnf("failed to fill rank articles: %v", err)
		return ranked, nil
	}

	articleMap := make(map[int64]domain.Article, len(full))
	for _, art := range full {
		articleMap[art.ID] = art
	}

	res := make([]domain.Article, 0, len(ranked))
	for _, entry := range ranked {
		if art, ok := articleMap[entry.ID]; ok {
			art.Likes = entry.Likes
			res = append(res, art)
		}
	}
	return res, nil
}

// InitBloomFilter pages over every article id and loads the filter.
func (a *Service) InitBloomFilter(ctx context.Context) error {
	var cursor int64
	for {
		ids, err := a.articleRepo.FetchIDs(ctx, cursor, bloomWarmupPage)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := a.bloomRepo.BulkAdd(ctx, ids); err != nil {
			return err
		}

		cursor = ids[len(ids)-1]
	}
}
