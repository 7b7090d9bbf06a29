package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"cryptoinsight/domain"
)

const (
	KeyArticles               = "article:%d"
	KeyUserLikedArticles      = "article:user:%d:likedArticles"
	KeyHotDailyRaw            = "article:hot:daily:raw:%s"
	KeyHotDailyAggregatedRank = "article:hot:daily:rank"
	KeyHotHistoryRank         = "article:hot:history:rank"
	KeyLikesBuffer            = "article:likes:%d"
	KeyViewsBuffer            = "article:views:buffer"
	KeyViewsProcessing        = "article:views:processing"

	articleTTL   = 10 * time.Minute
	likedSetTTL  = 30 * time.Minute
	dailyRankTTL = 5 * time.Minute
)

type articleCache struct {
	client *redis.Client
}

var _ domain.ArticleCache = (*articleCache)(nil)

func NewArticleCache(client *redis.Client) *articleCache {
	return &articleCache{
		client,
	}
}

func (c *articleCache) GetArticle(ctx context.Context, id int64) (res domain.Article, err error) {
	key := fmt.Sprintf(KeyArticles, id)
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Article{}, domain.ErrCacheMiss
	} else if err != nil {
		return domain.Article{}, err
	}
	if err = json.Unmarshal(data, &res); err != nil {
		return domain.Article{}, err
	}
	return
}

func (c *articleCache) GetArticleByIDs(ctx context.Context, ids []int64) ([]domain.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = fmt.Sprintf(KeyArticles, id)
	}

	jsonList, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	articles := make([]domain.Article, 0, len(ids))
	for _, val := range jsonList {
		str, ok := val.(string)
		if !ok {
			continue
		}

		var ar domain.Article
		if err := json.Unmarshal([]byte(str), &ar); err != nil {
			logrus.Warnf("broken article cache entry skipped: %v", err)
			continue
		}
		articles = append(articles, ar)
	}

	return articles, nil
}

func (c *articleCache) SetArticle(ctx context.Context, ar *domain.Article) (err error) {
	key := fmt.Sprintf(KeyArticles, ar.ID)
	data, err := json.Marshal(ar)
	if err != nil {
		return
	}
	err = c.client.Set(ctx, key, data, articleTTL).Err()
	return
}

func (c *articleCache) BatchSetArticle(ctx context.Context, ars []domain.Article) error {
	if len(ars) == 0 {
		return nil
	}

	pairs := make([]any, 0, 2*len(ars))
	var errMarshal error
	for i := range ars {
		data, err := json.Marshal(ars[i])
		if err != nil {
			logrus.Warnf("failed to marshal article for cache, ID: %d, err: %v", ars[i].ID, err)
			errMarshal = err
			continue
		}
		pairs = append(pairs, fmt.Sprintf(KeyArticles, ars[i].ID), data)
	}
	if len(pairs) == 0 {
		return errMarshal
	}
	return c.client.MSet(ctx, pairs...).Err()
}

func (c *articleCache) DeleteArticle(ctx context.Context, id int64) error {
	keys := []string{
		fmt.Sprintf(KeyArticles, id),
		fmt.Sprintf(KeyLikesBuffer, id),
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *articleCache) IncrViews(ctx context.Context, id int64) (int64, error) {
	return c.client.HIncrBy(ctx, KeyViewsBuffer, strconv.FormatInt(id, 10), 1).Result()
}

// FetchAndResetViews atomically swaps the views buffer away so the
// sync worker drains a stable snapshot while new views keep counting.
func (c *articleCache) FetchAndResetViews(ctx context.Context) (map[int64]int64, error) {
	result := make(map[int64]int64)
	err := c.client.Rename(ctx, KeyViewsBuffer, KeyViewsProcessing).Err()
	if err != nil {
		// Rename fails when the buffer key doesn't exist, i.e. no new views.
		return result, nil
	}

	data, err := c.client.HGetAll(ctx, KeyViewsProcessing).Result()
	if err != nil {
		return result, err
	}

	for idStr, viewsStr := range data {
		id, _ := strconv.ParseInt(idStr, 10, 64)
		views, _ := strconv.ParseInt(viewsStr, 10, 64)
		result[id] = views
	}

	c.client.Del(ctx, KeyViewsProcessing)

	return result, nil
}

func (c *articleCache) AddLikeRecord(ctx context.Context, likeRecord domain.UserLike) (bool, error) {
	// KEYS = {该用户喜欢的文章列表, 今日热榜, 点赞数}
	// ARGV = {本次文章ID, 点赞加分}
	keys := []string{
		fmt.Sprintf(KeyUserLikedArticles, likeRecord.UserID),
		fmt.Sprintf(KeyHotDailyRaw, time.Now().Format("2006010215")),
		fmt.Sprintf(KeyLikesBuffer, likeRecord.ArticleID),
	}
	args := []any{likeRecord.ArticleID, 1}
	var script = redis.NewScript(`
		if redis.call('EXISTS', KEYS[1]) == 0 then
			return -1 -- 未缓存, 需要加载缓存
		end

		if redis.call('SISMEMBER', KEYS[1], ARGV[1]) == 1 then
			return 0 -- 最近已点赞
		else
			redis.call('SADD', KEYS[1], ARGV[1])
			redis.call('EXPIRE', KEYS[1], 1800)

			redis.call('ZINCRBY', KEYS[2], ARGV[2], ARGV[1])
			redis.call('EXPIRE', KEYS[2], 60*60*26) -- 26 hours

			if redis.call('EXISTS', KEYS[3]) == 1 then
				redis.call('INCR', KEYS[3])
			end

			return 1 -- 点赞成功
		end
	`)

	res, err := script.Run(ctx, c.client, keys, args).Int()
	if err != nil {
		return false, err
	}
	switch res {
	case -1:
		return false, domain.ErrCacheMiss
	case 0:
		return false, nil
	default:
		return true, nil
	}
}

func (c *articleCache) DecrLikeRecord(ctx context.Context, likeRecord domain.UserLike) (bool, error) {
	keys := []string{
		fmt.Sprintf(KeyUserLikedArticles, likeRecord.UserID),
		fmt.Sprintf(KeyHotDailyRaw, time.Now().Format("2006010215")),
		fmt.Sprintf(KeyLikesBuffer, likeRecord.ArticleID),
	}
	args := []any{likeRecord.ArticleID, -1}
	var script = redis.NewScript(`
		if redis.call('EXISTS', KEYS[1]) == 0 then
			return -1 -- 未缓存, 需要加载缓存
		end

		if redis.call('SISMEMBER', KEYS[1], ARGV[1]) == 0 then
			return 0 -- 最近未点赞
		else
			redis.call('SREM', KEYS[1], ARGV[1])
			redis.call('EXPIRE', KEYS[1], 1800)

			redis.call('ZINCRBY', KEYS[2], ARGV[2], ARGV[1])
			redis.call('EXPIRE', KEYS[2], 60*60*26) -- 26 hours

			if redis.call('EXISTS', KEYS[3]) == 1 then
				redis.call('DECR', KEYS[3])
			end

			return 1 -- 取消赞成功
		end
	`)

	res, err := script.Run(ctx, c.client, keys, args).Int()
	if err != nil {
		return false, err
	}
	switch res {
	case -1:
		return false, domain.ErrCacheMiss
	case 0:
		return false, nil
	default:
		return true, nil
	}
}

func (c *articleCache) SetUserLikedArticles(ctx context.Context, uid int64, aids []int64) error {
	key := fmt.Sprintf(KeyUserLikedArticles, uid)
	members := make([]any, 0, len(aids)+1)
	// Sentinel member keeps the set key alive for users with no likes,
	// otherwise the lua scripts would report a cache miss forever.
	members = append(members, any(int64(0)))
	for _, aid := range aids {
		members = append(members, any(aid))
	}

	pipe := c.client.Pipeline()
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, likedSetTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *articleCache) GetLikeCount(ctx context.Context, aid int64) (int64, error) {
	resStr, err := c.client.Get(ctx, fmt.Sprintf(KeyLikesBuffer, aid)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, domain.ErrCacheMiss
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(resStr, 10, 64)
}

func (c *articleCache) SetLikeCount(ctx context.Context, aid int64, likes int64) error {
	return c.client.Set(ctx, fmt.Sprintf(KeyLikesBuffer, aid), likes, articleTTL).Err()
}

func (c *articleCache) GetDailyRank(ctx context.Context, limit int64) ([]domain.Article, error) {
	if c.client.Exists(ctx, KeyHotDailyAggregatedRank).Val() > 0 {
		return c.fetchRankFromKey(ctx, KeyHotDailyAggregatedRank, limit)
	}

	keys := make([]string, 24)
	now := time.Now()
	for i := range 24 {
		keys[i] = fmt.Sprintf(KeyHotDailyRaw, now.Add(time.Duration(-i)*time.Hour).Format("2006010215"))
	}

	err := c.client.ZUnionStore(ctx, KeyHotDailyAggregatedRank, &redis.ZStore{
		Keys:      keys,
		Aggregate: "SUM",
	}).Err()

	if err != nil {
		return nil, err
	}

	c.client.Expire(ctx, KeyHotDailyAggregatedRank, dailyRankTTL)

	return c.fetchRankFromKey(ctx, KeyHotDailyAggregatedRank, limit)
}

func (c *articleCache) fetchRankFromKey(ctx context.Context, key string, limit int64) ([]domain.Article, error) {
	zRes, err := c.client.ZRevRangeWithScores(ctx, key, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	res := make([]domain.Article, 0, len(zRes))
	for _, z := range zRes {
		aid, _ := strconv.ParseInt(z.Member.(string), 10, 64)
		res = append(res, domain.Article{
			ID:    aid,
			Likes: int64(z.Score),
		})
	}
	return res, nil
}

func (c *articleCache) GetHistoryRank(ctx context.Context, limit int64) ([]domain.Article, error) {
	if c.client.Exists(ctx, KeyHotHistoryRank).Val() > 0 {
		return c.fetchRankFromKey(ctx, KeyHotHistoryRank, limit)
	}
	return nil, domain.ErrCacheMiss
}

func (c *articleCache) SetHistoryRank(ctx context.Context, aids []int64, scores []float64) error {
	if len(aids) != len(scores) || len(aids) == 0 {
		return domain.ErrBadParamInput
	}

	zMem := make([]redis.Z, len(aids))
	for i := range zMem {
		zMem[i] = redis.Z{
			Score:  scores[i],
			Member: any(aids[i]),
		}
	}

	return c.client.ZAdd(ctx, KeyHotHistoryRank, zMem...).Err()
}
