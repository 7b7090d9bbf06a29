package workers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"cryptoinsight/domain"
)

const (
	likeBatchSize     = 100
	likeFlushInterval = 1 * time.Second
	likeChannelSize   = 1024
)

type likeTask struct {
	ArticleID int64
	UserID    int64
	Action    domain.LikeAction
}

type syncLikesWorker struct {
	articleRepo domain.ArticleDBRepository
	ch          chan likeTask
}

var _ domain.SyncLikesWorker = (*syncLikesWorker)(nil)

func NewSyncLikesWorker(ar domain.ArticleDBRepository) *syncLikesWorker {
	return &syncLikesWorker{
		articleRepo: ar,
		ch:          make(chan likeTask, likeChannelSize),
	}
}

// Send adds a like record if action == Like, and removes a like record if action == Unlike
func (s *syncLikesWorker) Send(likeRecord domain.UserLike, action domain.LikeAction) {
	select {
	case s.ch <- likeTask{likeRecord.ArticleID, likeRecord.UserID, action}:
	default:
		logrus.Warn("sync-likes channel is full, task dropped")
	}
}

func (s *syncLikesWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(likeFlushInterval)
	defer ticker.Stop()

	batch := make([]likeTask, 0, likeBatchSize)
	for {
		select {
		case task := <-s.ch:
			batch = append(batch, task)
			if len(batch) == likeBatchSize {
				s.flush(ctx, batch)
				batch = make([]likeTask, 0, likeBatchSize)
			}
		case <-ticker.C:
			s.flush(ctx, batch)
			batch = make([]likeTask, 0, likeBatchSize)
		case <-ctx.Done():
			logrus.Info("shutting down sync-likes worker, flushing remaining tasks...")
			// the request context is gone, flush with a fresh one
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			s.flush(flushCtx, batch)
			cancel()
			return
		}
	}
}

type likeTaskKey struct {
	aid, uid int64
}

// flush collapses the batch so only the latest action per (article,
// user) pair reaches the database.
func (s *syncLikesWorker) flush(ctx context.Context, batch []likeTask) {
	if len(batch) == 0 {
		return
	}

	tasks := make(map[likeTaskKey]domain.LikeAction, len(batch))
	for i := range batch {
		key := likeTaskKey{
			aid: batch[i].ArticleID,
			uid: batch[i].UserID,
		}
		tasks[key] = batch[i].Action
	}

	var changes domain.LikeStateChanges
	for key, action := range tasks {
		switch action {
		case domain.Like:
			changes.ToAdd = append(changes.ToAdd, domain.UserLike{
				ArticleID: key.aid,
				UserID:    key.uid,
			})
		case domain.Unlike:
			changes.ToRemove = append(changes.ToRemove, domain.UserLike{
				ArticleID: key.aid,
				UserID:    key.uid,
			})
		default:
			logrus.Errorf("unsupported like action: %v", action)
		}
	}

	if err := s.articleRepo.ApplyLikeChanges(ctx, changes); err != nil {
		logrus.Errorf("failed to apply like changes: %v", err)
	}
}
