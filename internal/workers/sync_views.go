package workers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"cryptoinsight/domain"
)

const viewsFlushInterval = 30 * time.Second

// syncViewsWorker drains the redis view-count buffer into the
// database on an interval. Views are eventually consistent; a crash
// loses at most one interval's worth of counts.
type syncViewsWorker struct {
	articleRepo domain.ArticleDBRepository
	cache       domain.ArticleCache
}

func NewSyncViewsWorker(ar domain.ArticleDBRepository, cache domain.ArticleCache) *syncViewsWorker {
	return &syncViewsWorker{
		articleRepo: ar,
		cache:       cache,
	}
}

func (s *syncViewsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(viewsFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flush(ctx)
		case <-ctx.Done():
			logrus.Info("shutting down sync-views worker, flushing remaining views...")
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			s.flush(flushCtx)
			cancel()
			return
		}
	}
}

func (s *syncViewsWorker) flush(ctx context.Context) {
	views, err := s.cache.FetchAndResetViews(ctx)
	if err != nil {
		logrus.Errorf("failed to fetch buffered views: %v", err)
		return
	}

	for id, delta := range views {
		if delta == 0 {
			continue
		}
		if err := s.articleRepo.AddViews(ctx, id, delta); err != nil {
			// the article may have been deleted meanwhile
			logrus.Warnf("failed to add %d views to article %d: %v", delta, id, err)
		}
	}
}
