package ticker

import (
	"context"

	"cryptoinsight/domain"
)

type service struct {
	cache domain.TickerCache
}

var _ domain.TickerUsecase = (*service)(nil)

func NewService(cache domain.TickerCache) *service {
	return &service{
		cache: cache,
	}
}

// Quotes serves whatever the poller last wrote. ErrCacheMiss means no
// poll has succeeded since startup.
func (s *service) Quotes(ctx context.Context) ([]domain.TickerQuote, error) {
	return s.cache.GetQuotes(ctx)
}
