package workers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"cryptoinsight/domain"
)

const tickerPollInterval = 30 * time.Second

// tickerPoller keeps the cached crypto quotes fresh. A failed poll
// keeps the previous quotes in place until their TTL runs out.
type tickerPoller struct {
	source domain.TickerSource
	cache  domain.TickerCache
}

func NewTickerPoller(source domain.TickerSource, cache domain.TickerCache) *tickerPoller {
	return &tickerPoller{
		source: source,
		cache:  cache,
	}
}

func (p *tickerPoller) Start(ctx context.Context) {
	// first poll right away so the ticker isn't empty for 30s
	p.poll(ctx)

	ticker := time.NewTicker(tickerPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.poll(ctx)
		case <-ctx.Done():
			logrus.Info("shutting down ticker poller")
			return
		}
	}
}

func (p *tickerPoller) poll(ctx context.Context) {
	quotes, err := p.source.FetchQuotes(ctx)
	if err != nil {
		logrus.Warnf("ticker poll failed: %v", err)
		return
	}

	if err := p.cache.SetQuotes(ctx, quotes); err != nil {
		logrus.Errorf("failed to cache ticker quotes: %v", err)
	}
}
