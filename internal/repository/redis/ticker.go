package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"cryptoinsight/domain"
)

const (
	KeyTickerQuotes = "ticker:quotes"

	// A quote set older than this is considered gone; the poller
	// refreshes well within the TTL.
	tickerTTL = 5 * time.Minute
)

type tickerCache struct {
	client *redis.Client
}

var _ domain.TickerCache = (*tickerCache)(nil)

func NewTickerCache(client *redis.Client) *tickerCache {
	return &tickerCache{
		client,
	}
}

func (c *tickerCache) SetQuotes(ctx context.Context, quotes []domain.TickerQuote) error {
	data, err := json.Marshal(quotes)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, KeyTickerQuotes, data, tickerTTL).Err()
}

func (c *tickerCache) GetQuotes(ctx context.Context) ([]domain.TickerQuote, error) {
	data, err := c.client.Get(ctx, KeyTickerQuotes).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var quotes []domain.TickerQuote
	if err := json.Unmarshal(data, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}
