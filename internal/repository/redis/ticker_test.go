package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoinsight/domain"
)

func sampleQuotes() []domain.TickerQuote {
	return []domain.TickerQuote{
		{
			Symbol:    "BTC",
			Name:      "Bitcoin",
			PriceUSD:  64000.5,
			Change24h: -1.2,
			FetchedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			Symbol:    "ETH",
			Name:      "Ethereum",
			PriceUSD:  3200.25,
			Change24h: 0.8,
			FetchedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestSetQuotes(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewTickerCache(client)

	quotes := sampleQuotes()
	data, err := json.Marshal(quotes)
	require.NoError(t, err)

	mock.ExpectSet(KeyTickerQuotes, data, 5*time.Minute).SetVal("OK")

	err = cache.SetQuotes(context.Background(), quotes)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQuotes(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewTickerCache(client)

	quotes := sampleQuotes()
	data, err := json.Marshal(quotes)
	require.NoError(t, err)

	mock.ExpectGet(KeyTickerQuotes).SetVal(string(data))

	got, err := cache.GetQuotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, quotes, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQuotesMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewTickerCache(client)

	mock.ExpectGet(KeyTickerQuotes).RedisNil()

	_, err := cache.GetQuotes(context.Background())
	assert.True(t, errors.Is(err, domain.ErrCacheMiss))
	assert.NoError(t, mock.ExpectationsWereMet())
}
