package domain

import (
	"context"
	"time"
)

// TickerQuote is one crypto price snapshot shown in the live ticker.
type TickerQuote struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	PriceUSD  float64   `json:"price_usd"`
	Change24h float64   `json:"change_24h"`
	FetchedAt time.Time `json:"fetched_at"`
}

// TickerSource fetches fresh quotes from the upstream price API.
type TickerSource interface {
	FetchQuotes(ctx context.Context) ([]TickerQuote, error)
}

// TickerCache holds the latest quote set.
type TickerCache interface {
	SetQuotes(ctx context.Context, quotes []TickerQuote) error
	// GetQuotes returns ErrCacheMiss when no poll has succeeded yet.
	GetQuotes(ctx context.Context) ([]TickerQuote, error)
}

type TickerUsecase interface {
	Quotes(ctx context.Context) ([]TickerQuote, error)
}
