package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cryptoinsight/domain"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	requestTimeout = 5 * time.Second
)

// coin id on the API -> display symbol/name
var trackedCoins = []struct {
	ID     string
	Symbol string
	Name   string
}{
	{"bitcoin", "BTC", "Bitcoin"},
	{"ethereum", "ETH", "Ethereum"},
	{"binancecoin", "BNB", "Binance Coin"},
}

type tickerSource struct {
	baseURL string
	client  *http.Client
}

var _ domain.TickerSource = (*tickerSource)(nil)

func NewTickerSource(baseURL string) *tickerSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &tickerSource{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// FetchQuotes pulls the simple-price endpoint for the tracked coins.
func (s *tickerSource) FetchQuotes(ctx context.Context) ([]domain.TickerQuote, error) {
	ids := make([]string, len(trackedCoins))
	for i, coin := range trackedCoins {
		ids[i] = coin.ID
	}

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", "usd")
	params.Set("include_24hr_change", "true")

	reqURL := fmt.Sprintf("%s/simple/price?%s", s.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price api returned status %d", resp.StatusCode)
	}

	var body map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	now := time.Now()
	quotes := make([]domain.TickerQuote, 0, len(trackedCoins))
	for _, coin := range trackedCoins {
		data, ok := body[coin.ID]
		if !ok {
			continue
		}
		quotes = append(quotes, domain.TickerQuote{
			Symbol:    coin.Symbol,
			Name:      coin.Name,
			PriceUSD:  data["usd"],
			Change24h: data["usd_24h_change"],
			FetchedAt: now,
		})
	}

	if len(quotes) == 0 {
		return nil, fmt.Errorf("price api returned no tracked coins")
	}

	return quotes, nil
}
