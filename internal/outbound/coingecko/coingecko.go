package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/entities"
	exerrors "github.com/gaojianshuai/jiaoyisuoapp/internal/domain/errors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	DefaultTimeout = 5 * time.Second

	perPage = 50
)

// Client talks to a CoinGecko compatible REST API.
type Client struct {
	baseURL string
	hc      *http.Client
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client // Timeout is ignored when set
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		hc:      cfg.HTTPClient,
	}
}

type marketDTO struct {
	ID                       string          `json:"id"`
	Symbol                   string          `json:"symbol"`
	Name                     string          `json:"name"`
	Image                    string          `json:"image"`
	CurrentPrice             decimal.Decimal `json:"current_price"`
	PriceChangePercentage24h decimal.Decimal `json:"price_change_percentage_24h"`
	MarketCap                decimal.Decimal `json:"market_cap"`
	TotalVolume              decimal.Decimal `json:"total_volume"`
	High24h                  decimal.Decimal `json:"high_24h"`
	Low24h                   decimal.Decimal `json:"low_24h"`
}

type coinDTO struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Image  struct {
		Large string `json:"large"`
	} `json:"image"`
	MarketData *struct {
		CurrentPrice             map[string]decimal.Decimal `json:"current_price"`
		PriceChangePercentage24h decimal.Decimal            `json:"price_change_percentage_24h"`
		MarketCap                map[string]decimal.Decimal `json:"market_cap"`
		TotalVolume              map[string]decimal.Decimal `json:"total_volume"`
		High24h                  map[string]decimal.Decimal `json:"high_24h"`
		Low24h                   map[string]decimal.Decimal `json:"low_24h"`
	} `json:"market_data"`
}

// FetchMarkets returns the first page of coins by market cap.
func (c *Client) FetchMarkets(ctx context.Context, currency string) ([]entities.PriceQuote, error) {
	q := url.Values{}
	q.Set("vs_currency", currency)
	q.Set("order", "market_cap_desc")
	q.Set("per_page", fmt.Sprint(perPage))
	q.Set("page", "1")
	q.Set("sparkline", "false")

	var markets []marketDTO
	if err := c.get(ctx, "/coins/markets?"+q.Encode(), &markets); err != nil {
		return nil, err
	}

	quotes := make([]entities.PriceQuote, 0, len(markets))
	for _, m := range markets {
		if m.ID == "" {
			return nil, fmt.Errorf("%w: market entry without id", exerrors.ErrUpstreamBadResponse)
		}

		quotes = append(quotes, entities.PriceQuote{
			ID:                       m.ID,
			Symbol:                   m.Symbol,
			Name:                     m.Name,
			Image:                    m.Image,
			CurrentPrice:             m.CurrentPrice,
			PriceChangePercentage24h: m.PriceChangePercentage24h,
			MarketCap:                m.MarketCap,
			TotalVolume:              m.TotalVolume,
			High24h:                  m.High24h,
			Low24h:                   m.Low24h,
		})
	}

	return quotes, nil
}

// FetchCoin returns the detail of a single coin priced in currency.
func (c *Client) FetchCoin(ctx context.Context, id, currency string) (entities.PriceQuote, error) {
	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	q.Set("community_data", "false")
	q.Set("developer_data", "false")

	var coin coinDTO
	if err := c.get(ctx, "/coins/"+url.PathEscape(id)+"?"+q.Encode(), &coin); err != nil {
		return entities.PriceQuote{}, err
	}

	if coin.MarketData == nil {
		return entities.PriceQuote{}, fmt.Errorf("%w: %s has no market data", exerrors.ErrUpstreamBadResponse, id)
	}

	md := coin.MarketData

	return entities.PriceQuote{
		ID:                       coin.ID,
		Symbol:                   coin.Symbol,
		Name:                     coin.Name,
		Image:                    coin.Image.Large,
		CurrentPrice:             md.CurrentPrice[currency],
		PriceChangePercentage24h: md.PriceChangePercentage24h,
		MarketCap:                md.MarketCap[currency],
		TotalVolume:              md.TotalVolume[currency],
		High24h:                  md.High24h[currency],
		Low24h:                   md.Low24h[currency],
	}, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", exerrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	log.Debug().Str("path", req.URL.Path).Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("upstream request")

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return exerrors.ErrUpstreamRateLimited
	case resp.StatusCode == http.StatusNotFound:
		return exerrors.ErrCoinNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: status %d", exerrors.ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", exerrors.ErrUpstreamUnavailable, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", exerrors.ErrUpstreamBadResponse, err)
	}

	return nil
}
