package usecases

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/entities"
	exerrors "github.com/gaojianshuai/jiaoyisuoapp/internal/domain/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultFreshness = 60 * time.Second
	DefaultSpacing   = 2 * time.Second
	DefaultTimeout   = 5 * time.Second
)

// Market is the market data gateway. It serves quotes from a single cache
// entry, spaces out upstream calls and falls back to mock quotes whenever
// the upstream cannot be used. None of its read methods return an error.
type Market struct {
	upstream  Upstream
	mocker    *QuoteMocker
	timeNow   func() time.Time // Need to be deterministic for testing
	freshness time.Duration
	spacing   time.Duration
	timeout   time.Duration

	mu         sync.Mutex
	cache      *entities.QuoteSet
	lastCallAt time.Time
}

type MarketConfig struct {
	Upstream  Upstream
	Mocker    *QuoteMocker
	TimeNow   func() time.Time
	Freshness time.Duration
	Spacing   time.Duration
	Timeout   time.Duration
}

func NewMarket(cfg MarketConfig) *Market {
	if cfg.Mocker == nil {
		cfg.Mocker = NewQuoteMocker(QuoteMockerConfig{})
	}
	if cfg.TimeNow == nil {
		cfg.TimeNow = time.Now
	}
	if cfg.Freshness == 0 {
		cfg.Freshness = DefaultFreshness
	}
	if cfg.Spacing == 0 {
		cfg.Spacing = DefaultSpacing
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Market{
		upstream:  cfg.Upstream,
		mocker:    cfg.Mocker,
		timeNow:   cfg.TimeNow,
		freshness: cfg.Freshness,
		spacing:   cfg.Spacing,
		timeout:   cfg.Timeout,
	}
}

// GetMarketData returns the current quote list for the given currency.
// A fresh cache entry is returned as is. Otherwise at most one upstream call
// is made per spacing interval; callers that arrive inside the interval, and
// callers whose upstream call fails, get the cached list or mock quotes.
// The returned slice is shared and must not be modified.
func (m *Market) GetMarketData(ctx context.Context, currency string) []entities.PriceQuote {
	if currency == "" {
		currency = entities.DefaultCurrency
	}

	m.mu.Lock()
	now := m.timeNow()

	if m.cache != nil && m.cache.Age(now) < m.freshness {
		quotes := m.cache.Quotes
		m.mu.Unlock()
		return quotes
	}

	if !m.lastCallAt.IsZero() && now.Sub(m.lastCallAt) < m.spacing {
		quotes := m.fallbackLocked()
		m.mu.Unlock()
		log.Debug().Dur("since_last_call", now.Sub(m.lastCallAt)).Msg("upstream call spaced out, serving fallback")
		return quotes
	}

	// Claim the call slot before releasing the lock so concurrent callers
	// fall into the spacing branch above.
	m.lastCallAt = now
	m.mu.Unlock()

	quotes, err := m.fetchMarkets(ctx, currency)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Str("currency", currency).Bool("cached", m.cache != nil).Msg("market data fetch failed, serving fallback")
		return m.fallbackLocked()
	}

	m.cache = &entities.QuoteSet{Quotes: quotes, FetchedAt: m.timeNow()}

	return quotes
}

func (m *Market) fetchMarkets(ctx context.Context, currency string) ([]entities.PriceQuote, error) {
	if m.upstream == nil {
		return nil, exerrors.ErrUpstreamUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	quotes, err := m.upstream.FetchMarkets(ctx, currency)
	if err != nil {
		return nil, err
	}

	if len(quotes) == 0 {
		return nil, fmt.Errorf("%w: empty market list", exerrors.ErrUpstreamBadResponse)
	}

	return quotes, nil
}

// fallbackLocked must be called with m.mu held.
func (m *Market) fallbackLocked() []entities.PriceQuote {
	if m.cache != nil {
		return m.cache.Quotes
	}

	return m.mocker.Generate()
}

// SearchCrypto returns the quotes whose name or symbol contains query,
// ignoring case.
func (m *Market) SearchCrypto(ctx context.Context, query string) []entities.PriceQuote {
	all := m.GetMarketData(ctx, entities.DefaultCurrency)

	q := strings.ToLower(query)
	found := make([]entities.PriceQuote, 0, len(all))

	for _, quote := range all {
		if strings.Contains(strings.ToLower(quote.Name), q) || strings.Contains(strings.ToLower(quote.Symbol), q) {
			found = append(found, quote)
		}
	}

	return found
}

// GetCryptoDetail asks the upstream for a single coin and falls back to the
// cache entry. The bool is false when the coin is found nowhere.
func (m *Market) GetCryptoDetail(ctx context.Context, id string) (entities.PriceQuote, bool) {
	if m.upstream != nil {
		ctx, cancel := context.WithTimeout(ctx, m.timeout)
		defer cancel()

		quote, err := m.upstream.FetchCoin(ctx, id, entities.DefaultCurrency)
		if err == nil {
			return quote, true
		}

		log.Warn().Err(err).Str("id", id).Msg("coin detail fetch failed, looking up cache")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cache == nil {
		return entities.PriceQuote{}, false
	}

	return m.cache.Find(id)
}
