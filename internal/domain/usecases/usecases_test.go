package usecases_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/entities"
	exerrors "github.com/gaojianshuai/jiaoyisuoapp/internal/domain/errors"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/usecases"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/usecases/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	ctx      = context.Background()
	testTime = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	quoteBitcoin = entities.PriceQuote{
		ID:                       "bitcoin",
		Symbol:                   "btc",
		Name:                     "Bitcoin",
		CurrentPrice:             decimal.NewFromFloat(69000),
		PriceChangePercentage24h: decimal.NewFromFloat(1.25),
		MarketCap:                decimal.NewFromInt(1360000000000),
		TotalVolume:              decimal.NewFromInt(32000000000),
		High24h:                  decimal.NewFromFloat(70000),
		Low24h:                   decimal.NewFromFloat(68000),
	}
	quoteEthereum = entities.PriceQuote{
		ID:                       "ethereum",
		Symbol:                   "eth",
		Name:                     "Ethereum",
		CurrentPrice:             decimal.NewFromFloat(3500),
		PriceChangePercentage24h: decimal.NewFromFloat(-0.5),
		MarketCap:                decimal.NewFromInt(420000000000),
		TotalVolume:              decimal.NewFromInt(15000000000),
		High24h:                  decimal.NewFromFloat(3600),
		Low24h:                   decimal.NewFromFloat(3400),
	}

	upstreamQuotes = []entities.PriceQuote{quoteBitcoin, quoteEthereum}
)

// clock is a manually advanced time source.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type setupMarketTestConfig struct {
	mockCtrl *gomock.Controller
	upstream *mocks.MockUpstream
	clock    *clock

	market *usecases.Market
}

func setupTest(t *testing.T) *setupMarketTestConfig {
	ctrl := gomock.NewController(t)
	upstream := mocks.NewMockUpstream(ctrl)
	clk := &clock{t: testTime}

	return &setupMarketTestConfig{
		mockCtrl: ctrl,
		upstream: upstream,
		clock:    clk,
		market: usecases.NewMarket(usecases.MarketConfig{
			Upstream: upstream,
			Mocker:   usecases.NewQuoteMocker(usecases.QuoteMockerConfig{Source: rand.NewSource(1)}),
			TimeNow:  clk.now,
		}),
	}
}

func TestMarket_GetMarketData(t *testing.T) {
	t.Run("fetches from upstream and serves cache while fresh", func(t *testing.T) {
		cfg := setupTest(t)

		cfg.upstream.EXPECT().FetchMarkets(gomock.Any(), "usd").Return(upstreamQuotes, nil).Times(1)

		resp := cfg.market.GetMarketData(ctx, "")
		require.Equal(t, upstreamQuotes, resp)

		cfg.clock.advance(59 * time.Second)

		resp = cfg.market.GetMarketData(ctx, "usd")
		require.Equal(t, upstreamQuotes, resp)
	})

	t.Run("refetches once the cache is stale", func(t *testing.T) {
		cfg := setupTest(t)

		refreshed := []entities.PriceQuote{quoteEthereum}

		gomock.InOrder(
			cfg.upstream.EXPECT().FetchMarkets(gomock.Any(), "usd").Return(upstreamQuotes, nil),
			cfg.upstream.EXPECT().FetchMarkets(gomock.Any(), "usd").Return(refreshed, nil),
		)

		require.Equal(t, upstreamQuotes, cfg.market.GetMarketData(ctx, "usd"))

		cfg.clock.advance(60 * time.Second)

		require.Equal(t, refreshed, cfg.market.GetMarketData(ctx, "usd"))
	})

	t.Run("upstream fails without cache, serves mock quotes", func(t *testing.T) {
		cfg := setupTest(t)

		cfg.upstream.EXPECT().FetchMarkets(gomock.Any(), "usd").Return(nil, exerrors.ErrUpstreamRateLimited)

		resp := cfg.market.GetMarketData(ctx, "usd")
		require.Len(t, resp, len(usecases.DefaultMockRoster))
		require.Equal(t, "bitcoin", resp[0].ID)
	})

	t.Run("upstream fails with stale cache, serves cache", func(t *testing.T) {
		cfg := setupTest(t)

		gomock.InOrder(
			cfg.upstream.EXPECT().FetchMarkets(gomock.Any(), "usd").Return(upstreamQuotes, nil),
			cfg.upstream.EXPECT().FetchMarkets(gomock.Any(), "usd").Return(nil, context.DeadlineExceeded),
		)

		require.Equal(t, upstreamQuotes, cfg.market.GetMarketData(ctx, "usd"))

		cfg.clock.advance(2 * time.Minute)

		require.Equal(t, upstreamQuotes, cfg.market.GetMarketData(ctx, "usd"))
	})

	t.Run("empty upstream list is treated as a failure", func(t *testing.T) {
		cfg := setupTest(t)

		cfg.upstream.EXPECT().FetchMarkets(gomock.Any(), "usd").Return([]entities.PriceQuote{}, nil)

		resp := cfg.market.GetMarketData(ctx, "usd")
		require.Len(t, resp, len(usecases.DefaultMockRoster))
	})

	t.Run("second call inside the spacing interval does not reach upstream", func(t *testing.T) {
		cfg := setupTest(t)

		cfg.upstream.EXPECT().FetchMarkets(gomock.Any(), "usd").Return(nil, exerrors.ErrUpstreamUnavailable).Times(1)

		first := cfg.market.GetMarketData(ctx, "usd")
		require.NotEmpty(t, first)

		cfg.clock.advance(1999 * time.Millisecond)

		second := cfg.market.GetMarketData(ctx, "usd")
		require.NotEmpty(t, second)
	})

	t.Run("call after the spacing interval reaches upstream again", func(t *testing.T) {
		cfg := setupTest(t)

		gomock.InOrder(
			cfg.upstream.EXPECT().FetchMarkets(gomock.Any(), "usd").Return(nil, exerrors.ErrUpstreamUnavailable),
			cfg.upstream.EXPECT().FetchMarkets(gomock.Any(), "usd").Return(upstreamQuotes, nil),
		)

		require.NotEmpty(t, cfg.market.GetMarketData(ctx, "usd"))

		cfg.clock.advance(2 * time.Second)

		require.Equal(t, upstreamQuotes, cfg.market.GetMarketData(ctx, "usd"))
	})

	t.Run("concurrent burst makes a single upstream call", func(t *testing.T) {
		cfg := setupTest(t)

		cfg.upstream.EXPECT().FetchMarkets(gomock.Any(), "usd").
			DoAndReturn(func(context.Context, string) ([]entities.PriceQuote, error) {
				time.Sleep(10 * time.Millisecond)
				return upstreamQuotes, nil
			}).
			Times(1)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				require.NotEmpty(t, cfg.market.GetMarketData(ctx, "usd"))
			}()
		}
		wg.Wait()
	})

	t.Run("upstream times out, serves mock quotes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		upstream := mocks.NewMockUpstream(ctrl)

		market := usecases.NewMarket(usecases.MarketConfig{
			Upstream: upstream,
			Timeout:  20 * time.Millisecond,
		})

		upstream.EXPECT().FetchMarkets(gomock.Any(), "usd").
			DoAndReturn(func(ctx context.Context, _ string) ([]entities.PriceQuote, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			})

		resp := market.GetMarketData(ctx, "usd")
		require.Len(t, resp, len(usecases.DefaultMockRoster))
	})

	t.Run("no upstream configured, serves mock quotes", func(t *testing.T) {
		market := usecases.NewMarket(usecases.MarketConfig{})

		resp := market.GetMarketData(ctx, "usd")
		require.Len(t, resp, len(usecases.DefaultMockRoster))
	})
}

func TestMarket_SearchCrypto(t *testing.T) {
	t.Run("matches name or symbol ignoring case", func(t *testing.T) {
		cfg := setupTest(t)

		cfg.upstream.EXPECT().FetchMarkets(gomock.Any(), "usd").Return(upstreamQuotes, nil)

		require.Equal(t, []entities.PriceQuote{quoteBitcoin}, cfg.market.SearchCrypto(ctx, "BIT"))
		require.Equal(t, []entities.PriceQuote{quoteEthereum}, cfg.market.SearchCrypto(ctx, "eTh"))
		require.Empty(t, cfg.market.SearchCrypto(ctx, "doge"))
	})

	t.Run("searches the mock roster when upstream is down", func(t *testing.T) {
		cfg := setupTest(t)

		cfg.upstream.EXPECT().FetchMarkets(gomock.Any(), "usd").Return(nil, exerrors.ErrUpstreamUnavailable)

		found := cfg.market.SearchCrypto(ctx, "ethereum")
		require.Len(t, found, 2) // Ethereum and Ethereum Classic
	})
}

func TestMarket_GetCryptoDetail(t *testing.T) {
	t.Run("returns upstream detail", func(t *testing.T) {
		cfg := setupTest(t)

		cfg.upstream.EXPECT().FetchCoin(gomock.Any(), "bitcoin", "usd").Return(quoteBitcoin, nil)

		resp, ok := cfg.market.GetCryptoDetail(ctx, "bitcoin")
		require.True(t, ok)
		require.Equal(t, quoteBitcoin, resp)
	})

	t.Run("upstream fails, falls back to cache", func(t *testing.T) {
		cfg := setupTest(t)

		cfg.upstream.EXPECT().FetchMarkets(gomock.Any(), "usd").Return(upstreamQuotes, nil)
		cfg.upstream.EXPECT().FetchCoin(gomock.Any(), "ethereum", "usd").Return(entities.PriceQuote{}, exerrors.ErrUpstreamRateLimited)

		cfg.market.GetMarketData(ctx, "usd")

		resp, ok := cfg.market.GetCryptoDetail(ctx, "ethereum")
		require.True(t, ok)
		require.Equal(t, quoteEthereum, resp)
	})

	t.Run("upstream fails and coin is not cached", func(t *testing.T) {
		cfg := setupTest(t)

		cfg.upstream.EXPECT().FetchCoin(gomock.Any(), "nope", "usd").Return(entities.PriceQuote{}, exerrors.ErrCoinNotFound)

		_, ok := cfg.market.GetCryptoDetail(ctx, "nope")
		require.False(t, ok)
	})
}

func TestQuoteMocker_Generate(t *testing.T) {
	mocker := usecases.NewQuoteMocker(usecases.QuoteMockerConfig{Source: rand.NewSource(42)})

	for run := 0; run < 20; run++ {
		quotes := mocker.Generate()
		require.Len(t, quotes, len(usecases.DefaultMockRoster))

		for i, q := range quotes {
			coin := usecases.DefaultMockRoster[i]
			require.Equal(t, coin.ID, q.ID)
			require.Equal(t, coin.Symbol, q.Symbol)

			base := coin.Base()
			require.True(t, q.CurrentPrice.GreaterThanOrEqual(base.Mul(decimal.RequireFromString("0.95"))), "%s price %s below band", q.ID, q.CurrentPrice)
			require.True(t, q.CurrentPrice.LessThanOrEqual(base.Mul(decimal.RequireFromString("1.05"))), "%s price %s above band", q.ID, q.CurrentPrice)

			require.True(t, q.PriceChangePercentage24h.GreaterThanOrEqual(decimal.NewFromInt(-3)))
			require.True(t, q.PriceChangePercentage24h.LessThanOrEqual(decimal.NewFromInt(7)))

			require.True(t, q.High24h.Equal(q.CurrentPrice.Mul(decimal.RequireFromString("1.05"))))
			require.True(t, q.Low24h.Equal(q.CurrentPrice.Mul(decimal.RequireFromString("0.95"))))
			require.True(t, q.MarketCap.IsPositive())
			require.True(t, q.TotalVolume.IsPositive())
		}
	}

	t.Run("unknown base price defaults to 100", func(t *testing.T) {
		require.True(t, usecases.MockCoin{ID: "x"}.Base().Equal(decimal.NewFromInt(100)))
	})

	t.Run("same seed gives the same quotes", func(t *testing.T) {
		a := usecases.NewQuoteMocker(usecases.QuoteMockerConfig{Source: rand.NewSource(7)}).Generate()
		b := usecases.NewQuoteMocker(usecases.QuoteMockerConfig{Source: rand.NewSource(7)}).Generate()
		require.Equal(t, a, b)
	})
}

func TestMarket_ErrorsAreNeverSurfaced(t *testing.T) {
	for _, upstreamErr := range []error{
		exerrors.ErrUpstreamRateLimited,
		exerrors.ErrUpstreamBadResponse,
		exerrors.ErrUpstreamUnavailable,
		errors.New("connection reset by peer"),
	} {
		t.Run(upstreamErr.Error(), func(t *testing.T) {
			cfg := setupTest(t)

			cfg.upstream.EXPECT().FetchMarkets(gomock.Any(), "usd").Return(nil, upstreamErr)

			require.NotEmpty(t, cfg.market.GetMarketData(ctx, "usd"))
		})
	}
}
