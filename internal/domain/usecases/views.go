package usecases

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/entities"
	"github.com/shopspring/decimal"
)

// QuoteSource is what the market views are derived from. *Market
// implements it.
type QuoteSource interface {
	GetMarketData(ctx context.Context, currency string) []entities.PriceQuote
}

// OptionsCoinLimit is how many coins, in market cap order, get options.
const OptionsCoinLimit = 10

var (
	FuturesLeverages   = []string{"10x", "20x", "50x", "100x"}
	OptionStrikeRatios = []float64{0.9, 0.95, 1, 1.05, 1.1}
	OptionExpiryDays   = []int{7, 14, 30, 60, 90}
)

// MarketViews derives the spot, futures and options tabs from the gateway
// quote list. Contract fields other than the underlying price are random.
type MarketViews struct {
	quotes  QuoteSource
	timeNow func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

type MarketViewsConfig struct {
	Quotes  QuoteSource
	Source  rand.Source // defaults to a time seeded source
	TimeNow func() time.Time
}

func NewMarketViews(cfg MarketViewsConfig) *MarketViews {
	if cfg.Source == nil {
		cfg.Source = rand.NewSource(time.Now().UnixNano())
	}
	if cfg.TimeNow == nil {
		cfg.TimeNow = time.Now
	}

	return &MarketViews{
		quotes:  cfg.Quotes,
		timeNow: cfg.TimeNow,
		rnd:     rand.New(cfg.Source),
	}
}

func (v *MarketViews) Spot(ctx context.Context) []entities.SpotMarket {
	quotes := v.quotes.GetMarketData(ctx, entities.DefaultCurrency)

	markets := make([]entities.SpotMarket, 0, len(quotes))
	for _, q := range quotes {
		markets = append(markets, entities.SpotMarket{
			Symbol:    strings.ToUpper(q.Symbol),
			Name:      q.Name,
			Price:     q.CurrentPrice,
			Change24h: q.PriceChangePercentage24h,
			Volume:    q.TotalVolume,
			High24h:   q.High24h,
			Low24h:    q.Low24h,
		})
	}

	return markets
}

// Futures quotes a perpetual for every coin. The contract price sits within
// ±0.1% of spot and the funding rate within ±0.05%.
func (v *MarketViews) Futures(ctx context.Context) []entities.FuturesMarket {
	quotes := v.quotes.GetMarketData(ctx, entities.DefaultCurrency)

	v.mu.Lock()
	defer v.mu.Unlock()

	markets := make([]entities.FuturesMarket, 0, len(quotes))
	for _, q := range quotes {
		base := q.CurrentPrice

		markets = append(markets, entities.FuturesMarket{
			Symbol:       strings.ToUpper(q.Symbol),
			Name:         q.Name,
			Price:        base.Mul(decimal.NewFromFloat(1 + (v.rnd.Float64()-0.5)*0.002)),
			IndexPrice:   base,
			Change24h:    q.PriceChangePercentage24h.Add(decimal.NewFromFloat((v.rnd.Float64() - 0.5) * 2)),
			Volume:       q.TotalVolume.Mul(decimal.NewFromFloat(1.5 + v.rnd.Float64())).Round(2),
			OpenInterest: q.MarketCap.Mul(decimal.NewFromFloat(0.1 + v.rnd.Float64()*0.2)).Round(2),
			FundingRate:  decimal.NewFromFloat((v.rnd.Float64() - 0.5) * 0.1).Round(4),
			Leverage:     FuturesLeverages[v.rnd.Intn(len(FuturesLeverages))],
		})
	}

	return markets
}

// Options lists five strikes around spot for the first OptionsCoinLimit
// coins. The two strikes below spot are puts, the rest calls.
func (v *MarketViews) Options(ctx context.Context) []entities.OptionsMarket {
	quotes := v.quotes.GetMarketData(ctx, entities.DefaultCurrency)
	if len(quotes) > OptionsCoinLimit {
		quotes = quotes[:OptionsCoinLimit]
	}

	now := v.timeNow().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	v.mu.Lock()
	defer v.mu.Unlock()

	markets := make([]entities.OptionsMarket, 0, len(quotes)*len(OptionStrikeRatios))
	for _, q := range quotes {
		base := q.CurrentPrice

		for i, ratio := range OptionStrikeRatios {
			strike := base.Mul(decimal.NewFromFloat(ratio))

			optType := entities.OptionTypeCall
			if i < 2 {
				optType = entities.OptionTypePut
			}

			days := OptionExpiryDays[v.rnd.Intn(len(OptionExpiryDays))]

			markets = append(markets, entities.OptionsMarket{
				Symbol:            strings.ToUpper(q.Symbol),
				Name:              q.Name,
				Type:              optType,
				StrikePrice:       strike,
				Expiry:            today.AddDate(0, 0, days),
				Premium:           base.Sub(strike).Abs().Mul(decimal.NewFromFloat(0.1)).Add(base.Mul(decimal.NewFromFloat(v.rnd.Float64() * 0.05))),
				Change24h:         decimal.NewFromFloat((v.rnd.Float64() - 0.5) * 20).Round(4),
				Volume:            q.TotalVolume.Mul(decimal.NewFromFloat(0.1 * v.rnd.Float64())).Round(2),
				OpenInterest:      q.MarketCap.Mul(decimal.NewFromFloat(0.01 * v.rnd.Float64())).Round(2),
				ImpliedVolatility: decimal.NewFromFloat(30 + v.rnd.Float64()*50).Round(2),
			})
		}
	}

	return markets
}
