package usecases

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/entities"
	"github.com/shopspring/decimal"
)

// MockCoin is one entry of the mock roster.
type MockCoin struct {
	ID        string
	Symbol    string
	Name      string
	BasePrice decimal.Decimal
}

var defaultBasePrice = decimal.NewFromInt(100)

// DefaultMockRoster is the fixed coin list used when the upstream is down.
// Coins without a known base price are quoted around 100.
var DefaultMockRoster = []MockCoin{
	{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", BasePrice: decimal.RequireFromString("103823.3")},
	{ID: "ethereum", Symbol: "eth", Name: "Ethereum", BasePrice: decimal.RequireFromString("3527.46")},
	{ID: "binancecoin", Symbol: "bnb", Name: "BNB", BasePrice: decimal.RequireFromString("620.5")},
	{ID: "solana", Symbol: "sol", Name: "Solana", BasePrice: decimal.RequireFromString("162.83")},
	{ID: "ripple", Symbol: "xrp", Name: "XRP", BasePrice: decimal.RequireFromString("2.3148")},
	{ID: "cardano", Symbol: "ada", Name: "Cardano", BasePrice: decimal.RequireFromString("0.5766")},
	{ID: "dogecoin", Symbol: "doge", Name: "Dogecoin", BasePrice: decimal.RequireFromString("0.17835")},
	{ID: "chainlink", Symbol: "link", Name: "Chainlink", BasePrice: decimal.RequireFromString("15.848")},
	{ID: "polygon", Symbol: "matic", Name: "Polygon", BasePrice: decimal.RequireFromString("0.95")},
	{ID: "litecoin", Symbol: "ltc", Name: "Litecoin", BasePrice: decimal.RequireFromString("72.5")},
	{ID: "avalanche-2", Symbol: "avax", Name: "Avalanche"},
	{ID: "uniswap", Symbol: "uni", Name: "Uniswap"},
	{ID: "ethereum-classic", Symbol: "etc", Name: "Ethereum Classic"},
	{ID: "stellar", Symbol: "xlm", Name: "Stellar"},
	{ID: "filecoin", Symbol: "fil", Name: "Filecoin"},
}

var (
	highFactor = decimal.RequireFromString("1.05")
	lowFactor  = decimal.RequireFromString("0.95")
)

// QuoteMocker generates plausible quotes around fixed base prices. Values are
// random on every call; only the roster is stable.
type QuoteMocker struct {
	roster []MockCoin

	mu  sync.Mutex // rand.Rand is not safe for concurrent use
	rnd *rand.Rand
}

type QuoteMockerConfig struct {
	Source rand.Source // defaults to a time seeded source
	Roster []MockCoin  // defaults to DefaultMockRoster
}

func NewQuoteMocker(cfg QuoteMockerConfig) *QuoteMocker {
	if cfg.Source == nil {
		cfg.Source = rand.NewSource(time.Now().UnixNano())
	}
	if len(cfg.Roster) == 0 {
		cfg.Roster = DefaultMockRoster
	}

	return &QuoteMocker{
		roster: cfg.Roster,
		rnd:    rand.New(cfg.Source),
	}
}

// Base returns the price the mocker perturbs for the coin.
func (c MockCoin) Base() decimal.Decimal {
	if c.BasePrice.IsZero() {
		return defaultBasePrice
	}
	return c.BasePrice
}

// Generate returns a new quote for every coin in the roster. The price is
// within ±5% of the base price and the 24h change lies in [-3, 7].
func (g *QuoteMocker) Generate() []entities.PriceQuote {
	g.mu.Lock()
	defer g.mu.Unlock()

	quotes := make([]entities.PriceQuote, 0, len(g.roster))

	for _, coin := range g.roster {
		variation := (g.rnd.Float64() - 0.5) * 0.1
		price := coin.Base().Mul(decimal.NewFromFloat(1 + variation))
		change := decimal.NewFromFloat((g.rnd.Float64() - 0.3) * 10).Round(4)

		quotes = append(quotes, entities.PriceQuote{
			ID:                       coin.ID,
			Symbol:                   coin.Symbol,
			Name:                     coin.Name,
			Image:                    fmt.Sprintf("https://assets.coingecko.com/coins/images/%d/large/%s.png", g.rnd.Intn(1000), coin.Symbol),
			CurrentPrice:             price,
			PriceChangePercentage24h: change,
			MarketCap:                price.Mul(decimal.NewFromFloat(1000000 + g.rnd.Float64()*5000000)).Round(2),
			TotalVolume:              price.Mul(decimal.NewFromFloat(100000 + g.rnd.Float64()*500000)).Round(2),
			High24h:                  price.Mul(highFactor),
			Low24h:                   price.Mul(lowFactor),
		})
	}

	return quotes
}
