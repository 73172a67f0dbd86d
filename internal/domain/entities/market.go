package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the fiat unit quotes are denominated in when the caller
// does not ask for another one.
const DefaultCurrency = "usd"

// PriceQuote is one asset's public market snapshot. The json tags follow the
// upstream /coins/markets field names.
type PriceQuote struct {
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

// QuoteSet is the cache entry held by the gateway: the last successful list
// and the time it was obtained.
type QuoteSet struct {
	Quotes    []PriceQuote
	FetchedAt time.Time
}

// Age returns how old the set is relative to now.
func (s QuoteSet) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// Find returns the quote with the given upstream id.
func (s QuoteSet) Find(id string) (PriceQuote, bool) {
	for _, q := range s.Quotes {
		if q.ID == id {
			return q, true
		}
	}

	return PriceQuote{}, false
}
