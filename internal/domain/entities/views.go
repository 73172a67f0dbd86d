package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpotMarket is a PriceQuote as shown on the spot tab.
type SpotMarket struct {
	Symbol    string // upper case
	Name      string
	Price     decimal.Decimal
	Change24h decimal.Decimal
	Volume    decimal.Decimal
	High24h   decimal.Decimal
	Low24h    decimal.Decimal
}

// FuturesMarket is a simulated perpetual contract derived from a spot quote.
type FuturesMarket struct {
	Symbol       string
	Name         string
	Price        decimal.Decimal
	IndexPrice   decimal.Decimal // the spot price
	Change24h    decimal.Decimal
	Volume       decimal.Decimal
	OpenInterest decimal.Decimal
	FundingRate  decimal.Decimal // percent
	Leverage     string          // e.g. "20x"
}

type OptionType string

const (
	OptionTypeCall OptionType = "call"
	OptionTypePut  OptionType = "put"
)

// OptionsMarket is a simulated option contract on a spot quote.
type OptionsMarket struct {
	Symbol            string
	Name              string
	Type              OptionType
	StrikePrice       decimal.Decimal
	Expiry            time.Time // midnight UTC
	Premium           decimal.Decimal
	Change24h         decimal.Decimal
	Volume            decimal.Decimal
	OpenInterest      decimal.Decimal
	ImpliedVolatility decimal.Decimal // percent
}
