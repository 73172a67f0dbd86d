package entities

import (
	"github.com/shopspring/decimal"
)

// Merchant is a C2C counterparty offering a quote.
type Merchant struct {
	ID             string
	Name           string
	Avatar         string
	Rating         float64 // 0.0 - 5.0
	Completed      int
	Price          decimal.Decimal
	MinLimit       decimal.Decimal
	MaxLimit       decimal.Decimal
	PaymentMethods []string
	Online         bool
	ResponseTime   string
}

// Accepts reports whether the merchant takes the given payment method.
func (m Merchant) Accepts(method string) bool {
	for _, pm := range m.PaymentMethods {
		if pm == method {
			return true
		}
	}

	return false
}

// WithinLimits reports whether amount lies in [MinLimit, MaxLimit].
func (m Merchant) WithinLimits(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(m.MinLimit) && amount.LessThanOrEqual(m.MaxLimit)
}
