package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

// Terminal reports whether no further transition is defined from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// OrderSummary is the immutable part of a C2C order.
type OrderSummary struct {
	ID            string
	Coin          string
	Amount        decimal.Decimal // fiat
	Price         decimal.Decimal // fiat per coin
	Total         decimal.Decimal
	ReceiveAmount decimal.Decimal // coin, 4 dp
	MerchantID    string
	CreatedAt     time.Time
}

// OrderRecord is what the records listing stores for each order.
type OrderRecord struct {
	Summary       OrderSummary
	Status        OrderStatus
	MerchantName  string
	PaymentMethod string
	UpdatedAt     time.Time
}
