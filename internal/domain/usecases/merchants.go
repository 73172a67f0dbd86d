package usecases

import (
	"fmt"
	"slices"
	"sort"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/entities"
	exerrors "github.com/gaojianshuai/jiaoyisuoapp/internal/domain/errors"
	"github.com/shopspring/decimal"
)

type MerchantSort string

const (
	SortByPrice  MerchantSort = "price"
	SortByRating MerchantSort = "rating"
	SortByVolume MerchantSort = "volume" // completed trades
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// PaymentMethodAll disables payment method filtering.
const PaymentMethodAll = "all"

type MerchantQuery struct {
	PaymentMethod string
	SortBy        MerchantSort
	Order         SortOrder
}

// DefaultMerchants returns the built-in C2C merchant roster.
func DefaultMerchants() []entities.Merchant {
	return []entities.Merchant{
		{
			ID: "1", Name: "CryptoTrader001", Avatar: "👤", Rating: 4.9, Completed: 1250,
			Price: decimal.RequireFromString("7.25"), MinLimit: decimal.NewFromInt(100), MaxLimit: decimal.NewFromInt(50000),
			PaymentMethods: []string{"alipay", "wechat"}, Online: true, ResponseTime: "< 5 min",
		},
		{
			ID: "2", Name: "TrustedSeller", Avatar: "👨‍💼", Rating: 4.8, Completed: 890,
			Price: decimal.RequireFromString("7.26"), MinLimit: decimal.NewFromInt(50), MaxLimit: decimal.NewFromInt(30000),
			PaymentMethods: []string{"bank_card", "alipay"}, Online: true, ResponseTime: "< 3 min",
		},
		{
			ID: "3", Name: "FastExchange", Avatar: "⚡", Rating: 4.7, Completed: 2100,
			Price: decimal.RequireFromString("7.24"), MinLimit: decimal.NewFromInt(200), MaxLimit: decimal.NewFromInt(100000),
			PaymentMethods: []string{"wechat", "bank_card"}, Online: false, ResponseTime: "< 10 min",
		},
		{
			ID: "4", Name: "SafeTrade", Avatar: "🛡️", Rating: 5.0, Completed: 560,
			Price: decimal.RequireFromString("7.27"), MinLimit: decimal.NewFromInt(100), MaxLimit: decimal.NewFromInt(20000),
			PaymentMethods: []string{"alipay"}, Online: true, ResponseTime: "< 2 min",
		},
	}
}

// Merchants serves the C2C merchant listing. Every call works on a fresh
// copy of the roster.
type Merchants struct {
	roster []entities.Merchant
}

type MerchantsConfig struct {
	Roster []entities.Merchant // defaults to DefaultMerchants
}

func NewMerchants(cfg MerchantsConfig) *Merchants {
	if len(cfg.Roster) == 0 {
		cfg.Roster = DefaultMerchants()
	}

	return &Merchants{roster: cfg.Roster}
}

// List returns the merchants accepting q.PaymentMethod, sorted by q.SortBy.
// The zero query lists everyone by ascending price.
func (m *Merchants) List(q MerchantQuery) []entities.Merchant {
	listing := make([]entities.Merchant, 0, len(m.roster))
	for _, merchant := range m.roster {
		if q.PaymentMethod == "" || q.PaymentMethod == PaymentMethodAll || merchant.Accepts(q.PaymentMethod) {
			listing = append(listing, clone(merchant))
		}
	}

	less := func(a, b entities.Merchant) bool {
		switch q.SortBy {
		case SortByRating:
			return a.Rating < b.Rating
		case SortByVolume:
			return a.Completed < b.Completed
		default:
			return a.Price.LessThan(b.Price)
		}
	}

	sort.SliceStable(listing, func(i, j int) bool {
		if q.Order == OrderDesc {
			return less(listing[j], listing[i])
		}
		return less(listing[i], listing[j])
	})

	return listing
}

func (m *Merchants) Get(id string) (entities.Merchant, error) {
	for _, merchant := range m.roster {
		if merchant.ID == id {
			return clone(merchant), nil
		}
	}

	return entities.Merchant{}, fmt.Errorf("%w: %s", exerrors.ErrMerchantNotFound, id)
}

func clone(m entities.Merchant) entities.Merchant {
	m.PaymentMethods = slices.Clone(m.PaymentMethods)
	return m
}
