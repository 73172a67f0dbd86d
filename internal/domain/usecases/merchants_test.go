package usecases_test

import (
	"testing"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/entities"
	exerrors "github.com/gaojianshuai/jiaoyisuoapp/internal/domain/errors"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/usecases"
	"github.com/stretchr/testify/require"
)

func merchantNames(merchants []entities.Merchant) []string {
	names := make([]string, 0, len(merchants))
	for _, m := range merchants {
		names = append(names, m.Name)
	}
	return names
}

func TestMerchants_List(t *testing.T) {
	merchants := usecases.NewMerchants(usecases.MerchantsConfig{})

	tests := []struct {
		name  string
		query usecases.MerchantQuery
		want  []string
	}{
		{
			name:  "zero query sorts by ascending price",
			query: usecases.MerchantQuery{},
			want:  []string{"FastExchange", "CryptoTrader001", "TrustedSeller", "SafeTrade"},
		},
		{
			name:  "price descending",
			query: usecases.MerchantQuery{SortBy: usecases.SortByPrice, Order: usecases.OrderDesc},
			want:  []string{"SafeTrade", "TrustedSeller", "CryptoTrader001", "FastExchange"},
		},
		{
			name:  "rating descending",
			query: usecases.MerchantQuery{SortBy: usecases.SortByRating, Order: usecases.OrderDesc},
			want:  []string{"SafeTrade", "CryptoTrader001", "TrustedSeller", "FastExchange"},
		},
		{
			name:  "volume ascending",
			query: usecases.MerchantQuery{SortBy: usecases.SortByVolume, Order: usecases.OrderAsc},
			want:  []string{"SafeTrade", "TrustedSeller", "CryptoTrader001", "FastExchange"},
		},
		{
			name:  "filters by payment method",
			query: usecases.MerchantQuery{PaymentMethod: "wechat"},
			want:  []string{"FastExchange", "CryptoTrader001"},
		},
		{
			name:  "all disables the filter",
			query: usecases.MerchantQuery{PaymentMethod: usecases.PaymentMethodAll, SortBy: usecases.SortByRating},
			want:  []string{"FastExchange", "TrustedSeller", "CryptoTrader001", "SafeTrade"},
		},
		{
			name:  "unknown payment method lists nobody",
			query: usecases.MerchantQuery{PaymentMethod: "paypal"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, merchantNames(merchants.List(tt.query)))
		})
	}

	t.Run("listing returns a fresh slice", func(t *testing.T) {
		first := merchants.List(usecases.MerchantQuery{})
		first[0].Name = "changed"

		require.NotEqual(t, "changed", merchants.List(usecases.MerchantQuery{})[0].Name)
	})

	t.Run("payment methods are not shared with the roster", func(t *testing.T) {
		first := merchants.List(usecases.MerchantQuery{SortBy: usecases.SortByRating, Order: usecases.OrderDesc})
		require.Equal(t, "SafeTrade", first[0].Name)
		first[0].PaymentMethods[0] = "paypal"

		again := merchants.List(usecases.MerchantQuery{SortBy: usecases.SortByRating, Order: usecases.OrderDesc})
		require.Equal(t, []string{"alipay"}, again[0].PaymentMethods)
	})
}

func TestMerchants_Get(t *testing.T) {
	merchants := usecases.NewMerchants(usecases.MerchantsConfig{})

	t.Run("finds a merchant", func(t *testing.T) {
		m, err := merchants.Get("4")
		require.NoError(t, err)
		require.Equal(t, "SafeTrade", m.Name)
	})

	t.Run("returned payment methods are a copy", func(t *testing.T) {
		m, err := merchants.Get("1")
		require.NoError(t, err)
		m.PaymentMethods[0] = "paypal"

		again, err := merchants.Get("1")
		require.NoError(t, err)
		require.Equal(t, []string{"alipay", "wechat"}, again.PaymentMethods)
	})

	t.Run("unknown merchant", func(t *testing.T) {
		_, err := merchants.Get("99")
		require.ErrorIs(t, err, exerrors.ErrMerchantNotFound)
	})
}
