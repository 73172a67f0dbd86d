package server

import (
	"time"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/c2c"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/entities"
)

// Prices and amounts travel as decimal strings.

type Quote struct {
	ID                       string `json:"id"`
	Symbol                   string `json:"symbol"`
	Name                     string `json:"name"`
	Image                    string `json:"image,omitempty"`
	CurrentPrice             string `json:"current_price"`
	PriceChangePercentage24h string `json:"price_change_percentage_24h"`
	MarketCap                string `json:"market_cap"`
	TotalVolume              string `json:"total_volume"`
	High24h                  string `json:"high_24h"`
	Low24h                   string `json:"low_24h"`
}

type GetMarketDataRequest struct {
	Currency string `json:"currency"`
}

type SearchCryptoRequest struct {
	Query string `json:"query"`
}

type QuotesResponse struct {
	Quotes []*Quote `json:"quotes"`
}

type GetCryptoDetailRequest struct {
	ID string `json:"id"`
}

type GetCryptoDetailResponse struct {
	Quote *Quote `json:"quote"`
}

type MarketViewRequest struct{}

type SpotMarket struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Change24h string `json:"change_24h"`
	Volume    string `json:"volume"`
	High24h   string `json:"high_24h"`
	Low24h    string `json:"low_24h"`
}

type SpotMarketsResponse struct {
	Markets []*SpotMarket `json:"markets"`
}

type FuturesMarket struct {
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	IndexPrice   string `json:"index_price"`
	Change24h    string `json:"change_24h"`
	Volume       string `json:"volume"`
	OpenInterest string `json:"open_interest"`
	FundingRate  string `json:"funding_rate"`
	Leverage     string `json:"leverage"`
}

type FuturesMarketsResponse struct {
	Markets []*FuturesMarket `json:"markets"`
}

type OptionsMarket struct {
	Symbol            string `json:"symbol"`
	Name              string `json:"name"`
	Type              string `json:"type"`
	StrikePrice       string `json:"strike_price"`
	ExpiryDate        string `json:"expiry_date"` // YYYY-MM-DD
	Premium           string `json:"premium"`
	Change24h         string `json:"change_24h"`
	Volume            string `json:"volume"`
	OpenInterest      string `json:"open_interest"`
	ImpliedVolatility string `json:"implied_volatility"`
}

type OptionsMarketsResponse struct {
	Markets []*OptionsMarket `json:"markets"`
}

type Merchant struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Avatar         string   `json:"avatar"`
	Rating         float64  `json:"rating"`
	Completed      int      `json:"completed"`
	Price          string   `json:"price"`
	MinLimit       string   `json:"min_limit"`
	MaxLimit       string   `json:"max_limit"`
	PaymentMethods []string `json:"payment_methods"`
	Online         bool     `json:"online"`
	ResponseTime   string   `json:"response_time"`
}

type ListMerchantsRequest struct {
	PaymentMethod string `json:"payment_method"`
	SortBy        string `json:"sort_by"`
	Order         string `json:"order"`
}

type ListMerchantsResponse struct {
	Merchants []*Merchant `json:"merchants"`
}

type Order struct {
	ID               string    `json:"id"`
	Coin             string    `json:"coin"`
	Amount           string    `json:"amount"`
	Price            string    `json:"price"`
	Total            string    `json:"total"`
	ReceiveAmount    string    `json:"receive_amount"`
	MerchantID       string    `json:"merchant_id"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	Remaining        string    `json:"remaining"` // MM:SS
	RemainingSeconds int64     `json:"remaining_seconds"`
}

type PlaceOrderRequest struct {
	MerchantID    string `json:"merchant_id"`
	Coin          string `json:"coin"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

type OrderIDRequest struct {
	ID string `json:"id"`
}

type OrderResponse struct {
	Order *Order `json:"order"`
}

type OrderRecord struct {
	Order         *Order    `json:"order"`
	MerchantName  string    `json:"merchant_name"`
	PaymentMethod string    `json:"payment_method"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ListOrdersRequest struct {
	Status string `json:"status,omitempty"`
}

type ListOrdersResponse struct {
	Records []*OrderRecord `json:"records"`
}

type ListFavoritesRequest struct{}

type FavoriteRequest struct {
	Symbol string `json:"symbol"`
}

type FavoritesResponse struct {
	Symbols  []string `json:"symbols"`
	Favorite bool     `json:"favorite,omitempty"` // set by ToggleFavorite
}

type Strategy struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Pair          string    `json:"pair"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	Profit        string    `json:"profit"`
	ProfitPercent string    `json:"profit_percent"`
	GridCount     int       `json:"grid_count,omitempty"`
	PriceMin      string    `json:"price_min,omitempty"`
	PriceMax      string    `json:"price_max,omitempty"`
	Investment    string    `json:"investment"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreateStrategyRequest struct {
	Name       string `json:"name"`
	Pair       string `json:"pair"`
	Type       string `json:"type"`
	GridCount  int    `json:"grid_count"`
	PriceMin   string `json:"price_min"`
	PriceMax   string `json:"price_max"`
	Investment string `json:"investment"`
}

type StrategyIDRequest struct {
	ID string `json:"id"`
}

type StrategyResponse struct {
	Strategy *Strategy `json:"strategy"`
}

type DeleteStrategyResponse struct{}

type ListStrategiesRequest struct{}

type ListStrategiesResponse struct {
	Strategies []*Strategy `json:"strategies"`
}

func toQuote(q entities.PriceQuote) *Quote {
	return &Quote{
		ID:                       q.ID,
		Symbol:                   q.Symbol,
		Name:                     q.Name,
		Image:                    q.Image,
		CurrentPrice:             q.CurrentPrice.String(),
		PriceChangePercentage24h: q.PriceChangePercentage24h.String(),
		MarketCap:                q.MarketCap.String(),
		TotalVolume:              q.TotalVolume.String(),
		High24h:                  q.High24h.String(),
		Low24h:                   q.Low24h.String(),
	}
}

// QuotesFrom converts gateway quotes to their wire form.
func QuotesFrom(quotes []entities.PriceQuote) []*Quote {
	out := make([]*Quote, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, toQuote(q))
	}
	return out
}

func toSpotMarket(m entities.SpotMarket) *SpotMarket {
	return &SpotMarket{
		Symbol:    m.Symbol,
		Name:      m.Name,
		Price:     m.Price.String(),
		Change24h: m.Change24h.String(),
		Volume:    m.Volume.String(),
		High24h:   m.High24h.String(),
		Low24h:    m.Low24h.String(),
	}
}

func toFuturesMarket(m entities.FuturesMarket) *FuturesMarket {
	return &FuturesMarket{
		Symbol:       m.Symbol,
		Name:         m.Name,
		Price:        m.Price.String(),
		IndexPrice:   m.IndexPrice.String(),
		Change24h:    m.Change24h.String(),
		Volume:       m.Volume.String(),
		OpenInterest: m.OpenInterest.String(),
		FundingRate:  m.FundingRate.String(),
		Leverage:     m.Leverage,
	}
}

func toOptionsMarket(m entities.OptionsMarket) *OptionsMarket {
	return &OptionsMarket{
		Symbol:            m.Symbol,
		Name:              m.Name,
		Type:              string(m.Type),
		StrikePrice:       m.StrikePrice.String(),
		ExpiryDate:        m.Expiry.Format(time.DateOnly),
		Premium:           m.Premium.String(),
		Change24h:         m.Change24h.String(),
		Volume:            m.Volume.String(),
		OpenInterest:      m.OpenInterest.String(),
		ImpliedVolatility: m.ImpliedVolatility.String(),
	}
}

func toMerchant(m entities.Merchant) *Merchant {
	return &Merchant{
		ID:             m.ID,
		Name:           m.Name,
		Avatar:         m.Avatar,
		Rating:         m.Rating,
		Completed:      m.Completed,
		Price:          m.Price.String(),
		MinLimit:       m.MinLimit.String(),
		MaxLimit:       m.MaxLimit.String(),
		PaymentMethods: m.PaymentMethods,
		Online:         m.Online,
		ResponseTime:   m.ResponseTime,
	}
}

func toOrder(sum entities.OrderSummary, status entities.OrderStatus) *Order {
	return &Order{
		ID:            sum.ID,
		Coin:          sum.Coin,
		Amount:        sum.Amount.String(),
		Price:         sum.Price.String(),
		Total:         sum.Total.String(),
		ReceiveAmount: sum.ReceiveAmount.StringFixed(4),
		MerchantID:    sum.MerchantID,
		Status:        status.String(),
		CreatedAt:     sum.CreatedAt,
	}
}

// OrderFromSnapshot converts a live order to its wire form.
func OrderFromSnapshot(snap c2c.Snapshot) *Order {
	o := toOrder(snap.Summary, snap.Status)
	o.Remaining = snap.FormatRemaining()
	o.RemainingSeconds = int64(snap.Remaining / time.Second)
	return o
}

func toStrategy(s entities.Strategy) *Strategy {
	out := &Strategy{
		ID:            s.ID,
		Name:          s.Name,
		Pair:          s.Pair,
		Type:          string(s.Type),
		Status:        string(s.Status),
		Profit:        s.Profit.String(),
		ProfitPercent: s.ProfitPercent.String(),
		GridCount:     s.GridCount,
		Investment:    s.Investment.String(),
		CreatedAt:     s.CreatedAt,
	}

	if s.Type == entities.StrategyTypeGrid {
		out.PriceMin = s.PriceMin.String()
		out.PriceMax = s.PriceMax.String()
	}

	return out
}
