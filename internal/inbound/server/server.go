package server

import (
	"context"
	"errors"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/c2c"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/entities"
	exerrors "github.com/gaojianshuai/jiaoyisuoapp/internal/domain/errors"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/usecases"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type MarketUseCases interface {
	GetMarketData(ctx context.Context, currency string) []entities.PriceQuote
	SearchCrypto(ctx context.Context, query string) []entities.PriceQuote
	GetCryptoDetail(ctx context.Context, id string) (entities.PriceQuote, bool)
}

type MarketViewUseCases interface {
	Spot(ctx context.Context) []entities.SpotMarket
	Futures(ctx context.Context) []entities.FuturesMarket
	Options(ctx context.Context) []entities.OptionsMarket
}

type MerchantUseCases interface {
	List(q usecases.MerchantQuery) []entities.Merchant
}

type DeskUseCases interface {
	PlaceOrder(ctx context.Context, req usecases.PlaceOrderRequest) (c2c.Snapshot, error)
	MarkPaid(ctx context.Context, id string) (c2c.Snapshot, error)
	Snapshot(id string) (c2c.Snapshot, error)
	Records(ctx context.Context, status entities.OrderStatus) ([]entities.OrderRecord, error)
}

type FavoritesUseCases interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, symbol string) error
	Remove(ctx context.Context, symbol string) error
	Toggle(ctx context.Context, symbol string) (bool, error)
}

type StrategyUseCases interface {
	Create(req usecases.CreateStrategyRequest) (entities.Strategy, error)
	Toggle(id string) (entities.Strategy, error)
	Stop(id string) (entities.Strategy, error)
	Delete(id string) error
	List() []entities.Strategy
}

type Server struct {
	market     MarketUseCases
	views      MarketViewUseCases
	merchants  MerchantUseCases
	desk       DeskUseCases
	favorites  FavoritesUseCases
	strategies StrategyUseCases
}

var _ ExchangeServer = (*Server)(nil)

type Config struct {
	MarketUseCases     MarketUseCases
	MarketViewUseCases MarketViewUseCases
	MerchantUseCases   MerchantUseCases
	DeskUseCases       DeskUseCases
	FavoritesUseCases  FavoritesUseCases
	StrategyUseCases   StrategyUseCases
}

func NewServer(cfg Config) *Server {
	return &Server{
		market:     cfg.MarketUseCases,
		views:      cfg.MarketViewUseCases,
		merchants:  cfg.MerchantUseCases,
		desk:       cfg.DeskUseCases,
		favorites:  cfg.FavoritesUseCases,
		strategies: cfg.StrategyUseCases,
	}
}

// GetMarketData returns the market list. It never fails; the gateway serves
// cached or mock quotes when the upstream is unavailable.
func (s *Server) GetMarketData(ctx context.Context, req *GetMarketDataRequest) (*QuotesResponse, error) {
	log.Info().Str("currency", req.Currency).Msg("received GetMarketData request")

	return &QuotesResponse{Quotes: QuotesFrom(s.market.GetMarketData(ctx, req.Currency))}, nil
}

func (s *Server) SearchCrypto(ctx context.Context, req *SearchCryptoRequest) (*QuotesResponse, error) {
	log.Info().Str("query", req.Query).Msg("received SearchCrypto request")

	return &QuotesResponse{Quotes: QuotesFrom(s.market.SearchCrypto(ctx, req.Query))}, nil
}

func (s *Server) GetCryptoDetail(ctx context.Context, req *GetCryptoDetailRequest) (*GetCryptoDetailResponse, error) {
	log.Info().Str("id", req.ID).Msg("received GetCryptoDetail request")

	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	quote, ok := s.market.GetCryptoDetail(ctx, req.ID)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "coin %s not found", req.ID)
	}

	return &GetCryptoDetailResponse{Quote: toQuote(quote)}, nil
}

func (s *Server) GetSpotMarkets(ctx context.Context, _ *MarketViewRequest) (*SpotMarketsResponse, error) {
	log.Info().Msg("received GetSpotMarkets request")

	markets := s.views.Spot(ctx)

	resp := &SpotMarketsResponse{Markets: make([]*SpotMarket, 0, len(markets))}
	for _, m := range markets {
		resp.Markets = append(resp.Markets, toSpotMarket(m))
	}

	return resp, nil
}

func (s *Server) GetFuturesMarkets(ctx context.Context, _ *MarketViewRequest) (*FuturesMarketsResponse, error) {
	log.Info().Msg("received GetFuturesMarkets request")

	markets := s.views.Futures(ctx)

	resp := &FuturesMarketsResponse{Markets: make([]*FuturesMarket, 0, len(markets))}
	for _, m := range markets {
		resp.Markets = append(resp.Markets, toFuturesMarket(m))
	}

	return resp, nil
}

func (s *Server) GetOptionsMarkets(ctx context.Context, _ *MarketViewRequest) (*OptionsMarketsResponse, error) {
	log.Info().Msg("received GetOptionsMarkets request")

	markets := s.views.Options(ctx)

	resp := &OptionsMarketsResponse{Markets: make([]*OptionsMarket, 0, len(markets))}
	for _, m := range markets {
		resp.Markets = append(resp.Markets, toOptionsMarket(m))
	}

	return resp, nil
}

func (s *Server) ListMerchants(_ context.Context, req *ListMerchantsRequest) (*ListMerchantsResponse, error) {
	log.Info().Str("payment_method", req.PaymentMethod).Str("sort_by", req.SortBy).Msg("received ListMerchants request")

	merchants := s.merchants.List(usecases.MerchantQuery{
		PaymentMethod: req.PaymentMethod,
		SortBy:        usecases.MerchantSort(req.SortBy),
		Order:         usecases.SortOrder(req.Order),
	})

	resp := &ListMerchantsResponse{Merchants: make([]*Merchant, 0, len(merchants))}
	for _, m := range merchants {
		resp.Merchants = append(resp.Merchants, toMerchant(m))
	}

	return resp, nil
}

func (s *Server) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*OrderResponse, error) {
	log.Info().Str("merchant_id", req.MerchantID).Str("amount", req.Amount).Msg("received PlaceOrder request")

	amount, err := parseDecimal("amount", req.Amount)
	if err != nil {
		return nil, err
	}

	snap, err := s.desk.PlaceOrder(ctx, usecases.PlaceOrderRequest{
		MerchantID:    req.MerchantID,
		Coin:          req.Coin,
		Amount:        amount,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return &OrderResponse{Order: OrderFromSnapshot(snap)}, nil
}

func (s *Server) MarkPaid(ctx context.Context, req *OrderIDRequest) (*OrderResponse, error) {
	log.Info().Str("id", req.ID).Msg("received MarkPaid request")

	snap, err := s.desk.MarkPaid(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}

	return &OrderResponse{Order: OrderFromSnapshot(snap)}, nil
}

func (s *Server) GetOrder(_ context.Context, req *OrderIDRequest) (*OrderResponse, error) {
	snap, err := s.desk.Snapshot(req.ID)
	if err != nil {
		return nil, toStatus(err)
	}

	return &OrderResponse{Order: OrderFromSnapshot(snap)}, nil
}

func (s *Server) ListOrders(ctx context.Context, req *ListOrdersRequest) (*ListOrdersResponse, error) {
	log.Info().Str("status", req.Status).Msg("received ListOrders request")

	records, err := s.desk.Records(ctx, entities.OrderStatus(req.Status))
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &ListOrdersResponse{Records: make([]*OrderRecord, 0, len(records))}
	for _, r := range records {
		resp.Records = append(resp.Records, &OrderRecord{
			Order:         toOrder(r.Summary, r.Status),
			MerchantName:  r.MerchantName,
			PaymentMethod: r.PaymentMethod,
			UpdatedAt:     r.UpdatedAt,
		})
	}

	return resp, nil
}

func (s *Server) ListFavorites(ctx context.Context, _ *ListFavoritesRequest) (*FavoritesResponse, error) {
	return s.favoritesResponse(ctx, false)
}

func (s *Server) AddFavorite(ctx context.Context, req *FavoriteRequest) (*FavoritesResponse, error) {
	if req.Symbol == "" {
		return nil, status.Error(codes.InvalidArgument, "symbol is required")
	}

	if err := s.favorites.Add(ctx, req.Symbol); err != nil {
		return nil, toStatus(err)
	}

	return s.favoritesResponse(ctx, true)
}

func (s *Server) RemoveFavorite(ctx context.Context, req *FavoriteRequest) (*FavoritesResponse, error) {
	if err := s.favorites.Remove(ctx, req.Symbol); err != nil {
		return nil, toStatus(err)
	}

	return s.favoritesResponse(ctx, false)
}

func (s *Server) ToggleFavorite(ctx context.Context, req *FavoriteRequest) (*FavoritesResponse, error) {
	if req.Symbol == "" {
		return nil, status.Error(codes.InvalidArgument, "symbol is required")
	}

	on, err := s.favorites.Toggle(ctx, req.Symbol)
	if err != nil {
		return nil, toStatus(err)
	}

	return s.favoritesResponse(ctx, on)
}

func (s *Server) favoritesResponse(ctx context.Context, favorite bool) (*FavoritesResponse, error) {
	symbols, err := s.favorites.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return &FavoritesResponse{Symbols: symbols, Favorite: favorite}, nil
}

func (s *Server) CreateStrategy(_ context.Context, req *CreateStrategyRequest) (*StrategyResponse, error) {
	log.Info().Str("pair", req.Pair).Str("type", req.Type).Msg("received CreateStrategy request")

	investment, err := parseDecimal("investment", req.Investment)
	if err != nil {
		return nil, err
	}

	var priceMin, priceMax decimal.Decimal
	if req.PriceMin != "" {
		if priceMin, err = parseDecimal("price_min", req.PriceMin); err != nil {
			return nil, err
		}
	}
	if req.PriceMax != "" {
		if priceMax, err = parseDecimal("price_max", req.PriceMax); err != nil {
			return nil, err
		}
	}

	strategy, err := s.strategies.Create(usecases.CreateStrategyRequest{
		Name:       req.Name,
		Pair:       req.Pair,
		Type:       entities.StrategyType(req.Type),
		GridCount:  req.GridCount,
		PriceMin:   priceMin,
		PriceMax:   priceMax,
		Investment: investment,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return &StrategyResponse{Strategy: toStrategy(strategy)}, nil
}

func (s *Server) ToggleStrategy(_ context.Context, req *StrategyIDRequest) (*StrategyResponse, error) {
	strategy, err := s.strategies.Toggle(req.ID)
	if err != nil {
		return nil, toStatus(err)
	}

	return &StrategyResponse{Strategy: toStrategy(strategy)}, nil
}

func (s *Server) StopStrategy(_ context.Context, req *StrategyIDRequest) (*StrategyResponse, error) {
	strategy, err := s.strategies.Stop(req.ID)
	if err != nil {
		return nil, toStatus(err)
	}

	return &StrategyResponse{Strategy: toStrategy(strategy)}, nil
}

func (s *Server) DeleteStrategy(_ context.Context, req *StrategyIDRequest) (*DeleteStrategyResponse, error) {
	if err := s.strategies.Delete(req.ID); err != nil {
		return nil, toStatus(err)
	}

	return &DeleteStrategyResponse{}, nil
}

func (s *Server) ListStrategies(_ context.Context, _ *ListStrategiesRequest) (*ListStrategiesResponse, error) {
	strategies := s.strategies.List()

	resp := &ListStrategiesResponse{Strategies: make([]*Strategy, 0, len(strategies))}
	for _, st := range strategies {
		resp.Strategies = append(resp.Strategies, toStrategy(st))
	}

	return resp, nil
}

func parseDecimal(field, v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, status.Errorf(codes.InvalidArgument, "%s: %q is not a decimal", field, v)
	}
	return d, nil
}

// toStatus maps domain errors onto gRPC status codes.
func toStatus(err error) error {
	var code codes.Code

	switch {
	case errors.Is(err, exerrors.ErrMerchantNotFound),
		errors.Is(err, exerrors.ErrOrderNotFound),
		errors.Is(err, exerrors.ErrStrategyNotFound),
		errors.Is(err, exerrors.ErrCoinNotFound):
		code = codes.NotFound
	case errors.Is(err, exerrors.ErrAmountOutOfLimits),
		errors.Is(err, exerrors.ErrInvalidOrder),
		errors.Is(err, exerrors.ErrInvalidStrategy),
		errors.Is(err, exerrors.ErrPaymentMethodNotAccepted):
		code = codes.InvalidArgument
	case errors.Is(err, exerrors.ErrInvalidOrderState):
		code = codes.FailedPrecondition
	default:
		log.Error().Err(err).Msg("request failed")
		return status.Error(codes.Internal, "internal error")
	}

	return status.Error(code, err.Error())
}
