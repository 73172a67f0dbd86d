package server

import (
	"context"

	"google.golang.org/grpc"
)

// Client is the client API for the Exchange service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in interface{}, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)

	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Client) GetMarketData(ctx context.Context, in *GetMarketDataRequest, opts ...grpc.CallOption) (*QuotesResponse, error) {
	return invoke[QuotesResponse](ctx, c.cc, "GetMarketData", in, opts)
}

func (c *Client) SearchCrypto(ctx context.Context, in *SearchCryptoRequest, opts ...grpc.CallOption) (*QuotesResponse, error) {
	return invoke[QuotesResponse](ctx, c.cc, "SearchCrypto", in, opts)
}

func (c *Client) GetCryptoDetail(ctx context.Context, in *GetCryptoDetailRequest, opts ...grpc.CallOption) (*GetCryptoDetailResponse, error) {
	return invoke[GetCryptoDetailResponse](ctx, c.cc, "GetCryptoDetail", in, opts)
}

func (c *Client) GetSpotMarkets(ctx context.Context, in *MarketViewRequest, opts ...grpc.CallOption) (*SpotMarketsResponse, error) {
	return invoke[SpotMarketsResponse](ctx, c.cc, "GetSpotMarkets", in, opts)
}

func (c *Client) GetFuturesMarkets(ctx context.Context, in *MarketViewRequest, opts ...grpc.CallOption) (*FuturesMarketsResponse, error) {
	return invoke[FuturesMarketsResponse](ctx, c.cc, "GetFuturesMarkets", in, opts)
}

func (c *Client) GetOptionsMarkets(ctx context.Context, in *MarketViewRequest, opts ...grpc.CallOption) (*OptionsMarketsResponse, error) {
	return invoke[OptionsMarketsResponse](ctx, c.cc, "GetOptionsMarkets", in, opts)
}

func (c *Client) ListMerchants(ctx context.Context, in *ListMerchantsRequest, opts ...grpc.CallOption) (*ListMerchantsResponse, error) {
	return invoke[ListMerchantsResponse](ctx, c.cc, "ListMerchants", in, opts)
}

func (c *Client) PlaceOrder(ctx context.Context, in *PlaceOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return invoke[OrderResponse](ctx, c.cc, "PlaceOrder", in, opts)
}

func (c *Client) MarkPaid(ctx context.Context, in *OrderIDRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return invoke[OrderResponse](ctx, c.cc, "MarkPaid", in, opts)
}

func (c *Client) GetOrder(ctx context.Context, in *OrderIDRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	return invoke[OrderResponse](ctx, c.cc, "GetOrder", in, opts)
}

func (c *Client) ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error) {
	return invoke[ListOrdersResponse](ctx, c.cc, "ListOrders", in, opts)
}

func (c *Client) ListFavorites(ctx context.Context, in *ListFavoritesRequest, opts ...grpc.CallOption) (*FavoritesResponse, error) {
	return invoke[FavoritesResponse](ctx, c.cc, "ListFavorites", in, opts)
}

func (c *Client) AddFavorite(ctx context.Context, in *FavoriteRequest, opts ...grpc.CallOption) (*FavoritesResponse, error) {
	return invoke[FavoritesResponse](ctx, c.cc, "AddFavorite", in, opts)
}

func (c *Client) RemoveFavorite(ctx context.Context, in *FavoriteRequest, opts ...grpc.CallOption) (*FavoritesResponse, error) {
	return invoke[FavoritesResponse](ctx, c.cc, "RemoveFavorite", in, opts)
}

func (c *Client) ToggleFavorite(ctx context.Context, in *FavoriteRequest, opts ...grpc.CallOption) (*FavoritesResponse, error) {
	return invoke[FavoritesResponse](ctx, c.cc, "ToggleFavorite", in, opts)
}

func (c *Client) CreateStrategy(ctx context.Context, in *CreateStrategyRequest, opts ...grpc.CallOption) (*StrategyResponse, error) {
	return invoke[StrategyResponse](ctx, c.cc, "CreateStrategy", in, opts)
}

func (c *Client) ToggleStrategy(ctx context.Context, in *StrategyIDRequest, opts ...grpc.CallOption) (*StrategyResponse, error) {
	return invoke[StrategyResponse](ctx, c.cc, "ToggleStrategy", in, opts)
}

func (c *Client) StopStrategy(ctx context.Context, in *StrategyIDRequest, opts ...grpc.CallOption) (*StrategyResponse, error) {
	return invoke[StrategyResponse](ctx, c.cc, "StopStrategy", in, opts)
}

func (c *Client) DeleteStrategy(ctx context.Context, in *StrategyIDRequest, opts ...grpc.CallOption) (*DeleteStrategyResponse, error) {
	return invoke[DeleteStrategyResponse](ctx, c.cc, "DeleteStrategy", in, opts)
}

func (c *Client) ListStrategies(ctx context.Context, in *ListStrategiesRequest, opts ...grpc.CallOption) (*ListStrategiesResponse, error) {
	return invoke[ListStrategiesResponse](ctx, c.cc, "ListStrategies", in, opts)
}
