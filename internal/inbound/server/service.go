package server

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "jiaoyisuo.v1.Exchange"

// ExchangeServer is the server API for the Exchange service.
type ExchangeServer interface {
	GetMarketData(context.Context, *GetMarketDataRequest) (*QuotesResponse, error)
	SearchCrypto(context.Context, *SearchCryptoRequest) (*QuotesResponse, error)
	GetCryptoDetail(context.Context, *GetCryptoDetailRequest) (*GetCryptoDetailResponse, error)
	GetSpotMarkets(context.Context, *MarketViewRequest) (*SpotMarketsResponse, error)
	GetFuturesMarkets(context.Context, *MarketViewRequest) (*FuturesMarketsResponse, error)
	GetOptionsMarkets(context.Context, *MarketViewRequest) (*OptionsMarketsResponse, error)

	ListMerchants(context.Context, *ListMerchantsRequest) (*ListMerchantsResponse, error)
	PlaceOrder(context.Context, *PlaceOrderRequest) (*OrderResponse, error)
	MarkPaid(context.Context, *OrderIDRequest) (*OrderResponse, error)
	GetOrder(context.Context, *OrderIDRequest) (*OrderResponse, error)
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)

	ListFavorites(context.Context, *ListFavoritesRequest) (*FavoritesResponse, error)
	AddFavorite(context.Context, *FavoriteRequest) (*FavoritesResponse, error)
	RemoveFavorite(context.Context, *FavoriteRequest) (*FavoritesResponse, error)
	ToggleFavorite(context.Context, *FavoriteRequest) (*FavoritesResponse, error)

	CreateStrategy(context.Context, *CreateStrategyRequest) (*StrategyResponse, error)
	ToggleStrategy(context.Context, *StrategyIDRequest) (*StrategyResponse, error)
	StopStrategy(context.Context, *StrategyIDRequest) (*StrategyResponse, error)
	DeleteStrategy(context.Context, *StrategyIDRequest) (*DeleteStrategyResponse, error)
	ListStrategies(context.Context, *ListStrategiesRequest) (*ListStrategiesResponse, error)
}

// ServiceDesc describes the Exchange service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ExchangeServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("GetMarketData", ExchangeServer.GetMarketData),
		unaryHandler("SearchCrypto", ExchangeServer.SearchCrypto),
		unaryHandler("GetCryptoDetail", ExchangeServer.GetCryptoDetail),
		unaryHandler("GetSpotMarkets", ExchangeServer.GetSpotMarkets),
		unaryHandler("GetFuturesMarkets", ExchangeServer.GetFuturesMarkets),
		unaryHandler("GetOptionsMarkets", ExchangeServer.GetOptionsMarkets),
		unaryHandler("ListMerchants", ExchangeServer.ListMerchants),
		unaryHandler("PlaceOrder", ExchangeServer.PlaceOrder),
		unaryHandler("MarkPaid", ExchangeServer.MarkPaid),
		unaryHandler("GetOrder", ExchangeServer.GetOrder),
		unaryHandler("ListOrders", ExchangeServer.ListOrders),
		unaryHandler("ListFavorites", ExchangeServer.ListFavorites),
		unaryHandler("AddFavorite", ExchangeServer.AddFavorite),
		unaryHandler("RemoveFavorite", ExchangeServer.RemoveFavorite),
		unaryHandler("ToggleFavorite", ExchangeServer.ToggleFavorite),
		unaryHandler("CreateStrategy", ExchangeServer.CreateStrategy),
		unaryHandler("ToggleStrategy", ExchangeServer.ToggleStrategy),
		unaryHandler("StopStrategy", ExchangeServer.StopStrategy),
		unaryHandler("DeleteStrategy", ExchangeServer.DeleteStrategy),
		unaryHandler("ListStrategies", ExchangeServer.ListStrategies),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jiaoyisuo/v1/exchange",
}

// RegisterExchangeServer registers srv on s.
func RegisterExchangeServer(s grpc.ServiceRegistrar, srv ExchangeServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler[Req, Resp any](method string, call func(ExchangeServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}

			if interceptor == nil {
				return call(srv.(ExchangeServer), ctx, in)
			}

			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(method),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(ExchangeServer), ctx, req.(*Req))
			}

			return interceptor(ctx, in, info, handler)
		},
	}
}
