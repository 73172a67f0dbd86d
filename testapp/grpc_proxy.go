package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/inbound/server"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

type cliArgs struct {
	GRPCAddress   string `arg:"--grpc-address,env:GRPC_ADDRESS" default:"localhost:9000"`
	ListenAddress string `arg:"--listen,env:LISTEN_ADDRESS" default:":8080"`
	AllowOrigin   string `arg:"--allow-origin,env:ALLOW_ORIGIN" default:"http://localhost:8000"`
}

type proxy struct {
	client      *server.Client
	allowOrigin string
}

func main() {
	var args cliArgs
	arg.MustParse(&args)

	conn, err := grpc.Dial(args.GRPCAddress, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to gRPC server")
	}
	defer conn.Close()

	p := &proxy{client: server.NewClient(conn), allowOrigin: args.AllowOrigin}

	log.Info().Str("address", args.ListenAddress).Msg("HTTP proxy listening")
	if err := http.ListenAndServe(args.ListenAddress, p.routes()); err != nil {
		log.Fatal().Err(err).Msg("failed to start HTTP server")
	}
}

// route exposes one Exchange RPC as POST path.
type route struct {
	rpc     string
	path    string
	handler http.HandlerFunc
}

func (p *proxy) routeTable() []route {
	c := p.client

	return []route{
		{"GetMarketData", "/markets", handle(p, c.GetMarketData)},
		{"SearchCrypto", "/markets/search", handle(p, c.SearchCrypto)},
		{"GetCryptoDetail", "/markets/detail", handle(p, c.GetCryptoDetail)},
		{"GetSpotMarkets", "/markets/spot", handle(p, c.GetSpotMarkets)},
		{"GetFuturesMarkets", "/markets/futures", handle(p, c.GetFuturesMarkets)},
		{"GetOptionsMarkets", "/markets/options", handle(p, c.GetOptionsMarkets)},

		{"ListMerchants", "/merchants", handle(p, c.ListMerchants)},
		{"PlaceOrder", "/orders", handle(p, c.PlaceOrder)},
		{"MarkPaid", "/orders/paid", handle(p, c.MarkPaid)},
		{"GetOrder", "/orders/get", handle(p, c.GetOrder)},
		{"ListOrders", "/orders/list", handle(p, c.ListOrders)},

		{"ListFavorites", "/favorites", handle(p, c.ListFavorites)},
		{"AddFavorite", "/favorites/add", handle(p, c.AddFavorite)},
		{"RemoveFavorite", "/favorites/remove", handle(p, c.RemoveFavorite)},
		{"ToggleFavorite", "/favorites/toggle", handle(p, c.ToggleFavorite)},

		{"CreateStrategy", "/strategies", handle(p, c.CreateStrategy)},
		{"ToggleStrategy", "/strategies/toggle", handle(p, c.ToggleStrategy)},
		{"StopStrategy", "/strategies/stop", handle(p, c.StopStrategy)},
		{"DeleteStrategy", "/strategies/delete", handle(p, c.DeleteStrategy)},
		{"ListStrategies", "/strategies/list", handle(p, c.ListStrategies)},
	}
}

func (p *proxy) routes() http.Handler {
	mux := http.NewServeMux()

	for _, r := range p.routeTable() {
		mux.HandleFunc("POST "+r.path, r.handler)
	}

	mux.HandleFunc("OPTIONS /", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", p.allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

// handle decodes the JSON body into Req, forwards it and writes the gRPC
// response back as JSON.
func handle[Req, Resp any](p *proxy, call func(context.Context, *Req, ...grpc.CallOption) (*Resp, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", p.allowOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		req := new(Req)
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		resp, err := call(ctx, req)
		if err != nil {
			st := status.Convert(err)
			log.Warn().Err(err).Str("path", r.URL.Path).Msg("gRPC call failed")
			http.Error(w, st.Message(), httpStatus(st.Code()))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func httpStatus(code codes.Code) int {
	switch code {
	case codes.NotFound:
		return http.StatusNotFound
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.FailedPrecondition:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
