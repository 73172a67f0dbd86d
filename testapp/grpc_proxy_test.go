package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/usecases"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/inbound/server"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/outbound/memory"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

func setupProxy(t *testing.T) http.Handler {
	store := memory.New()
	timeNow := func() time.Time { return time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC) }

	desk := usecases.NewDesk(usecases.DeskConfig{Records: store, TimeNow: timeNow})
	t.Cleanup(desk.Close)

	s := server.NewServer(server.Config{
		MarketUseCases:    usecases.NewMarket(usecases.MarketConfig{TimeNow: timeNow}),
		MerchantUseCases:  usecases.NewMerchants(usecases.MerchantsConfig{}),
		DeskUseCases:      desk,
		FavoritesUseCases: usecases.NewFavorites(usecases.FavoritesConfig{Store: store}),
		StrategyUseCases: usecases.NewStrategies(usecases.StrategiesConfig{
			TimeNow: timeNow,
			Seed:    usecases.DefaultStrategies(),
		}),
	})

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	server.RegisterExchangeServer(gs, s)

	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	p := &proxy{client: server.NewClient(conn), allowOrigin: "*"}

	return p.routes()
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestRouteTable(t *testing.T) {
	p := &proxy{client: server.NewClient(nil)}

	rpcs := make(map[string]bool)
	paths := make(map[string]bool)
	for _, r := range p.routeTable() {
		require.False(t, paths[r.path], "duplicate path %s", r.path)
		paths[r.path] = true
		rpcs[r.rpc] = true
	}

	for _, m := range server.ServiceDesc.Methods {
		require.True(t, rpcs[m.MethodName], "no route for %s", m.MethodName)
	}
	require.Len(t, rpcs, len(server.ServiceDesc.Methods))
}

func TestProxy(t *testing.T) {
	h := setupProxy(t)

	t.Run("lists the seeded strategies", func(t *testing.T) {
		rec := post(t, h, "/strategies/list", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp server.ListStrategiesResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp.Strategies, 2)
	})

	t.Run("favorites round trip", func(t *testing.T) {
		rec := post(t, h, "/favorites/add", `{"symbol":"doge"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = post(t, h, "/favorites", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp server.FavoritesResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Equal(t, []string{"BTC", "ETH", "SOL", "DOGE"}, resp.Symbols)
	})

	t.Run("unknown order maps to 404", func(t *testing.T) {
		rec := post(t, h, "/orders/get", `{"id":"C2C0"}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad body", func(t *testing.T) {
		rec := post(t, h, "/orders", `{`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("only POST is routed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/markets", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHTTPStatus(t *testing.T) {
	require.Equal(t, http.StatusNotFound, httpStatus(codes.NotFound))
	require.Equal(t, http.StatusBadRequest, httpStatus(codes.InvalidArgument))
	require.Equal(t, http.StatusConflict, httpStatus(codes.FailedPrecondition))
	require.Equal(t, http.StatusBadGateway, httpStatus(codes.Unavailable))
}
