package stream_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/usecases"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/inbound/stream"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/outbound/memory"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	ctx      = context.Background()
	testTime = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
)

func setupTest(t *testing.T) (*httptest.Server, *usecases.Desk) {
	desk := usecases.NewDesk(usecases.DeskConfig{
		Records: memory.New(),
		TimeNow: func() time.Time { return testTime },
	})
	t.Cleanup(desk.Close)

	s := stream.NewServer(stream.Config{
		MarketUseCases: usecases.NewMarket(usecases.MarketConfig{}),
		OrderUseCases:  desk,
		MarketInterval: 50 * time.Millisecond,
		OrderInterval:  20 * time.Millisecond,
		TimeNow:        func() time.Time { return testTime },
	})

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	return srv, desk
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(strings.Replace(srv.URL, "http://", "ws://", 1)+path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	return conn
}

func TestServer_Markets(t *testing.T) {
	srv, _ := setupTest(t)
	conn := dial(t, srv, "/ws/markets?currency=usd")

	for i := 0; i < 2; i++ {
		var msg stream.MarketsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		require.Equal(t, "markets", msg.Type)
		require.Equal(t, "usd", msg.Currency)
		require.Len(t, msg.Quotes, len(usecases.DefaultMockRoster))
		require.Equal(t, testTime, msg.SentAt)
	}
}

func TestServer_Order(t *testing.T) {
	t.Run("streams the countdown until the order completes", func(t *testing.T) {
		srv, desk := setupTest(t)

		snap, err := desk.PlaceOrder(ctx, usecases.PlaceOrderRequest{MerchantID: "1", Coin: "USDT", Amount: decimal.NewFromInt(1000)})
		require.NoError(t, err)

		conn := dial(t, srv, "/ws/orders/"+snap.Summary.ID)

		var msg stream.OrderMessage
		require.NoError(t, conn.ReadJSON(&msg))
		require.Equal(t, "order", msg.Type)
		require.Equal(t, snap.Summary.ID, msg.Order.ID)
		require.Equal(t, "pending", msg.Order.Status)
		require.Equal(t, "15:00", msg.Order.Remaining)

		_, err = desk.MarkPaid(ctx, snap.Summary.ID)
		require.NoError(t, err)

		order, err := desk.Order(snap.Summary.ID)
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			order.Tick()
		}

		for {
			var msg stream.OrderMessage
			err := conn.ReadJSON(&msg)
			if err != nil {
				require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err.Error())
				break
			}
			if msg.Order.Status == "completed" {
				continue
			}
			require.Contains(t, []string{"pending", "paid"}, msg.Order.Status)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		srv, _ := setupTest(t)

		_, resp, err := websocket.DefaultDialer.Dial(strings.Replace(srv.URL, "http://", "ws://", 1)+"/ws/orders/C2C0", nil)
		require.ErrorIs(t, err, websocket.ErrBadHandshake)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestServer_Healthz(t *testing.T) {
	srv, _ := setupTest(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
}
