package subscriber_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/usecases"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/inbound/stream"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/inbound/subscriber"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// fakeWebSocket replays queued messages and then fails the read.
type fakeWebSocket struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

func (f *fakeWebSocket) ReadMessage() (int, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.messages) == 0 {
		return 0, nil, errors.New("connection reset")
	}

	msg := f.messages[0]
	f.messages = f.messages[1:]

	return websocket.TextMessage, msg, nil
}

func (f *fakeWebSocket) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestClient_Run(t *testing.T) {
	t.Run("reconnects and skips messages it does not understand", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var (
			mu       sync.Mutex
			received []stream.MarketsMessage
			dials    int
		)

		conns := []*fakeWebSocket{
			{messages: [][]byte{[]byte(`{"type":"markets","currency":"usd"}`), []byte(`not json`)}},
			{messages: [][]byte{[]byte(`{"type":"order"}`), []byte(`{"type":"markets","currency":"eur"}`)}},
		}

		client := subscriber.New(subscriber.Config{
			URL: "ws://example",
			Dialer: func(context.Context, string) (subscriber.WebSocket, error) {
				mu.Lock()
				defer mu.Unlock()

				if dials == len(conns) {
					return nil, errors.New("refused")
				}
				dials++
				return conns[dials-1], nil
			},
			Handler: func(_ context.Context, msg stream.MarketsMessage) {
				mu.Lock()
				defer mu.Unlock()

				received = append(received, msg)
				if len(received) == 2 {
					cancel()
				}
			},
			ReconnectDelay: time.Millisecond,
		})

		err := client.Run(ctx)
		require.ErrorIs(t, err, context.Canceled)

		mu.Lock()
		defer mu.Unlock()

		require.Len(t, received, 2)
		require.Equal(t, "usd", received[0].Currency)
		require.Equal(t, "eur", received[1].Currency)
		require.True(t, conns[0].closed)
	})

	t.Run("follows a live markets stream", func(t *testing.T) {
		s := stream.NewServer(stream.Config{
			MarketUseCases: usecases.NewMarket(usecases.MarketConfig{}),
			MarketInterval: 20 * time.Millisecond,
		})
		srv := httptest.NewServer(s.Handler())
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		got := make(chan stream.MarketsMessage, 1)

		client := subscriber.New(subscriber.Config{
			URL: strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws/markets",
			Handler: func(_ context.Context, msg stream.MarketsMessage) {
				select {
				case got <- msg:
				default:
				}
			},
		})

		done := make(chan error, 1)
		go func() { done <- client.Run(ctx) }()

		select {
		case msg := <-got:
			require.Equal(t, "usd", msg.Currency)
			require.Len(t, msg.Quotes, len(usecases.DefaultMockRoster))
		case <-ctx.Done():
			t.Fatal("no markets message received")
		}

		cancel()
		require.ErrorIs(t, <-done, context.Canceled)
	})
}
