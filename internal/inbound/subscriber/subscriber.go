// Package subscriber follows the markets stream of a running server.
package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/inbound/stream"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type WebSocket interface {
	Close() error
	ReadMessage() (messageType int, p []byte, err error)
}

// Dialer opens the websocket. Swapped out in tests.
type Dialer func(ctx context.Context, url string) (WebSocket, error)

// Handler receives every markets message.
type Handler func(ctx context.Context, msg stream.MarketsMessage)

type Config struct {
	URL            string // e.g. ws://localhost:9001/ws/markets?currency=usd
	Handler        Handler
	Dialer         Dialer
	ReconnectDelay time.Duration
}

type Client struct {
	url            string
	handler        Handler
	dial           Dialer
	reconnectDelay time.Duration
	ws             WebSocket
}

func New(cfg Config) *Client {
	if cfg.Dialer == nil {
		cfg.Dialer = dialGorilla
	}
	if cfg.ReconnectDelay == 0 {
		cfg.ReconnectDelay = 2 * time.Second
	}

	return &Client{
		url:            cfg.URL,
		handler:        cfg.Handler,
		dial:           cfg.Dialer,
		reconnectDelay: cfg.ReconnectDelay,
	}
}

func dialGorilla(ctx context.Context, url string) (WebSocket, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w (status %d)", err, resp.StatusCode)
		}
		return nil, err
	}

	return conn, nil
}

// Run listens to the markets stream and reconnects whenever the server drops
// the connection, until ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context canceled, stopping subscriber")
			return ctx.Err()
		default:
		}

		ws, err := c.dial(ctx, c.url)
		if err != nil {
			log.Warn().Err(err).Str("url", c.url).Dur("retry_in", c.reconnectDelay).Msg("Failed to connect to markets stream")
			if !sleep(ctx, c.reconnectDelay) {
				return ctx.Err()
			}
			continue
		}
		c.ws = ws

		if err := c.listen(ctx); err != nil {
			log.Err(err).Msg("Error while listening to markets stream")
		}

		if err := c.ws.Close(); err != nil {
			log.Err(err).Msg("Error when closing WebSocket")
		}
	}
}

// listen hands every "markets" message to the handler until a read fails or
// the context is cancelled.
func (c *Client) listen(ctx context.Context) error {
	ws := c.ws
	stop := context.AfterFunc(ctx, func() { _ = ws.Close() })
	defer stop()

	for {
		messageType, p, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		if messageType != websocket.TextMessage {
			continue
		}

		var msg stream.MarketsMessage
		if err := json.Unmarshal(p, &msg); err != nil {
			log.Err(err).Str("msg", string(p)).Msg("Failed to unmarshal msg to JSON")
			continue
		}

		if msg.Type != "markets" {
			continue
		}

		c.handler(ctx, msg)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

var _ WebSocket = (*websocket.Conn)(nil)
