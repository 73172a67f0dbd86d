// Package stream pushes market refreshes and order countdowns to WebSocket
// subscribers.
package stream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/c2c"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/entities"
	exerrors "github.com/gaojianshuai/jiaoyisuoapp/internal/domain/errors"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/inbound/server"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	DefaultMarketInterval = 60 * time.Second
	DefaultOrderInterval  = c2c.TickInterval

	writeTimeout = 10 * time.Second
)

type MarketUseCases interface {
	GetMarketData(ctx context.Context, currency string) []entities.PriceQuote
}

type OrderUseCases interface {
	Snapshot(id string) (c2c.Snapshot, error)
}

type MarketsMessage struct {
	Type     string          `json:"type"` // always "markets"
	Currency string          `json:"currency"`
	Quotes   []*server.Quote `json:"quotes"`
	SentAt   time.Time       `json:"sent_at"`
}

type OrderMessage struct {
	Type  string        `json:"type"` // always "order"
	Order *server.Order `json:"order"`
}

type Server struct {
	market         MarketUseCases
	orders         OrderUseCases
	marketInterval time.Duration
	orderInterval  time.Duration
	timeNow        func() time.Time
	upgrader       websocket.Upgrader
}

type Config struct {
	MarketUseCases MarketUseCases
	OrderUseCases  OrderUseCases
	MarketInterval time.Duration
	OrderInterval  time.Duration
	TimeNow        func() time.Time
}

func NewServer(cfg Config) *Server {
	if cfg.MarketInterval == 0 {
		cfg.MarketInterval = DefaultMarketInterval
	}
	if cfg.OrderInterval == 0 {
		cfg.OrderInterval = DefaultOrderInterval
	}
	if cfg.TimeNow == nil {
		cfg.TimeNow = time.Now
	}

	return &Server{
		market:         cfg.MarketUseCases,
		orders:         cfg.OrderUseCases,
		marketInterval: cfg.MarketInterval,
		orderInterval:  cfg.OrderInterval,
		timeNow:        cfg.TimeNow,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/markets", s.handleMarkets)
	mux.HandleFunc("GET /ws/orders/{id}", s.handleOrder)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// Run serves the stream endpoints on address and blocks until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", address).Msg("starting stream server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down stream server: %w", err)
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

func (s *Server) handleMarkets(w http.ResponseWriter, r *http.Request) {
	currency := r.URL.Query().Get("currency")
	if currency == "" {
		currency = entities.DefaultCurrency
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("failed to upgrade markets subscriber")
		return
	}
	defer conn.Close()

	ctx := watchClose(r.Context(), conn)

	push := func() error {
		return write(conn, MarketsMessage{
			Type:     "markets",
			Currency: currency,
			Quotes:   server.QuotesFrom(s.market.GetMarketData(ctx, currency)),
			SentAt:   s.timeNow(),
		})
	}

	ticker := time.NewTicker(s.marketInterval)
	defer ticker.Stop()

	for {
		if err := push(); err != nil {
			log.Debug().Err(err).Msg("markets subscriber gone")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, err := s.orders.Snapshot(id); err != nil {
		if errors.Is(err, exerrors.ErrOrderNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("order_id", id).Msg("failed to upgrade order subscriber")
		return
	}
	defer conn.Close()

	ctx := watchClose(r.Context(), conn)

	ticker := time.NewTicker(s.orderInterval)
	defer ticker.Stop()

	for {
		snap, err := s.orders.Snapshot(id)
		if err != nil {
			log.Error().Err(err).Str("order_id", id).Msg("order vanished while streaming")
			return
		}

		if err := write(conn, OrderMessage{Type: "order", Order: server.OrderFromSnapshot(snap)}); err != nil {
			log.Debug().Err(err).Str("order_id", id).Msg("order subscriber gone")
			return
		}

		if snap.Status.Terminal() {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, snap.Status.String())
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func write(conn *websocket.Conn, v interface{}) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

// watchClose drains the connection so control frames are handled and
// returns a context that is cancelled once the peer goes away.
func watchClose(parent context.Context, conn *websocket.Conn) context.Context {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	return ctx
}
