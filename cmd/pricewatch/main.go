package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/entities"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/usecases"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/inbound/server"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/inbound/stream"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/inbound/subscriber"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/outbound/coingecko"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type cliArgs struct {
	UpstreamURL       string        `arg:"--upstream-url,env:UPSTREAM_URL" default:"https://api.coingecko.com/api/v3"`
	HTTPClientTimeout time.Duration `arg:"env:HTTP_CLIENT_TIMEOUT" default:"5s"`
	Interval          time.Duration `arg:"env:REFRESH_INTERVAL" default:"60s"`
	LogLevel          string        `arg:"--log-level,env:LOG_LEVEL" default:"debug"`
	Once              bool          `arg:"--once" help:"print one refresh and exit"`
	StreamURL         string        `arg:"--stream-url,env:STREAM_URL" help:"follow a server markets stream instead of polling, e.g. ws://localhost:9001/ws/markets"`
	Watchlist         string        `arg:"env:WATCHLIST_FILE" default:"data/watchlist.yaml"`
}

func main() {
	var args cliArgs
	arg.MustParse(&args)

	logLevel, err := zerolog.ParseLevel(args.LogLevel)
	if err != nil {
		log.Warn().Msg("failed to parse log level, defaulting to debug")
		logLevel = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wl, err := getWatchlist(args.Watchlist)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read watchlist")
	}

	if args.StreamURL != "" {
		sub := subscriber.New(subscriber.Config{
			URL: args.StreamURL,
			Handler: func(_ context.Context, msg stream.MarketsMessage) {
				report(wl, quotesFromWire(msg.Quotes))
			},
		})

		if err := sub.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatal().Err(err).Msg("failed to follow markets stream")
		}
		return
	}

	u := usecases.NewMarket(usecases.MarketConfig{
		Upstream: coingecko.NewClient(coingecko.Config{BaseURL: args.UpstreamURL, Timeout: args.HTTPClientTimeout}),
		TimeNow:  time.Now,
		Timeout:  args.HTTPClientTimeout,
	})

	if err := run(ctx, u, wl, args.Interval, args.Once); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("failed to watch prices")
	}
}

type marketData interface {
	GetMarketData(ctx context.Context, currency string) []entities.PriceQuote
}

// run logs the watched coins immediately and then on every interval.
func run(ctx context.Context, m marketData, wl watchlist, interval time.Duration, once bool) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		report(wl, m.GetMarketData(ctx, wl.Currency))

		if once {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func report(wl watchlist, quotes []entities.PriceQuote) int {
	reported := 0

	for _, q := range selectQuotes(wl, quotes) {
		log.Info().
			Str("id", q.ID).
			Str("symbol", q.Symbol).
			Stringer("price", q.CurrentPrice).
			Str("change_24h", q.PriceChangePercentage24h.StringFixed(2)+"%").
			Msg("price")
		reported++
	}

	return reported
}

// selectQuotes keeps the watched coins in watchlist order. An empty
// watchlist selects everything.
func selectQuotes(wl watchlist, quotes []entities.PriceQuote) []entities.PriceQuote {
	if len(wl.Coins) == 0 {
		return quotes
	}

	selected := make([]entities.PriceQuote, 0, len(wl.Coins))
	set := entities.QuoteSet{Quotes: quotes}

	for _, id := range wl.Coins {
		if q, ok := set.Find(id); ok {
			selected = append(selected, q)
		} else {
			log.Debug().Str("id", id).Msg("watched coin not in market list")
		}
	}

	return selected
}

// quotesFromWire turns streamed quotes back into entities. Unparseable
// numbers are left at zero.
func quotesFromWire(wire []*server.Quote) []entities.PriceQuote {
	quotes := make([]entities.PriceQuote, 0, len(wire))
	for _, q := range wire {
		price, _ := decimal.NewFromString(q.CurrentPrice)
		change, _ := decimal.NewFromString(q.PriceChangePercentage24h)

		quotes = append(quotes, entities.PriceQuote{
			ID:                       q.ID,
			Symbol:                   q.Symbol,
			Name:                     q.Name,
			CurrentPrice:             price,
			PriceChangePercentage24h: change,
		})
	}
	return quotes
}

func getWatchlist(path string) (watchlist, error) {
	file, err := os.Open(path)
	if err != nil {
		return watchlist{}, fmt.Errorf("failed to open %s", path)
	}
	defer file.Close()

	var wl watchlist
	decoder := yaml.NewDecoder(file)
	err = decoder.Decode(&wl)
	if err != nil {
		return watchlist{}, fmt.Errorf("failed to decode yaml")
	}

	if wl.Currency == "" {
		wl.Currency = entities.DefaultCurrency
	}

	return wl, nil
}

type watchlist struct {
	Currency string   `yaml:"currency"`
	Coins    []string `yaml:"coins"`
}
