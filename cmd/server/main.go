package main

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/entities"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/usecases"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/inbound/server"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/inbound/stream"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/outbound/coingecko"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/outbound/memory"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/outbound/redis"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/outbound/sqlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"gopkg.in/yaml.v3"
)

const (
	maxConnectionIdle     = 10 * time.Minute
	maxConnectionAge      = 5 * time.Minute
	maxConnectionAgeGrace = 5 * time.Minute
	defaultTime           = 5 * time.Minute
)

type cliArgs struct {
	Host            string        `arg:"--host,env:HOST" default:"0.0.0.0"`
	LogLevel        string        `arg:"--log-level,env:LOG_LEVEL" default:"debug"`
	Port            int           `arg:"env:PORT" default:"9000"`
	StreamPort      int           `arg:"--stream-port,env:STREAM_PORT" default:"9001"`
	UpstreamURL     string        `arg:"--upstream-url,env:UPSTREAM_URL" default:"https://api.coingecko.com/api/v3"`
	UpstreamTimeout time.Duration `arg:"--upstream-timeout,env:UPSTREAM_TIMEOUT" default:"5s"`
	Store           string        `arg:"env:STORE" default:"memory" help:"memory, redis or sqlite"`
	RedisHost       string        `arg:"--redis-host,env:REDIS_HOST" default:"localhost"`
	RedisPort       string        `arg:"--redis-port,env:REDIS_PORT" default:"6379"`
	SQLitePath      string        `arg:"--sqlite-path,env:SQLITE_PATH" default:"data/jiaoyisuo.db"`
	MerchantsFile   string        `arg:"--merchants-file,env:MERCHANTS_FILE" default:"data/merchants.yaml"`
	Seed            int64         `arg:"env:MOCK_SEED" help:"seed for mock quotes, 0 seeds from the clock"`
	ConfirmDelay    time.Duration `arg:"--confirm-delay,env:CONFIRM_DELAY" default:"3s"`
}

type store interface {
	usecases.KVStore
	usecases.RecordStore
}

func main() {
	var args cliArgs
	arg.MustParse(&args)

	logLevel, err := zerolog.ParseLevel(args.LogLevel)
	if err != nil {
		log.Warn().Msg("Failed to parse log level, defaulting to debug")
		logLevel = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := newStore(ctx, args)
	if err != nil {
		log.Fatal().Err(err).Str("store", args.Store).Msg("Failed to open store")
	}
	defer closeStore()

	roster, err := loadMerchants(args.MerchantsFile)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load merchants file, using built-in roster")
	}

	mockerCfg := usecases.QuoteMockerConfig{}
	viewsCfg := usecases.MarketViewsConfig{TimeNow: time.Now}
	if args.Seed != 0 {
		mockerCfg.Source = rand.NewSource(args.Seed)
		viewsCfg.Source = rand.NewSource(args.Seed)
	}

	market := usecases.NewMarket(usecases.MarketConfig{
		Upstream: coingecko.NewClient(coingecko.Config{BaseURL: args.UpstreamURL, Timeout: args.UpstreamTimeout}),
		Mocker:   usecases.NewQuoteMocker(mockerCfg),
		TimeNow:  time.Now,
		Timeout:  args.UpstreamTimeout,
	})

	viewsCfg.Quotes = market

	merchants := usecases.NewMerchants(usecases.MerchantsConfig{Roster: roster})

	desk := usecases.NewDesk(usecases.DeskConfig{
		Merchants:    merchants,
		Records:      st,
		TimeNow:      time.Now,
		ConfirmDelay: args.ConfirmDelay,
		RunOrders:    true,
	})
	defer desk.Close()

	s := server.NewServer(server.Config{
		MarketUseCases:     market,
		MarketViewUseCases: usecases.NewMarketViews(viewsCfg),
		MerchantUseCases:   merchants,
		DeskUseCases:       desk,
		FavoritesUseCases:  usecases.NewFavorites(usecases.FavoritesConfig{Store: st}),
		StrategyUseCases: usecases.NewStrategies(usecases.StrategiesConfig{
			TimeNow: time.Now,
			Seed:    usecases.DefaultStrategies(),
		}),
	})

	gs, err := newGRPCServer(ctx, args.Host, args.Port)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start gRPC server")
	}

	server.RegisterExchangeServer(gs.s, s)

	ss := stream.NewServer(stream.Config{
		MarketUseCases: market,
		OrderUseCases:  desk,
	})

	streamErr := make(chan error, 1)
	go func() {
		streamErr <- ss.Run(ctx, fmt.Sprintf("%s:%d", args.Host, args.StreamPort))
	}()

	if err := gs.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("Failed to run gRPC server")
	}

	if err := <-streamErr; err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("Stream server stopped")
	}

	log.Info().Msg("shut down")
}

func newStore(ctx context.Context, args cliArgs) (store, func(), error) {
	switch args.Store {
	case "memory":
		return memory.New(), func() {}, nil
	case "redis":
		rc := redis.NewClient(redis.Config{Host: args.RedisHost, Port: args.RedisPort})
		if err := rc.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to reach redis: %w", err)
		}
		return rc, func() { _ = rc.Close() }, nil
	case "sqlite":
		sl, err := sqlite.NewStore(sqlite.Config{Path: args.SQLitePath})
		if err != nil {
			return nil, nil, err
		}
		return sl, func() { _ = sl.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", args.Store)
	}
}

type merchant struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	Avatar         string   `yaml:"avatar"`
	Rating         float64  `yaml:"rating"`
	Completed      int      `yaml:"completed"`
	Price          string   `yaml:"price"`
	MinLimit       string   `yaml:"min_limit"`
	MaxLimit       string   `yaml:"max_limit"`
	PaymentMethods []string `yaml:"payment_methods"`
	Online         bool     `yaml:"online"`
	ResponseTime   string   `yaml:"response_time"`
}

type merchantsFile struct {
	Merchants []merchant `yaml:"merchants"`
}

func loadMerchants(path string) ([]entities.Merchant, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var cfg merchantsFile
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode yaml: %w", err)
	}

	roster := make([]entities.Merchant, 0, len(cfg.Merchants))
	for _, m := range cfg.Merchants {
		price, err := decimal.NewFromString(m.Price)
		if err != nil {
			return nil, fmt.Errorf("merchant %s: invalid price: %w", m.ID, err)
		}
		minLimit, err := decimal.NewFromString(m.MinLimit)
		if err != nil {
			return nil, fmt.Errorf("merchant %s: invalid min limit: %w", m.ID, err)
		}
		maxLimit, err := decimal.NewFromString(m.MaxLimit)
		if err != nil {
			return nil, fmt.Errorf("merchant %s: invalid max limit: %w", m.ID, err)
		}

		roster = append(roster, entities.Merchant{
			ID:             m.ID,
			Name:           m.Name,
			Avatar:         m.Avatar,
			Rating:         m.Rating,
			Completed:      m.Completed,
			Price:          price,
			MinLimit:       minLimit,
			MaxLimit:       maxLimit,
			PaymentMethods: m.PaymentMethods,
			Online:         m.Online,
			ResponseTime:   m.ResponseTime,
		})
	}

	return roster, nil
}

// gRPCServer type wraps the base grpc.Server type and simplifies serving
// over TCP connections. The Run method provides context cancellation handling
// not provided by the base type.
type gRPCServer struct {
	s       *grpc.Server
	lis     net.Listener
	hs      *health.Server
	address string
}

// newGRPCServer returns a new gRPC server.
func newGRPCServer(ctx context.Context, host string, port int, opts ...grpc.ServerOption) (*gRPCServer, error) {
	address := fmt.Sprintf("%s:%d", host, port)

	var lc net.ListenConfig
	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w while starting tcp listener", err)
	}
	log.Debug().Str("address", address).Msg("tcp listener started")

	c := defaultGRPCConfig()
	c.serverOptions = append(c.serverOptions, opts...)

	s := grpc.NewServer(c.serverOptions...)
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus(server.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &gRPCServer{s: s, lis: lis, address: address, hs: healthServer}, nil
}

type grpcConfig struct {
	serverOptions []grpc.ServerOption
}

func defaultGRPCConfig() grpcConfig {
	return grpcConfig{
		serverOptions: []grpc.ServerOption{
			grpc.KeepaliveParams(keepalive.ServerParameters{
				MaxConnectionIdle:     maxConnectionIdle,
				MaxConnectionAge:      maxConnectionAge,
				MaxConnectionAgeGrace: maxConnectionAgeGrace,
				Time:                  defaultTime,
			}),
		},
	}
}

// Run starts the gRPC server and blocks until the context is cancelled.
func (s *gRPCServer) Run(ctx context.Context) error {
	log.Info().Str("address", s.address).Msg("starting gRPC server")

	done := make(chan struct{})

	go func() {
		select {
		case <-ctx.Done():
			s.hs.Shutdown()
			s.s.GracefulStop()
			<-done

		case <-done:
		}
	}()

	err := s.s.Serve(s.lis)
	done <- struct{}{}

	if err != nil {
		return err
	}

	return ctx.Err()
}
