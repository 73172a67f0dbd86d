package usecases

import (
	"fmt"
	"sync"
	"time"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/entities"
	exerrors "github.com/gaojianshuai/jiaoyisuoapp/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	MinGridCount = 2
	MaxGridCount = 200
)

type CreateStrategyRequest struct {
	Name       string
	Pair       string
	Type       entities.StrategyType
	GridCount  int
	PriceMin   decimal.Decimal
	PriceMax   decimal.Decimal
	Investment decimal.Decimal
}

// Strategies keeps the user's automated strategies in memory. Nothing is
// executed; strategies only carry their parameters and status.
type Strategies struct {
	timeNow func() time.Time
	newID   func() string

	mu         sync.Mutex
	strategies []entities.Strategy
}

type StrategiesConfig struct {
	TimeNow func() time.Time
	NewID   func() string
	// Seed is the initial roster. Entries without an id get one from NewID
	// and a zero CreatedAt is set to TimeNow.
	Seed []entities.Strategy
}

// DefaultStrategies returns the demo roster: a running BTC grid and a
// paused ETH DCA plan.
func DefaultStrategies() []entities.Strategy {
	return []entities.Strategy{
		{
			Name:          "BTC grid",
			Pair:          "BTC/USDT",
			Type:          entities.StrategyTypeGrid,
			Status:        entities.StrategyStatusRunning,
			Profit:        decimal.RequireFromString("12.34"),
			ProfitPercent: decimal.RequireFromString("2.45"),
			GridCount:     20,
			PriceMin:      decimal.NewFromInt(95000),
			PriceMax:      decimal.NewFromInt(110000),
			Investment:    decimal.NewFromInt(500),
		},
		{
			Name:          "ETH DCA",
			Pair:          "ETH/USDT",
			Type:          entities.StrategyTypeDCA,
			Status:        entities.StrategyStatusPaused,
			Profit:        decimal.RequireFromString("-5.67"),
			ProfitPercent: decimal.RequireFromString("-1.23"),
			Investment:    decimal.NewFromInt(460),
		},
	}
}

func NewStrategies(cfg StrategiesConfig) *Strategies {
	if cfg.TimeNow == nil {
		cfg.TimeNow = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}

	strategies := make([]entities.Strategy, 0, len(cfg.Seed))
	for _, st := range cfg.Seed {
		if st.ID == "" {
			st.ID = cfg.NewID()
		}
		if st.CreatedAt.IsZero() {
			st.CreatedAt = cfg.TimeNow()
		}
		strategies = append(strategies, st)
	}

	return &Strategies{timeNow: cfg.TimeNow, newID: cfg.NewID, strategies: strategies}
}

func (s *Strategies) Create(req CreateStrategyRequest) (entities.Strategy, error) {
	if err := validateStrategy(req); err != nil {
		return entities.Strategy{}, err
	}

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("%s %s", req.Pair, req.Type)
	}

	strategy := entities.Strategy{
		ID:            s.newID(),
		Name:          name,
		Pair:          req.Pair,
		Type:          req.Type,
		Status:        entities.StrategyStatusRunning,
		Profit:        decimal.Zero,
		ProfitPercent: decimal.Zero,
		GridCount:     req.GridCount,
		PriceMin:      req.PriceMin,
		PriceMax:      req.PriceMax,
		Investment:    req.Investment,
		CreatedAt:     s.timeNow(),
	}

	s.mu.Lock()
	s.strategies = append(s.strategies, strategy)
	s.mu.Unlock()

	log.Info().Str("id", strategy.ID).Str("pair", strategy.Pair).Str("type", string(strategy.Type)).Msg("strategy created")

	return strategy, nil
}

func validateStrategy(req CreateStrategyRequest) error {
	switch req.Type {
	case entities.StrategyTypeGrid:
		if req.GridCount < MinGridCount || req.GridCount > MaxGridCount {
			return fmt.Errorf("%w: grid count must be between %d and %d", exerrors.ErrInvalidStrategy, MinGridCount, MaxGridCount)
		}
		if !req.PriceMin.LessThan(req.PriceMax) {
			return fmt.Errorf("%w: price min must be below price max", exerrors.ErrInvalidStrategy)
		}
	case entities.StrategyTypeDCA:
	default:
		return fmt.Errorf("%w: unknown type %q", exerrors.ErrInvalidStrategy, req.Type)
	}

	if req.Pair == "" {
		return fmt.Errorf("%w: pair is required", exerrors.ErrInvalidStrategy)
	}
	if !req.Investment.IsPositive() {
		return fmt.Errorf("%w: investment must be positive", exerrors.ErrInvalidStrategy)
	}

	return nil
}

// Toggle pauses a running strategy and starts any other one.
func (s *Strategies) Toggle(id string) (entities.Strategy, error) {
	return s.update(id, func(st *entities.Strategy) {
		if st.Status == entities.StrategyStatusRunning {
			st.Status = entities.StrategyStatusPaused
		} else {
			st.Status = entities.StrategyStatusRunning
		}
	})
}

// Stop stops a strategy. A stopped strategy can be restarted with Toggle.
func (s *Strategies) Stop(id string) (entities.Strategy, error) {
	return s.update(id, func(st *entities.Strategy) {
		st.Status = entities.StrategyStatusStopped
	})
}

func (s *Strategies) update(id string, apply func(*entities.Strategy)) (entities.Strategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return entities.Strategy{}, fmt.Errorf("%w: %s", exerrors.ErrStrategyNotFound, id)
	}

	apply(&s.strategies[i])
	log.Info().Str("id", id).Str("status", string(s.strategies[i].Status)).Msg("strategy status changed")

	return s.strategies[i], nil
}

func (s *Strategies) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", exerrors.ErrStrategyNotFound, id)
	}

	s.strategies = append(s.strategies[:i], s.strategies[i+1:]...)

	return nil
}

// List returns the strategies in creation order.
func (s *Strategies) List() []entities.Strategy {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]entities.Strategy(nil), s.strategies...)
}

func (s *Strategies) indexLocked(id string) int {
	for i, st := range s.strategies {
		if st.ID == id {
			return i
		}
	}
	return -1
}
