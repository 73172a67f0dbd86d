package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type StrategyType string

const (
	StrategyTypeGrid StrategyType = "grid"
	StrategyTypeDCA  StrategyType = "dca"
)

type StrategyStatus string

const (
	StrategyStatusRunning StrategyStatus = "running"
	StrategyStatusPaused  StrategyStatus = "paused"
	StrategyStatusStopped StrategyStatus = "stopped"
)

type Strategy struct {
	ID            string
	Name          string
	Pair          string // e.g. "BTC/USDT"
	Type          StrategyType
	Status        StrategyStatus
	Profit        decimal.Decimal
	ProfitPercent decimal.Decimal
	GridCount     int
	PriceMin      decimal.Decimal
	PriceMax      decimal.Decimal
	Investment    decimal.Decimal
	CreatedAt     time.Time
}
