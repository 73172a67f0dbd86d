package c2c

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/entities"
	exerrors "github.com/gaojianshuai/jiaoyisuoapp/internal/domain/errors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	DefaultPaymentWindow = 900 * time.Second
	DefaultConfirmDelay  = 3 * time.Second
	TickInterval         = time.Second

	IDPrefix = "C2C"

	receivePlaces = 4
)

// NewID builds an order id from the namespace prefix and the creation time.
func NewID(t time.Time) string {
	return fmt.Sprintf("%s%d", IDPrefix, t.UnixMilli())
}

// Snapshot is a consistent view of an order at one instant.
type Snapshot struct {
	Summary   entities.OrderSummary
	Status    entities.OrderStatus
	Remaining time.Duration
}

// FormatRemaining renders the remaining payment window as MM:SS.
func (s Snapshot) FormatRemaining() string {
	return formatSeconds(int(s.Remaining / time.Second))
}

type Config struct {
	ID         string // generated from TimeNow when empty
	Coin       string
	Amount     decimal.Decimal
	Price      decimal.Decimal
	MerchantID string

	PaymentWindow time.Duration
	// ConfirmDelay stands in for the merchant confirming receipt; the order
	// completes on the first tick at or after this delay once paid.
	ConfirmDelay time.Duration
	TimeNow      func() time.Time

	// OnStatusChange is called after every transition, outside the state
	// lock but before the next transition can start. It must not call Tick
	// or MarkPaid on the same order.
	OnStatusChange func(Snapshot)
}

// Order is a single C2C purchase. Transitions are driven by Tick and
// MarkPaid, either directly or by the ticker started with Start.
//
//	pending --MarkPaid--> paid --confirm delay--> completed
//	pending --window expired--> cancelled
type Order struct {
	summary      entities.OrderSummary
	confirmTicks int
	onChange     func(Snapshot)

	// transition is held from a state change until its callback returns so
	// observers see transitions in order.
	transition sync.Mutex

	mu          sync.Mutex
	status      entities.OrderStatus
	remaining   int // seconds
	confirmLeft int // ticks
	cancel      context.CancelFunc
	done        chan struct{}
}

func New(cfg Config) (*Order, error) {
	if !cfg.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", exerrors.ErrInvalidOrder)
	}
	if !cfg.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", exerrors.ErrInvalidOrder)
	}
	if cfg.TimeNow == nil {
		cfg.TimeNow = time.Now
	}
	if cfg.PaymentWindow <= 0 {
		cfg.PaymentWindow = DefaultPaymentWindow
	}
	if cfg.ConfirmDelay <= 0 {
		cfg.ConfirmDelay = DefaultConfirmDelay
	}

	now := cfg.TimeNow()
	if cfg.ID == "" {
		cfg.ID = NewID(now)
	}

	return &Order{
		summary: entities.OrderSummary{
			ID:            cfg.ID,
			Coin:          cfg.Coin,
			Amount:        cfg.Amount,
			Price:         cfg.Price,
			Total:         cfg.Amount.Mul(cfg.Price),
			ReceiveAmount: cfg.Amount.DivRound(cfg.Price, receivePlaces),
			MerchantID:    cfg.MerchantID,
			CreatedAt:     now,
		},
		confirmTicks: int(math.Ceil(cfg.ConfirmDelay.Seconds())),
		onChange:     cfg.OnStatusChange,
		status:       entities.OrderStatusPending,
		remaining:    int(math.Ceil(cfg.PaymentWindow.Seconds())),
	}, nil
}

// Summary returns the immutable part of the order.
func (o *Order) Summary() entities.OrderSummary {
	return o.summary
}

func (o *Order) State() entities.OrderStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// Remaining returns what is left of the payment window. It stops moving
// once the order leaves pending.
func (o *Order) Remaining() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return time.Duration(o.remaining) * time.Second
}

func (o *Order) FormatRemaining() string {
	return o.Snapshot().FormatRemaining()
}

func (o *Order) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Order) snapshotLocked() Snapshot {
	return Snapshot{
		Summary:   o.summary,
		Status:    o.status,
		Remaining: time.Duration(o.remaining) * time.Second,
	}
}

// Tick advances the order by one second and returns the resulting status.
// Terminal orders are left untouched.
func (o *Order) Tick() entities.OrderStatus {
	o.transition.Lock()
	defer o.transition.Unlock()

	o.mu.Lock()

	changed := false

	switch o.status {
	case entities.OrderStatusPending:
		if o.remaining > 0 {
			o.remaining--
		}
		if o.remaining == 0 {
			o.status = entities.OrderStatusCancelled
			changed = true
		}
	case entities.OrderStatusPaid:
		if o.confirmLeft > 0 {
			o.confirmLeft--
		}
		if o.confirmLeft == 0 {
			o.status = entities.OrderStatusCompleted
			changed = true
		}
	}

	snap := o.snapshotLocked()
	o.mu.Unlock()

	if changed {
		o.notify(snap)
	}

	return snap.Status
}

// MarkPaid records that the buyer has sent the payment. Only a pending order
// can be marked paid.
func (o *Order) MarkPaid() error {
	o.transition.Lock()
	defer o.transition.Unlock()

	o.mu.Lock()

	if o.status != entities.OrderStatusPending {
		status := o.status
		o.mu.Unlock()
		return fmt.Errorf("%w: order %s is %s", exerrors.ErrInvalidOrderState, o.summary.ID, status)
	}

	o.status = entities.OrderStatusPaid
	o.confirmLeft = o.confirmTicks
	snap := o.snapshotLocked()
	o.mu.Unlock()

	o.notify(snap)

	return nil
}

func (o *Order) notify(snap Snapshot) {
	log.Debug().Str("order_id", snap.Summary.ID).Stringer("status", snap.Status).Msg("c2c order status changed")

	if o.onChange != nil {
		o.onChange(snap)
	}
}

// Start drives the order with a one second ticker until it reaches a
// terminal state, ctx is cancelled or Stop is called. Calling Start on a
// running order does nothing.
func (o *Order) Start(ctx context.Context) {
	ticker := time.NewTicker(TickInterval)
	if !o.start(ctx, ticker.C, ticker.Stop) {
		ticker.Stop()
	}
}

func (o *Order) start(ctx context.Context, ticks <-chan time.Time, release func()) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel != nil {
		return false
	}

	ctx, o.cancel = context.WithCancel(ctx)
	o.done = make(chan struct{})
	done := o.done

	go func() {
		defer close(done)
		defer release()
		o.Run(ctx, ticks)
	}()

	return true
}

// Run applies a Tick for every value received on ticks and returns when the
// order is terminal or ctx is done.
func (o *Order) Run(ctx context.Context, ticks <-chan time.Time) {
	if o.State().Terminal() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			if o.Tick().Terminal() {
				return
			}
		}
	}
}

// Stop halts the ticker started by Start and waits for it to exit.
func (o *Order) Stop() {
	o.mu.Lock()
	cancel, done := o.cancel, o.done
	o.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

func formatSeconds(total int) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
