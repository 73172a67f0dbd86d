package usecases

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/c2c"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/entities"
	exerrors "github.com/gaojianshuai/jiaoyisuoapp/internal/domain/errors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type PlaceOrderRequest struct {
	MerchantID    string
	Coin          string
	Amount        decimal.Decimal // fiat
	PaymentMethod string          // defaults to the merchant's first method
}

// Desk places C2C orders against the merchant roster, drives their
// lifecycle and records every transition.
type Desk struct {
	merchants     *Merchants
	records       RecordStore
	timeNow       func() time.Time
	paymentWindow time.Duration
	confirmDelay  time.Duration
	runOrders     bool

	mu     sync.Mutex
	orders map[string]*deskOrder
	closed bool
}

type deskOrder struct {
	order         *c2c.Order
	merchantName  string
	paymentMethod string
}

type DeskConfig struct {
	Merchants     *Merchants
	Records       RecordStore
	TimeNow       func() time.Time
	PaymentWindow time.Duration
	ConfirmDelay  time.Duration
	// RunOrders starts a one second ticker for every placed order. Leave it
	// off to drive orders by hand through Order(id).Tick.
	RunOrders bool
}

func NewDesk(cfg DeskConfig) *Desk {
	if cfg.Merchants == nil {
		cfg.Merchants = NewMerchants(MerchantsConfig{})
	}
	if cfg.TimeNow == nil {
		cfg.TimeNow = time.Now
	}

	return &Desk{
		merchants:     cfg.Merchants,
		records:       cfg.Records,
		timeNow:       cfg.TimeNow,
		paymentWindow: cfg.PaymentWindow,
		confirmDelay:  cfg.ConfirmDelay,
		runOrders:     cfg.RunOrders,
		orders:        make(map[string]*deskOrder),
	}
}

func (d *Desk) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (c2c.Snapshot, error) {
	merchant, err := d.merchants.Get(req.MerchantID)
	if err != nil {
		return c2c.Snapshot{}, err
	}

	if !merchant.WithinLimits(req.Amount) {
		return c2c.Snapshot{}, fmt.Errorf("%w: amount must be between %s and %s %s",
			exerrors.ErrAmountOutOfLimits, merchant.MinLimit, merchant.MaxLimit, req.Coin)
	}

	method := req.PaymentMethod
	switch {
	case method == "" && len(merchant.PaymentMethods) > 0:
		method = merchant.PaymentMethods[0]
	case method != "" && !merchant.Accepts(method):
		return c2c.Snapshot{}, fmt.Errorf("%w: %s does not accept %s", exerrors.ErrPaymentMethodNotAccepted, merchant.Name, method)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return c2c.Snapshot{}, fmt.Errorf("%w: desk is closed", exerrors.ErrInvalidOrderState)
	}

	now := d.timeNow()
	id := c2c.NewID(now)
	for d.orders[id] != nil {
		now = now.Add(time.Millisecond)
		id = c2c.NewID(now)
	}

	entry := &deskOrder{merchantName: merchant.Name, paymentMethod: method}

	order, err := c2c.New(c2c.Config{
		ID:             id,
		Coin:           req.Coin,
		Amount:         req.Amount,
		Price:          merchant.Price,
		MerchantID:     merchant.ID,
		PaymentWindow:  d.paymentWindow,
		ConfirmDelay:   d.confirmDelay,
		TimeNow:        d.timeNow,
		OnStatusChange: func(snap c2c.Snapshot) { d.persist(context.Background(), entry, snap) },
	})
	if err != nil {
		return c2c.Snapshot{}, err
	}
	entry.order = order

	snap := order.Snapshot()
	if err := d.save(ctx, entry, snap); err != nil {
		return c2c.Snapshot{}, err
	}

	d.orders[id] = entry

	if d.runOrders {
		order.Start(context.Background())
	}

	log.Info().
		Str("order_id", id).
		Str("merchant", merchant.Name).
		Str("coin", req.Coin).
		Stringer("amount", req.Amount).
		Stringer("receive", snap.Summary.ReceiveAmount).
		Msg("c2c order placed")

	return snap, nil
}

func (d *Desk) MarkPaid(ctx context.Context, id string) (c2c.Snapshot, error) {
	order, err := d.Order(id)
	if err != nil {
		return c2c.Snapshot{}, err
	}

	if err := order.MarkPaid(); err != nil {
		return order.Snapshot(), err
	}

	return order.Snapshot(), nil
}

// Order returns the live order with the given id.
func (d *Desk) Order(id string) (*c2c.Order, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", exerrors.ErrOrderNotFound, id)
	}

	return entry.order, nil
}

func (d *Desk) Snapshot(id string) (c2c.Snapshot, error) {
	order, err := d.Order(id)
	if err != nil {
		return c2c.Snapshot{}, err
	}

	return order.Snapshot(), nil
}

// Records lists persisted orders, newest first. An empty status lists all.
func (d *Desk) Records(ctx context.Context, status entities.OrderStatus) ([]entities.OrderRecord, error) {
	all, err := d.records.ListOrderRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list order records: %w", err)
	}

	records := make([]entities.OrderRecord, 0, len(all))
	for _, r := range all {
		if status == "" || r.Status == status {
			records = append(records, r)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Summary.CreatedAt.After(records[j].Summary.CreatedAt)
	})

	return records, nil
}

// Close stops every order ticker. Orders stay readable afterwards.
func (d *Desk) Close() {
	d.mu.Lock()
	d.closed = true
	orders := make([]*c2c.Order, 0, len(d.orders))
	for _, entry := range d.orders {
		orders = append(orders, entry.order)
	}
	d.mu.Unlock()

	for _, order := range orders {
		order.Stop()
	}
}

func (d *Desk) persist(ctx context.Context, entry *deskOrder, snap c2c.Snapshot) {
	if err := d.save(ctx, entry, snap); err != nil {
		log.Error().Err(err).Str("order_id", snap.Summary.ID).Msg("failed to persist c2c order transition")
	}
}

func (d *Desk) save(ctx context.Context, entry *deskOrder, snap c2c.Snapshot) error {
	if d.records == nil {
		return nil
	}

	return d.records.SaveOrderRecord(ctx, entities.OrderRecord{
		Summary:       snap.Summary,
		Status:        snap.Status,
		MerchantName:  entry.merchantName,
		PaymentMethod: entry.paymentMethod,
		UpdatedAt:     d.timeNow(),
	})
}
