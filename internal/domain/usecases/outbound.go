package usecases

import (
	"context"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/entities"
)

// Upstream is the public market-data API the gateway shields callers from.
type Upstream interface {
	FetchMarkets(ctx context.Context, currency string) ([]entities.PriceQuote, error)
	FetchCoin(ctx context.Context, id, currency string) (entities.PriceQuote, error)
}

// KVStore is a string key/value store. Get returns exerrors.ErrKeyNotFound
// when the key is absent.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// RecordStore keeps the latest record of every C2C order, keyed by order id.
type RecordStore interface {
	SaveOrderRecord(ctx context.Context, record entities.OrderRecord) error
	ListOrderRecords(ctx context.Context) ([]entities.OrderRecord, error)
}
