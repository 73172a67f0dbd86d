package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/entities"
	exerrors "github.com/gaojianshuai/jiaoyisuoapp/internal/domain/errors"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix       = "jiaoyisuo:"
	orderRecordsKey = keyPrefix + "c2c:orders"
)

type Client struct {
	rc *redis.Client
}

type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewClient(cfg Config) *Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Client{
		rc: client,
	}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rc.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rc.Close()
}

// Get retrieves a plain value stored under key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	v, err := c.rc.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%w: %s", exerrors.ErrKeyNotFound, key)
		}
		return "", err
	}

	return v, nil
}

// Set stores value under key without expiry.
func (c *Client) Set(ctx context.Context, key, value string) error {
	return c.rc.Set(ctx, keyPrefix+key, value, 0).Err()
}

// SaveOrderRecord stores the record in the order hash, replacing any previous
// record for the same order.
func (c *Client) SaveOrderRecord(ctx context.Context, record entities.OrderRecord) error {
	// Serialize OrderRecord struct to JSON
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return c.rc.HSet(ctx, orderRecordsKey, record.Summary.ID, data).Err()
}

// ListOrderRecords returns every stored record, oldest order first.
func (c *Client) ListOrderRecords(ctx context.Context) ([]entities.OrderRecord, error) {
	all, err := c.rc.HGetAll(ctx, orderRecordsKey).Result()
	if err != nil {
		return nil, err
	}

	records := make([]entities.OrderRecord, 0, len(all))
	for id, v := range all {
		var record entities.OrderRecord
		if err := json.Unmarshal([]byte(v), &record); err != nil {
			return nil, fmt.Errorf("failed to decode order record %s: %w", id, err)
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Summary.CreatedAt.Before(records[j].Summary.CreatedAt)
	})

	return records, nil
}
