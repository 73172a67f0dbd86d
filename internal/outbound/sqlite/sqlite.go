package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/entities"
	exerrors "github.com/gaojianshuai/jiaoyisuoapp/internal/domain/errors"
	_ "github.com/glebarez/go-sqlite"
	"github.com/shopspring/decimal"
)

// Store keeps key/value metadata and C2C order records in a single SQLite
// file.
type Store struct {
	db      *sql.DB
	timeNow func() time.Time
}

type Config struct {
	Path    string
	TimeNow func() time.Time
}

func NewStore(cfg Config) (*Store, error) {
	if cfg.TimeNow == nil {
		cfg.TimeNow = time.Now
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// One writer at a time.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create metadata table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS c2c_orders (
			id TEXT PRIMARY KEY,
			coin TEXT NOT NULL,
			amount TEXT NOT NULL,
			price TEXT NOT NULL,
			total TEXT NOT NULL,
			receive_amount TEXT NOT NULL,
			merchant_id TEXT NOT NULL,
			merchant_name TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create c2c_orders table: %w", err)
	}

	return &Store{db: db, timeNow: cfg.TimeNow}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", exerrors.ErrKeyNotFound, key)
	}
	return value, err
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		key, value, s.timeNow().Unix(),
	)
	return err
}

func (s *Store) SaveOrderRecord(ctx context.Context, r entities.OrderRecord) error {
	sum := r.Summary

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO c2c_orders (id, coin, amount, price, total, receive_amount, merchant_id, merchant_name, payment_method, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status=excluded.status, updated_at=excluded.updated_at`,
		sum.ID, sum.Coin, sum.Amount.String(), sum.Price.String(), sum.Total.String(), sum.ReceiveAmount.String(),
		sum.MerchantID, r.MerchantName, r.PaymentMethod, string(r.Status),
		sum.CreatedAt.UnixMilli(), r.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert order %s: %w", sum.ID, err)
	}

	return nil
}

func (s *Store) ListOrderRecords(ctx context.Context) ([]entities.OrderRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, coin, amount, price, total, receive_amount, merchant_id, merchant_name, payment_method, status, created_at, updated_at
		FROM c2c_orders ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var records []entities.OrderRecord
	for rows.Next() {
		var (
			r                                   entities.OrderRecord
			amount, price, total, receive, stat string
			createdAt, updatedAt                int64
		)

		if err := rows.Scan(&r.Summary.ID, &r.Summary.Coin, &amount, &price, &total, &receive,
			&r.Summary.MerchantID, &r.MerchantName, &r.PaymentMethod, &stat, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		fields := []struct {
			raw string
			dst *decimal.Decimal
		}{
			{amount, &r.Summary.Amount},
			{price, &r.Summary.Price},
			{total, &r.Summary.Total},
			{receive, &r.Summary.ReceiveAmount},
		}
		for _, f := range fields {
			if *f.dst, err = decimal.NewFromString(f.raw); err != nil {
				return nil, fmt.Errorf("order %s has invalid decimal %q: %w", r.Summary.ID, f.raw, err)
			}
		}

		r.Status = entities.OrderStatus(stat)
		r.Summary.CreatedAt = time.UnixMilli(createdAt).UTC()
		r.UpdatedAt = time.UnixMilli(updatedAt).UTC()

		records = append(records, r)
	}

	return records, rows.Err()
}
