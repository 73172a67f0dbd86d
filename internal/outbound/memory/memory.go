// Package memory is a process-local store. Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/entities"
	exerrors "github.com/gaojianshuai/jiaoyisuoapp/internal/domain/errors"
)

type Store struct {
	mu      sync.RWMutex
	values  map[string]string
	records map[string]entities.OrderRecord
	order   []string // record ids in first-saved order
}

func New() *Store {
	return &Store{
		values:  make(map[string]string),
		records: make(map[string]entities.OrderRecord),
	}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", exerrors.ErrKeyNotFound, key)
	}

	return v, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value

	return nil
}

// SaveOrderRecord inserts or replaces the record for the order id.
func (s *Store) SaveOrderRecord(_ context.Context, record entities.OrderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := record.Summary.ID
	if _, ok := s.records[id]; !ok {
		s.order = append(s.order, id)
	}
	s.records[id] = record

	return nil
}

func (s *Store) ListOrderRecords(_ context.Context) ([]entities.OrderRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]entities.OrderRecord, 0, len(s.order))
	for _, id := range s.order {
		records = append(records, s.records[id])
	}

	return records, nil
}
