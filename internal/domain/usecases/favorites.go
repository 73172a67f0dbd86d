package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	exerrors "github.com/gaojianshuai/jiaoyisuoapp/internal/domain/errors"
)

// FavoritesKey is the store key the favorites list lives under.
const FavoritesKey = "favorite_coins"

// DefaultFavorites is returned while nothing has been stored yet.
var DefaultFavorites = []string{"BTC", "ETH", "SOL"}

// Favorites is the user's list of favorite symbols, kept as a single JSON
// array in a key/value store.
type Favorites struct {
	store KVStore
	mu    sync.Mutex // serialises read-modify-write cycles
}

type FavoritesConfig struct {
	Store KVStore
}

func NewFavorites(cfg FavoritesConfig) *Favorites {
	return &Favorites{store: cfg.Store}
}

func (f *Favorites) List(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list(ctx)
}

// Add appends symbol unless it is already present.
func (f *Favorites) Add(ctx context.Context, symbol string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	favorites, err := f.list(ctx)
	if err != nil {
		return err
	}

	return f.addLocked(ctx, favorites, normaliseSymbol(symbol))
}

// Remove drops symbol. Removing a symbol that is not present does nothing.
func (f *Favorites) Remove(ctx context.Context, symbol string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	favorites, err := f.list(ctx)
	if err != nil {
		return err
	}

	return f.removeLocked(ctx, favorites, normaliseSymbol(symbol))
}

// Toggle adds symbol when absent and removes it otherwise. It reports
// whether symbol is a favorite afterwards.
func (f *Favorites) Toggle(ctx context.Context, symbol string) (bool, error) {
	symbol = normaliseSymbol(symbol)

	f.mu.Lock()
	defer f.mu.Unlock()

	favorites, err := f.list(ctx)
	if err != nil {
		return false, err
	}

	if contains(favorites, symbol) {
		return false, f.removeLocked(ctx, favorites, symbol)
	}

	return true, f.addLocked(ctx, favorites, symbol)
}

func (f *Favorites) addLocked(ctx context.Context, favorites []string, symbol string) error {
	if contains(favorites, symbol) {
		return nil
	}

	return f.save(ctx, append(favorites, symbol))
}

func (f *Favorites) removeLocked(ctx context.Context, favorites []string, symbol string) error {
	if !contains(favorites, symbol) {
		return nil
	}

	filtered := make([]string, 0, len(favorites)-1)
	for _, s := range favorites {
		if s != symbol {
			filtered = append(filtered, s)
		}
	}

	return f.save(ctx, filtered)
}

func (f *Favorites) list(ctx context.Context) ([]string, error) {
	v, err := f.store.Get(ctx, FavoritesKey)
	if err != nil {
		if errors.Is(err, exerrors.ErrKeyNotFound) {
			return append([]string(nil), DefaultFavorites...), nil
		}
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}

	var favorites []string
	if err := json.Unmarshal([]byte(v), &favorites); err != nil {
		return nil, fmt.Errorf("failed to decode favorites: %w", err)
	}

	return favorites, nil
}

func (f *Favorites) save(ctx context.Context, favorites []string) error {
	b, err := json.Marshal(favorites)
	if err != nil {
		return err
	}

	if err := f.store.Set(ctx, FavoritesKey, string(b)); err != nil {
		return fmt.Errorf("failed to write favorites: %w", err)
	}

	return nil
}

func normaliseSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
