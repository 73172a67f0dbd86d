package usecases_test

import (
	"errors"
	"sync"
	"testing"

	exerrors "github.com/gaojianshuai/jiaoyisuoapp/internal/domain/errors"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/usecases"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/usecases/mocks"
	"github.com/gaojianshuai/jiaoyisuoapp/internal/outbound/memory"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func setupFavorites(t *testing.T) (*mocks.MockKVStore, *usecases.Favorites) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockKVStore(ctrl)

	return store, usecases.NewFavorites(usecases.FavoritesConfig{Store: store})
}

func TestFavorites_List(t *testing.T) {
	t.Run("returns defaults when nothing is stored", func(t *testing.T) {
		store, favorites := setupFavorites(t)

		store.EXPECT().Get(ctx, usecases.FavoritesKey).Return("", exerrors.ErrKeyNotFound)

		resp, err := favorites.List(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"BTC", "ETH", "SOL"}, resp)
	})

	t.Run("returns the stored list", func(t *testing.T) {
		store, favorites := setupFavorites(t)

		store.EXPECT().Get(ctx, usecases.FavoritesKey).Return(`["DOGE","BTC"]`, nil)

		resp, err := favorites.List(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"DOGE", "BTC"}, resp)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		store, favorites := setupFavorites(t)

		storeErr := errors.New("connection refused")
		store.EXPECT().Get(ctx, usecases.FavoritesKey).Return("", storeErr)

		_, err := favorites.List(ctx)
		require.ErrorIs(t, err, storeErr)
	})

	t.Run("corrupt value is an error", func(t *testing.T) {
		store, favorites := setupFavorites(t)

		store.EXPECT().Get(ctx, usecases.FavoritesKey).Return(`{"not":"a list"}`, nil)

		_, err := favorites.List(ctx)
		require.Error(t, err)
	})

	t.Run("defaults are not shared between calls", func(t *testing.T) {
		store, favorites := setupFavorites(t)

		store.EXPECT().Get(ctx, usecases.FavoritesKey).Return("", exerrors.ErrKeyNotFound).Times(2)

		resp, err := favorites.List(ctx)
		require.NoError(t, err)
		resp[0] = "XXX"

		resp, err = favorites.List(ctx)
		require.NoError(t, err)
		require.Equal(t, "BTC", resp[0])
	})
}

func TestFavorites_Add(t *testing.T) {
	t.Run("appends a new symbol to the defaults", func(t *testing.T) {
		store, favorites := setupFavorites(t)

		store.EXPECT().Get(ctx, usecases.FavoritesKey).Return("", exerrors.ErrKeyNotFound)
		store.EXPECT().Set(ctx, usecases.FavoritesKey, `["BTC","ETH","SOL","DOGE"]`).Return(nil)

		require.NoError(t, favorites.Add(ctx, " doge "))
	})

	t.Run("adding an existing symbol does not write", func(t *testing.T) {
		store, favorites := setupFavorites(t)

		store.EXPECT().Get(ctx, usecases.FavoritesKey).Return(`["BTC","ETH"]`, nil)

		require.NoError(t, favorites.Add(ctx, "ETH"))
	})
}

func TestFavorites_Remove(t *testing.T) {
	t.Run("removes a present symbol", func(t *testing.T) {
		store, favorites := setupFavorites(t)

		store.EXPECT().Get(ctx, usecases.FavoritesKey).Return(`["BTC","ETH","SOL"]`, nil)
		store.EXPECT().Set(ctx, usecases.FavoritesKey, `["BTC","SOL"]`).Return(nil)

		require.NoError(t, favorites.Remove(ctx, "eth"))
	})

	t.Run("removing an absent symbol is a no-op", func(t *testing.T) {
		store, favorites := setupFavorites(t)

		store.EXPECT().Get(ctx, usecases.FavoritesKey).Return(`["BTC"]`, nil)

		require.NoError(t, favorites.Remove(ctx, "XRP"))
	})

	t.Run("removing the last symbol stores an empty list", func(t *testing.T) {
		store, favorites := setupFavorites(t)

		store.EXPECT().Get(ctx, usecases.FavoritesKey).Return(`["BTC"]`, nil)
		store.EXPECT().Set(ctx, usecases.FavoritesKey, `[]`).Return(nil)

		require.NoError(t, favorites.Remove(ctx, "BTC"))
	})
}

func TestFavorites_Toggle(t *testing.T) {
	t.Run("toggles an absent symbol on", func(t *testing.T) {
		store, favorites := setupFavorites(t)

		store.EXPECT().Get(ctx, usecases.FavoritesKey).Return(`["BTC"]`, nil)
		store.EXPECT().Set(ctx, usecases.FavoritesKey, `["BTC","ETH"]`).Return(nil)

		on, err := favorites.Toggle(ctx, "ETH")
		require.NoError(t, err)
		require.True(t, on)
	})

	t.Run("toggles a present symbol off", func(t *testing.T) {
		store, favorites := setupFavorites(t)

		store.EXPECT().Get(ctx, usecases.FavoritesKey).Return(`["BTC","ETH"]`, nil)
		store.EXPECT().Set(ctx, usecases.FavoritesKey, `["ETH"]`).Return(nil)

		on, err := favorites.Toggle(ctx, "btc")
		require.NoError(t, err)
		require.False(t, on)
	})

	t.Run("concurrent toggles of one symbol cancel out", func(t *testing.T) {
		favorites := usecases.NewFavorites(usecases.FavoritesConfig{Store: memory.New()})

		results := make(chan bool, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				on, err := favorites.Toggle(ctx, "DOGE")
				require.NoError(t, err)
				results <- on
			}()
		}
		wg.Wait()
		close(results)

		var on int
		for r := range results {
			if r {
				on++
			}
		}
		require.Equal(t, 1, on)

		list, err := favorites.List(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"BTC", "ETH", "SOL"}, list)
	})
}
