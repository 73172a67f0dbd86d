package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gaojianshuai/jiaoyisuoapp/internal/domain/usecases"
	"github.com/stretchr/testify/require"
)

func TestLoadMerchants(t *testing.T) {
	t.Run("shipped roster matches the built-in one", func(t *testing.T) {
		roster, err := loadMerchants("../../data/merchants.yaml")
		require.NoError(t, err)

		builtin := usecases.DefaultMerchants()
		require.Len(t, roster, len(builtin))

		for i, m := range roster {
			require.Equal(t, builtin[i].ID, m.ID)
			require.Equal(t, builtin[i].Name, m.Name)
			require.True(t, builtin[i].Price.Equal(m.Price))
			require.True(t, builtin[i].MinLimit.Equal(m.MinLimit))
			require.True(t, builtin[i].MaxLimit.Equal(m.MaxLimit))
			require.Equal(t, builtin[i].PaymentMethods, m.PaymentMethods)
			require.Equal(t, builtin[i].Online, m.Online)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadMerchants(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("invalid price", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "merchants.yaml")
		require.NoError(t, os.WriteFile(path, []byte("merchants:\n  - id: \"1\"\n    price: cheap\n"), 0o600))

		_, err := loadMerchants(path)
		require.ErrorContains(t, err, "invalid price")
	})
}
