package stock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateSymbol(t *testing.T) {
	t.Run("accepts plain and suffixed symbols", func(t *testing.T) {
		for _, symbol := range []string{"KO", "BRK-B", "RY.TO", "XEI.TO", "SHOP.V", "A", "ABCDEFGHIJ"} {
			require.NoError(t, ValidateSymbol(symbol), symbol)
		}
	})

	t.Run("rejects malformed symbols", func(t *testing.T) {
		for _, symbol := range []string{"", "b@d", "lower", "TOOLONGSYMBOL", "KO.", "KO.LONG", "K O"} {
			require.ErrorIs(t, ValidateSymbol(symbol), ErrInvalidSymbol, symbol)
		}
	})
}

func TestListFilterNormalize(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		f := ListFilter{}
		require.NoError(t, f.Normalize())
		require.Equal(t, "symbol", f.Sort)
		require.Equal(t, "asc", f.Order)
		require.Equal(t, 1, f.Page)
		require.Equal(t, 20, f.Limit)
	})

	t.Run("rejects unknown sort and order", func(t *testing.T) {
		f := ListFilter{Sort: "price"}
		require.ErrorIs(t, f.Normalize(), ErrInvalidSort)

		f = ListFilter{Order: "sideways"}
		require.ErrorIs(t, f.Normalize(), ErrInvalidOrder)
	})
}
