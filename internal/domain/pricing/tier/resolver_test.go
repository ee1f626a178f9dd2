package tier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"negoce/internal/core/id"
	"negoce/internal/core/types"
	"negoce/internal/domain/catalog/product"
)

func qty(v int64) types.Quantity { return types.NewQuantityFromInt(v) }

func qtyPtr(v int64) *types.Quantity {
	q := qty(v)
	return &q
}

func makeTier(productID id.ID, name string, min int64, max *int64, price float64) PriceTier {
	t := New(productID, name, qty(min), types.NewMoney(price))
	if max != nil {
		t.MaxQuantity = qtyPtr(*max)
	}
	return *t
}

func int64Ptr(v int64) *int64 { return &v }

func TestResolve(t *testing.T) {
	p := product.New("Castel 65cl", id.New(), types.NewMoney(500))

	tiers := []PriceTier{
		makeTier(p.ID, "demi-gros", 12, int64Ptr(47), 450),
		makeTier(p.ID, "gros", 48, nil, 400),
	}

	tests := []struct {
		name      string
		quantity  int64
		wantPrice float64
		wantTier  string
	}{
		{"below all tiers falls back to base price", 5, 500, DefaultTierName},
		{"lower bound inclusive", 12, 450, "demi-gros"},
		{"upper bound inclusive", 47, 450, "demi-gros"},
		{"unbounded tier", 48, 400, "gros"},
		{"deep into unbounded tier", 500, 400, "gros"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(p, tiers, qty(tt.quantity))
			require.NoError(t, err)
			assert.True(t, res.UnitPrice.Equal(types.NewMoney(tt.wantPrice)),
				"price = %s, want %v", res.UnitPrice, tt.wantPrice)
			assert.Equal(t, tt.wantTier, res.TierName)
		})
	}
}

func TestResolve_OverlappingRanges(t *testing.T) {
	p := product.New("Castel 65cl", id.New(), types.NewMoney(500))

	// Both tiers contain quantity 4; the one with the larger MinQuantity
	// wins regardless of declaration order.
	tiers := []PriceTier{
		makeTier(p.ID, "promo", 1, int64Ptr(5), 100),
		makeTier(p.ID, "gros", 3, nil, 80),
	}

	res, err := Resolve(p, tiers, qty(4))
	require.NoError(t, err)
	assert.Equal(t, "gros", res.TierName)
	assert.True(t, res.UnitPrice.Equal(types.NewMoney(80)))

	// Same outcome with the slice reversed.
	res, err = Resolve(p, []PriceTier{tiers[1], tiers[0]}, qty(4))
	require.NoError(t, err)
	assert.Equal(t, "gros", res.TierName)
}

func TestResolve_TieBreaksByID(t *testing.T) {
	p := product.New("Castel 65cl", id.New(), types.NewMoney(500))

	a := makeTier(p.ID, "a", 10, nil, 450)
	b := makeTier(p.ID, "b", 10, nil, 440)
	a.ID = id.MustParse("00000000-0000-0000-0000-000000000001")
	b.ID = id.MustParse("00000000-0000-0000-0000-000000000002")

	res1, err := Resolve(p, []PriceTier{a, b}, qty(15))
	require.NoError(t, err)
	res2, err := Resolve(p, []PriceTier{b, a}, qty(15))
	require.NoError(t, err)

	// Equal MinQuantity resolves deterministically to the lowest id.
	require.NotNil(t, res1.TierID)
	require.NotNil(t, res2.TierID)
	assert.Equal(t, a.ID, *res1.TierID)
	assert.Equal(t, a.ID, *res2.TierID)
}

func TestResolve_InvalidQuantity(t *testing.T) {
	p := product.New("Castel 65cl", id.New(), types.NewMoney(500))

	_, err := Resolve(p, nil, qty(0))
	require.Error(t, err)

	_, err = Resolve(p, nil, qty(-3))
	require.Error(t, err)
}

func TestResolve_NoTiersUsesBasePrice(t *testing.T) {
	p := product.New("Castel 65cl", id.New(), types.NewMoney(500))

	res, err := Resolve(p, nil, qty(100))
	require.NoError(t, err)
	assert.True(t, res.UnitPrice.Equal(p.BaseUnitPrice))
	assert.Equal(t, DefaultTierName, res.TierName)
	assert.Nil(t, res.TierID)
}

func TestTierValidate(t *testing.T) {
	p := product.New("Castel 65cl", id.New(), types.NewMoney(500))

	tests := []struct {
		name    string
		mutate  func(*PriceTier)
		wantErr bool
	}{
		{"valid", func(t *PriceTier) {}, false},
		{"empty name", func(t *PriceTier) { t.TierName = "" }, true},
		{"min below one", func(t *PriceTier) { t.MinQuantity = 0 }, true},
		{"max below min", func(t *PriceTier) { t.MaxQuantity = qtyPtr(3) }, true},
		{"negative price", func(t *PriceTier) { t.UnitPrice = types.NewMoney(-1) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(p.ID, "demi-gros", qty(12), types.NewMoney(450))
			tt.mutate(tr)
			err := tr.Validate(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
