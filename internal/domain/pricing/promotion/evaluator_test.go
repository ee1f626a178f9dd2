package promotion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"negoce/internal/core/id"
	"negoce/internal/core/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func activePromotion(name string, typ Type) *Promotion {
	return &Promotion{
		ID:        id.New(),
		Name:      name,
		Type:      typ,
		StartDate: date(2026, 1, 1),
		EndDate:   date(2026, 12, 31),
		IsActive:  true,
	}
}

func moneyPtr(v float64) *types.Money {
	m := types.NewMoney(v)
	return &m
}

func i64(v int64) *int64 { return &v }

func baseInput(at time.Time) EvalInput {
	return EvalInput{
		ProductID: id.New(),
		At:        at,
		Quantity:  types.NewQuantityFromInt(10),
		Amount:    types.NewMoney(10000),
	}
}

func TestWithinPeriod(t *testing.T) {
	p := activePromotion("janvier", TypePercentage)
	p.StartDate = date(2026, 1, 1)
	p.EndDate = date(2026, 1, 31)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before start", date(2025, 12, 31), false},
		{"at start", date(2026, 1, 1), true},
		{"mid period", date(2026, 1, 15), true},
		{"last second of end date", time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC), true},
		{"midnight after end date", date(2026, 2, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.WithinPeriod(tt.at))
		})
	}
}

func TestWithinPeriod_NonUTCEndDate(t *testing.T) {
	wat := time.FixedZone("WAT", 3600)

	p := activePromotion("fin janvier", TypePercentage)
	p.StartDate = date(2026, 1, 1)
	p.EndDate = time.Date(2026, 1, 31, 18, 0, 0, 0, wat)

	// The calendar day is the end date's own, not the UTC day.
	assert.True(t, p.WithinPeriod(time.Date(2026, 1, 31, 23, 59, 59, 0, wat)))
	assert.False(t, p.WithinPeriod(time.Date(2026, 2, 1, 0, 0, 30, 0, wat)))
}

func TestEligible(t *testing.T) {
	at := date(2026, 6, 15)

	t.Run("inactive never applies", func(t *testing.T) {
		p := activePromotion("off", TypePercentage)
		p.DiscountPercentage = moneyPtr(10)
		p.IsActive = false

		ok, err := Eligible(p, baseInput(at))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("min quantity threshold", func(t *testing.T) {
		p := activePromotion("gros volume", TypePercentage)
		p.DiscountPercentage = moneyPtr(10)
		p.MinQuantity = types.NewQuantityFromInt(24)

		in := baseInput(at)
		in.Quantity = types.NewQuantityFromInt(23)
		ok, err := Eligible(p, in)
		require.NoError(t, err)
		assert.False(t, ok)

		in.Quantity = types.NewQuantityFromInt(24)
		ok, err = Eligible(p, in)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("min amount threshold", func(t *testing.T) {
		p := activePromotion("gros panier", TypePercentage)
		p.DiscountPercentage = moneyPtr(10)
		p.MinAmount = types.NewMoney(50000)

		ok, err := Eligible(p, baseInput(at))
		require.NoError(t, err)
		assert.False(t, ok)

		in := baseInput(at)
		in.Amount = types.NewMoney(50000)
		ok, err = Eligible(p, in)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("product scope", func(t *testing.T) {
		target := id.New()
		p := activePromotion("castel only", TypePercentage)
		p.DiscountPercentage = moneyPtr(10)
		p.ApplicableProducts = []id.ID{target}

		ok, err := Eligible(p, baseInput(at))
		require.NoError(t, err)
		assert.False(t, ok)

		in := baseInput(at)
		in.ProductID = target
		ok, err = Eligible(p, in)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("category scope", func(t *testing.T) {
		cat := id.New()
		p := activePromotion("bières", TypePercentage)
		p.DiscountPercentage = moneyPtr(10)
		p.ApplicableCategories = []id.ID{cat}

		in := baseInput(at)
		in.CategoryID = &cat
		ok, err := Eligible(p, in)
		require.NoError(t, err)
		assert.True(t, ok)

		in.CategoryID = nil
		ok, err = Eligible(p, in)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("total usage limit", func(t *testing.T) {
		p := activePromotion("limitée", TypePercentage)
		p.DiscountPercentage = moneyPtr(10)
		p.MaxTotalUses = i64(100)

		in := baseInput(at)
		in.Usage = func(id.ID) (UsageCounts, error) {
			return UsageCounts{TotalUses: 100}, nil
		}
		ok, err := Eligible(p, in)
		require.NoError(t, err)
		assert.False(t, ok)

		in.Usage = func(id.ID) (UsageCounts, error) {
			return UsageCounts{TotalUses: 99}, nil
		}
		ok, err = Eligible(p, in)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("per customer usage limit", func(t *testing.T) {
		p := activePromotion("une par client", TypePercentage)
		p.DiscountPercentage = moneyPtr(10)
		p.MaxUsesPerCustomer = i64(1)

		in := baseInput(at)
		in.CustomerID = id.New().String()
		in.Usage = func(id.ID) (UsageCounts, error) {
			return UsageCounts{CustomerUses: 1}, nil
		}
		ok, err := Eligible(p, in)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("condition gates eligibility", func(t *testing.T) {
		p := activePromotion("conditionnelle", TypePercentage)
		p.DiscountPercentage = moneyPtr(10)
		p.Condition = "quantity >= 24.0"

		ok, err := Eligible(p, baseInput(at))
		require.NoError(t, err)
		assert.False(t, ok)

		in := baseInput(at)
		in.Quantity = types.NewQuantityFromInt(24)
		ok, err = Eligible(p, in)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestComputeDiscount(t *testing.T) {
	t.Run("percentage", func(t *testing.T) {
		p := activePromotion("remise 10", TypePercentage)
		p.DiscountPercentage = moneyPtr(10)

		d, err := ComputeDiscount(p, types.NewMoney(13500), types.NewQuantityFromInt(30))
		require.NoError(t, err)
		assert.True(t, d.Equal(types.NewMoney(1350)), "discount = %s", d)
	})

	t.Run("fixed amount", func(t *testing.T) {
		p := activePromotion("moins 500", TypeFixedAmount)
		p.DiscountAmount = moneyPtr(500)

		d, err := ComputeDiscount(p, types.NewMoney(10000), types.NewQuantityFromInt(10))
		require.NoError(t, err)
		assert.True(t, d.Equal(types.NewMoney(500)))
	})

	t.Run("fixed amount capped at gross", func(t *testing.T) {
		p := activePromotion("moins 500", TypeFixedAmount)
		p.DiscountAmount = moneyPtr(500)

		d, err := ComputeDiscount(p, types.NewMoney(300), types.NewQuantityFromInt(1))
		require.NoError(t, err)
		assert.True(t, d.Equal(types.NewMoney(300)))
	})

	t.Run("buy six get one", func(t *testing.T) {
		p := activePromotion("6+1", TypeBuyXGetY)
		p.BuyQuantity = i64(6)
		p.GetQuantity = i64(1)

		// 13 bought: two full groups of six, two free units at the implied
		// unit price of 1000.
		d, err := ComputeDiscount(p, types.NewMoney(13000), types.NewQuantityFromInt(13))
		require.NoError(t, err)
		assert.True(t, d.Equal(types.NewMoney(2000)), "discount = %s", d)
	})

	t.Run("buy x get y below threshold", func(t *testing.T) {
		p := activePromotion("6+1", TypeBuyXGetY)
		p.BuyQuantity = i64(6)
		p.GetQuantity = i64(1)

		d, err := ComputeDiscount(p, types.NewMoney(5000), types.NewQuantityFromInt(5))
		require.NoError(t, err)
		assert.True(t, d.IsZero())
	})

	t.Run("pack special yields zero here", func(t *testing.T) {
		p := activePromotion("pack", TypePackSpecial)

		d, err := ComputeDiscount(p, types.NewMoney(10000), types.NewQuantityFromInt(10))
		require.NoError(t, err)
		assert.True(t, d.IsZero())
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		p := activePromotion("remise", TypePercentage)
		p.DiscountPercentage = moneyPtr(10)

		_, err := ComputeDiscount(p, types.NewMoney(1000), 0)
		require.Error(t, err)
	})
}

func TestBest(t *testing.T) {
	at := date(2026, 6, 15)

	small := activePromotion("petite remise", TypePercentage)
	small.DiscountPercentage = moneyPtr(5)

	big := activePromotion("grande remise", TypePercentage)
	big.DiscountPercentage = moneyPtr(15)

	ineligible := activePromotion("hors période", TypePercentage)
	ineligible.DiscountPercentage = moneyPtr(50)
	ineligible.EndDate = date(2026, 1, 31)
	ineligible.StartDate = date(2026, 1, 1)

	t.Run("largest discount wins, no stacking", func(t *testing.T) {
		applied, err := Best([]Promotion{*small, *big, *ineligible}, baseInput(at))
		require.NoError(t, err)
		require.NotNil(t, applied)
		assert.Equal(t, big.ID, applied.Promotion.ID)
		assert.True(t, applied.Discount.Equal(types.NewMoney(1500)))
	})

	t.Run("nil when nothing applies", func(t *testing.T) {
		applied, err := Best([]Promotion{*ineligible}, baseInput(at))
		require.NoError(t, err)
		assert.Nil(t, applied)
	})

	t.Run("zero discount filtered out", func(t *testing.T) {
		bxgy := activePromotion("6+1", TypeBuyXGetY)
		bxgy.BuyQuantity = i64(6)
		bxgy.GetQuantity = i64(1)

		in := baseInput(at)
		in.Quantity = types.NewQuantityFromInt(5)
		in.Amount = types.NewMoney(5000)

		applied, err := Best([]Promotion{*bxgy}, in)
		require.NoError(t, err)
		assert.Nil(t, applied)
	})
}

func TestPromotionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Promotion)
		wantErr bool
	}{
		{"valid percentage", func(p *Promotion) {}, false},
		{"end before start", func(p *Promotion) { p.EndDate = p.StartDate.AddDate(0, 0, -1) }, true},
		{"missing percentage", func(p *Promotion) { p.DiscountPercentage = nil }, true},
		{"percentage above 100", func(p *Promotion) { p.DiscountPercentage = moneyPtr(150) }, true},
		{"zero max total uses", func(p *Promotion) { p.MaxTotalUses = i64(0) }, true},
		{"bad condition", func(p *Promotion) { p.Condition = "quantity >" }, true},
		{"non boolean condition", func(p *Promotion) { p.Condition = "quantity + 1.0" }, true},
		{"valid condition", func(p *Promotion) { p.Condition = `customer_id != "" && amount > 1000.0` }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := activePromotion("test", TypePercentage)
			p.DiscountPercentage = moneyPtr(10)
			tt.mutate(p)

			err := p.Validate(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
