package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"negoce/internal/core/apperror"
	"negoce/internal/core/id"
	"negoce/internal/core/types"
	"negoce/internal/domain/catalog/product"
	"negoce/internal/domain/pricing/conversion"
)

// passthroughTx runs the function directly; the fakes below have no real
// transactions to manage.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeLedgerRepo struct {
	mu        sync.Mutex
	stock     map[id.ID]types.Quantity
	movements []StockMovement
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{stock: make(map[id.ID]types.Quantity)}
}

// ApplyMovement mirrors the atomic stock increment of the real repo: the
// stock change and the movement row land together or not at all.
func (f *fakeLedgerRepo) ApplyMovement(ctx context.Context, m *StockMovement) (types.Quantity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stock[m.ProductID] += m.Quantity
	f.movements = append(f.movements, *m)
	return f.stock[m.ProductID], nil
}

func (f *fakeLedgerRepo) GetStockForUpdate(ctx context.Context, productID id.ID) (types.Quantity, error) {
	return f.stockOf(productID), nil
}

func (f *fakeLedgerRepo) SumMovements(ctx context.Context, productID id.ID) (types.Quantity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum types.Quantity
	for _, m := range f.movements {
		if m.ProductID == productID {
			sum += m.Quantity
		}
	}
	return sum, nil
}

func (f *fakeLedgerRepo) List(ctx context.Context, filter MovementFilter) ([]StockMovement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []StockMovement
	for _, m := range f.movements {
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.MovementType != nil && m.Type != *filter.MovementType {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeLedgerRepo) stockOf(productID id.ID) types.Quantity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stock[productID]
}

func (f *fakeLedgerRepo) movementCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.movements)
}

type fakeProductRepo struct {
	products map[id.ID]*product.Product
	ledger   *fakeLedgerRepo
}

func (f *fakeProductRepo) Create(ctx context.Context, p *product.Product) error { return nil }
func (f *fakeProductRepo) Update(ctx context.Context, p *product.Product) error { return nil }
func (f *fakeProductRepo) Delete(ctx context.Context, productID id.ID) error    { return nil }

func (f *fakeProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	// Mirror the real schema: stock lives on the product row.
	cp := *p
	cp.StockQuantity = f.ledger.stockOf(productID)
	return &cp, nil
}

func (f *fakeProductRepo) List(ctx context.Context, filter product.ListFilter) ([]product.Product, error) {
	return nil, nil
}

type fakeConversionRepo struct {
	rows map[id.ID][]conversion.UnitConversion
}

func (f *fakeConversionRepo) Create(ctx context.Context, c *conversion.UnitConversion) error {
	return nil
}
func (f *fakeConversionRepo) Update(ctx context.Context, c *conversion.UnitConversion) error {
	return nil
}
func (f *fakeConversionRepo) Delete(ctx context.Context, conversionID id.ID) error { return nil }
func (f *fakeConversionRepo) GetByID(ctx context.Context, conversionID id.ID) (*conversion.UnitConversion, error) {
	return nil, apperror.NewNotFound("conversion", conversionID)
}
func (f *fakeConversionRepo) ListByProduct(ctx context.Context, productID id.ID) ([]conversion.UnitConversion, error) {
	return f.rows[productID], nil
}

type fixture struct {
	svc    *Service
	repo   *fakeLedgerRepo
	p      *product.Product
	casier id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ledgerRepo := newFakeLedgerRepo()
	p := product.New("Castel 65cl", id.New(), types.NewMoney(500))
	casier := id.New()

	products := &fakeProductRepo{
		products: map[id.ID]*product.Product{p.ID: p},
		ledger:   ledgerRepo,
	}
	conversions := conversion.NewService(&fakeConversionRepo{
		rows: map[id.ID][]conversion.UnitConversion{
			p.ID: {*conversion.New(p.ID, casier, types.NewQuantityFromInt(12))},
		},
	})

	svc := NewService(ledgerRepo, conversions, products, passthroughTx{})
	return &fixture{svc: svc, repo: ledgerRepo, p: p, casier: casier}
}

func TestApply_RejectsZeroDelta(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Apply(context.Background(), ApplyCommand{
		ProductID:     f.p.ID,
		Type:          TypeAdjustment,
		BaseQuantity:  0,
		UnitID:        f.p.BaseUnitID,
		ReferenceType: ReferenceInventory,
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidQuantity, appErr.Code)
	assert.Empty(t, f.repo.movements)
}

func TestRecordPurchase_ConvertsToBase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.svc.RecordPurchase(ctx, PurchaseInput{
		ProductID: f.p.ID,
		UnitID:    f.casier,
		Quantity:  types.NewQuantityFromInt(3),
	})
	require.NoError(t, err)

	assert.Equal(t, TypePurchase, m.Type)
	assert.Equal(t, ReferencePurchase, m.ReferenceType)
	assert.Equal(t, types.NewQuantityFromInt(36), m.Quantity)
	assert.Equal(t, f.casier, m.UnitID)
	assert.Equal(t, types.NewQuantityFromInt(36), f.repo.stock[f.p.ID])
}

func TestRecordSale_NegativeDelta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordPurchase(ctx, PurchaseInput{
		ProductID: f.p.ID,
		UnitID:    f.casier,
		Quantity:  types.NewQuantityFromInt(5),
	})
	require.NoError(t, err)

	m, err := f.svc.RecordSale(ctx, SaleInput{
		ProductID: f.p.ID,
		UnitID:    f.p.BaseUnitID,
		Quantity:  types.NewQuantityFromInt(10),
	})
	require.NoError(t, err)

	assert.Equal(t, TypeSale, m.Type)
	assert.Equal(t, types.NewQuantityFromInt(-10), m.Quantity)
	assert.Equal(t, types.NewQuantityFromInt(50), f.repo.stock[f.p.ID])
}

func TestRecordSale_EnforceStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordPurchase(ctx, PurchaseInput{
		ProductID: f.p.ID,
		UnitID:    f.p.BaseUnitID,
		Quantity:  types.NewQuantityFromInt(10),
	})
	require.NoError(t, err)

	// Without enforcement stock may go negative (back-orders).
	_, err = f.svc.RecordSale(ctx, SaleInput{
		ProductID: f.p.ID,
		UnitID:    f.p.BaseUnitID,
		Quantity:  types.NewQuantityFromInt(15),
	})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(-5), f.repo.stock[f.p.ID])

	// With enforcement the shortfall is rejected before any write.
	before := len(f.repo.movements)
	_, err = f.svc.RecordSale(ctx, SaleInput{
		ProductID:    f.p.ID,
		UnitID:       f.p.BaseUnitID,
		Quantity:     types.NewQuantityFromInt(1),
		EnforceStock: true,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Len(t, f.repo.movements, before)
}

func TestRecordOutflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordPurchase(ctx, PurchaseInput{
		ProductID: f.p.ID,
		UnitID:    f.p.BaseUnitID,
		Quantity:  types.NewQuantityFromInt(20),
	})
	require.NoError(t, err)

	t.Run("reason becomes reference type", func(t *testing.T) {
		m, err := f.svc.RecordOutflow(ctx, OutflowInput{
			ProductID: f.p.ID,
			UnitID:    f.p.BaseUnitID,
			Quantity:  types.NewQuantityFromInt(2),
			Reason:    ReasonBreakage,
		})
		require.NoError(t, err)
		assert.Equal(t, TypeAdjustment, m.Type)
		assert.Equal(t, ReasonBreakage, m.ReferenceType)
		assert.Equal(t, types.NewQuantityFromInt(-2), m.Quantity)
	})

	t.Run("unknown reason rejected", func(t *testing.T) {
		_, err := f.svc.RecordOutflow(ctx, OutflowInput{
			ProductID: f.p.ID,
			UnitID:    f.p.BaseUnitID,
			Quantity:  types.NewQuantityFromInt(1),
			Reason:    "perte mystérieuse",
		})
		require.Error(t, err)
	})
}

func TestAdjust(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordPurchase(ctx, PurchaseInput{
		ProductID: f.p.ID,
		UnitID:    f.p.BaseUnitID,
		Quantity:  types.NewQuantityFromInt(36),
	})
	require.NoError(t, err)

	t.Run("matching count writes nothing", func(t *testing.T) {
		before := len(f.repo.movements)
		res, err := f.svc.Adjust(ctx, AdjustInput{
			ProductID:       f.p.ID,
			UnitID:          f.casier,
			CountedQuantity: types.NewQuantityFromInt(3),
		})
		require.NoError(t, err)
		assert.False(t, res.Adjusted)
		assert.True(t, res.Difference.IsZero())
		assert.Len(t, f.repo.movements, before)
	})

	t.Run("shortfall records a negative adjustment", func(t *testing.T) {
		res, err := f.svc.Adjust(ctx, AdjustInput{
			ProductID:       f.p.ID,
			UnitID:          f.casier,
			CountedQuantity: types.NewQuantityFromInt(2),
		})
		require.NoError(t, err)
		assert.True(t, res.Adjusted)
		assert.Equal(t, types.NewQuantityFromInt(-12), res.Difference)
		require.NotNil(t, res.Movement)
		assert.Equal(t, ReferenceInventory, res.Movement.ReferenceType)
		assert.Equal(t, types.NewQuantityFromInt(24), res.NewStock)
	})

	t.Run("zero count is legitimate", func(t *testing.T) {
		res, err := f.svc.Adjust(ctx, AdjustInput{
			ProductID:       f.p.ID,
			UnitID:          f.p.BaseUnitID,
			CountedQuantity: 0,
		})
		require.NoError(t, err)
		assert.True(t, res.Adjusted)
		assert.True(t, f.repo.stock[f.p.ID].IsZero())
	})

	t.Run("negative count rejected", func(t *testing.T) {
		_, err := f.svc.Adjust(ctx, AdjustInput{
			ProductID:       f.p.ID,
			UnitID:          f.p.BaseUnitID,
			CountedQuantity: types.NewQuantityFromInt(-1),
		})
		require.Error(t, err)
	})
}

func TestStockInUnit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordPurchase(ctx, PurchaseInput{
		ProductID: f.p.ID,
		UnitID:    f.p.BaseUnitID,
		Quantity:  types.NewQuantityFromInt(30),
	})
	require.NoError(t, err)

	got, err := f.svc.StockInUnit(ctx, f.p.ID, f.casier)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(2), got)

	base, err := f.svc.StockInUnit(ctx, f.p.ID, f.p.BaseUnitID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(30), base)
}

func TestVerifyConsistency(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordPurchase(ctx, PurchaseInput{
		ProductID: f.p.ID,
		UnitID:    f.p.BaseUnitID,
		Quantity:  types.NewQuantityFromInt(10),
	})
	require.NoError(t, err)

	ok, err := f.svc.VerifyConsistency(ctx, f.p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Corrupt the stock value outside the ledger.
	f.repo.stock[f.p.ID] += types.NewQuantityFromInt(1)

	ok, err = f.svc.VerifyConsistency(ctx, f.p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

// Interleaved purchases, sales, outflows and inventory counts from several
// goroutines must leave stock equal to the signed sum of the ledger.
func TestVerifyConsistency_ConcurrentMovements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordPurchase(ctx, PurchaseInput{
		ProductID: f.p.ID,
		UnitID:    f.p.BaseUnitID,
		Quantity:  types.NewQuantityFromInt(1000),
	})
	require.NoError(t, err)

	const workers = 4
	const iterations = 24

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				switch (w + i) % 4 {
				case 0:
					_, err := f.svc.RecordPurchase(ctx, PurchaseInput{
						ProductID: f.p.ID,
						UnitID:    f.casier,
						Quantity:  types.NewQuantityFromInt(1),
					})
					assert.NoError(t, err)
				case 1:
					_, err := f.svc.RecordSale(ctx, SaleInput{
						ProductID: f.p.ID,
						UnitID:    f.p.BaseUnitID,
						Quantity:  types.NewQuantityFromInt(6),
					})
					assert.NoError(t, err)
				case 2:
					_, err := f.svc.RecordOutflow(ctx, OutflowInput{
						ProductID: f.p.ID,
						UnitID:    f.p.BaseUnitID,
						Quantity:  types.NewQuantityFromInt(2),
						Reason:    ReasonBreakage,
					})
					assert.NoError(t, err)
				case 3:
					_, err := f.svc.Adjust(ctx, AdjustInput{
						ProductID:       f.p.ID,
						UnitID:          f.casier,
						CountedQuantity: types.NewQuantityFromInt(80),
					})
					assert.NoError(t, err)
				}
			}
		}(w)
	}
	wg.Wait()

	ok, err := f.svc.VerifyConsistency(ctx, f.p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	sum, err := f.repo.SumMovements(ctx, f.p.ID)
	require.NoError(t, err)
	assert.Equal(t, f.repo.stockOf(f.p.ID), sum)

	// The purchase, sale and outflow cases each append exactly one row.
	assert.GreaterOrEqual(t, f.repo.movementCount(), 1+workers*iterations*3/4)
}
