package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/memory"
)

func seedBalance(itemID, locationID string, qty int64) *entity.StockBalance {
	b := &entity.StockBalance{ItemID: itemID, LocationID: locationID, Quantity: decimal.NewFromInt(qty)}
	b.RefreshDerived()
	return b
}

// ─── Transacciones ─────────────────────────────────────────────────────────────

func TestRun_ErrorDescartaCambios(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Run(ctx, func(_ repository.StockMovementRepository, balanceRepo repository.StockBalanceRepository, _ repository.ProductRepository) error {
		_, err := balanceRepo.GetOrCreateForUpdate(ctx, seedBalance("p1", "l1", 5))
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	b, err := store.Balances().Get(ctx, "p1", "l1")
	require.NoError(t, err)
	assert.Nil(t, b, "el saldo creado en la tx fallida no debe existir")
}

func TestRun_CommitPublicaCambios(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	err := store.Run(ctx, func(_ repository.StockMovementRepository, balanceRepo repository.StockBalanceRepository, _ repository.ProductRepository) error {
		b, err := balanceRepo.GetOrCreateForUpdate(ctx, seedBalance("p1", "l1", 5))
		if err != nil {
			return err
		}
		b.Quantity = decimal.NewFromInt(7)
		return balanceRepo.Update(ctx, b)
	})
	require.NoError(t, err)

	b, err := store.Balances().Get(ctx, "p1", "l1")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.True(t, b.Quantity.Equal(decimal.NewFromInt(7)))
}

func TestRun_CopiasNoCompartenEstado(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p1", SKU: "A", Name: "A"}))

	p, err := store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	p.Name = "mutado"

	again, err := store.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "A", again.Name)
}

// ─── Ventas y pagos ────────────────────────────────────────────────────────────

func TestSaleRepo_NumeroDuplicado(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	sales := store.Sales()

	require.NoError(t, sales.Create(ctx, &entity.Sale{ID: "s1", SaleNumber: "SAL-20260101-0001"}))
	err := sales.Create(ctx, &entity.Sale{ID: "s2", SaleNumber: "SAL-20260101-0001"})
	assert.ErrorIs(t, err, domain.ErrDuplicateSaleNumber)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSaleRepo_ListFiltraYOrdena(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	sales := store.Sales()
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, sales.Create(ctx, &entity.Sale{ID: "s1", SaleNumber: "SAL-1", BranchID: "b1", Total: decimal.NewFromInt(50), PaymentStatus: entity.PaymentPaid, Kind: entity.SaleKindSale, CreatedAt: base}))
	require.NoError(t, sales.Create(ctx, &entity.Sale{ID: "s2", SaleNumber: "SAL-2", BranchID: "b1", Total: decimal.NewFromInt(80), PaymentStatus: entity.PaymentPending, Kind: entity.SaleKindSale, CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, sales.Create(ctx, &entity.Sale{ID: "s3", SaleNumber: "SAL-3", BranchID: "b2", Total: decimal.NewFromInt(20), PaymentStatus: entity.PaymentPaid, Kind: entity.SaleKindReturn, CreatedAt: base.Add(2 * time.Hour), Notes: "cliente frecuente"}))

	list, total, err := sales.List(ctx, repository.SaleFilter{BranchID: "b1", SortBy: repository.SaleSortTotal, SortDesc: true})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "s2", list[0].ID)

	list, total, err = sales.List(ctx, repository.SaleFilter{Search: "FRECUENTE"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "s3", list[0].ID)

	_, total, err = sales.List(ctx, repository.SaleFilter{PaymentStatus: entity.PaymentPaid, Kind: entity.SaleKindSale})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	list, total, err = sales.List(ctx, repository.SaleFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, list, 1)
}

func TestSaleRepo_DeleteBorraLineasYPagos(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Sales().Create(ctx, &entity.Sale{ID: "s1", SaleNumber: "SAL-1"}))
	require.NoError(t, store.Sales().CreateLine(ctx, &entity.SaleLine{ID: "l1", SaleID: "s1", LineNo: 1}))
	require.NoError(t, store.Payments().Create(ctx, &entity.Payment{ID: "p1", SaleID: "s1", Amount: decimal.NewFromInt(5)}))

	require.NoError(t, store.Sales().Delete(ctx, "s1"))

	s, err := store.Sales().GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, s)
	lines, err := store.Sales().GetLines(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, lines)
	paid, err := store.Payments().SumBySale(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, paid.IsZero())
	// El número queda libre.
	assert.NoError(t, store.Sales().Create(ctx, &entity.Sale{ID: "s2", SaleNumber: "SAL-1"}))
}

// ─── Secuencia ─────────────────────────────────────────────────────────────────

func TestSaleSequence_PorDia(t *testing.T) {
	seq := memory.NewSaleSequence()
	ctx := context.Background()
	d1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)

	n, _ := seq.Next(ctx, d1)
	assert.Equal(t, int64(1), n)
	n, _ = seq.Next(ctx, d1)
	assert.Equal(t, int64(2), n)
	n, _ = seq.Next(ctx, d2)
	assert.Equal(t, int64(1), n)
}
