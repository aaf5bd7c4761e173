package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// ──────────────────────────────────────────────────────────────────────────────
// Costo promedio ponderado
// ──────────────────────────────────────────────────────────────────────────────

func TestCostCalculator_PrimeraEntradaTomaCostoDeEntrada(t *testing.T) {
	got := inventory.CostCalculator(decimal.Zero, decimal.Zero, d("100"), d("5"))
	assert.True(t, got.Equal(d("5")), "got %s", got)
}

func TestCostCalculator_PromedioPonderado(t *testing.T) {
	got := inventory.CostCalculator(d("100"), d("5"), d("50"), d("8"))
	assert.True(t, got.Equal(d("6")), "got %s", got)
}

func TestCostCalculator_StockNegativoReiniciaBase(t *testing.T) {
	got := inventory.CostCalculator(d("-4"), d("10"), d("10"), d("7"))
	assert.True(t, got.Equal(d("7")), "got %s", got)
}

// Saldo vacío → compra 100 @ 5 → promedio 5; compra 50 @ 8 → 150 a 6.00.
func TestApply_DosComprasRecalculanPromedio(t *testing.T) {
	b := inventory.NewBalance("item", "loc", decimal.Zero, now)

	after, err := inventory.Apply(b, entity.MovementInboundPurchase, d("100"), d("5"), now)
	require.NoError(t, err)
	assert.True(t, after.Equal(d("100")))
	assert.True(t, b.AverageCost.Equal(d("5")))

	after, err = inventory.Apply(b, entity.MovementInboundPurchase, d("50"), d("8"), now)
	require.NoError(t, err)
	assert.True(t, after.Equal(d("150")))
	assert.Equal(t, "6.00", b.AverageCost.StringFixed(2))
	assert.True(t, b.TotalValue.Equal(d("900")))
	require.NotNil(t, b.LastRestockedAt)
}

func TestApply_SalidaNoCambiaPromedio(t *testing.T) {
	b := inventory.NewBalance("item", "loc", decimal.Zero, now)
	_, err := inventory.Apply(b, entity.MovementInboundPurchase, d("10"), d("4"), now)
	require.NoError(t, err)

	for _, k := range []entity.MovementKind{entity.MovementOutboundSale, entity.MovementOutboundDamage, entity.MovementOutboundWriteOff, entity.MovementTransferOut} {
		_, err := inventory.Apply(b, k, d("1"), d("99"), now)
		require.NoError(t, err)
		assert.True(t, b.AverageCost.Equal(d("4")), "kind %s cambió el promedio", k)
	}
	assert.True(t, b.Quantity.Equal(d("6")))
	require.NotNil(t, b.LastSoldAt)
}

func TestApply_DevolucionYAjusteNoCambianPromedio(t *testing.T) {
	b := inventory.NewBalance("item", "loc", decimal.Zero, now)
	_, _ = inventory.Apply(b, entity.MovementInboundPurchase, d("10"), d("4"), now)

	_, err := inventory.Apply(b, entity.MovementInboundReturn, d("2"), d("50"), now)
	require.NoError(t, err)
	_, err = inventory.Apply(b, entity.MovementAdjustment, d("3"), d("50"), now)
	require.NoError(t, err)

	assert.True(t, b.Quantity.Equal(d("15")))
	assert.True(t, b.AverageCost.Equal(d("4")))
}

func TestApply_TipoDesconocido(t *testing.T) {
	b := inventory.NewBalance("item", "loc", decimal.Zero, now)
	_, err := inventory.Apply(b, entity.MovementKind("gift"), d("1"), decimal.Zero, now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reversa: reverse(apply(m)) restaura cantidad y banderas
// ──────────────────────────────────────────────────────────────────────────────

func TestReverse_RestauraSaldoParaTodosLosTipos(t *testing.T) {
	for _, kind := range entity.MovementKinds() {
		t.Run(string(kind), func(t *testing.T) {
			b := inventory.NewBalance("item", "loc", d("5"), now)
			_, err := inventory.Apply(b, entity.MovementInboundPurchase, d("6"), d("3"), now)
			require.NoError(t, err)
			qtyBefore, lowBefore, outBefore := b.Quantity, b.IsLowStock, b.IsOutOfStock

			_, err = inventory.Apply(b, kind, d("4"), d("3"), now)
			require.NoError(t, err)
			_, err = inventory.Reverse(b, kind, d("4"), now)
			require.NoError(t, err)

			assert.True(t, b.Quantity.Equal(qtyBefore))
			assert.Equal(t, lowBefore, b.IsLowStock)
			assert.Equal(t, outBefore, b.IsOutOfStock)
		})
	}
}

func TestReverse_NoDeshacePromedio(t *testing.T) {
	b := inventory.NewBalance("item", "loc", decimal.Zero, now)
	_, _ = inventory.Apply(b, entity.MovementInboundPurchase, d("100"), d("5"), now)
	_, _ = inventory.Apply(b, entity.MovementInboundPurchase, d("50"), d("8"), now)

	_, err := inventory.Reverse(b, entity.MovementInboundPurchase, d("50"), now)
	require.NoError(t, err)
	assert.True(t, b.Quantity.Equal(d("100")))
	assert.Equal(t, "6.00", b.AverageCost.StringFixed(2))
}

// ──────────────────────────────────────────────────────────────────────────────
// Banderas y umbrales
// ──────────────────────────────────────────────────────────────────────────────

func TestBanderas_BajoYAgotado(t *testing.T) {
	b := inventory.NewBalance("item", "loc", d("5"), now)
	assert.True(t, b.IsOutOfStock)
	assert.False(t, b.IsLowStock)

	_, _ = inventory.Apply(b, entity.MovementInboundPurchase, d("5"), d("1"), now)
	assert.False(t, b.IsOutOfStock)
	assert.True(t, b.IsLowStock)

	_, _ = inventory.Apply(b, entity.MovementInboundPurchase, d("1"), d("1"), now)
	assert.False(t, b.IsLowStock)

	_, _ = inventory.Apply(b, entity.MovementOutboundSale, d("6"), decimal.Zero, now)
	assert.True(t, b.IsOutOfStock)
	assert.False(t, b.IsLowStock)
}

func TestSetThresholds(t *testing.T) {
	b := inventory.NewBalance("item", "loc", decimal.Zero, now)
	_, _ = inventory.Apply(b, entity.MovementInboundPurchase, d("8"), d("1"), now)
	assert.False(t, b.IsLowStock)

	require.NoError(t, inventory.SetThresholds(b, d("10"), d("12"), now))
	assert.True(t, b.IsLowStock)
	assert.True(t, b.ReorderPoint.Equal(d("12")))

	assert.ErrorIs(t, inventory.SetThresholds(b, d("-1"), d("0"), now), domain.ErrInvalidInput)
}

func TestCheckAvailable(t *testing.T) {
	b := inventory.NewBalance("item", "loc", decimal.Zero, now)
	_, _ = inventory.Apply(b, entity.MovementInboundPurchase, d("10"), d("1"), now)

	assert.NoError(t, inventory.CheckAvailable(b, d("10")))
	err := inventory.CheckAvailable(b, d("12"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
