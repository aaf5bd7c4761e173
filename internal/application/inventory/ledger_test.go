package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-pos/internal/application/inventory"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	"github.com/jhoicas/Inventario-pos/internal/infrastructure/memory"
)

var clock = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(v decimal.Decimal) *decimal.Decimal { return &v }

type fixture struct {
	store *memory.Store
	uc    *inventory.LedgerUseCase
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	for _, id := range []string{"l1", "l2"} {
		require.NoError(t, store.Locations().Create(ctx, &entity.Location{ID: id, Name: "Sucursal " + id}))
	}
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: "p1", SKU: "SKU-1", Name: "Café", Price: d("10"), Cost: d("5"),
		TrackInventory: true, ReorderLevel: d("2"),
	}))
	uc := inventory.NewLedgerUseCase(store, store.Products(), store.Locations(), store.Movements(), store.Balances(), 30).
		WithClock(func() time.Time { return clock })
	return &fixture{store: store, uc: uc, ctx: ctx}
}

func (f *fixture) record(t *testing.T, kind entity.MovementKind, loc, qty string, cost *decimal.Decimal) *entity.StockMovement {
	t.Helper()
	m, err := f.uc.RecordMovement(f.ctx, inventory.MovementInput{
		ItemID: "p1", LocationID: loc, Kind: kind, Quantity: d(qty), UnitCost: cost, UserID: "u1",
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) balance(t *testing.T, loc string) *entity.StockBalance {
	t.Helper()
	b, err := f.uc.GetBalance(f.ctx, "p1", loc)
	require.NoError(t, err)
	return b
}

func (f *fixture) onHand(t *testing.T) decimal.Decimal {
	t.Helper()
	p, err := f.store.Products().GetByID(f.ctx, "p1")
	require.NoError(t, err)
	return p.OnHandQuantity
}

// ─── Costo promedio y conservación ─────────────────────────────────────────────

func TestRecordMovement_EscenarioCostoPromedio(t *testing.T) {
	f := newFixture(t)

	m1 := f.record(t, entity.MovementInboundPurchase, "l1", "100", ptr(d("5")))
	assert.True(t, m1.BalanceAfter.Equal(d("100")))
	assert.True(t, f.balance(t, "l1").AverageCost.Equal(d("5")))

	m2 := f.record(t, entity.MovementInboundPurchase, "l1", "50", ptr(d("8")))
	assert.True(t, m2.BalanceAfter.Equal(d("150")))

	b := f.balance(t, "l1")
	assert.True(t, b.Quantity.Equal(d("150")))
	assert.True(t, b.AverageCost.Equal(d("6")), "avg %s", b.AverageCost)
	assert.True(t, f.onHand(t).Equal(d("150")), "la proyección del catálogo sigue al libro")
}

func TestRecordMovement_CompraSinCostoUsaCostoCatalogo(t *testing.T) {
	f := newFixture(t)
	m := f.record(t, entity.MovementInboundPurchase, "l1", "4", nil)
	assert.True(t, m.UnitCost.Equal(d("5")))
	assert.True(t, m.TotalCost.Equal(d("20")))
}

func TestRecordMovement_SaldoIgualSumaDeMovimientos(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.MovementInboundPurchase, "l1", "10", ptr(d("5")))
	f.record(t, entity.MovementOutboundSale, "l1", "3", nil)
	f.record(t, entity.MovementInboundReturn, "l1", "1", nil)
	f.record(t, entity.MovementOutboundDamage, "l1", "2", nil)
	f.record(t, entity.MovementAdjustment, "l1", "4", nil)

	movs, total, err := f.uc.ListMovements(f.ctx, repository.MovementFilter{ItemID: "p1", LocationID: "l1"})
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	sum := decimal.Zero
	for _, m := range movs {
		if m.Completed() {
			sum = sum.Add(m.SignedQuantity())
		}
	}
	assert.True(t, f.balance(t, "l1").Quantity.Equal(sum), "saldo %s vs suma %s", f.balance(t, "l1").Quantity, sum)
	assert.True(t, sum.Equal(d("10")))
}

func TestRecordMovement_RechazaEntradasInvalidas(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.RecordMovement(f.ctx, inventory.MovementInput{ItemID: "p1", LocationID: "l1", Kind: "robo", Quantity: d("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.RecordMovement(f.ctx, inventory.MovementInput{ItemID: "p1", LocationID: "l1", Kind: entity.MovementAdjustment, Quantity: d("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.RecordMovement(f.ctx, inventory.MovementInput{ItemID: "p1", LocationID: "l1", Kind: entity.MovementTransferIn, Quantity: d("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordMovement_NoEncontrados(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.RecordMovement(f.ctx, inventory.MovementInput{ItemID: "nope", LocationID: "l1", Kind: entity.MovementAdjustment, Quantity: d("1")})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.RecordMovement(f.ctx, inventory.MovementInput{ItemID: "p1", LocationID: "nope", Kind: entity.MovementAdjustment, Quantity: d("1")})
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)

	_, err = f.uc.CancelMovement(f.ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)

	_, err = f.uc.GetBalance(f.ctx, "p1", "l2")
	assert.ErrorIs(t, err, domain.ErrBalanceNotFound)
}

// ─── Anulación y corrección ────────────────────────────────────────────────────

func TestCancelMovement_RevierteYRechazaSegundaAnulacion(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.MovementInboundPurchase, "l1", "10", ptr(d("5")))
	sale := f.record(t, entity.MovementOutboundSale, "l1", "4", nil)
	require.True(t, f.balance(t, "l1").Quantity.Equal(d("6")))

	cancelled, err := f.uc.CancelMovement(f.ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusCancelled, cancelled.Status)
	assert.True(t, f.balance(t, "l1").Quantity.Equal(d("10")))
	assert.True(t, f.onHand(t).Equal(d("10")))

	_, err = f.uc.CancelMovement(f.ctx, sale.ID)
	assert.ErrorIs(t, err, domain.ErrMovementCancelled)
	assert.True(t, f.balance(t, "l1").Quantity.Equal(d("10")), "la segunda anulación no toca el saldo")
}

func TestDeleteMovement_EsBorradoLogico(t *testing.T) {
	f := newFixture(t)
	m := f.record(t, entity.MovementInboundPurchase, "l1", "3", ptr(d("5")))

	_, err := f.uc.DeleteMovement(f.ctx, m.ID)
	require.NoError(t, err)

	got, err := f.uc.GetMovement(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusCancelled, got.Status)
	assert.True(t, f.balance(t, "l1").Quantity.IsZero())
}

func TestCorrectMovement_AnulaYRegistraCorreccion(t *testing.T) {
	f := newFixture(t)
	orig := f.record(t, entity.MovementInboundPurchase, "l1", "10", ptr(d("5")))

	fixed, err := f.uc.CorrectMovement(f.ctx, orig.ID, inventory.MovementInput{Quantity: d("8"), UserID: "u2"})
	require.NoError(t, err)

	assert.Equal(t, entity.ReferenceMovementCorrection, fixed.ReferenceType)
	assert.Equal(t, orig.ID, fixed.ReferenceID)
	assert.Equal(t, entity.MovementInboundPurchase, fixed.Kind)
	assert.True(t, fixed.UnitCost.Equal(d("5")))
	assert.True(t, f.balance(t, "l1").Quantity.Equal(d("8")))

	old, err := f.uc.GetMovement(f.ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusCancelled, old.Status)
}

// ─── Pendientes ────────────────────────────────────────────────────────────────

func TestCompleteMovement_PendienteNoAfectaHastaCompletar(t *testing.T) {
	f := newFixture(t)
	m, err := f.uc.RecordMovement(f.ctx, inventory.MovementInput{
		ItemID: "p1", LocationID: "l1", Kind: entity.MovementInboundPurchase, Quantity: d("5"), UnitCost: ptr(d("4")), Pending: true,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusPending, m.Status)

	_, err = f.uc.GetBalance(f.ctx, "p1", "l1")
	assert.ErrorIs(t, err, domain.ErrBalanceNotFound)

	done, err := f.uc.CompleteMovement(f.ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, done.BalanceAfter.Equal(d("5")))
	assert.True(t, f.balance(t, "l1").AverageCost.Equal(d("4")))

	_, err = f.uc.CompleteMovement(f.ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrMovementNotPending)
}

func TestCancelMovement_PendienteNoRevierte(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.MovementInboundPurchase, "l1", "2", ptr(d("5")))
	m, err := f.uc.RecordMovement(f.ctx, inventory.MovementInput{
		ItemID: "p1", LocationID: "l1", Kind: entity.MovementOutboundSale, Quantity: d("1"), Pending: true,
	})
	require.NoError(t, err)

	_, err = f.uc.CancelMovement(f.ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, f.balance(t, "l1").Quantity.Equal(d("2")))
}

// ─── Transferencias ────────────────────────────────────────────────────────────

func TestTransfer_ConservaCantidadTotal(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.MovementInboundPurchase, "l1", "10", ptr(d("5")))

	res, err := f.uc.Transfer(f.ctx, inventory.TransferInput{ItemID: "p1", FromLocationID: "l1", ToLocationID: "l2", Quantity: d("4"), UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, res.Reference, res.Out.ReferenceID)
	assert.Equal(t, res.Reference, res.In.ReferenceID)
	assert.Equal(t, entity.MovementTransferOut, res.Out.Kind)
	assert.Equal(t, entity.MovementTransferIn, res.In.Kind)

	src, dst := f.balance(t, "l1"), f.balance(t, "l2")
	assert.True(t, src.Quantity.Equal(d("6")))
	assert.True(t, dst.Quantity.Equal(d("4")))
	assert.True(t, dst.AverageCost.Equal(d("5")), "el destino pondera con el costo del origen")
	assert.True(t, src.Quantity.Add(dst.Quantity).Equal(d("10")))
	assert.True(t, f.onHand(t).Equal(d("10")))
}

func TestTransfer_StockInsuficienteNoDejaRastro(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.MovementInboundPurchase, "l1", "3", ptr(d("5")))

	_, err := f.uc.Transfer(f.ctx, inventory.TransferInput{ItemID: "p1", FromLocationID: "l1", ToLocationID: "l2", Quantity: d("4")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, total, err := f.uc.ListMovements(f.ctx, repository.MovementFilter{ReferenceType: entity.ReferenceTransfer})
	require.NoError(t, err)
	assert.Zero(t, total)
	_, err = f.uc.GetBalance(f.ctx, "p1", "l2")
	assert.ErrorIs(t, err, domain.ErrBalanceNotFound)
}

func TestTransfer_MismaUbicacion(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Transfer(f.ctx, inventory.TransferInput{ItemID: "p1", FromLocationID: "l1", ToLocationID: "l1", Quantity: d("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─── Ajustes y bajas ───────────────────────────────────────────────────────────

func TestAdjust_ConteoFisicoGeneraBaja(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.MovementInboundPurchase, "l1", "10", ptr(d("5")))

	m, err := f.uc.Adjust(f.ctx, inventory.AdjustInput{ItemID: "p1", LocationID: "l1", CountedQuantity: ptr(d("7")), Reason: "conteo"})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementOutboundWriteOff, m.Kind)
	assert.Equal(t, entity.ReferenceAdjustment, m.ReferenceType)
	assert.True(t, m.Quantity.Equal(d("3")))
	assert.True(t, f.balance(t, "l1").Quantity.Equal(d("7")))

	m, err = f.uc.Adjust(f.ctx, inventory.AdjustInput{ItemID: "p1", LocationID: "l1", Delta: ptr(d("2"))})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementAdjustment, m.Kind)
	assert.True(t, f.balance(t, "l1").Quantity.Equal(d("9")))
}

func TestAdjust_EntradasInvalidas(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.MovementInboundPurchase, "l1", "1", ptr(d("5")))

	_, err := f.uc.Adjust(f.ctx, inventory.AdjustInput{ItemID: "p1", LocationID: "l1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.Adjust(f.ctx, inventory.AdjustInput{ItemID: "p1", LocationID: "l1", Delta: ptr(d("1")), CountedQuantity: ptr(d("1"))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.Adjust(f.ctx, inventory.AdjustInput{ItemID: "p1", LocationID: "l1", CountedQuantity: ptr(d("1"))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "un conteo igual al saldo no es ajuste")
}

func TestWriteOff_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.MovementInboundPurchase, "l1", "2", ptr(d("5")))

	_, err := f.uc.WriteOff(f.ctx, inventory.WriteOffInput{ItemID: "p1", LocationID: "l1", Quantity: d("3"), Damaged: true})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	m, err := f.uc.WriteOff(f.ctx, inventory.WriteOffInput{ItemID: "p1", LocationID: "l1", Quantity: d("2"), Damaged: true})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementOutboundDamage, m.Kind)
	assert.True(t, f.balance(t, "l1").IsOutOfStock)
}

// ─── Consultas ─────────────────────────────────────────────────────────────────

func TestExpiring_YExpired(t *testing.T) {
	f := newFixture(t)
	soon := clock.AddDate(0, 0, 10)
	past := clock.AddDate(0, 0, -1)
	far := clock.AddDate(0, 3, 0)
	for _, in := range []inventory.MovementInput{
		{BatchNumber: "L-1", ExpiryDate: &soon},
		{BatchNumber: "L-2", ExpiryDate: &past},
		{BatchNumber: "L-3", ExpiryDate: &far},
	} {
		in.ItemID, in.LocationID, in.Kind, in.Quantity, in.UnitCost = "p1", "l1", entity.MovementInboundPurchase, d("1"), ptr(d("5"))
		_, err := f.uc.RecordMovement(f.ctx, in)
		require.NoError(t, err)
	}

	expiring, err := f.uc.Expiring(f.ctx, 0)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, "L-1", expiring[0].BatchNumber)

	expired, err := f.uc.Expired(f.ctx)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "L-2", expired[0].BatchNumber)

	byBatch, err := f.uc.MovementsByBatch(f.ctx, "L-3")
	require.NoError(t, err)
	assert.Len(t, byBatch, 1)
	_, err = f.uc.MovementsBySerial(f.ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMovementsBySerial_YAgotados(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.RecordMovement(f.ctx, inventory.MovementInput{
		ItemID: "p1", LocationID: "l1", Kind: entity.MovementInboundPurchase,
		Quantity: d("1"), UnitCost: ptr(d("5")), SerialNumber: "SN-9", UserID: "u1",
	})
	require.NoError(t, err)
	f.record(t, entity.MovementOutboundSale, "l1", "1", nil)

	bySerial, err := f.uc.MovementsBySerial(f.ctx, "SN-9")
	require.NoError(t, err)
	require.Len(t, bySerial, 1)
	assert.Equal(t, entity.MovementInboundPurchase, bySerial[0].Kind)

	out, err := f.uc.OutOfStock(f.ctx, "l1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].IsOutOfStock)

	out, err = f.uc.OutOfStock(f.ctx, "l2")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSetThresholds_RecalculaBanderas(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.MovementInboundPurchase, "l1", "5", ptr(d("5")))
	assert.False(t, f.balance(t, "l1").IsLowStock)

	b, err := f.uc.SetThresholds(f.ctx, inventory.ThresholdsInput{ItemID: "p1", LocationID: "l1", LowStockThreshold: d("5"), ReorderPoint: d("8")})
	require.NoError(t, err)
	assert.True(t, b.IsLowStock)

	low, err := f.uc.LowStock(f.ctx, "l1")
	require.NoError(t, err)
	assert.Len(t, low, 1)

	_, err = f.uc.SetThresholds(f.ctx, inventory.ThresholdsInput{ItemID: "p1", LocationID: "l1", LowStockThreshold: d("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStatistics_AgregadosYTiposEnCero(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.MovementInboundPurchase, "l1", "10", ptr(d("5")))
	f.record(t, entity.MovementInboundPurchase, "l2", "2", ptr(d("5")))
	f.record(t, entity.MovementOutboundSale, "l2", "2", nil)

	st, err := f.uc.Statistics(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Summary.Items)
	assert.Equal(t, 2, st.Summary.Balances)
	assert.True(t, st.Summary.TotalValue.Equal(d("50")))
	assert.Equal(t, 1, st.Summary.OutOfStockCount)
	assert.Len(t, st.ValueByLocation, 2)
	assert.Equal(t, 2, st.MovementsByKind[entity.MovementInboundPurchase])
	assert.Equal(t, 1, st.MovementsByKind[entity.MovementOutboundSale])
	assert.Len(t, st.MovementsByKind, len(entity.MovementKinds()))
}

func TestGenerateReplenishmentList_CantidadSugerida(t *testing.T) {
	f := newFixture(t)
	f.record(t, entity.MovementInboundPurchase, "l1", "4", ptr(d("6")))
	_, err := f.uc.SetThresholds(f.ctx, inventory.ThresholdsInput{ItemID: "p1", LocationID: "l1", LowStockThreshold: d("2"), ReorderPoint: d("10")})
	require.NoError(t, err)

	list, err := inventory.NewReplenishmentUseCase(f.store.Balances()).GenerateReplenishmentList(f.ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	s := list[0]
	assert.True(t, s.SuggestedOrderQty.Equal(d("11")), "15 − 4, got %s", s.SuggestedOrderQty)
	assert.True(t, s.EstimatedOrderCost.Equal(d("66")))
	assert.True(t, s.GrossMarginPct.Equal(d("40")))
	assert.Equal(t, 1, s.Priority)
	assert.Equal(t, "SKU-1", s.SKU)
}
