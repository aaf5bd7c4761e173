package inventory

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// NewBalance crea el saldo vacío de un par (producto, ubicación). Los umbrales
// arrancan en el nivel de reorden del catálogo.
func NewBalance(itemID, locationID string, reorderLevel decimal.Decimal, now time.Time) *entity.StockBalance {
	b := &entity.StockBalance{
		ItemID:            itemID,
		LocationID:        locationID,
		LowStockThreshold: reorderLevel,
		ReorderPoint:      reorderLevel,
		UpdatedAt:         now,
	}
	b.RefreshDerived()
	return b
}

// Apply aplica un movimiento completado al saldo: suma la cantidad con signo,
// recalcula el costo promedio si el tipo afecta la base de costo y refresca
// las banderas. Devuelve la cantidad resultante (balanceAfter).
func Apply(b *entity.StockBalance, kind entity.MovementKind, quantity, unitCost decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	effect, ok := kind.Effect()
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, kind)
	}
	if quantity.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput)
	}
	before := b.Quantity
	b.Quantity = before.Add(kind.Signed(quantity))
	if effect.AffectsCostBasis {
		b.AverageCost = CostCalculator(before, b.AverageCost, quantity, unitCost)
		t := at
		b.LastRestockedAt = &t
	}
	if kind == entity.MovementOutboundSale {
		t := at
		b.LastSoldAt = &t
	}
	b.UpdatedAt = at
	b.RefreshDerived()
	return b.Quantity, nil
}

// Reverse aplica el delta inverso de un movimiento. El costo promedio no se
// toca: la base de costo es de solo agregación.
func Reverse(b *entity.StockBalance, kind entity.MovementKind, quantity decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	if !kind.Valid() {
		return decimal.Zero, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, kind)
	}
	b.Quantity = b.Quantity.Sub(kind.Signed(quantity))
	b.UpdatedAt = at
	b.RefreshDerived()
	return b.Quantity, nil
}

// CheckAvailable falla con ErrInsufficientStock si el saldo no cubre quantity.
func CheckAvailable(b *entity.StockBalance, quantity decimal.Decimal) error {
	if b.Quantity.LessThan(quantity) {
		return fmt.Errorf("%w: disponible %s, solicitado %s", domain.ErrInsufficientStock, b.Quantity.String(), quantity.String())
	}
	return nil
}

// SetThresholds actualiza umbrales y recalcula banderas.
func SetThresholds(b *entity.StockBalance, lowStock, reorderPoint decimal.Decimal, at time.Time) error {
	if lowStock.IsNegative() || reorderPoint.IsNegative() {
		return fmt.Errorf("%w: umbrales negativos", domain.ErrInvalidInput)
	}
	b.LowStockThreshold = lowStock
	b.ReorderPoint = reorderPoint
	b.UpdatedAt = at
	b.RefreshDerived()
	return nil
}
