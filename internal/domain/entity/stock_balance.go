package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance es el saldo derivado de un producto en una ubicación (único por par).
type StockBalance struct {
	ItemID            string
	LocationID        string
	Quantity          decimal.Decimal
	AverageCost       decimal.Decimal
	TotalValue        decimal.Decimal // Quantity × AverageCost
	LowStockThreshold decimal.Decimal
	ReorderPoint      decimal.Decimal
	IsLowStock        bool
	IsOutOfStock      bool
	LastRestockedAt   *time.Time
	LastSoldAt        *time.Time
	UpdatedAt         time.Time
}

// RefreshDerived recalcula TotalValue y las banderas de stock bajo/agotado.
func (b *StockBalance) RefreshDerived() {
	b.TotalValue = b.Quantity.Mul(b.AverageCost)
	b.IsOutOfStock = !b.Quantity.IsPositive()
	b.IsLowStock = b.Quantity.IsPositive() && b.Quantity.LessThanOrEqual(b.LowStockThreshold)
}
