package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// BalanceFilter filtros de consulta de saldos. Campos vacíos no filtran.
type BalanceFilter struct {
	ItemID     string
	LocationID string
	Limit      int
	Offset     int
}

// BalanceSummary agregados globales del inventario.
type BalanceSummary struct {
	Items           int
	Balances        int
	TotalQuantity   decimal.Decimal
	TotalValue      decimal.Decimal
	LowStockCount   int
	OutOfStockCount int
}

// LocationValue valorización del inventario por ubicación.
type LocationValue struct {
	LocationID string
	Quantity   decimal.Decimal
	Value      decimal.Decimal
}

// ReplenishmentItem saldo en o bajo su punto de reorden, con datos del catálogo.
type ReplenishmentItem struct {
	ItemID       string
	LocationID   string
	SKU          string
	ProductName  string
	Quantity     decimal.Decimal
	ReorderPoint decimal.Decimal
	AverageCost  decimal.Decimal
	Price        decimal.Decimal
}

// StockBalanceRepository define el puerto de persistencia de saldos (uno por producto+ubicación).
type StockBalanceRepository interface {
	// Get devuelve (nil, nil) si el par no tiene saldo.
	Get(ctx context.Context, itemID, locationID string) (*entity.StockBalance, error)
	// GetOrCreateForUpdate inserta seed si el par no existe y devuelve la fila
	// bloqueada (SELECT ... FOR UPDATE) hasta el fin de la transacción.
	GetOrCreateForUpdate(ctx context.Context, seed *entity.StockBalance) (*entity.StockBalance, error)
	Update(ctx context.Context, balance *entity.StockBalance) error
	List(ctx context.Context, filter BalanceFilter) ([]*entity.StockBalance, int, error)
	ListLowStock(ctx context.Context, locationID string) ([]*entity.StockBalance, error)
	ListOutOfStock(ctx context.Context, locationID string) ([]*entity.StockBalance, error)
	ListBelowReorderPoint(ctx context.Context, locationID string) ([]ReplenishmentItem, error)
	// SumQuantityByItem suma las cantidades del producto en todas las ubicaciones.
	SumQuantityByItem(ctx context.Context, itemID string) (decimal.Decimal, error)
	Summary(ctx context.Context) (BalanceSummary, error)
	ValueByLocation(ctx context.Context) ([]LocationValue, error)
}
