package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// Columnas por las que se puede ordenar un listado de movimientos.
const (
	MovementSortTransactionDate = "transactionDate"
	MovementSortCreatedAt       = "createdAt"
	MovementSortQuantity        = "quantity"
)

// MovementFilter filtros del listado de movimientos. Campos vacíos no filtran.
type MovementFilter struct {
	ItemID        string
	LocationID    string
	Kind          entity.MovementKind
	Status        string
	ReferenceType string
	ReferenceID   string
	From          *time.Time
	To            *time.Time
	SortBy        string
	SortDesc      bool
	Limit         int
	Offset        int
}

// StockMovementRepository define el puerto de persistencia para movimientos (DIP).
// El libro es de solo agregación: el único campo mutable es el estado.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error)
	// MarkCompleted pasa un movimiento pendiente a completado con su balanceAfter.
	MarkCompleted(ctx context.Context, id string, balanceAfter decimal.Decimal, at time.Time) error
	MarkCancelled(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, int, error)
	ListByBatch(ctx context.Context, batchNumber string) ([]*entity.StockMovement, error)
	ListBySerial(ctx context.Context, serialNumber string) ([]*entity.StockMovement, error)
	ListByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.StockMovement, error)
	// ListExpiring entradas completadas con lote cuyo vencimiento cae en [from, until].
	ListExpiring(ctx context.Context, from, until time.Time) ([]*entity.StockMovement, error)
	// ListExpired entradas completadas con lote vencido antes de at.
	ListExpired(ctx context.Context, at time.Time) ([]*entity.StockMovement, error)
	CountByKind(ctx context.Context) (map[entity.MovementKind]int, error)
}
