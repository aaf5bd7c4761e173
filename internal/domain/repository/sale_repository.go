package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// Columnas por las que se puede ordenar un listado de ventas.
const (
	SaleSortCreatedAt  = "createdAt"
	SaleSortTotal      = "total"
	SaleSortSaleNumber = "saleNumber"
)

// SaleFilter filtros del listado de ventas. Search busca en número y notas.
type SaleFilter struct {
	Search        string
	From          *time.Time
	To            *time.Time
	BranchID      string
	PaymentStatus entity.PaymentStatus
	Kind          entity.SaleKind
	SortBy        string
	SortDesc      bool
	Limit         int
	Offset        int
}

// SaleRepository define el puerto de persistencia para Sale y sus líneas.
type SaleRepository interface {
	// Create inserta la cabecera; un número repetido devuelve domain.ErrDuplicateSaleNumber.
	Create(ctx context.Context, sale *entity.Sale) error
	CreateLine(ctx context.Context, line *entity.SaleLine) error
	// GetByID devuelve la venta sin líneas, o (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	GetLines(ctx context.Context, saleID string) ([]entity.SaleLine, error)
	// Update persiste estado de pago, espera, notas y metadata.
	Update(ctx context.Context, sale *entity.Sale) error
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, int, error)
	// Delete elimina cabecera, líneas y pagos.
	Delete(ctx context.Context, id string) error
}

// PaymentRepository define el puerto del libro de pagos.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	ListBySale(ctx context.Context, saleID string) ([]*entity.Payment, error)
	SumBySale(ctx context.Context, saleID string) (decimal.Decimal, error)
}
