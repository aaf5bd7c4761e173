package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID devuelve (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, int, error)
	// UpdateOnHand refresca la proyección de existencias del catálogo.
	// Solo la invoca el libro de stock dentro de su transacción.
	UpdateOnHand(ctx context.Context, productID string, quantity decimal.Decimal) error
}
