package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto del catálogo.
// on_hand_quantity no se acepta: es una proyección del libro de stock.
type CreateProductRequest struct {
	SKU            string          `json:"sku" validate:"required,min=1,max=100"`
	Name           string          `json:"name" validate:"required,min=1,max=200"`
	Price          decimal.Decimal `json:"price"`
	Cost           decimal.Decimal `json:"cost"`
	TaxRate        decimal.Decimal `json:"tax_rate"` // porcentaje 0..100 (19 = 19 %)
	TrackInventory *bool           `json:"track_inventory"`
	AllowBackorder bool            `json:"allow_backorder"`
	ReorderLevel   decimal.Decimal `json:"reorder_level"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID             string          `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Cost           decimal.Decimal `json:"cost"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	OnHandQuantity decimal.Decimal `json:"on_hand_quantity"`
	TrackInventory bool            `json:"track_inventory"`
	AllowBackorder bool            `json:"allow_backorder"`
	ReorderLevel   decimal.Decimal `json:"reorder_level"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ProductFromEntity mapea la entidad a la salida HTTP.
func ProductFromEntity(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		Price:          p.Price,
		Cost:           p.Cost,
		TaxRate:        p.TaxRate,
		OnHandQuantity: p.OnHandQuantity,
		TrackInventory: p.TrackInventory,
		AllowBackorder: p.AllowBackorder,
		ReorderLevel:   p.ReorderLevel,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
