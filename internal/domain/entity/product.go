package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product es la vista del catálogo que consume el motor de ventas.
// OnHandQuantity es una proyección del libro de stock (suma de saldos por ubicación);
// solo el ledger la actualiza, dentro de la misma transacción del movimiento.
type Product struct {
	ID             string
	SKU            string
	Name           string
	Price          decimal.Decimal // precio de venta
	Cost           decimal.Decimal // costo de referencia del catálogo
	TaxRate        decimal.Decimal // porcentaje 0..100 (19 = 19 %)
	OnHandQuantity decimal.Decimal
	TrackInventory bool
	AllowBackorder bool
	ReorderLevel   decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NormalizedTaxRate devuelve la tasa como fracción (19 → 0.19, 1 → 0.01).
func (p *Product) NormalizedTaxRate() decimal.Decimal {
	return p.TaxRate.Div(decimal.NewFromInt(100))
}
