package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment es un instrumento de pago registrado contra una venta.
type Payment struct {
	ID        string
	SaleID    string
	Amount    decimal.Decimal
	Method    string // cash, card, transfer, ...
	Reference string
	Notes     string
	CreatedBy string
	CreatedAt time.Time
}
