package entity

import "github.com/shopspring/decimal"

// SaleLine línea de una venta. Total = Subtotal − Discount + Tax.
type SaleLine struct {
	ID        string
	SaleID    string
	LineNo    int
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Tax       decimal.Decimal
	Subtotal  decimal.Decimal
	Total     decimal.Decimal
}
