package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus estado de pago de una venta.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Valid indica si el estado es conocido.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPartial, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

// SaleKind tipo de documento de venta.
type SaleKind string

const (
	SaleKindSale     SaleKind = "sale"
	SaleKindReturn   SaleKind = "return"
	SaleKindExchange SaleKind = "exchange"
)

// Valid indica si el tipo es conocido.
func (k SaleKind) Valid() bool {
	switch k {
	case SaleKindSale, SaleKindReturn, SaleKindExchange:
		return true
	}
	return false
}

// Claves de metadata que escribe el motor.
const (
	MetaOriginalSaleID     = "originalSaleId"
	MetaOriginalSaleNumber = "originalSaleNumber"
	MetaRefundReason       = "refundReason"
	MetaRefundSaleID       = "refundSaleId"
)

// Sale es la cabecera de una transacción de punto de venta.
type Sale struct {
	ID            string
	SaleNumber    string
	CustomerID    string
	CashierID     string
	BranchID      string
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentStatus PaymentStatus
	Kind          SaleKind
	IsHeld        bool
	HeldAt        *time.Time
	Notes         string
	Metadata      map[string]any
	Lines         []SaleLine
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
