package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind clasifica un movimiento de stock.
type MovementKind string

const (
	MovementInboundPurchase  MovementKind = "inbound-purchase"
	MovementOutboundSale     MovementKind = "outbound-sale"
	MovementAdjustment       MovementKind = "adjustment"
	MovementInboundReturn    MovementKind = "inbound-return"
	MovementOutboundDamage   MovementKind = "outbound-damage"
	MovementOutboundWriteOff MovementKind = "outbound-write-off"
	MovementTransferIn       MovementKind = "transfer-in"
	MovementTransferOut      MovementKind = "transfer-out"
)

// KindEffect es el efecto de un tipo de movimiento sobre el saldo.
type KindEffect struct {
	Direction        int  // +1 entrada, -1 salida
	AffectsCostBasis bool // recalcula el costo promedio
}

var kindEffects = map[MovementKind]KindEffect{
	MovementInboundPurchase:  {Direction: +1, AffectsCostBasis: true},
	MovementInboundReturn:    {Direction: +1},
	MovementTransferIn:       {Direction: +1, AffectsCostBasis: true},
	MovementAdjustment:       {Direction: +1},
	MovementOutboundSale:     {Direction: -1},
	MovementOutboundDamage:   {Direction: -1},
	MovementOutboundWriteOff: {Direction: -1},
	MovementTransferOut:      {Direction: -1},
}

// Effect devuelve el efecto del tipo; ok=false si el tipo no existe.
func (k MovementKind) Effect() (KindEffect, bool) {
	e, ok := kindEffects[k]
	return e, ok
}

// Valid indica si el tipo está en la tabla.
func (k MovementKind) Valid() bool {
	_, ok := kindEffects[k]
	return ok
}

// IsInbound indica si el tipo suma stock.
func (k MovementKind) IsInbound() bool {
	e, ok := kindEffects[k]
	return ok && e.Direction > 0
}

// Signed aplica la dirección del tipo a una magnitud.
func (k MovementKind) Signed(quantity decimal.Decimal) decimal.Decimal {
	if e, ok := kindEffects[k]; ok && e.Direction < 0 {
		return quantity.Neg()
	}
	return quantity
}

// MovementKinds lista los tipos en orden estable.
func MovementKinds() []MovementKind {
	return []MovementKind{
		MovementInboundPurchase, MovementOutboundSale, MovementAdjustment, MovementInboundReturn,
		MovementOutboundDamage, MovementOutboundWriteOff, MovementTransferIn, MovementTransferOut,
	}
}

// Estados de un movimiento.
const (
	MovementStatusCompleted = "completed"
	MovementStatusPending   = "pending"
	MovementStatusCancelled = "cancelled"
)

// Tipos de referencia usados por el sistema.
const (
	ReferenceSale               = "sale"
	ReferenceReturn             = "return"
	ReferenceTransfer           = "transfer"
	ReferenceAdjustment         = "adjustment"
	ReferenceWriteOff           = "write-off"
	ReferenceMovementCorrection = "movement-correction"
	ReferenceManual             = "manual"
)

// StockMovement es un hecho inmutable del libro de stock.
// Quantity es siempre la magnitud; el signo sale de Kind.
type StockMovement struct {
	ID              string
	ItemID          string
	LocationID      string
	Kind            MovementKind
	Quantity        decimal.Decimal
	UnitCost        decimal.Decimal
	TotalCost       decimal.Decimal
	BalanceAfter    decimal.Decimal
	BatchNumber     string
	SerialNumber    string
	ExpiryDate      *time.Time
	ReferenceType   string
	ReferenceID     string
	Status          string
	Notes           string
	TransactionDate time.Time
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SignedQuantity devuelve la cantidad con el signo del tipo.
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	return m.Kind.Signed(m.Quantity)
}

// Completed indica si el movimiento cuenta para el saldo.
func (m *StockMovement) Completed() bool {
	return m.Status == MovementStatusCompleted
}
