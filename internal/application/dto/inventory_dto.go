package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// RecordMovementRequest body para POST /api/inventory/movements.
type RecordMovementRequest struct {
	ItemID          string           `json:"item_id" validate:"required"`
	LocationID      string           `json:"location_id" validate:"required"`
	Kind            string           `json:"kind" validate:"required,oneof=inbound-purchase outbound-sale adjustment inbound-return outbound-damage outbound-write-off transfer-in transfer-out"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	BatchNumber     string           `json:"batch_number,omitempty" validate:"max=100"`
	SerialNumber    string           `json:"serial_number,omitempty" validate:"max=100"`
	ExpiryDate      *time.Time       `json:"expiry_date,omitempty"`
	ReferenceType   string           `json:"reference_type,omitempty" validate:"max=50"`
	ReferenceID     string           `json:"reference_id,omitempty" validate:"max=100"`
	Pending         bool             `json:"pending,omitempty"`
	Notes           string           `json:"notes,omitempty" validate:"max=500"`
	TransactionDate *time.Time       `json:"transaction_date,omitempty"`
}

// CorrectMovementRequest body para PUT /api/inventory/movements/:id. Campos vacíos se toman del original.
type CorrectMovementRequest struct {
	LocationID   string           `json:"location_id,omitempty"`
	Kind         string           `json:"kind,omitempty" validate:"omitempty,oneof=inbound-purchase outbound-sale adjustment inbound-return outbound-damage outbound-write-off"`
	Quantity     decimal.Decimal  `json:"quantity"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	BatchNumber  string           `json:"batch_number,omitempty" validate:"max=100"`
	SerialNumber string           `json:"serial_number,omitempty" validate:"max=100"`
	ExpiryDate   *time.Time       `json:"expiry_date,omitempty"`
	Notes        string           `json:"notes,omitempty" validate:"max=500"`
}

// AdjustmentRequest body para POST /api/inventory/adjustments (delta o conteo físico).
type AdjustmentRequest struct {
	ItemID          string           `json:"item_id" validate:"required"`
	LocationID      string           `json:"location_id" validate:"required"`
	Delta           *decimal.Decimal `json:"delta,omitempty"`
	CountedQuantity *decimal.Decimal `json:"counted_quantity,omitempty"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	Reason          string           `json:"reason" validate:"max=500"`
}

// WriteOffRequest body para POST /api/inventory/write-offs.
type WriteOffRequest struct {
	ItemID       string          `json:"item_id" validate:"required"`
	LocationID   string          `json:"location_id" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	Damaged      bool            `json:"damaged"`
	BatchNumber  string          `json:"batch_number,omitempty" validate:"max=100"`
	SerialNumber string          `json:"serial_number,omitempty" validate:"max=100"`
	Reason       string          `json:"reason" validate:"max=500"`
}

// TransferRequest body para POST /api/inventory/transfers.
type TransferRequest struct {
	ItemID         string          `json:"item_id" validate:"required"`
	FromLocationID string          `json:"from_location_id" validate:"required"`
	ToLocationID   string          `json:"to_location_id" validate:"required,nefield=FromLocationID"`
	Quantity       decimal.Decimal `json:"quantity"`
	BatchNumber    string          `json:"batch_number,omitempty" validate:"max=100"`
	Notes          string          `json:"notes,omitempty" validate:"max=500"`
}

// ThresholdsRequest body para PUT /api/inventory/balances/thresholds.
type ThresholdsRequest struct {
	ItemID            string          `json:"item_id" validate:"required"`
	LocationID        string          `json:"location_id" validate:"required"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
	ReorderPoint      decimal.Decimal `json:"reorder_point"`
}

// MovementListQuery filtros de GET /api/inventory/movements.
type MovementListQuery struct {
	ItemID        string `query:"itemId"`
	LocationID    string `query:"locationId"`
	Kind          string `query:"kind" validate:"omitempty,oneof=inbound-purchase outbound-sale adjustment inbound-return outbound-damage outbound-write-off transfer-in transfer-out"`
	Status        string `query:"status" validate:"omitempty,oneof=completed pending cancelled"`
	ReferenceType string `query:"referenceType"`
	ReferenceID   string `query:"referenceId"`
	From          string `query:"from"`
	To            string `query:"to"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID              string          `json:"id"`
	ItemID          string          `json:"item_id"`
	LocationID      string          `json:"location_id"`
	Kind            string          `json:"kind"`
	Quantity        decimal.Decimal `json:"quantity"`
	SignedQuantity  decimal.Decimal `json:"signed_quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	BatchNumber     string          `json:"batch_number,omitempty"`
	SerialNumber    string          `json:"serial_number,omitempty"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	ReferenceType   string          `json:"reference_type"`
	ReferenceID     string          `json:"reference_id,omitempty"`
	Status          string          `json:"status"`
	Notes           string          `json:"notes,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// MovementFromEntity mapea la entidad a la salida HTTP.
func MovementFromEntity(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:              m.ID,
		ItemID:          m.ItemID,
		LocationID:      m.LocationID,
		Kind:            string(m.Kind),
		Quantity:        m.Quantity,
		SignedQuantity:  m.SignedQuantity(),
		UnitCost:        m.UnitCost,
		TotalCost:       m.TotalCost,
		BalanceAfter:    m.BalanceAfter,
		BatchNumber:     m.BatchNumber,
		SerialNumber:    m.SerialNumber,
		ExpiryDate:      m.ExpiryDate,
		ReferenceType:   m.ReferenceType,
		ReferenceID:     m.ReferenceID,
		Status:          m.Status,
		Notes:           m.Notes,
		TransactionDate: m.TransactionDate,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
	}
}

// MovementsFromEntities mapea una lista de movimientos.
func MovementsFromEntities(list []*entity.StockMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, MovementFromEntity(m))
	}
	return out
}

// BalanceResponse salida de un saldo.
type BalanceResponse struct {
	ItemID            string          `json:"item_id"`
	LocationID        string          `json:"location_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	AverageCost       decimal.Decimal `json:"average_cost"`
	TotalValue        decimal.Decimal `json:"total_value"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
	ReorderPoint      decimal.Decimal `json:"reorder_point"`
	IsLowStock        bool            `json:"is_low_stock"`
	IsOutOfStock      bool            `json:"is_out_of_stock"`
	LastRestockedAt   *time.Time      `json:"last_restocked_at,omitempty"`
	LastSoldAt        *time.Time      `json:"last_sold_at,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BalanceListResponse lista paginada de saldos.
type BalanceListResponse struct {
	Items []BalanceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// BalanceFromEntity mapea la entidad a la salida HTTP.
func BalanceFromEntity(b *entity.StockBalance) BalanceResponse {
	return BalanceResponse{
		ItemID:            b.ItemID,
		LocationID:        b.LocationID,
		Quantity:          b.Quantity,
		AverageCost:       b.AverageCost,
		TotalValue:        b.TotalValue,
		LowStockThreshold: b.LowStockThreshold,
		ReorderPoint:      b.ReorderPoint,
		IsLowStock:        b.IsLowStock,
		IsOutOfStock:      b.IsOutOfStock,
		LastRestockedAt:   b.LastRestockedAt,
		LastSoldAt:        b.LastSoldAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

// BalancesFromEntities mapea una lista de saldos.
func BalancesFromEntities(list []*entity.StockBalance) []BalanceResponse {
	out := make([]BalanceResponse, 0, len(list))
	for _, b := range list {
		out = append(out, BalanceFromEntity(b))
	}
	return out
}

// TransferResponse par de movimientos de una transferencia.
type TransferResponse struct {
	Reference string           `json:"reference"`
	Out       MovementResponse `json:"out"`
	In        MovementResponse `json:"in"`
}

// LocationValueDTO valorización por ubicación.
type LocationValueDTO struct {
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Value      decimal.Decimal `json:"value"`
}

// StatisticsResponse salida de GET /api/inventory/statistics.
type StatisticsResponse struct {
	Items           int                `json:"items"`
	Balances        int                `json:"balances"`
	TotalQuantity   decimal.Decimal    `json:"total_quantity"`
	TotalValue      decimal.Decimal    `json:"total_value"`
	LowStockCount   int                `json:"low_stock_count"`
	OutOfStockCount int                `json:"out_of_stock_count"`
	ValueByLocation []LocationValueDTO `json:"value_by_location"`
	MovementsByKind map[string]int     `json:"movements_by_kind"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un saldo en o bajo su punto de reorden.
type ReplenishmentSuggestionDTO struct {
	ItemID             string          `json:"item_id"`
	LocationID         string          `json:"location_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	ReorderPoint       decimal.Decimal `json:"reorder_point"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`          // ReorderPoint * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	GrossMarginPct     decimal.Decimal `json:"gross_margin_pct"`
	Priority           int             `json:"priority"` // 1 = más urgente
}
