package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// CreateSaleRequest body para POST /api/sales. branch_id vacío usa la sucursal del token.
type CreateSaleRequest struct {
	CustomerID string            `json:"customer_id,omitempty" validate:"max=100"`
	BranchID   string            `json:"branch_id,omitempty" validate:"max=100"`
	Lines      []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
	Notes      string            `json:"notes,omitempty" validate:"max=500"`
	Metadata   map[string]any    `json:"metadata,omitempty"`
}

// SaleLineRequest línea solicitada. unit_price nil usa el precio del catálogo;
// tax nil se calcula con la tasa del producto.
type SaleLineRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Discount  decimal.Decimal  `json:"discount"`
	Tax       *decimal.Decimal `json:"tax,omitempty"`
}

// RefundRequest body para POST /api/sales/:id/refund. Sin items = reembolso total.
type RefundRequest struct {
	Items  []RefundItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
	Reason string              `json:"reason" validate:"max=500"`
}

// RefundItemRequest producto y cantidad a reembolsar.
type RefundItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// SplitPaymentRequest body para POST /api/sales/:id/payments.
type SplitPaymentRequest struct {
	Splits []PaymentSplitRequest `json:"splits" validate:"required,min=1,dive"`
}

// PaymentSplitRequest un instrumento de pago.
type PaymentSplitRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" validate:"required,max=30"`
	Reference string          `json:"reference,omitempty" validate:"max=100"`
	Notes     string          `json:"notes,omitempty" validate:"max=500"`
}

// SaleListQuery filtros de GET /api/sales.
type SaleListQuery struct {
	Search        string `query:"search" validate:"max=100"`
	From          string `query:"from"`
	To            string `query:"to"`
	BranchID      string `query:"branchId"`
	PaymentStatus string `query:"paymentStatus" validate:"omitempty,oneof=pending partial paid refunded"`
	Kind          string `query:"kind" validate:"omitempty,oneof=sale return exchange"`
}

// SaleLineResponse salida de una línea.
type SaleLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	Tax       decimal.Decimal `json:"tax"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Total     decimal.Decimal `json:"total"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID            string             `json:"id"`
	SaleNumber    string             `json:"sale_number"`
	CustomerID    string             `json:"customer_id,omitempty"`
	CashierID     string             `json:"cashier_id"`
	BranchID      string             `json:"branch_id"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Tax           decimal.Decimal    `json:"tax"`
	Discount      decimal.Decimal    `json:"discount"`
	Total         decimal.Decimal    `json:"total"`
	PaymentStatus string             `json:"payment_status"`
	Kind          string             `json:"kind"`
	IsHeld        bool               `json:"is_held"`
	HeldAt        *time.Time         `json:"held_at,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	Metadata      map[string]any     `json:"metadata,omitempty"`
	Lines         []SaleLineResponse `json:"lines,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// SaleFromEntity mapea la entidad (con sus líneas, si vienen cargadas).
func SaleFromEntity(s *entity.Sale) SaleResponse {
	out := SaleResponse{
		ID:            s.ID,
		SaleNumber:    s.SaleNumber,
		CustomerID:    s.CustomerID,
		CashierID:     s.CashierID,
		BranchID:      s.BranchID,
		Subtotal:      s.Subtotal,
		Tax:           s.Tax,
		Discount:      s.Discount,
		Total:         s.Total,
		PaymentStatus: string(s.PaymentStatus),
		Kind:          string(s.Kind),
		IsHeld:        s.IsHeld,
		HeldAt:        s.HeldAt,
		Notes:         s.Notes,
		Metadata:      s.Metadata,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	for _, l := range s.Lines {
		out.Lines = append(out.Lines, SaleLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
			Tax:       l.Tax,
			Subtotal:  l.Subtotal,
			Total:     l.Total,
		})
	}
	return out
}

// RefundResponse venta original (ya reembolsada) y la venta de devolución creada.
type RefundResponse struct {
	Original SaleResponse `json:"original"`
	Return   SaleResponse `json:"return"`
}

// PaymentResponse salida de un pago.
type PaymentResponse struct {
	ID        string          `json:"id"`
	SaleID    string          `json:"sale_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	CreatedBy string          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}

// PaymentsFromEntities mapea pagos.
func PaymentsFromEntities(list []*entity.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, PaymentResponse{
			ID:        p.ID,
			SaleID:    p.SaleID,
			Amount:    p.Amount,
			Method:    p.Method,
			Reference: p.Reference,
			Notes:     p.Notes,
			CreatedBy: p.CreatedBy,
			CreatedAt: p.CreatedAt,
		})
	}
	return out
}

// SplitPaymentResponse venta actualizada y pagos registrados en esta operación.
type SplitPaymentResponse struct {
	Sale     SaleResponse      `json:"sale"`
	Payments []PaymentResponse `json:"payments"`
}
