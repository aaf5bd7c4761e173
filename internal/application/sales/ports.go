package sales

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-pos/internal/application/inventory"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

// SaleTxRunner ejecuta una función dentro de una transacción que incluye repos del libro de stock y de ventas.
type SaleTxRunner interface {
	RunSale(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		balanceRepo repository.StockBalanceRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		paymentRepo repository.PaymentRepository,
	) error) error
}

// StockLedger interfaz para integrar ventas con el libro de stock.
// Ambos métodos usan los repositorios del caller (misma transacción); si
// retornan error el caller debe hacer rollback.
type StockLedger interface {
	RecordInTx(
		ctx context.Context,
		movRepo repository.StockMovementRepository,
		balanceRepo repository.StockBalanceRepository,
		productRepo repository.ProductRepository,
		product *entity.Product,
		in inventory.MovementInput,
	) (*entity.StockMovement, error)
	CancelInTx(
		ctx context.Context,
		movRepo repository.StockMovementRepository,
		balanceRepo repository.StockBalanceRepository,
		productRepo repository.ProductRepository,
		id string,
	) (*entity.StockMovement, error)
}

// SaleNumberAllocator entrega el siguiente consecutivo del día de forma atómica.
// Los consecutivos de transacciones abortadas no se reutilizan (puede haber huecos).
type SaleNumberAllocator interface {
	Next(ctx context.Context, day time.Time) (int64, error)
}

// ReceiptPDFGenerator genera el comprobante de una venta.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, receipt *Receipt) ([]byte, error)
}

// ReceiptLine línea del comprobante enriquecida con datos del catálogo.
type ReceiptLine struct {
	entity.SaleLine
	ProductName string
	SKU         string
}

// Receipt datos completos para el comprobante.
type Receipt struct {
	Sale     *entity.Sale
	Branch   *entity.Location
	Lines    []ReceiptLine
	Payments []*entity.Payment
}
