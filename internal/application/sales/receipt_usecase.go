package sales

import (
	"context"
	"fmt"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

// ReceiptUseCase genera el comprobante PDF de una venta o devolución.
type ReceiptUseCase struct {
	saleRepo     repository.SaleRepository
	paymentRepo  repository.PaymentRepository
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	generator    ReceiptPDFGenerator
}

// NewReceiptUseCase construye el caso de uso inyectando todas sus dependencias.
func NewReceiptUseCase(
	saleRepo repository.SaleRepository,
	paymentRepo repository.PaymentRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	generator ReceiptPDFGenerator,
) *ReceiptUseCase {
	return &ReceiptUseCase{
		saleRepo:     saleRepo,
		paymentRepo:  paymentRepo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		generator:    generator,
	}
}

// DownloadReceipt arma los datos del comprobante y genera el PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrSaleNotFound     si la venta no existe.
func (uc *ReceiptUseCase) DownloadReceipt(ctx context.Context, saleID string) (pdfBytes []byte, filename string, err error) {
	// ── 1. Venta y líneas ─────────────────────────────────────────────────────
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("receipt: obtener venta: %w", err)
	}
	if sale == nil {
		return nil, "", domain.ErrSaleNotFound
	}
	rawLines, err := uc.saleRepo.GetLines(ctx, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("receipt: obtener líneas: %w", err)
	}
	sale.Lines = rawLines

	// ── 2. Sucursal (opcional en el comprobante) ──────────────────────────────
	branch, err := uc.locationRepo.GetByID(ctx, sale.BranchID)
	if err != nil {
		return nil, "", fmt.Errorf("receipt: obtener sucursal: %w", err)
	}

	// ── 3. Enriquecer líneas con nombre y SKU ─────────────────────────────────
	lines := make([]ReceiptLine, 0, len(rawLines))
	for _, l := range rawLines {
		rl := ReceiptLine{SaleLine: l, ProductName: "Producto " + l.ProductID}
		if product, pErr := uc.productRepo.GetByID(ctx, l.ProductID); pErr == nil && product != nil {
			rl.ProductName = product.Name
			rl.SKU = product.SKU
		}
		lines = append(lines, rl)
	}

	// ── 4. Pagos ──────────────────────────────────────────────────────────────
	payments, err := uc.paymentRepo.ListBySale(ctx, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("receipt: obtener pagos: %w", err)
	}

	// ── 5. Generar PDF ────────────────────────────────────────────────────────
	pdfBytes, err = uc.generator.GenerateReceiptPDF(ctx, &Receipt{
		Sale:     sale,
		Branch:   branch,
		Lines:    lines,
		Payments: payments,
	})
	if err != nil {
		return nil, "", fmt.Errorf("receipt: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("comprobante_%s.pdf", sale.SaleNumber), nil
}
