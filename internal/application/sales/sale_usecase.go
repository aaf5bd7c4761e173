package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/inventory"
	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	invdomain "github.com/jhoicas/Inventario-pos/internal/domain/inventory"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
	domainsales "github.com/jhoicas/Inventario-pos/internal/domain/sales"
	"github.com/jhoicas/Inventario-pos/pkg/logger"
)

// Config parámetros del motor de ventas.
type Config struct {
	NumberPrefix string // SAL
	MaxAttempts  int    // intentos ante número duplicado
}

// SaleUseCase motor de transacciones de venta: crea, retiene, reembolsa y cobra
// ventas, emitiendo los movimientos del libro de stock en la misma transacción.
type SaleUseCase struct {
	txRunner     SaleTxRunner
	ledger       StockLedger
	allocator    SaleNumberAllocator
	saleRepo     repository.SaleRepository
	paymentRepo  repository.PaymentRepository
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	log          *logger.Logger
	cfg          Config
	now          func() time.Time
}

// NewSaleUseCase construye el caso de uso inyectando sus dependencias.
func NewSaleUseCase(
	txRunner SaleTxRunner,
	ledger StockLedger,
	allocator SaleNumberAllocator,
	saleRepo repository.SaleRepository,
	paymentRepo repository.PaymentRepository,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	log *logger.Logger,
	cfg Config,
) *SaleUseCase {
	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = "SAL"
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SaleUseCase{
		txRunner:     txRunner,
		ledger:       ledger,
		allocator:    allocator,
		saleRepo:     saleRepo,
		paymentRepo:  paymentRepo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		log:          log.Component("sales"),
		cfg:          cfg,
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj del caso de uso.
func (uc *SaleUseCase) WithClock(now func() time.Time) *SaleUseCase {
	uc.now = now
	return uc
}

type saleTxFunc func(
	movRepo repository.StockMovementRepository,
	balanceRepo repository.StockBalanceRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	paymentRepo repository.PaymentRepository,
) error

// withSaleNumber asigna un número y ejecuta fn en una transacción. Si el número
// choca con la restricción única se pide otro y se repite la transacción completa.
func (uc *SaleUseCase) withSaleNumber(ctx context.Context, day time.Time, fn func(number string) saleTxFunc) error {
	var lastErr error
	for attempt := 1; attempt <= uc.cfg.MaxAttempts; attempt++ {
		seq, err := uc.allocator.Next(ctx, day)
		if err != nil {
			return fmt.Errorf("allocate sale number: %w", err)
		}
		number := FormatSaleNumber(uc.cfg.NumberPrefix, day, seq)
		err = uc.txRunner.RunSale(ctx, fn(number))
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateSaleNumber) {
			return err
		}
		lastErr = err
		uc.log.Warn().
			Str("sale_number", number).
			Int("attempt", attempt).
			Msg("número de venta duplicado, reintentando")
	}
	return fmt.Errorf("%w: %d intentos", lastErr, uc.cfg.MaxAttempts)
}

// Create registra una venta: valida productos y montos, bloquea los saldos de la
// sucursal, verifica existencias (salvo backorder), persiste cabecera y líneas y
// emite un outbound-sale por cada línea con inventario controlado.
func (uc *SaleUseCase) Create(ctx context.Context, cashierID, branchID string, in dto.CreateSaleRequest) (*entity.Sale, error) {
	if in.BranchID != "" {
		branchID = in.BranchID
	}
	if cashierID == "" || branchID == "" {
		return nil, fmt.Errorf("%w: cajero y sucursal son obligatorios", domain.ErrInvalidInput)
	}
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: la venta no tiene líneas", domain.ErrInvalidInput)
	}
	branch, err := uc.locationRepo.GetByID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.ErrLocationNotFound
	}

	// Productos y montos se validan fuera de la tx (solo lectura).
	products := make(map[string]*entity.Product, len(in.Lines))
	lines := make([]entity.SaleLine, 0, len(in.Lines))
	for i, req := range in.Lines {
		product, ok := products[req.ProductID]
		if !ok {
			product, err = uc.productRepo.GetByID(ctx, req.ProductID)
			if err != nil {
				return nil, err
			}
			if product == nil {
				return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, req.ProductID)
			}
			products[req.ProductID] = product
		}
		price := product.Price
		if req.UnitPrice != nil {
			price = *req.UnitPrice
		}
		line, err := domainsales.BuildLine(domainsales.LineInput{
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			UnitPrice: price,
			Discount:  req.Discount,
			Tax:       req.Tax,
			TaxRate:   product.NormalizedTaxRate(),
		})
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
		line.LineNo = i + 1
		lines = append(lines, line)
	}

	now := uc.now()
	var sale *entity.Sale
	err = uc.withSaleNumber(ctx, now, func(number string) saleTxFunc {
		return func(
			movRepo repository.StockMovementRepository,
			balanceRepo repository.StockBalanceRepository,
			productRepo repository.ProductRepository,
			saleRepo repository.SaleRepository,
			_ repository.PaymentRepository,
		) error {
			if err := uc.reserveStock(ctx, balanceRepo, products, lines, branchID, now); err != nil {
				return err
			}

			sale = &entity.Sale{
				ID:            uuid.New().String(),
				SaleNumber:    number,
				CustomerID:    in.CustomerID,
				CashierID:     cashierID,
				BranchID:      branchID,
				PaymentStatus: entity.PaymentPending,
				Kind:          entity.SaleKindSale,
				Notes:         in.Notes,
				Metadata:      in.Metadata,
				Lines:         append([]entity.SaleLine(nil), lines...),
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			domainsales.ApplyTotals(sale)
			if err := persistSale(ctx, saleRepo, sale); err != nil {
				return err
			}

			for _, l := range sale.Lines {
				product := products[l.ProductID]
				if !product.TrackInventory {
					continue
				}
				if _, err := uc.ledger.RecordInTx(ctx, movRepo, balanceRepo, productRepo, product, inventory.MovementInput{
					ItemID:        l.ProductID,
					LocationID:    branchID,
					Kind:          entity.MovementOutboundSale,
					Quantity:      l.Quantity,
					ReferenceType: entity.ReferenceSale,
					ReferenceID:   sale.ID,
					Notes:         number,
					UserID:        cashierID,
				}); err != nil {
					return err
				}
			}
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// reserveStock bloquea los saldos de la sucursal en orden de producto y verifica
// que cubran la cantidad pedida (sumando líneas repetidas del mismo producto).
func (uc *SaleUseCase) reserveStock(
	ctx context.Context,
	balanceRepo repository.StockBalanceRepository,
	products map[string]*entity.Product,
	lines []entity.SaleLine,
	branchID string,
	now time.Time,
) error {
	requested := make(map[string]decimal.Decimal)
	for _, l := range lines {
		if products[l.ProductID].TrackInventory {
			requested[l.ProductID] = requested[l.ProductID].Add(l.Quantity)
		}
	}
	ids := make([]string, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		product := products[id]
		balance, err := balanceRepo.GetOrCreateForUpdate(ctx, invdomain.NewBalance(id, branchID, product.ReorderLevel, now))
		if err != nil {
			return err
		}
		if product.AllowBackorder {
			continue
		}
		if err := invdomain.CheckAvailable(balance, requested[id]); err != nil {
			return fmt.Errorf("%s: %w", product.SKU, err)
		}
	}
	return nil
}

func persistSale(ctx context.Context, saleRepo repository.SaleRepository, sale *entity.Sale) error {
	if err := saleRepo.Create(ctx, sale); err != nil {
		return err
	}
	for i := range sale.Lines {
		l := &sale.Lines[i]
		l.ID = uuid.New().String()
		l.SaleID = sale.ID
		if err := saleRepo.CreateLine(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

// Hold pone la venta en espera. No toca el stock.
func (uc *SaleUseCase) Hold(ctx context.Context, id string) (*entity.Sale, error) {
	return uc.mutate(ctx, id, func(s *entity.Sale, now time.Time) error {
		if err := domainsales.CanHold(s); err != nil {
			return err
		}
		s.IsHeld = true
		s.HeldAt = &now
		return nil
	})
}

// Resume reanuda una venta en espera.
func (uc *SaleUseCase) Resume(ctx context.Context, id string) (*entity.Sale, error) {
	return uc.mutate(ctx, id, func(s *entity.Sale, _ time.Time) error {
		if err := domainsales.CanResume(s); err != nil {
			return err
		}
		s.IsHeld = false
		s.HeldAt = nil
		return nil
	})
}

// mutate bloquea la cabecera, aplica fn y persiste.
func (uc *SaleUseCase) mutate(ctx context.Context, id string, fn func(s *entity.Sale, now time.Time) error) (*entity.Sale, error) {
	var sale *entity.Sale
	err := uc.txRunner.RunSale(ctx, func(
		_ repository.StockMovementRepository,
		_ repository.StockBalanceRepository,
		_ repository.ProductRepository,
		saleRepo repository.SaleRepository,
		_ repository.PaymentRepository,
	) error {
		var err error
		sale, err = lockSale(ctx, saleRepo, id)
		if err != nil {
			return err
		}
		now := uc.now()
		if err := fn(sale, now); err != nil {
			return err
		}
		sale.UpdatedAt = now
		return saleRepo.Update(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func lockSale(ctx context.Context, saleRepo repository.SaleRepository, id string) (*entity.Sale, error) {
	sale, err := saleRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrSaleNotFound
	}
	return sale, nil
}

// SplitPayment registra uno o varios pagos contra la venta. La suma de lo ya
// pagado más los nuevos pagos no puede superar el total.
func (uc *SaleUseCase) SplitPayment(ctx context.Context, id, userID string, in dto.SplitPaymentRequest) (*entity.Sale, []*entity.Payment, error) {
	if len(in.Splits) == 0 {
		return nil, nil, fmt.Errorf("%w: sin pagos", domain.ErrInvalidInput)
	}
	incoming := decimal.Zero
	for i, sp := range in.Splits {
		if !sp.Amount.IsPositive() {
			return nil, nil, fmt.Errorf("%w: pago %d con monto no positivo", domain.ErrInvalidInput, i+1)
		}
		if sp.Method == "" {
			return nil, nil, fmt.Errorf("%w: pago %d sin método", domain.ErrInvalidInput, i+1)
		}
		incoming = incoming.Add(sp.Amount)
	}

	var sale *entity.Sale
	var created []*entity.Payment
	err := uc.txRunner.RunSale(ctx, func(
		_ repository.StockMovementRepository,
		_ repository.StockBalanceRepository,
		_ repository.ProductRepository,
		saleRepo repository.SaleRepository,
		paymentRepo repository.PaymentRepository,
	) error {
		var err error
		sale, err = lockSale(ctx, saleRepo, id)
		if err != nil {
			return err
		}
		if err := domainsales.CanPay(sale); err != nil {
			return err
		}
		paid, err := paymentRepo.SumBySale(ctx, id)
		if err != nil {
			return err
		}
		after := paid.Add(incoming)
		if after.GreaterThan(sale.Total) {
			return fmt.Errorf("%w: pagado %s + %s > total %s", domain.ErrPaymentExceedsTotal, paid, incoming, sale.Total)
		}

		now := uc.now()
		for _, sp := range in.Splits {
			p := &entity.Payment{
				ID:        uuid.New().String(),
				SaleID:    id,
				Amount:    sp.Amount,
				Method:    sp.Method,
				Reference: sp.Reference,
				Notes:     sp.Notes,
				CreatedBy: userID,
				CreatedAt: now,
			}
			if err := paymentRepo.Create(ctx, p); err != nil {
				return err
			}
			created = append(created, p)
		}
		sale.PaymentStatus = domainsales.StatusForPaid(after, sale.Total)
		sale.UpdatedAt = now
		return saleRepo.Update(ctx, sale)
	})
	if err != nil {
		return nil, nil, err
	}
	return sale, created, nil
}

// RefundResult venta original (ya reembolsada) y la venta de devolución.
type RefundResult struct {
	Original *entity.Sale
	Return   *entity.Sale
}

// Refund reembolsa la venta total o parcialmente. Crea una venta kind=return con
// las líneas escaladas, devuelve el stock a la sucursal original con inbound-return
// y marca la original como reembolsada.
func (uc *SaleUseCase) Refund(ctx context.Context, id, userID string, in dto.RefundRequest) (*RefundResult, error) {
	requested, order, err := groupRefundItems(in.Items)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	res := &RefundResult{}
	err = uc.withSaleNumber(ctx, now, func(number string) saleTxFunc {
		return func(
			movRepo repository.StockMovementRepository,
			balanceRepo repository.StockBalanceRepository,
			productRepo repository.ProductRepository,
			saleRepo repository.SaleRepository,
			_ repository.PaymentRepository,
		) error {
			original, err := lockSale(ctx, saleRepo, id)
			if err != nil {
				return err
			}
			if err := domainsales.CanRefund(original); err != nil {
				return err
			}
			if original.Lines, err = saleRepo.GetLines(ctx, id); err != nil {
				return err
			}
			retLines, err := refundLines(original.Lines, requested, order)
			if err != nil {
				return err
			}

			ret := &entity.Sale{
				ID:            uuid.New().String(),
				SaleNumber:    number,
				CustomerID:    original.CustomerID,
				CashierID:     userID,
				BranchID:      original.BranchID,
				PaymentStatus: entity.PaymentRefunded,
				Kind:          entity.SaleKindReturn,
				Notes:         in.Reason,
				Metadata: map[string]any{
					entity.MetaOriginalSaleID:     original.ID,
					entity.MetaOriginalSaleNumber: original.SaleNumber,
					entity.MetaRefundReason:       in.Reason,
				},
				Lines:     retLines,
				CreatedAt: now,
				UpdatedAt: now,
			}
			domainsales.ApplyTotals(ret)
			if err := persistSale(ctx, saleRepo, ret); err != nil {
				return err
			}

			// Movimientos en orden de producto, igual que en Create.
			byProduct := append([]entity.SaleLine(nil), ret.Lines...)
			sort.SliceStable(byProduct, func(i, j int) bool { return byProduct[i].ProductID < byProduct[j].ProductID })
			for _, l := range byProduct {
				product, err := productRepo.GetByID(ctx, l.ProductID)
				if err != nil {
					return err
				}
				if product == nil || !product.TrackInventory {
					continue
				}
				if _, err := uc.ledger.RecordInTx(ctx, movRepo, balanceRepo, productRepo, product, inventory.MovementInput{
					ItemID:        l.ProductID,
					LocationID:    original.BranchID,
					Kind:          entity.MovementInboundReturn,
					Quantity:      l.Quantity,
					ReferenceType: entity.ReferenceReturn,
					ReferenceID:   ret.ID,
					Notes:         in.Reason,
					UserID:        userID,
				}); err != nil {
					return err
				}
			}

			if original.Metadata == nil {
				original.Metadata = map[string]any{}
			}
			original.Metadata[entity.MetaRefundSaleID] = ret.ID
			original.PaymentStatus = entity.PaymentRefunded
			original.UpdatedAt = now
			if err := saleRepo.Update(ctx, original); err != nil {
				return err
			}
			res.Original, res.Return = original, ret
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// groupRefundItems suma las cantidades pedidas por producto conservando el orden de llegada.
func groupRefundItems(items []dto.RefundItemRequest) (map[string]decimal.Decimal, []string, error) {
	requested := make(map[string]decimal.Decimal, len(items))
	var order []string
	for _, it := range items {
		if it.ProductID == "" || !it.Quantity.IsPositive() {
			return nil, nil, fmt.Errorf("%w: producto y cantidad positiva son obligatorios", domain.ErrInvalidInput)
		}
		if _, ok := requested[it.ProductID]; !ok {
			order = append(order, it.ProductID)
		}
		requested[it.ProductID] = requested[it.ProductID].Add(it.Quantity)
	}
	return requested, order, nil
}

// refundLines arma las líneas de la devolución. Sin pedidos es un reembolso total;
// si no, la cantidad de cada producto se reparte entre sus líneas en orden.
func refundLines(original []entity.SaleLine, requested map[string]decimal.Decimal, order []string) ([]entity.SaleLine, error) {
	var out []entity.SaleLine
	if len(order) == 0 {
		for _, l := range original {
			out = append(out, domainsales.ScaleLine(l, l.Quantity))
		}
		return numberLines(out), nil
	}
	for _, productID := range order {
		remaining := requested[productID]
		sold := decimal.Zero
		for _, l := range original {
			if l.ProductID == productID {
				sold = sold.Add(l.Quantity)
			}
		}
		if sold.IsZero() {
			return nil, fmt.Errorf("%w: %s", domain.ErrRefundItemNotInSale, productID)
		}
		if remaining.GreaterThan(sold) {
			return nil, fmt.Errorf("%w: %s pide %s, vendido %s", domain.ErrRefundQtyExceeded, productID, remaining, sold)
		}
		for _, l := range original {
			if l.ProductID != productID || !remaining.IsPositive() {
				continue
			}
			q := decimal.Min(remaining, l.Quantity)
			out = append(out, domainsales.ScaleLine(l, q))
			remaining = remaining.Sub(q)
		}
	}
	return numberLines(out), nil
}

func numberLines(lines []entity.SaleLine) []entity.SaleLine {
	for i := range lines {
		lines[i].LineNo = i + 1
	}
	return lines
}

// Delete elimina una venta no pagada. Los movimientos de la venta se anulan
// (reversa) en la misma transacción.
func (uc *SaleUseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.RunSale(ctx, func(
		movRepo repository.StockMovementRepository,
		balanceRepo repository.StockBalanceRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		_ repository.PaymentRepository,
	) error {
		sale, err := lockSale(ctx, saleRepo, id)
		if err != nil {
			return err
		}
		if err := domainsales.CanDelete(sale); err != nil {
			return err
		}
		movs, err := movRepo.ListByReference(ctx, entity.ReferenceSale, id)
		if err != nil {
			return err
		}
		for _, m := range movs {
			if m.Status == entity.MovementStatusCancelled {
				continue
			}
			if _, err := uc.ledger.CancelInTx(ctx, movRepo, balanceRepo, productRepo, m.ID); err != nil {
				return err
			}
		}
		return saleRepo.Delete(ctx, id)
	})
}

// Get devuelve la venta con sus líneas.
func (uc *SaleUseCase) Get(ctx context.Context, id string) (*entity.Sale, error) {
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrSaleNotFound
	}
	if sale.Lines, err = uc.saleRepo.GetLines(ctx, id); err != nil {
		return nil, err
	}
	return sale, nil
}

// List lista ventas (sin líneas) con filtros y paginación.
func (uc *SaleUseCase) List(ctx context.Context, filter repository.SaleFilter) ([]*entity.Sale, int, error) {
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		return nil, 0, fmt.Errorf("%w: estado de pago %q", domain.ErrInvalidInput, filter.PaymentStatus)
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, 0, fmt.Errorf("%w: tipo de venta %q", domain.ErrInvalidInput, filter.Kind)
	}
	return uc.saleRepo.List(ctx, filter)
}

// Payments lista los pagos de una venta.
func (uc *SaleUseCase) Payments(ctx context.Context, id string) ([]*entity.Payment, error) {
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrSaleNotFound
	}
	return uc.paymentRepo.ListBySale(ctx, id)
}
