package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/inventory"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

// LedgerUseCase registra movimientos del libro de stock de forma transaccional:
// bloquea el saldo (SELECT FOR UPDATE), aplica el delta con signo, guarda el
// movimiento y refresca la proyección de existencias del catálogo en la misma tx.
type LedgerUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	movRepo      repository.StockMovementRepository
	balanceRepo  repository.StockBalanceRepository
	expiryDays   int
	now          func() time.Time
}

// NewLedgerUseCase construye el caso de uso. Los repos sueltos (fuera de tx) se usan para lecturas.
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	movRepo repository.StockMovementRepository,
	balanceRepo repository.StockBalanceRepository,
	expiryDays int,
) *LedgerUseCase {
	if expiryDays <= 0 {
		expiryDays = 30
	}
	return &LedgerUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		movRepo:      movRepo,
		balanceRepo:  balanceRepo,
		expiryDays:   expiryDays,
		now:          time.Now,
	}
}

// WithClock reemplaza el reloj del caso de uso.
func (uc *LedgerUseCase) WithClock(now func() time.Time) *LedgerUseCase {
	uc.now = now
	return uc
}

// MovementInput entrada para registrar un movimiento.
// UnitCost nil: costo del catálogo en compras, costo promedio vigente en el resto.
type MovementInput struct {
	ItemID          string
	LocationID      string
	Kind            entity.MovementKind
	Quantity        decimal.Decimal
	UnitCost        *decimal.Decimal
	BatchNumber     string
	SerialNumber    string
	ExpiryDate      *time.Time
	ReferenceType   string
	ReferenceID     string
	Pending         bool
	Notes           string
	TransactionDate *time.Time
	UserID          string
	// RequireStock rechaza salidas que el saldo no cubre.
	RequireStock bool
}

func validateMovement(in MovementInput) error {
	if in.ItemID == "" || in.LocationID == "" {
		return fmt.Errorf("%w: producto y ubicación son obligatorios", domain.ErrInvalidInput)
	}
	if !in.Kind.Valid() {
		return fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, in.Kind)
	}
	if !in.Quantity.IsPositive() {
		return fmt.Errorf("%w: la cantidad debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return fmt.Errorf("%w: costo unitario negativo", domain.ErrInvalidInput)
	}
	return nil
}

// requiresStock: bajas y daños manuales no pueden dejar saldo negativo.
func requiresStock(kind entity.MovementKind) bool {
	return kind == entity.MovementOutboundDamage || kind == entity.MovementOutboundWriteOff
}

func resolveUnitCost(in MovementInput, product *entity.Product, averageCost decimal.Decimal) decimal.Decimal {
	if in.UnitCost != nil {
		return *in.UnitCost
	}
	if in.Kind == entity.MovementInboundPurchase {
		return product.Cost
	}
	return averageCost
}

// RecordMovement registra un movimiento manual. Las transferencias van por Transfer.
func (uc *LedgerUseCase) RecordMovement(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	if in.Kind == entity.MovementTransferIn || in.Kind == entity.MovementTransferOut {
		return nil, fmt.Errorf("%w: las transferencias se registran en pareja con /transfers", domain.ErrInvalidInput)
	}
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	if err := uc.checkLocations(ctx, in.LocationID); err != nil {
		return nil, err
	}
	if requiresStock(in.Kind) {
		in.RequireStock = true
	}

	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		balanceRepo repository.StockBalanceRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.GetByID(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrItemNotFound
		}
		mov, err = uc.RecordInTx(ctx, movRepo, balanceRepo, productRepo, product, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// RecordInTx registra un movimiento usando los repositorios del caller (misma transacción).
// Lo usan las operaciones del libro y el motor de ventas; si retorna error el caller hace rollback.
func (uc *LedgerUseCase) RecordInTx(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	balanceRepo repository.StockBalanceRepository,
	productRepo repository.ProductRepository,
	product *entity.Product,
	in MovementInput,
) (*entity.StockMovement, error) {
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	now := uc.now()
	txDate := now
	if in.TransactionDate != nil {
		txDate = *in.TransactionDate
	}
	refType := in.ReferenceType
	if refType == "" {
		refType = entity.ReferenceManual
	}
	mov := &entity.StockMovement{
		ID:              uuid.New().String(),
		ItemID:          in.ItemID,
		LocationID:      in.LocationID,
		Kind:            in.Kind,
		Quantity:        in.Quantity,
		BatchNumber:     in.BatchNumber,
		SerialNumber:    in.SerialNumber,
		ExpiryDate:      in.ExpiryDate,
		ReferenceType:   refType,
		ReferenceID:     in.ReferenceID,
		Status:          entity.MovementStatusCompleted,
		Notes:           in.Notes,
		TransactionDate: txDate,
		CreatedBy:       in.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// Pendiente: sin efecto en el saldo hasta CompleteMovement.
	if in.Pending {
		current, avg := decimal.Zero, decimal.Zero
		b, err := balanceRepo.Get(ctx, in.ItemID, in.LocationID)
		if err != nil {
			return nil, err
		}
		if b != nil {
			current, avg = b.Quantity, b.AverageCost
		}
		mov.Status = entity.MovementStatusPending
		mov.UnitCost = resolveUnitCost(in, product, avg)
		mov.TotalCost = mov.Quantity.Mul(mov.UnitCost)
		mov.BalanceAfter = current
		if err := movRepo.Create(ctx, mov); err != nil {
			return nil, err
		}
		return mov, nil
	}

	balance, err := balanceRepo.GetOrCreateForUpdate(ctx, inventory.NewBalance(in.ItemID, in.LocationID, product.ReorderLevel, now))
	if err != nil {
		return nil, err
	}
	if in.RequireStock && !in.Kind.IsInbound() {
		if err := inventory.CheckAvailable(balance, in.Quantity); err != nil {
			return nil, err
		}
	}
	unitCost := resolveUnitCost(in, product, balance.AverageCost)
	after, err := inventory.Apply(balance, in.Kind, in.Quantity, unitCost, txDate)
	if err != nil {
		return nil, err
	}
	if err := balanceRepo.Update(ctx, balance); err != nil {
		return nil, err
	}
	mov.UnitCost = unitCost
	mov.TotalCost = in.Quantity.Mul(unitCost)
	mov.BalanceAfter = after
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	if err := refreshOnHand(ctx, balanceRepo, productRepo, in.ItemID); err != nil {
		return nil, err
	}
	return mov, nil
}

// refreshOnHand recalcula la proyección del catálogo desde los saldos del libro.
func refreshOnHand(ctx context.Context, balanceRepo repository.StockBalanceRepository, productRepo repository.ProductRepository, itemID string) error {
	total, err := balanceRepo.SumQuantityByItem(ctx, itemID)
	if err != nil {
		return err
	}
	return productRepo.UpdateOnHand(ctx, itemID, total)
}

// reverseInTx aplica el delta inverso de un movimiento completado.
func (uc *LedgerUseCase) reverseInTx(
	ctx context.Context,
	balanceRepo repository.StockBalanceRepository,
	productRepo repository.ProductRepository,
	mov *entity.StockMovement,
	at time.Time,
) error {
	balance, err := balanceRepo.GetOrCreateForUpdate(ctx, inventory.NewBalance(mov.ItemID, mov.LocationID, decimal.Zero, at))
	if err != nil {
		return err
	}
	if _, err := inventory.Reverse(balance, mov.Kind, mov.Quantity, at); err != nil {
		return err
	}
	if err := balanceRepo.Update(ctx, balance); err != nil {
		return err
	}
	return refreshOnHand(ctx, balanceRepo, productRepo, mov.ItemID)
}

// CancelMovement revierte un movimiento y lo marca anulado.
// Anular dos veces se rechaza con ErrMovementCancelled.
func (uc *LedgerUseCase) CancelMovement(ctx context.Context, id string) (*entity.StockMovement, error) {
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		balanceRepo repository.StockBalanceRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		mov, err = uc.CancelInTx(ctx, movRepo, balanceRepo, productRepo, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// DeleteMovement es un borrado lógico: mismas reglas que CancelMovement.
func (uc *LedgerUseCase) DeleteMovement(ctx context.Context, id string) (*entity.StockMovement, error) {
	return uc.CancelMovement(ctx, id)
}

// CancelInTx anula un movimiento dentro de la transacción del caller.
// Un pendiente se anula sin tocar el saldo.
func (uc *LedgerUseCase) CancelInTx(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	balanceRepo repository.StockBalanceRepository,
	productRepo repository.ProductRepository,
	id string,
) (*entity.StockMovement, error) {
	mov, err := movRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrMovementNotFound
	}
	if mov.Status == entity.MovementStatusCancelled {
		return nil, domain.ErrMovementCancelled
	}
	now := uc.now()
	if mov.Completed() {
		if err := uc.reverseInTx(ctx, balanceRepo, productRepo, mov, now); err != nil {
			return nil, err
		}
	}
	if err := movRepo.MarkCancelled(ctx, id, now); err != nil {
		return nil, err
	}
	mov.Status = entity.MovementStatusCancelled
	mov.UpdatedAt = now
	return mov, nil
}

// CompleteMovement aplica al saldo un movimiento pendiente.
func (uc *LedgerUseCase) CompleteMovement(ctx context.Context, id string) (*entity.StockMovement, error) {
	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		balanceRepo repository.StockBalanceRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		mov, err = movRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrMovementNotFound
		}
		switch mov.Status {
		case entity.MovementStatusPending:
		case entity.MovementStatusCancelled:
			return domain.ErrMovementCancelled
		default:
			return domain.ErrMovementNotPending
		}
		product, err := productRepo.GetByID(ctx, mov.ItemID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrItemNotFound
		}

		now := uc.now()
		balance, err := balanceRepo.GetOrCreateForUpdate(ctx, inventory.NewBalance(mov.ItemID, mov.LocationID, product.ReorderLevel, now))
		if err != nil {
			return err
		}
		if requiresStock(mov.Kind) {
			if err := inventory.CheckAvailable(balance, mov.Quantity); err != nil {
				return err
			}
		}
		after, err := inventory.Apply(balance, mov.Kind, mov.Quantity, mov.UnitCost, now)
		if err != nil {
			return err
		}
		if err := balanceRepo.Update(ctx, balance); err != nil {
			return err
		}
		if err := movRepo.MarkCompleted(ctx, id, after, now); err != nil {
			return err
		}
		mov.Status = entity.MovementStatusCompleted
		mov.BalanceAfter = after
		mov.UpdatedAt = now
		return refreshOnHand(ctx, balanceRepo, productRepo, mov.ItemID)
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// CorrectMovement corrige un movimiento sin editar la historia: anula el original
// (reversa) y registra uno nuevo con referencia movement-correction al original.
// Los campos vacíos de in se toman del original.
func (uc *LedgerUseCase) CorrectMovement(ctx context.Context, id string, in MovementInput) (*entity.StockMovement, error) {
	if in.Kind == entity.MovementTransferIn || in.Kind == entity.MovementTransferOut {
		return nil, fmt.Errorf("%w: una transferencia no se corrige, se anula", domain.ErrInvalidInput)
	}
	if in.LocationID != "" {
		if err := uc.checkLocations(ctx, in.LocationID); err != nil {
			return nil, err
		}
	}

	var corrected *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		balanceRepo repository.StockBalanceRepository,
		productRepo repository.ProductRepository,
	) error {
		orig, err := movRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if orig == nil {
			return domain.ErrMovementNotFound
		}
		if orig.Kind == entity.MovementTransferIn || orig.Kind == entity.MovementTransferOut {
			return fmt.Errorf("%w: una transferencia no se corrige, se anula", domain.ErrInvalidInput)
		}
		if _, err := uc.CancelInTx(ctx, movRepo, balanceRepo, productRepo, id); err != nil {
			return err
		}

		next := mergeCorrection(orig, in)
		product, err := productRepo.GetByID(ctx, next.ItemID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrItemNotFound
		}
		corrected, err = uc.RecordInTx(ctx, movRepo, balanceRepo, productRepo, product, next)
		return err
	})
	if err != nil {
		return nil, err
	}
	return corrected, nil
}

func mergeCorrection(orig *entity.StockMovement, in MovementInput) MovementInput {
	out := in
	out.ItemID = orig.ItemID
	if out.LocationID == "" {
		out.LocationID = orig.LocationID
	}
	if out.Kind == "" {
		out.Kind = orig.Kind
	}
	if out.Quantity.IsZero() {
		out.Quantity = orig.Quantity
	}
	if out.UnitCost == nil {
		c := orig.UnitCost
		out.UnitCost = &c
	}
	if out.BatchNumber == "" {
		out.BatchNumber = orig.BatchNumber
	}
	if out.SerialNumber == "" {
		out.SerialNumber = orig.SerialNumber
	}
	if out.ExpiryDate == nil {
		out.ExpiryDate = orig.ExpiryDate
	}
	if out.Notes == "" {
		out.Notes = orig.Notes
	}
	out.ReferenceType = entity.ReferenceMovementCorrection
	out.ReferenceID = orig.ID
	out.RequireStock = requiresStock(out.Kind)
	return out
}

// checkLocations valida que las ubicaciones existan.
func (uc *LedgerUseCase) checkLocations(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		loc, err := uc.locationRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if loc == nil {
			return domain.ErrLocationNotFound
		}
	}
	return nil
}
