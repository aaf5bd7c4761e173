package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/inventory"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

// AdjustInput ajuste de saldo. Exactamente uno de Delta o CountedQuantity.
// CountedQuantity es el conteo físico: el delta es conteo − saldo actual.
type AdjustInput struct {
	ItemID          string
	LocationID      string
	Delta           *decimal.Decimal
	CountedQuantity *decimal.Decimal
	UnitCost        *decimal.Decimal
	Reason          string
	UserID          string
}

// Adjust registra un ajuste: delta positivo → adjustment; negativo → outbound-write-off
// con referencia adjustment.
func (uc *LedgerUseCase) Adjust(ctx context.Context, in AdjustInput) (*entity.StockMovement, error) {
	if in.ItemID == "" || in.LocationID == "" {
		return nil, fmt.Errorf("%w: producto y ubicación son obligatorios", domain.ErrInvalidInput)
	}
	if (in.Delta == nil) == (in.CountedQuantity == nil) {
		return nil, fmt.Errorf("%w: indique delta o cantidad contada", domain.ErrInvalidInput)
	}
	if in.CountedQuantity != nil && in.CountedQuantity.IsNegative() {
		return nil, fmt.Errorf("%w: cantidad contada negativa", domain.ErrInvalidInput)
	}
	if err := uc.checkLocations(ctx, in.LocationID); err != nil {
		return nil, err
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
		balance, err := balanceRepo.GetOrCreateForUpdate(ctx, inventory.NewBalance(in.ItemID, in.LocationID, product.ReorderLevel, uc.now()))
		if err != nil {
			return err
		}

		var delta decimal.Decimal
		if in.Delta != nil {
			delta = *in.Delta
		} else {
			delta = in.CountedQuantity.Sub(balance.Quantity)
		}
		if delta.IsZero() {
			return fmt.Errorf("%w: el ajuste no cambia el saldo", domain.ErrInvalidInput)
		}

		mi := MovementInput{
			ItemID:        in.ItemID,
			LocationID:    in.LocationID,
			Kind:          entity.MovementAdjustment,
			Quantity:      delta.Abs(),
			UnitCost:      in.UnitCost,
			ReferenceType: entity.ReferenceAdjustment,
			ReferenceID:   uuid.New().String(),
			Notes:         in.Reason,
			UserID:        in.UserID,
		}
		if delta.IsNegative() {
			mi.Kind = entity.MovementOutboundWriteOff
			mi.RequireStock = true
		}
		mov, err = uc.RecordInTx(ctx, movRepo, balanceRepo, productRepo, product, mi)
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// WriteOffInput baja de mercancía. Damaged usa outbound-damage.
type WriteOffInput struct {
	ItemID       string
	LocationID   string
	Quantity     decimal.Decimal
	Damaged      bool
	BatchNumber  string
	SerialNumber string
	Reason       string
	UserID       string
}

// WriteOff da de baja stock; se rechaza si el saldo no alcanza.
func (uc *LedgerUseCase) WriteOff(ctx context.Context, in WriteOffInput) (*entity.StockMovement, error) {
	kind := entity.MovementOutboundWriteOff
	if in.Damaged {
		kind = entity.MovementOutboundDamage
	}
	return uc.RecordMovement(ctx, MovementInput{
		ItemID:        in.ItemID,
		LocationID:    in.LocationID,
		Kind:          kind,
		Quantity:      in.Quantity,
		BatchNumber:   in.BatchNumber,
		SerialNumber:  in.SerialNumber,
		ReferenceType: entity.ReferenceWriteOff,
		ReferenceID:   uuid.New().String(),
		Notes:         in.Reason,
		UserID:        in.UserID,
		RequireStock:  true,
	})
}
