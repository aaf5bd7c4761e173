package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/inventory"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

// TransferInput entrada de una transferencia entre ubicaciones.
type TransferInput struct {
	ItemID         string
	FromLocationID string
	ToLocationID   string
	Quantity       decimal.Decimal
	BatchNumber    string
	Notes          string
	UserID         string
}

// TransferResult par de movimientos que comparten la referencia.
type TransferResult struct {
	Reference string
	Out       *entity.StockMovement
	In        *entity.StockMovement
}

// Transfer resta en origen y suma en destino en la misma transacción. La entrada
// se valoriza al costo promedio del origen, así el destino pondera con él.
func (uc *LedgerUseCase) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if in.ItemID == "" || in.FromLocationID == "" || in.ToLocationID == "" {
		return nil, fmt.Errorf("%w: producto, origen y destino son obligatorios", domain.ErrInvalidInput)
	}
	if in.FromLocationID == in.ToLocationID {
		return nil, fmt.Errorf("%w: origen y destino iguales", domain.ErrInvalidInput)
	}
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if err := uc.checkLocations(ctx, in.FromLocationID, in.ToLocationID); err != nil {
		return nil, err
	}

	res := &TransferResult{Reference: uuid.New().String()}
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

		// Bloqueo en orden fijo para que dos transferencias cruzadas no se bloqueen mutuamente.
		now := uc.now()
		locs := []string{in.FromLocationID, in.ToLocationID}
		sort.Strings(locs)
		locked := make(map[string]*entity.StockBalance, 2)
		for _, loc := range locs {
			b, err := balanceRepo.GetOrCreateForUpdate(ctx, inventory.NewBalance(in.ItemID, loc, product.ReorderLevel, now))
			if err != nil {
				return err
			}
			locked[loc] = b
		}
		source := locked[in.FromLocationID]
		if err := inventory.CheckAvailable(source, in.Quantity); err != nil {
			return err
		}
		unitCost := source.AverageCost

		base := MovementInput{
			ItemID:        in.ItemID,
			Quantity:      in.Quantity,
			UnitCost:      &unitCost,
			BatchNumber:   in.BatchNumber,
			ReferenceType: entity.ReferenceTransfer,
			ReferenceID:   res.Reference,
			Notes:         in.Notes,
			UserID:        in.UserID,
		}
		out := base
		out.LocationID = in.FromLocationID
		out.Kind = entity.MovementTransferOut
		out.RequireStock = true
		if res.Out, err = uc.RecordInTx(ctx, movRepo, balanceRepo, productRepo, product, out); err != nil {
			return err
		}
		into := base
		into.LocationID = in.ToLocationID
		into.Kind = entity.MovementTransferIn
		res.In, err = uc.RecordInTx(ctx, movRepo, balanceRepo, productRepo, product, into)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
