package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/inventory"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

// GetMovement devuelve un movimiento por ID.
func (uc *LedgerUseCase) GetMovement(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrMovementNotFound
	}
	return m, nil
}

// ListMovements lista movimientos con filtros y paginación.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	return uc.movRepo.List(ctx, filter)
}

// GetBalance devuelve el saldo del par (producto, ubicación).
func (uc *LedgerUseCase) GetBalance(ctx context.Context, itemID, locationID string) (*entity.StockBalance, error) {
	b, err := uc.balanceRepo.Get(ctx, itemID, locationID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrBalanceNotFound
	}
	return b, nil
}

// ListBalances lista saldos filtrando por producto y/o ubicación.
func (uc *LedgerUseCase) ListBalances(ctx context.Context, filter repository.BalanceFilter) ([]*entity.StockBalance, int, error) {
	return uc.balanceRepo.List(ctx, filter)
}

// ThresholdsInput umbrales de un saldo.
type ThresholdsInput struct {
	ItemID            string
	LocationID        string
	LowStockThreshold decimal.Decimal
	ReorderPoint      decimal.Decimal
}

// SetThresholds fija umbral de stock bajo y punto de reorden; crea el saldo si no existe.
func (uc *LedgerUseCase) SetThresholds(ctx context.Context, in ThresholdsInput) (*entity.StockBalance, error) {
	if in.ItemID == "" || in.LocationID == "" {
		return nil, fmt.Errorf("%w: producto y ubicación son obligatorios", domain.ErrInvalidInput)
	}
	if err := uc.checkLocations(ctx, in.LocationID); err != nil {
		return nil, err
	}
	var out *entity.StockBalance
	err := uc.txRunner.Run(ctx, func(
		_ repository.StockMovementRepository,
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
		now := uc.now()
		b, err := balanceRepo.GetOrCreateForUpdate(ctx, inventory.NewBalance(in.ItemID, in.LocationID, product.ReorderLevel, now))
		if err != nil {
			return err
		}
		if err := inventory.SetThresholds(b, in.LowStockThreshold, in.ReorderPoint, now); err != nil {
			return err
		}
		out = b
		return balanceRepo.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LowStock saldos con stock bajo (0 < cantidad ≤ umbral).
func (uc *LedgerUseCase) LowStock(ctx context.Context, locationID string) ([]*entity.StockBalance, error) {
	return uc.balanceRepo.ListLowStock(ctx, locationID)
}

// OutOfStock saldos agotados (cantidad ≤ 0).
func (uc *LedgerUseCase) OutOfStock(ctx context.Context, locationID string) ([]*entity.StockBalance, error) {
	return uc.balanceRepo.ListOutOfStock(ctx, locationID)
}

// MovementsByBatch movimientos de un lote.
func (uc *LedgerUseCase) MovementsByBatch(ctx context.Context, batchNumber string) ([]*entity.StockMovement, error) {
	if batchNumber == "" {
		return nil, fmt.Errorf("%w: lote vacío", domain.ErrInvalidInput)
	}
	return uc.movRepo.ListByBatch(ctx, batchNumber)
}

// MovementsBySerial movimientos de un número de serie.
func (uc *LedgerUseCase) MovementsBySerial(ctx context.Context, serialNumber string) ([]*entity.StockMovement, error) {
	if serialNumber == "" {
		return nil, fmt.Errorf("%w: serie vacía", domain.ErrInvalidInput)
	}
	return uc.movRepo.ListBySerial(ctx, serialNumber)
}

// Expiring lotes que vencen en los próximos days días (days ≤ 0 usa el valor configurado).
func (uc *LedgerUseCase) Expiring(ctx context.Context, days int) ([]*entity.StockMovement, error) {
	if days <= 0 {
		days = uc.expiryDays
	}
	from := uc.now()
	return uc.movRepo.ListExpiring(ctx, from, from.Add(time.Duration(days)*24*time.Hour))
}

// Expired lotes ya vencidos.
func (uc *LedgerUseCase) Expired(ctx context.Context) ([]*entity.StockMovement, error) {
	return uc.movRepo.ListExpired(ctx, uc.now())
}
