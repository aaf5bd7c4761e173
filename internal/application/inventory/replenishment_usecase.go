package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición a partir de los saldos del libro.
type ReplenishmentUseCase struct {
	balanceRepo repository.StockBalanceRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(balanceRepo repository.StockBalanceRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{balanceRepo: balanceRepo}
}

// GenerateReplenishmentList devuelve los saldos en o bajo su punto de reorden con la cantidad
// sugerida de pedido (reorden × 1.5 − existencia). locationID vacío considera todas las ubicaciones.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, locationID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	rawItems, err := uc.balanceRepo.ListBelowReorderPoint(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if len(rawItems) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	hundred := decimal.NewFromInt(100)
	factor := decimal.RequireFromString("1.5")

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(rawItems))
	for _, item := range rawItems {
		idealStock := item.ReorderPoint.Mul(factor)
		suggestedQty := idealStock.Sub(item.Quantity)
		if suggestedQty.IsNegative() {
			suggestedQty = decimal.Zero
		}

		var grossMarginPct decimal.Decimal
		if item.Price.IsPositive() {
			grossMarginPct = item.Price.Sub(item.AverageCost).Div(item.Price).Mul(hundred).Round(2)
		}

		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ItemID:             item.ItemID,
			LocationID:         item.LocationID,
			SKU:                item.SKU,
			ProductName:        item.ProductName,
			CurrentStock:       item.Quantity,
			ReorderPoint:       item.ReorderPoint,
			IdealStock:         idealStock,
			SuggestedOrderQty:  suggestedQty,
			UnitCost:           item.AverageCost,
			EstimatedOrderCost: suggestedQty.Mul(item.AverageCost).Round(2),
			GrossMarginPct:     grossMarginPct,
		})
	}

	// Primero mayor déficit bajo el reorden; a igual déficit, mayor margen.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		defA := a.ReorderPoint.Sub(a.CurrentStock)
		defB := b.ReorderPoint.Sub(b.CurrentStock)
		if !defA.Equal(defB) {
			return defA.GreaterThan(defB)
		}
		return a.GrossMarginPct.GreaterThan(b.GrossMarginPct)
	})

	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
