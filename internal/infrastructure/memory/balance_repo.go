package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

// BalanceRepo saldos en memoria. Dentro de una tx el "bloqueo" lo da el mutex de escritores.
type BalanceRepo struct{ v *view }

var _ repository.StockBalanceRepository = (*BalanceRepo)(nil)

func (r *BalanceRepo) Get(_ context.Context, itemID, locationID string) (*entity.StockBalance, error) {
	var out *entity.StockBalance
	err := r.v.read(func(st *state) error {
		if b, ok := st.balances[balanceKey{itemID, locationID}]; ok {
			out = copyBalance(b)
		}
		return nil
	})
	return out, err
}

func (r *BalanceRepo) GetOrCreateForUpdate(_ context.Context, seed *entity.StockBalance) (*entity.StockBalance, error) {
	var out *entity.StockBalance
	err := r.v.write(func(st *state) error {
		key := balanceKey{seed.ItemID, seed.LocationID}
		b, ok := st.balances[key]
		if !ok {
			b = copyBalance(seed)
			st.balances[key] = b
		}
		out = copyBalance(b)
		return nil
	})
	return out, err
}

func (r *BalanceRepo) Update(_ context.Context, b *entity.StockBalance) error {
	return r.v.write(func(st *state) error {
		st.balances[balanceKey{b.ItemID, b.LocationID}] = copyBalance(b)
		return nil
	})
}

// sorted devuelve copias de los saldos que cumplen keep, ordenadas por (producto, ubicación).
func (r *BalanceRepo) sorted(keep func(b *entity.StockBalance) bool) ([]*entity.StockBalance, error) {
	var out []*entity.StockBalance
	err := r.v.read(func(st *state) error {
		for _, b := range st.balances {
			if keep(b) {
				out = append(out, copyBalance(b))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemID != out[j].ItemID {
			return out[i].ItemID < out[j].ItemID
		}
		return out[i].LocationID < out[j].LocationID
	})
	return out, err
}

func atLocation(locationID string, b *entity.StockBalance) bool {
	return locationID == "" || b.LocationID == locationID
}

func (r *BalanceRepo) List(_ context.Context, f repository.BalanceFilter) ([]*entity.StockBalance, int, error) {
	all, err := r.sorted(func(b *entity.StockBalance) bool {
		return (f.ItemID == "" || b.ItemID == f.ItemID) && atLocation(f.LocationID, b)
	})
	return page(all, f.Limit, f.Offset), len(all), err
}

func (r *BalanceRepo) ListLowStock(_ context.Context, locationID string) ([]*entity.StockBalance, error) {
	return r.sorted(func(b *entity.StockBalance) bool { return b.IsLowStock && atLocation(locationID, b) })
}

func (r *BalanceRepo) ListOutOfStock(_ context.Context, locationID string) ([]*entity.StockBalance, error) {
	return r.sorted(func(b *entity.StockBalance) bool { return b.IsOutOfStock && atLocation(locationID, b) })
}

func (r *BalanceRepo) ListBelowReorderPoint(_ context.Context, locationID string) ([]repository.ReplenishmentItem, error) {
	var out []repository.ReplenishmentItem
	err := r.v.read(func(st *state) error {
		for _, b := range st.balances {
			if !atLocation(locationID, b) || !b.ReorderPoint.IsPositive() || b.Quantity.GreaterThan(b.ReorderPoint) {
				continue
			}
			item := repository.ReplenishmentItem{
				ItemID:       b.ItemID,
				LocationID:   b.LocationID,
				Quantity:     b.Quantity,
				ReorderPoint: b.ReorderPoint,
				AverageCost:  b.AverageCost,
			}
			if p, ok := st.products[b.ItemID]; ok {
				item.SKU, item.ProductName, item.Price = p.SKU, p.Name, p.Price
			}
			out = append(out, item)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemID != out[j].ItemID {
			return out[i].ItemID < out[j].ItemID
		}
		return out[i].LocationID < out[j].LocationID
	})
	return out, err
}

func (r *BalanceRepo) SumQuantityByItem(_ context.Context, itemID string) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.v.read(func(st *state) error {
		for _, b := range st.balances {
			if b.ItemID == itemID {
				total = total.Add(b.Quantity)
			}
		}
		return nil
	})
	return total, err
}

func (r *BalanceRepo) Summary(_ context.Context) (repository.BalanceSummary, error) {
	var s repository.BalanceSummary
	err := r.v.read(func(st *state) error {
		items := map[string]struct{}{}
		for _, b := range st.balances {
			items[b.ItemID] = struct{}{}
			s.Balances++
			s.TotalQuantity = s.TotalQuantity.Add(b.Quantity)
			s.TotalValue = s.TotalValue.Add(b.TotalValue)
			if b.IsLowStock {
				s.LowStockCount++
			}
			if b.IsOutOfStock {
				s.OutOfStockCount++
			}
		}
		s.Items = len(items)
		return nil
	})
	return s, err
}

func (r *BalanceRepo) ValueByLocation(_ context.Context) ([]repository.LocationValue, error) {
	byLoc := map[string]*repository.LocationValue{}
	err := r.v.read(func(st *state) error {
		for _, b := range st.balances {
			lv, ok := byLoc[b.LocationID]
			if !ok {
				lv = &repository.LocationValue{LocationID: b.LocationID}
				byLoc[b.LocationID] = lv
			}
			lv.Quantity = lv.Quantity.Add(b.Quantity)
			lv.Value = lv.Value.Add(b.TotalValue)
		}
		return nil
	})
	out := make([]repository.LocationValue, 0, len(byLoc))
	for _, lv := range byLoc {
		out = append(out, *lv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LocationID < out[j].LocationID })
	return out, err
}
