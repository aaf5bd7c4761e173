package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

// MovementRepo libro de movimientos en memoria (solo agregación).
type MovementRepo struct{ v *view }

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.v.write(func(st *state) error {
		st.movements = append(st.movements, copyMovement(m))
		return nil
	})
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	err := r.v.read(func(st *state) error {
		for _, m := range st.movements {
			if m.ID == id {
				out = copyMovement(m)
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *MovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.GetByID(ctx, id)
}

func (r *MovementRepo) setStatus(id string, fn func(m *entity.StockMovement)) error {
	return r.v.write(func(st *state) error {
		for _, m := range st.movements {
			if m.ID == id {
				fn(m)
				return nil
			}
		}
		return domain.ErrMovementNotFound
	})
}

func (r *MovementRepo) MarkCompleted(_ context.Context, id string, balanceAfter decimal.Decimal, at time.Time) error {
	return r.setStatus(id, func(m *entity.StockMovement) {
		m.Status = entity.MovementStatusCompleted
		m.BalanceAfter = balanceAfter
		m.UpdatedAt = at
	})
}

func (r *MovementRepo) MarkCancelled(_ context.Context, id string, at time.Time) error {
	return r.setStatus(id, func(m *entity.StockMovement) {
		m.Status = entity.MovementStatusCancelled
		m.UpdatedAt = at
	})
}

// filter devuelve copias en orden de inserción.
func (r *MovementRepo) filter(keep func(m *entity.StockMovement) bool) ([]*entity.StockMovement, error) {
	out := []*entity.StockMovement{}
	err := r.v.read(func(st *state) error {
		for _, m := range st.movements {
			if keep(m) {
				out = append(out, copyMovement(m))
			}
		}
		return nil
	})
	return out, err
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	all, err := r.filter(func(m *entity.StockMovement) bool {
		switch {
		case f.ItemID != "" && m.ItemID != f.ItemID,
			f.LocationID != "" && m.LocationID != f.LocationID,
			f.Kind != "" && m.Kind != f.Kind,
			f.Status != "" && m.Status != f.Status,
			f.ReferenceType != "" && m.ReferenceType != f.ReferenceType,
			f.ReferenceID != "" && m.ReferenceID != f.ReferenceID,
			f.From != nil && m.TransactionDate.Before(*f.From),
			f.To != nil && m.TransactionDate.After(*f.To):
			return false
		}
		return true
	})
	if err != nil {
		return nil, 0, err
	}
	less := func(a, b *entity.StockMovement) bool { return a.TransactionDate.Before(b.TransactionDate) }
	switch f.SortBy {
	case repository.MovementSortCreatedAt:
		less = func(a, b *entity.StockMovement) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case repository.MovementSortQuantity:
		less = func(a, b *entity.StockMovement) bool { return a.Quantity.LessThan(b.Quantity) }
	}
	sort.SliceStable(all, func(i, j int) bool {
		if f.SortDesc {
			return less(all[j], all[i])
		}
		return less(all[i], all[j])
	})
	return page(all, f.Limit, f.Offset), len(all), nil
}

func (r *MovementRepo) ListByBatch(_ context.Context, batchNumber string) ([]*entity.StockMovement, error) {
	return r.filter(func(m *entity.StockMovement) bool { return m.BatchNumber == batchNumber })
}

func (r *MovementRepo) ListBySerial(_ context.Context, serialNumber string) ([]*entity.StockMovement, error) {
	return r.filter(func(m *entity.StockMovement) bool { return m.SerialNumber == serialNumber })
}

func (r *MovementRepo) ListByReference(_ context.Context, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	return r.filter(func(m *entity.StockMovement) bool {
		return m.ReferenceType == referenceType && m.ReferenceID == referenceID
	})
}

func batchEntry(m *entity.StockMovement) bool {
	return m.Completed() && m.Kind.IsInbound() && m.BatchNumber != "" && m.ExpiryDate != nil
}

func byExpiry(list []*entity.StockMovement) []*entity.StockMovement {
	sort.SliceStable(list, func(i, j int) bool { return list[i].ExpiryDate.Before(*list[j].ExpiryDate) })
	return list
}

func (r *MovementRepo) ListExpiring(_ context.Context, from, until time.Time) ([]*entity.StockMovement, error) {
	list, err := r.filter(func(m *entity.StockMovement) bool {
		return batchEntry(m) && !m.ExpiryDate.Before(from) && !m.ExpiryDate.After(until)
	})
	return byExpiry(list), err
}

func (r *MovementRepo) ListExpired(_ context.Context, at time.Time) ([]*entity.StockMovement, error) {
	list, err := r.filter(func(m *entity.StockMovement) bool {
		return batchEntry(m) && m.ExpiryDate.Before(at)
	})
	return byExpiry(list), err
}

// CountByKind cuenta movimientos no anulados por tipo.
func (r *MovementRepo) CountByKind(_ context.Context) (map[entity.MovementKind]int, error) {
	out := map[entity.MovementKind]int{}
	err := r.v.read(func(st *state) error {
		for _, m := range st.movements {
			if m.Status != entity.MovementStatusCancelled {
				out[m.Kind]++
			}
		}
		return nil
	})
	return out, err
}
