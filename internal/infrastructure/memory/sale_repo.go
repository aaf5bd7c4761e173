package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

// SaleRepo ventas en memoria. El número de venta es único como en la tabla real.
type SaleRepo struct{ v *view }

var _ repository.SaleRepository = (*SaleRepo)(nil)

func (r *SaleRepo) Create(_ context.Context, s *entity.Sale) error {
	return r.v.write(func(st *state) error {
		if _, dup := st.saleNumbers[s.SaleNumber]; dup {
			return domain.ErrDuplicateSaleNumber
		}
		st.sales[s.ID] = copySale(s)
		st.saleNumbers[s.SaleNumber] = s.ID
		return nil
	})
}

func (r *SaleRepo) CreateLine(_ context.Context, l *entity.SaleLine) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.sales[l.SaleID]; !ok {
			return domain.ErrSaleNotFound
		}
		st.lines[l.SaleID] = append(st.lines[l.SaleID], *l)
		return nil
	})
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.v.read(func(st *state) error {
		if s, ok := st.sales[id]; ok {
			out = copySale(s)
		}
		return nil
	})
	return out, err
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *SaleRepo) GetLines(_ context.Context, saleID string) ([]entity.SaleLine, error) {
	var out []entity.SaleLine
	err := r.v.read(func(st *state) error {
		out = append([]entity.SaleLine(nil), st.lines[saleID]...)
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].LineNo < out[j].LineNo })
	return out, err
}

func (r *SaleRepo) Update(_ context.Context, s *entity.Sale) error {
	return r.v.write(func(st *state) error {
		cur, ok := st.sales[s.ID]
		if !ok {
			return domain.ErrSaleNotFound
		}
		upd := copySale(s)
		upd.SaleNumber = cur.SaleNumber
		upd.CreatedAt = cur.CreatedAt
		st.sales[s.ID] = upd
		return nil
	})
}

func (r *SaleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, int, error) {
	search := strings.ToLower(f.Search)
	var all []*entity.Sale
	err := r.v.read(func(st *state) error {
		for _, s := range st.sales {
			switch {
			case f.BranchID != "" && s.BranchID != f.BranchID,
				f.PaymentStatus != "" && s.PaymentStatus != f.PaymentStatus,
				f.Kind != "" && s.Kind != f.Kind,
				f.From != nil && s.CreatedAt.Before(*f.From),
				f.To != nil && s.CreatedAt.After(*f.To),
				search != "" && !strings.Contains(strings.ToLower(s.SaleNumber), search) &&
					!strings.Contains(strings.ToLower(s.Notes), search):
				continue
			}
			all = append(all, copySale(s))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	less := func(a, b *entity.Sale) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch f.SortBy {
	case repository.SaleSortTotal:
		less = func(a, b *entity.Sale) bool { return a.Total.LessThan(b.Total) }
	case repository.SaleSortSaleNumber:
		less = func(a, b *entity.Sale) bool { return a.SaleNumber < b.SaleNumber }
	}
	sort.SliceStable(all, func(i, j int) bool {
		if less(all[i], all[j]) == less(all[j], all[i]) {
			return all[i].SaleNumber < all[j].SaleNumber
		}
		if f.SortDesc {
			return less(all[j], all[i])
		}
		return less(all[i], all[j])
	})
	return page(all, f.Limit, f.Offset), len(all), nil
}

func (r *SaleRepo) Delete(_ context.Context, id string) error {
	return r.v.write(func(st *state) error {
		s, ok := st.sales[id]
		if !ok {
			return domain.ErrSaleNotFound
		}
		delete(st.saleNumbers, s.SaleNumber)
		delete(st.sales, id)
		delete(st.lines, id)
		delete(st.payments, id)
		return nil
	})
}

// PaymentRepo libro de pagos en memoria.
type PaymentRepo struct{ v *view }

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

func (r *PaymentRepo) Create(_ context.Context, p *entity.Payment) error {
	return r.v.write(func(st *state) error {
		c := *p
		st.payments[p.SaleID] = append(st.payments[p.SaleID], &c)
		return nil
	})
}

func (r *PaymentRepo) ListBySale(_ context.Context, saleID string) ([]*entity.Payment, error) {
	out := []*entity.Payment{}
	err := r.v.read(func(st *state) error {
		for _, p := range st.payments[saleID] {
			c := *p
			out = append(out, &c)
		}
		return nil
	})
	return out, err
}

func (r *PaymentRepo) SumBySale(_ context.Context, saleID string) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.v.read(func(st *state) error {
		for _, p := range st.payments[saleID] {
			total = total.Add(p.Amount)
		}
		return nil
	})
	return total, err
}
