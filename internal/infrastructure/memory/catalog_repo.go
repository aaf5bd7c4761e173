package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

// ProductRepo catálogo en memoria.
type ProductRepo struct{ v *view }

var _ repository.ProductRepository = (*ProductRepo)(nil)

// Create inserta el producto; SKU repetido es conflicto.
func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.write(func(st *state) error {
		for _, existing := range st.products {
			if existing.SKU == p.SKU {
				return fmt.Errorf("%w: sku %s ya existe", domain.ErrConflict, p.SKU)
			}
		}
		st.products[p.ID] = copyProduct(p)
		return nil
	})
}

// GetByID devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = copyProduct(p)
		}
		return nil
	})
	return out, err
}

// List ordena por nombre.
func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, int, error) {
	var all []*entity.Product
	err := r.v.read(func(st *state) error {
		for _, p := range st.products {
			all = append(all, copyProduct(p))
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return page(all, limit, offset), len(all), err
}

// UpdateOnHand refresca la proyección de existencias.
func (r *ProductRepo) UpdateOnHand(_ context.Context, id string, qty decimal.Decimal) error {
	return r.v.write(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrItemNotFound
		}
		p.OnHandQuantity = qty
		p.UpdatedAt = time.Now()
		return nil
	})
}

// LocationRepo ubicaciones en memoria.
type LocationRepo struct{ v *view }

var _ repository.LocationRepository = (*LocationRepo)(nil)

func (r *LocationRepo) Create(_ context.Context, l *entity.Location) error {
	return r.v.write(func(st *state) error {
		c := *l
		st.locations[l.ID] = &c
		return nil
	})
}

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	var out *entity.Location
	err := r.v.read(func(st *state) error {
		if l, ok := st.locations[id]; ok {
			c := *l
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *LocationRepo) List(_ context.Context, limit, offset int) ([]*entity.Location, int, error) {
	var all []*entity.Location
	err := r.v.read(func(st *state) error {
		for _, l := range st.locations {
			c := *l
			all = append(all, &c)
		}
		return nil
	})
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return page(all, limit, offset), len(all), err
}
