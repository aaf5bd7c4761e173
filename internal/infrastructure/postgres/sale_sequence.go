package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Inventario-pos/internal/application/sales"
)

var _ sales.SaleNumberAllocator = (*SaleSequence)(nil)

// SaleSequence asigna el consecutivo diario de ventas con un upsert atómico.
// Corre fuera de la transacción de la venta: un rollback deja un hueco en la numeración.
type SaleSequence struct {
	pool *pgxpool.Pool
}

// NewSaleSequence construye el asignador sobre el pool.
func NewSaleSequence(pool *pgxpool.Pool) *SaleSequence {
	return &SaleSequence{pool: pool}
}

// Next devuelve el siguiente consecutivo del día (empieza en 1).
func (s *SaleSequence) Next(ctx context.Context, day time.Time) (int64, error) {
	var next int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO sale_number_sequences (day, last_value) VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET last_value = sale_number_sequences.last_value + 1
		RETURNING last_value`, day.Format("2006-01-02")).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next sale number: %w", err)
	}
	return next, nil
}
