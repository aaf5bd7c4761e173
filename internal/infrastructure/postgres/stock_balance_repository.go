package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*StockBalanceRepo)(nil)

// StockBalanceRepo implementación de StockBalanceRepository sobre PostgreSQL (usable con pool o tx).
type StockBalanceRepo struct {
	q Querier
}

// NewStockBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewStockBalanceRepository(q Querier) *StockBalanceRepo {
	return &StockBalanceRepo{q: q}
}

const balanceColumns = `item_id, location_id, quantity, average_cost, total_value, low_stock_threshold, reorder_point,
	is_low_stock, is_out_of_stock, last_restocked_at, last_sold_at, updated_at`

func scanBalance(row pgx.Row) (*entity.StockBalance, error) {
	var b entity.StockBalance
	err := row.Scan(&b.ItemID, &b.LocationID, &b.Quantity, &b.AverageCost, &b.TotalValue,
		&b.LowStockThreshold, &b.ReorderPoint, &b.IsLowStock, &b.IsOutOfStock,
		&b.LastRestockedAt, &b.LastSoldAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBalances(rows pgx.Rows) ([]*entity.StockBalance, error) {
	defer rows.Close()
	list := []*entity.StockBalance{}
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// Get obtiene el saldo de un producto en una ubicación.
func (r *StockBalanceRepo) Get(ctx context.Context, itemID, locationID string) (*entity.StockBalance, error) {
	b, err := scanBalance(r.q.QueryRow(ctx,
		`SELECT `+balanceColumns+` FROM stock_balances WHERE item_id = $1 AND location_id = $2`, itemID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

// GetOrCreateForUpdate asegura la fila (INSERT ... ON CONFLICT DO NOTHING) y la bloquea
// con SELECT FOR UPDATE hasta el fin de la transacción.
func (r *StockBalanceRepo) GetOrCreateForUpdate(ctx context.Context, seed *entity.StockBalance) (*entity.StockBalance, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_balances (item_id, location_id, quantity, average_cost, total_value, low_stock_threshold,
			reorder_point, is_low_stock, is_out_of_stock, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (item_id, location_id) DO NOTHING`,
		seed.ItemID, seed.LocationID, seed.Quantity, seed.AverageCost, seed.TotalValue,
		seed.LowStockThreshold, seed.ReorderPoint, seed.IsLowStock, seed.IsOutOfStock, seed.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure balance: %w", err)
	}
	b, err := scanBalance(r.q.QueryRow(ctx,
		`SELECT `+balanceColumns+` FROM stock_balances WHERE item_id = $1 AND location_id = $2 FOR UPDATE`,
		seed.ItemID, seed.LocationID))
	if err != nil {
		return nil, fmt.Errorf("get balance for update: %w", err)
	}
	return b, nil
}

// Update persiste cantidad, costo, umbrales y banderas.
func (r *StockBalanceRepo) Update(ctx context.Context, b *entity.StockBalance) error {
	_, err := r.q.Exec(ctx, `
		UPDATE stock_balances
		SET quantity = $3, average_cost = $4, total_value = $5, low_stock_threshold = $6, reorder_point = $7,
		    is_low_stock = $8, is_out_of_stock = $9, last_restocked_at = $10, last_sold_at = $11, updated_at = $12
		WHERE item_id = $1 AND location_id = $2`,
		b.ItemID, b.LocationID, b.Quantity, b.AverageCost, b.TotalValue, b.LowStockThreshold, b.ReorderPoint,
		b.IsLowStock, b.IsOutOfStock, b.LastRestockedAt, b.LastSoldAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}

// List lista saldos filtrando por producto y/o ubicación.
func (r *StockBalanceRepo) List(ctx context.Context, f repository.BalanceFilter) ([]*entity.StockBalance, int, error) {
	var w where
	if f.ItemID != "" {
		w.add("item_id = $%d", f.ItemID)
	}
	if f.LocationID != "" {
		w.add("location_id = $%d", f.LocationID)
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_balances`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count balances: %w", err)
	}
	query := `SELECT ` + balanceColumns + ` FROM stock_balances` + w.sql() + ` ORDER BY item_id, location_id`
	query += w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list balances: %w", err)
	}
	list, err := collectBalances(rows)
	return list, total, err
}

func (r *StockBalanceRepo) listFlag(ctx context.Context, flag, locationID string) ([]*entity.StockBalance, error) {
	w := where{clauses: []string{flag}}
	if locationID != "" {
		w.add("location_id = $%d", locationID)
	}
	rows, err := r.q.Query(ctx, `SELECT `+balanceColumns+` FROM stock_balances`+w.sql()+` ORDER BY item_id, location_id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list balances %s: %w", flag, err)
	}
	return collectBalances(rows)
}

// ListLowStock saldos marcados con stock bajo.
func (r *StockBalanceRepo) ListLowStock(ctx context.Context, locationID string) ([]*entity.StockBalance, error) {
	return r.listFlag(ctx, "is_low_stock", locationID)
}

// ListOutOfStock saldos agotados.
func (r *StockBalanceRepo) ListOutOfStock(ctx context.Context, locationID string) ([]*entity.StockBalance, error) {
	return r.listFlag(ctx, "is_out_of_stock", locationID)
}

// ListBelowReorderPoint saldos en o bajo su punto de reorden, con datos del catálogo.
func (r *StockBalanceRepo) ListBelowReorderPoint(ctx context.Context, locationID string) ([]repository.ReplenishmentItem, error) {
	w := where{clauses: []string{"b.reorder_point > 0", "b.quantity <= b.reorder_point"}}
	if locationID != "" {
		w.add("b.location_id = $%d", locationID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT b.item_id, b.location_id, p.sku, p.name, b.quantity, b.reorder_point, b.average_cost, p.price
		FROM stock_balances b
		JOIN products p ON p.id = b.item_id`+w.sql()+`
		ORDER BY b.item_id, b.location_id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list below reorder point: %w", err)
	}
	defer rows.Close()
	list := []repository.ReplenishmentItem{}
	for rows.Next() {
		var it repository.ReplenishmentItem
		if err := rows.Scan(&it.ItemID, &it.LocationID, &it.SKU, &it.ProductName, &it.Quantity,
			&it.ReorderPoint, &it.AverageCost, &it.Price); err != nil {
			return nil, fmt.Errorf("scan replenishment item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// SumQuantityByItem suma la cantidad del producto en todas las ubicaciones.
func (r *StockBalanceRepo) SumQuantityByItem(ctx context.Context, itemID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM stock_balances WHERE item_id = $1`, itemID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum balance quantity: %w", err)
	}
	return total, nil
}

// Summary agregados globales.
func (r *StockBalanceRepo) Summary(ctx context.Context) (repository.BalanceSummary, error) {
	var s repository.BalanceSummary
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(DISTINCT item_id), COUNT(*),
		       COALESCE(SUM(quantity), 0), COALESCE(SUM(total_value), 0),
		       COUNT(*) FILTER (WHERE is_low_stock), COUNT(*) FILTER (WHERE is_out_of_stock)
		FROM stock_balances`).Scan(
		&s.Items, &s.Balances, &s.TotalQuantity, &s.TotalValue, &s.LowStockCount, &s.OutOfStockCount,
	)
	if err != nil {
		return s, fmt.Errorf("balance summary: %w", err)
	}
	return s, nil
}

// ValueByLocation valorización por ubicación.
func (r *StockBalanceRepo) ValueByLocation(ctx context.Context) ([]repository.LocationValue, error) {
	rows, err := r.q.Query(ctx, `
		SELECT location_id, COALESCE(SUM(quantity), 0), COALESCE(SUM(total_value), 0)
		FROM stock_balances GROUP BY location_id ORDER BY location_id`)
	if err != nil {
		return nil, fmt.Errorf("value by location: %w", err)
	}
	defer rows.Close()
	list := []repository.LocationValue{}
	for rows.Next() {
		var lv repository.LocationValue
		if err := rows.Scan(&lv.LocationID, &lv.Quantity, &lv.Value); err != nil {
			return nil, fmt.Errorf("scan location value: %w", err)
		}
		list = append(list, lv)
	}
	return list, rows.Err()
}
