package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación de StockMovementRepository (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador del libro de movimientos.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, item_id, location_id, kind, quantity, unit_cost, total_cost, balance_after,
	COALESCE(batch_number, ''), COALESCE(serial_number, ''), expiry_date,
	COALESCE(reference_type, ''), COALESCE(reference_id, ''), status, COALESCE(notes, ''),
	transaction_date, COALESCE(created_by, ''), created_at, updated_at`

var movementSortColumns = map[string]string{
	repository.MovementSortTransactionDate: "transaction_date",
	repository.MovementSortCreatedAt:       "created_at",
	repository.MovementSortQuantity:        "quantity",
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var kind string
	err := row.Scan(&m.ID, &m.ItemID, &m.LocationID, &kind, &m.Quantity, &m.UnitCost, &m.TotalCost,
		&m.BalanceAfter, &m.BatchNumber, &m.SerialNumber, &m.ExpiryDate, &m.ReferenceType, &m.ReferenceID,
		&m.Status, &m.Notes, &m.TransactionDate, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Kind = entity.MovementKind(kind)
	return &m, nil
}

func collectMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	defer rows.Close()
	list := []*entity.StockMovement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Create inserta un movimiento en el libro.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (id, item_id, location_id, kind, quantity, unit_cost, total_cost, balance_after,
			batch_number, serial_number, expiry_date, reference_type, reference_id, status, notes,
			transaction_date, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		m.ID, m.ItemID, m.LocationID, string(m.Kind), m.Quantity, m.UnitCost, m.TotalCost, m.BalanceAfter,
		nullIfEmpty(m.BatchNumber), nullIfEmpty(m.SerialNumber), m.ExpiryDate,
		nullIfEmpty(m.ReferenceType), nullIfEmpty(m.ReferenceID), m.Status, nullIfEmpty(m.Notes),
		m.TransactionDate, nullIfEmpty(m.CreatedBy), m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

func (r *StockMovementRepo) get(ctx context.Context, id, suffix string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate obtiene y bloquea el movimiento hasta el fin de la transacción.
func (r *StockMovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockMovement, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

// MarkCompleted pasa un movimiento pendiente a completado.
func (r *StockMovementRepo) MarkCompleted(ctx context.Context, id string, balanceAfter decimal.Decimal, at time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_movements SET status = $2, balance_after = $3, updated_at = $4
		WHERE id = $1 AND status = $5`,
		id, entity.MovementStatusCompleted, balanceAfter, at, entity.MovementStatusPending)
	if err != nil {
		return fmt.Errorf("complete movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("complete movement %s: no está pendiente", id)
	}
	return nil
}

// MarkCancelled marca el movimiento como cancelado.
func (r *StockMovementRepo) MarkCancelled(ctx context.Context, id string, at time.Time) error {
	_, err := r.q.Exec(ctx, `UPDATE stock_movements SET status = $2, updated_at = $3 WHERE id = $1`,
		id, entity.MovementStatusCancelled, at)
	if err != nil {
		return fmt.Errorf("cancel movement: %w", err)
	}
	return nil
}

// List lista movimientos con filtros, orden y paginación.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	var w where
	if f.ItemID != "" {
		w.add("item_id = $%d", f.ItemID)
	}
	if f.LocationID != "" {
		w.add("location_id = $%d", f.LocationID)
	}
	if f.Kind != "" {
		w.add("kind = $%d", string(f.Kind))
	}
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}
	if f.ReferenceType != "" {
		w.add("reference_type = $%d", f.ReferenceType)
	}
	if f.ReferenceID != "" {
		w.add("reference_id = $%d", f.ReferenceID)
	}
	if f.From != nil {
		w.add("transaction_date >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("transaction_date <= $%d", *f.To)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	col, ok := movementSortColumns[f.SortBy]
	if !ok {
		col = "transaction_date"
	}
	query := `SELECT ` + movementColumns + ` FROM stock_movements` + w.sql() +
		` ORDER BY ` + col + ` ` + direction(f.SortDesc) + `, created_at, id`
	query += w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	list, err := collectMovements(rows)
	return list, total, err
}

func (r *StockMovementRepo) listWhere(ctx context.Context, op string, w where, order string) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+` FROM stock_movements`+w.sql()+` ORDER BY `+order, w.args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectMovements(rows)
}

// ListByBatch movimientos de un lote, en orden del libro.
func (r *StockMovementRepo) ListByBatch(ctx context.Context, batchNumber string) ([]*entity.StockMovement, error) {
	var w where
	w.add("batch_number = $%d", batchNumber)
	return r.listWhere(ctx, "list by batch", w, "created_at, id")
}

// ListBySerial movimientos de un número de serie.
func (r *StockMovementRepo) ListBySerial(ctx context.Context, serialNumber string) ([]*entity.StockMovement, error) {
	var w where
	w.add("serial_number = $%d", serialNumber)
	return r.listWhere(ctx, "list by serial", w, "created_at, id")
}

// ListByReference movimientos generados por un documento (venta, devolución, traslado...).
func (r *StockMovementRepo) ListByReference(ctx context.Context, referenceType, referenceID string) ([]*entity.StockMovement, error) {
	var w where
	w.add("reference_type = $%d", referenceType)
	w.add("reference_id = $%d", referenceID)
	return r.listWhere(ctx, "list by reference", w, "created_at, id")
}

func inboundBatches() where {
	w := where{clauses: []string{"batch_number IS NOT NULL", "expiry_date IS NOT NULL"}}
	w.add("status = $%d", entity.MovementStatusCompleted)
	kinds := []string{}
	for _, k := range entity.MovementKinds() {
		if k.IsInbound() {
			kinds = append(kinds, string(k))
		}
	}
	w.add("kind = ANY($%d)", kinds)
	return w
}

// ListExpiring entradas con lote cuyo vencimiento cae en [from, until].
func (r *StockMovementRepo) ListExpiring(ctx context.Context, from, until time.Time) ([]*entity.StockMovement, error) {
	w := inboundBatches()
	w.add("expiry_date >= $%d", from)
	w.add("expiry_date <= $%d", until)
	return r.listWhere(ctx, "list expiring", w, "expiry_date, id")
}

// ListExpired entradas con lote vencido antes de at.
func (r *StockMovementRepo) ListExpired(ctx context.Context, at time.Time) ([]*entity.StockMovement, error) {
	w := inboundBatches()
	w.add("expiry_date < $%d", at)
	return r.listWhere(ctx, "list expired", w, "expiry_date, id")
}

// CountByKind cuenta movimientos no cancelados por tipo.
func (r *StockMovementRepo) CountByKind(ctx context.Context) (map[entity.MovementKind]int, error) {
	rows, err := r.q.Query(ctx, `
		SELECT kind, COUNT(*) FROM stock_movements WHERE status <> $1 GROUP BY kind`,
		entity.MovementStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("count by kind: %w", err)
	}
	defer rows.Close()
	counts := map[entity.MovementKind]int{}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan kind count: %w", err)
		}
		counts[entity.MovementKind(kind)] = n
	}
	return counts, rows.Err()
}
