package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

var (
	_ repository.SaleRepository    = (*SaleRepo)(nil)
	_ repository.PaymentRepository = (*PaymentRepo)(nil)
)

// SaleRepo implementación de SaleRepository (cabecera + líneas) sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, sale_number, COALESCE(customer_id, ''), cashier_id, branch_id, subtotal, tax, discount, total,
	payment_status, kind, is_held, held_at, COALESCE(notes, ''), COALESCE(metadata, '{}'::jsonb), created_at, updated_at`

var saleSortColumns = map[string]string{
	repository.SaleSortCreatedAt:  "created_at",
	repository.SaleSortTotal:      "total",
	repository.SaleSortSaleNumber: "sale_number",
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var status, kind string
	err := row.Scan(&s.ID, &s.SaleNumber, &s.CustomerID, &s.CashierID, &s.BranchID, &s.Subtotal, &s.Tax,
		&s.Discount, &s.Total, &status, &kind, &s.IsHeld, &s.HeldAt, &s.Notes, &s.Metadata,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.PaymentStatus = entity.PaymentStatus(status)
	s.Kind = entity.SaleKind(kind)
	if s.Metadata == nil {
		s.Metadata = map[string]any{}
	}
	return &s, nil
}

func metadataOrEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// Create inserta la cabecera. Un sale_number repetido se traduce a ErrDuplicateSaleNumber
// para que el caso de uso reintente con otro número.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales (id, sale_number, customer_id, cashier_id, branch_id, subtotal, tax, discount, total,
			payment_status, kind, is_held, held_at, notes, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		s.ID, s.SaleNumber, nullIfEmpty(s.CustomerID), s.CashierID, s.BranchID, s.Subtotal, s.Tax, s.Discount,
		s.Total, string(s.PaymentStatus), string(s.Kind), s.IsHeld, s.HeldAt, nullIfEmpty(s.Notes),
		metadataOrEmpty(s.Metadata), s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) && uniqueConstraint(err) == "sales_sale_number_key" {
			return domain.ErrDuplicateSaleNumber
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateLine inserta una línea de la venta.
func (r *SaleRepo) CreateLine(ctx context.Context, l *entity.SaleLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sale_lines (id, sale_id, line_no, product_id, quantity, unit_price, discount, tax, subtotal, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, l.SaleID, l.LineNo, l.ProductID, l.Quantity, l.UnitPrice, l.Discount, l.Tax, l.Subtotal, l.Total,
	)
	if err != nil {
		return fmt.Errorf("insert sale line: %w", err)
	}
	return nil
}

func (r *SaleRepo) get(ctx context.Context, id, suffix string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`+suffix, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

// GetByID obtiene la cabecera sin líneas.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate obtiene y bloquea la cabecera hasta el fin de la transacción.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

// GetLines líneas de la venta ordenadas por número de línea.
func (r *SaleRepo) GetLines(ctx context.Context, saleID string) ([]entity.SaleLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, line_no, product_id, quantity, unit_price, discount, tax, subtotal, total
		FROM sale_lines WHERE sale_id = $1 ORDER BY line_no`, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.SaleLine
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.LineNo, &l.ProductID, &l.Quantity, &l.UnitPrice,
			&l.Discount, &l.Tax, &l.Subtotal, &l.Total); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// Update persiste estado de pago, espera, notas y metadata. Número y fecha de creación no cambian.
func (r *SaleRepo) Update(ctx context.Context, s *entity.Sale) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE sales
		SET payment_status = $2, is_held = $3, held_at = $4, notes = $5, metadata = $6, updated_at = $7
		WHERE id = $1`,
		s.ID, string(s.PaymentStatus), s.IsHeld, s.HeldAt, nullIfEmpty(s.Notes), metadataOrEmpty(s.Metadata), s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSaleNotFound
	}
	return nil
}

// List lista ventas con búsqueda, filtros, orden y paginación.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, int, error) {
	var w where
	if f.Search != "" {
		w.add("(sale_number ILIKE $%[1]d OR notes ILIKE $%[1]d)", "%"+f.Search+"%")
	}
	if f.BranchID != "" {
		w.add("branch_id = $%d", f.BranchID)
	}
	if f.PaymentStatus != "" {
		w.add("payment_status = $%d", string(f.PaymentStatus))
	}
	if f.Kind != "" {
		w.add("kind = $%d", string(f.Kind))
	}
	if f.From != nil {
		w.add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= $%d", *f.To)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sales`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	col, ok := saleSortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	query := `SELECT ` + saleColumns + ` FROM sales` + w.sql() +
		` ORDER BY ` + col + ` ` + direction(f.SortDesc) + `, sale_number`
	query += w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	list := []*entity.Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

// Delete elimina pagos, líneas y cabecera.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM payments WHERE sale_id = $1`, id); err != nil {
		return fmt.Errorf("delete sale payments: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM sale_lines WHERE sale_id = $1`, id); err != nil {
		return fmt.Errorf("delete sale lines: %w", err)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSaleNotFound
	}
	return nil
}

// PaymentRepo implementación de PaymentRepository.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador de pagos.
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO payments (id, sale_id, amount, method, reference, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.SaleID, p.Amount, p.Method, nullIfEmpty(p.Reference), nullIfEmpty(p.Notes),
		nullIfEmpty(p.CreatedBy), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepo) ListBySale(ctx context.Context, saleID string) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, amount, method, COALESCE(reference, ''), COALESCE(notes, ''),
		       COALESCE(created_by, ''), created_at
		FROM payments WHERE sale_id = $1 ORDER BY created_at, id`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	list := []*entity.Payment{}
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(&p.ID, &p.SaleID, &p.Amount, &p.Method, &p.Reference, &p.Notes,
			&p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

func (r *PaymentRepo) SumBySale(ctx context.Context, saleID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE sale_id = $1`, saleID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum payments: %w", err)
	}
	return total, nil
}
