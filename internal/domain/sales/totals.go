package sales

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// moneyScale decimales de los montos de venta.
const moneyScale = 2

// LineInput datos crudos de una línea antes de calcular montos.
// Tax nil → se calcula con TaxRate sobre (subtotal − descuento).
type LineInput struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Tax       *decimal.Decimal
	TaxRate   decimal.Decimal // fracción (0.19)
}

// BuildLine calcula subtotal, impuesto y total de una línea.
func BuildLine(in LineInput) (entity.SaleLine, error) {
	if !in.Quantity.IsPositive() {
		return entity.SaleLine{}, fmt.Errorf("%w: cantidad debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if in.UnitPrice.IsNegative() || in.Discount.IsNegative() {
		return entity.SaleLine{}, fmt.Errorf("%w: precio y descuento no pueden ser negativos", domain.ErrInvalidInput)
	}
	subtotal := in.Quantity.Mul(in.UnitPrice).Round(moneyScale)
	discount := in.Discount.Round(moneyScale)
	if discount.GreaterThan(subtotal) {
		return entity.SaleLine{}, fmt.Errorf("%w: descuento mayor al subtotal", domain.ErrInvalidInput)
	}
	var tax decimal.Decimal
	if in.Tax != nil {
		if in.Tax.IsNegative() {
			return entity.SaleLine{}, fmt.Errorf("%w: impuesto negativo", domain.ErrInvalidInput)
		}
		tax = in.Tax.Round(moneyScale)
	} else {
		tax = subtotal.Sub(discount).Mul(in.TaxRate).Round(moneyScale)
	}
	return entity.SaleLine{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		Discount:  discount,
		Tax:       tax,
		Subtotal:  subtotal,
		Total:     subtotal.Sub(discount).Add(tax),
	}, nil
}

// ApplyTotals suma las líneas en la cabecera: total = subtotal − descuento + impuesto.
func ApplyTotals(s *entity.Sale) {
	var subtotal, discount, tax decimal.Decimal
	for _, l := range s.Lines {
		subtotal = subtotal.Add(l.Subtotal)
		discount = discount.Add(l.Discount)
		tax = tax.Add(l.Tax)
	}
	s.Subtotal = subtotal
	s.Discount = discount
	s.Tax = tax
	s.Total = subtotal.Sub(discount).Add(tax)
}

// ScaleLine devuelve la línea escalada por ratio = q/Q para un reembolso parcial.
// Cada componente se redondea y el total se recompone con los componentes
// redondeados, así la ley del total se mantiene exacta.
func ScaleLine(l entity.SaleLine, quantity decimal.Decimal) entity.SaleLine {
	if quantity.Equal(l.Quantity) {
		out := l
		out.ID, out.SaleID = "", ""
		return out
	}
	ratio := quantity.Div(l.Quantity)
	subtotal := l.Subtotal.Mul(ratio).Round(moneyScale)
	discount := l.Discount.Mul(ratio).Round(moneyScale)
	tax := l.Tax.Mul(ratio).Round(moneyScale)
	return entity.SaleLine{
		ProductID: l.ProductID,
		Quantity:  quantity,
		UnitPrice: l.UnitPrice,
		Discount:  discount,
		Tax:       tax,
		Subtotal:  subtotal,
		Total:     subtotal.Sub(discount).Add(tax),
	}
}
