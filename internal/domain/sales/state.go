package sales

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// Reglas de la máquina de estados:
//   pending → partial → paid, cualquiera → refunded.
//   La espera no bloquea pagos; solo se pone en espera una venta sin pagar.

// CanHold valida que la venta pueda ponerse en espera.
func CanHold(s *entity.Sale) error {
	switch {
	case s.IsHeld:
		return domain.ErrSaleAlreadyHeld
	case s.PaymentStatus == entity.PaymentPaid:
		return domain.ErrSalePaid
	case s.PaymentStatus == entity.PaymentRefunded:
		return domain.ErrSaleRefunded
	}
	return nil
}

// CanResume valida que la venta esté en espera.
func CanResume(s *entity.Sale) error {
	if !s.IsHeld {
		return domain.ErrSaleNotHeld
	}
	return nil
}

// CanRefund valida que la venta sea reembolsable.
func CanRefund(s *entity.Sale) error {
	switch {
	case s.PaymentStatus == entity.PaymentRefunded:
		return domain.ErrSaleRefunded
	case s.PaymentStatus != entity.PaymentPaid:
		return domain.ErrSaleNotPaid
	case s.Kind != entity.SaleKindSale:
		return domain.ErrRefundNotReturnable
	}
	return nil
}

// CanPay valida que la venta acepte pagos.
func CanPay(s *entity.Sale) error {
	switch {
	case s.PaymentStatus == entity.PaymentPaid:
		return domain.ErrSalePaid
	case s.PaymentStatus == entity.PaymentRefunded:
		return domain.ErrSaleRefunded
	}
	return nil
}

// CanDelete valida la eliminación administrativa.
func CanDelete(s *entity.Sale) error {
	switch s.PaymentStatus {
	case entity.PaymentPaid:
		return domain.ErrSalePaid
	case entity.PaymentRefunded:
		return domain.ErrSaleRefunded
	}
	return nil
}

// StatusForPaid devuelve paid si lo pagado alcanza el total, si no partial.
func StatusForPaid(paid, total decimal.Decimal) entity.PaymentStatus {
	if paid.GreaterThanOrEqual(total) {
		return entity.PaymentPaid
	}
	if paid.IsPositive() {
		return entity.PaymentPartial
	}
	return entity.PaymentPending
}
