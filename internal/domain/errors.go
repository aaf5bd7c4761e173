package domain

import (
	"errors"
	"fmt"
)

// Errores raíz del dominio. La capa HTTP clasifica con errors.Is:
// ErrNotFound → 404, ErrInvalidInput → 400, ErrConflict → 409.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
)

// Errores específicos; cada uno envuelve su raíz.
var (
	ErrItemNotFound     = fmt.Errorf("%w: producto", ErrNotFound)
	ErrLocationNotFound = fmt.Errorf("%w: ubicación", ErrNotFound)
	ErrMovementNotFound = fmt.Errorf("%w: movimiento", ErrNotFound)
	ErrBalanceNotFound  = fmt.Errorf("%w: saldo", ErrNotFound)
	ErrSaleNotFound     = fmt.Errorf("%w: venta", ErrNotFound)

	ErrInsufficientStock   = fmt.Errorf("%w: stock insuficiente", ErrInvalidInput)
	ErrMovementCancelled   = fmt.Errorf("%w: el movimiento ya está anulado", ErrInvalidInput)
	ErrMovementNotPending  = fmt.Errorf("%w: el movimiento no está pendiente", ErrInvalidInput)
	ErrSaleAlreadyHeld     = fmt.Errorf("%w: la venta ya está en espera", ErrInvalidInput)
	ErrSaleNotHeld         = fmt.Errorf("%w: la venta no está en espera", ErrInvalidInput)
	ErrSalePaid            = fmt.Errorf("%w: la venta ya está pagada", ErrInvalidInput)
	ErrSaleNotPaid         = fmt.Errorf("%w: la venta no está pagada", ErrInvalidInput)
	ErrSaleRefunded        = fmt.Errorf("%w: la venta ya fue reembolsada", ErrInvalidInput)
	ErrRefundNotReturnable = fmt.Errorf("%w: solo se reembolsan ventas", ErrInvalidInput)
	ErrRefundItemNotInSale = fmt.Errorf("%w: el producto no pertenece a la venta", ErrInvalidInput)
	ErrRefundQtyExceeded   = fmt.Errorf("%w: cantidad a reembolsar mayor a la vendida", ErrInvalidInput)
	ErrPaymentExceedsTotal = fmt.Errorf("%w: la suma de pagos supera el total", ErrInvalidInput)

	ErrDuplicateSaleNumber = fmt.Errorf("%w: número de venta duplicado", ErrConflict)
	ErrResourceBusy        = fmt.Errorf("%w: registro bloqueado por otra operación, reintente", ErrConflict)
)
