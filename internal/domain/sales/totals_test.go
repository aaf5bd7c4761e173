package sales_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-pos/internal/domain"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/sales"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBuildLine_ImpuestoDesdeTasa(t *testing.T) {
	l, err := sales.BuildLine(sales.LineInput{
		ProductID: "p1", Quantity: d("3"), UnitPrice: d("10"), Discount: d("2"), TaxRate: d("0.19"),
	})
	require.NoError(t, err)
	assert.True(t, l.Subtotal.Equal(d("30")))
	assert.True(t, l.Tax.Equal(d("5.32")), "tax %s", l.Tax) // (30 − 2) × 0.19
	assert.True(t, l.Total.Equal(d("33.32")))
}

func TestBuildLine_ImpuestoExplicito(t *testing.T) {
	tax := d("10")
	l, err := sales.BuildLine(sales.LineInput{
		ProductID: "p1", Quantity: d("1"), UnitPrice: d("90"), Tax: &tax, TaxRate: d("0.19"),
	})
	require.NoError(t, err)
	assert.True(t, l.Tax.Equal(d("10")))
	assert.True(t, l.Total.Equal(d("100")))
}

func TestBuildLine_EntradasInvalidas(t *testing.T) {
	cases := map[string]sales.LineInput{
		"cantidad cero":      {Quantity: d("0"), UnitPrice: d("1")},
		"precio negativo":    {Quantity: d("1"), UnitPrice: d("-1")},
		"descuento excesivo": {Quantity: d("1"), UnitPrice: d("5"), Discount: d("6")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := sales.BuildLine(in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// total = subtotal − descuento + impuesto, y las líneas suman la cabecera.
func TestApplyTotals_LeyDelTotal(t *testing.T) {
	l1, _ := sales.BuildLine(sales.LineInput{Quantity: d("3"), UnitPrice: d("10"), Discount: d("1"), TaxRate: d("0.19")})
	l2, _ := sales.BuildLine(sales.LineInput{Quantity: d("1"), UnitPrice: d("70"), TaxRate: d("0.05")})
	s := &entity.Sale{Lines: []entity.SaleLine{l1, l2}}
	sales.ApplyTotals(s)

	assert.True(t, s.Total.Equal(s.Subtotal.Sub(s.Discount).Add(s.Tax)))
	assert.True(t, s.Subtotal.Equal(l1.Subtotal.Add(l2.Subtotal)))
	assert.True(t, s.Tax.Equal(l1.Tax.Add(l2.Tax)))
	assert.True(t, s.Total.Equal(l1.Total.Add(l2.Total)))
}

func TestScaleLine_Proporcional(t *testing.T) {
	l, _ := sales.BuildLine(sales.LineInput{Quantity: d("3"), UnitPrice: d("10"), Discount: d("3"), TaxRate: d("0.19")})
	half := sales.ScaleLine(l, d("1"))

	expected := l.Total.Div(d("3"))
	assert.True(t, half.Total.Sub(expected).Abs().LessThanOrEqual(d("0.02")),
		"total %s vs esperado %s", half.Total, expected)
	assert.True(t, half.Total.Equal(half.Subtotal.Sub(half.Discount).Add(half.Tax)))
	assert.True(t, half.Quantity.Equal(d("1")))
}

func TestScaleLine_CantidadCompletaCopiaMontos(t *testing.T) {
	l, _ := sales.BuildLine(sales.LineInput{Quantity: d("3"), UnitPrice: d("10"), TaxRate: d("0.19")})
	l.ID = "line-1"
	full := sales.ScaleLine(l, d("3"))
	assert.Empty(t, full.ID)
	assert.True(t, full.Total.Equal(l.Total))
}

func TestStatusForPaid(t *testing.T) {
	assert.Equal(t, entity.PaymentPaid, sales.StatusForPaid(d("100"), d("100")))
	assert.Equal(t, entity.PaymentPartial, sales.StatusForPaid(d("60"), d("100")))
	assert.Equal(t, entity.PaymentPending, sales.StatusForPaid(d("0"), d("100")))
}

func TestReglasDeEstado(t *testing.T) {
	paid := &entity.Sale{PaymentStatus: entity.PaymentPaid, Kind: entity.SaleKindSale}
	held := &entity.Sale{PaymentStatus: entity.PaymentPending, IsHeld: true}
	pending := &entity.Sale{PaymentStatus: entity.PaymentPending, Kind: entity.SaleKindSale}
	refunded := &entity.Sale{PaymentStatus: entity.PaymentRefunded, Kind: entity.SaleKindSale}

	assert.ErrorIs(t, sales.CanHold(paid), domain.ErrSalePaid)
	assert.ErrorIs(t, sales.CanHold(held), domain.ErrSaleAlreadyHeld)
	assert.NoError(t, sales.CanHold(pending))
	assert.ErrorIs(t, sales.CanResume(pending), domain.ErrSaleNotHeld)
	assert.NoError(t, sales.CanResume(held))

	assert.NoError(t, sales.CanRefund(paid))
	assert.ErrorIs(t, sales.CanRefund(pending), domain.ErrSaleNotPaid)
	assert.ErrorIs(t, sales.CanRefund(refunded), domain.ErrSaleRefunded)

	assert.ErrorIs(t, sales.CanPay(paid), domain.ErrInvalidInput)
	assert.NoError(t, sales.CanPay(held))
	assert.ErrorIs(t, sales.CanDelete(paid), domain.ErrSalePaid)
	assert.NoError(t, sales.CanDelete(pending))
}
