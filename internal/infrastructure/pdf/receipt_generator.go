// Package pdf genera el comprobante de venta (tiquete POS) en PDF.
//
// Layout de la página:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Sucursal + dirección │ N° Venta + Fecha + Tipo     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | P.Unit | Desc. | IVA | Total      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / Descuento / Impuestos / TOTAL           │
//	│  PAGOS: método + referencia + valor                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el número de venta + estado                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/Inventario-pos/internal/application/sales"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

var _ sales.ReceiptPDFGenerator = (*ReceiptGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// ReceiptGenerator implementa sales.ReceiptPDFGenerator usando Maroto v2.
type ReceiptGenerator struct {
	printer *message.Printer
}

// NewReceiptGenerator construye el generador. Los montos se formatean con la
// convención del idioma dado (es: 1.250.000,50).
func NewReceiptGenerator(lang language.Tag) *ReceiptGenerator {
	return &ReceiptGenerator{printer: message.NewPrinter(lang)}
}

// Money formatea un monto con dos decimales y separadores del idioma.
func (g *ReceiptGenerator) Money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return g.printer.Sprintf("$%.2f", f)
}

func (g *ReceiptGenerator) qty(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return d.StringFixed(0)
	}
	return d.String()
}

// GenerateReceiptPDF genera el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) GenerateReceiptPDF(_ context.Context, r *sales.Receipt) ([]byte, error) {
	if r == nil || r.Sale == nil {
		return nil, fmt.Errorf("pdf: comprobante sin venta")
	}
	branchName := r.Sale.BranchID
	if r.Branch != nil {
		branchName = r.Branch.Name
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante "+r.Sale.SaleNumber, true).
		WithAuthor(branchName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.tableLineRows(r.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(r.Sale))
	if len(r.Payments) > 0 {
		m.AddRows(g.paymentRows(r.Payments)...)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(r.Sale))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func kindLabel(k entity.SaleKind) string {
	switch k {
	case entity.SaleKindReturn:
		return "DEVOLUCIÓN"
	case entity.SaleKindExchange:
		return "CAMBIO"
	}
	return "COMPROBANTE DE VENTA"
}

// headerRow: sucursal (izq) y número + fecha (der).
func (g *ReceiptGenerator) headerRow(r *sales.Receipt) core.Row {
	name, address := r.Sale.BranchID, ""
	if r.Branch != nil {
		name, address = r.Branch.Name, r.Branch.Address
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(address, "-"), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(kindLabel(r.Sale.Kind), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(r.Sale.SaleNumber, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Fecha: "+r.Sale.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 4, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Desc.", 1, align.Right),
		h("IVA", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

// tableLineRows: una fila por línea de la venta.
func (g *ReceiptGenerator) tableLineRows(lines []sales.ReceiptLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		desc := l.ProductName
		if l.SKU != "" {
			desc = l.SKU + " · " + desc
		}
		cell := func(s string, a align.Type) core.Component {
			return text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1})
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(cell(g.qty(l.Quantity), align.Center)),
			col.New(4).Add(cell(desc, align.Left)),
			col.New(2).Add(cell(g.Money(l.UnitPrice), align.Right)),
			col.New(1).Add(cell(g.Money(l.Discount), align.Right)),
			col.New(2).Add(cell(g.Money(l.Tax), align.Right)),
			col.New(2).Add(cell(g.Money(l.Total), align.Right)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func (g *ReceiptGenerator) totalsRow(s *entity.Sale) core.Row {
	label := func(v string, grand bool) core.Component {
		p := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2}
		if grand {
			p.Size, p.Color = 10, colorPrimary
		}
		return text.New(v, p)
	}
	value := func(v string, grand bool) core.Component {
		p := props.Text{Size: 9, Align: align.Right, Right: 1}
		if grand {
			p.Style, p.Size, p.Color = fontstyle.Bold, 10, colorPrimary
		}
		return text.New(v, p)
	}
	return row.New(26).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", false),
			label("Descuento:", false),
			label("Impuestos:", false),
			label("TOTAL:", true),
		),
		col.New(3).Add(
			value(g.Money(s.Subtotal), false),
			value(g.Money(s.Discount), false),
			value(g.Money(s.Tax), false),
			value(g.Money(s.Total), true),
		),
	)
}

// paymentRows: un renglón por instrumento de pago.
func (g *ReceiptGenerator) paymentRows(payments []*entity.Payment) []core.Row {
	rows := []core.Row{row.New(6).Add(col.New(12).Add(
		text.New("PAGOS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	))}
	for _, p := range payments {
		rows = append(rows, row.New(5).Add(
			col.New(4).Add(text.New(p.Method, props.Text{Size: 8, Left: 2})),
			col.New(5).Add(text.New(nonEmpty(p.Reference, "-"), props.Text{Size: 8, Color: colorGray})),
			col.New(3).Add(text.New(g.Money(p.Amount), props.Text{Size: 8, Align: align.Right, Right: 1})),
		))
	}
	return rows
}

// footerRow: QR con el número de venta y estado de pago.
func footerRow(s *entity.Sale) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(s.SaleNumber, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Estado: "+string(s.PaymentStatus), props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
			text.New(nonEmpty(s.Notes, ""), props.Text{Size: 8, Top: 10, Left: 3, Color: colorGray}),
			text.New("Conserve este comprobante para cambios y devoluciones.", props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 20, Left: 3, Color: colorPrimary,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
