// Package pdf genera la guía de despacho de un traslado entre bodegas.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: GUÍA DE TRASLADO        │  N° Traslado + Estado    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ORIGEN: bodega + dirección  │  DESTINO: bodega + dirección │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Pedido | Despachado | Recibido | $  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES + QR del número de traslado + firmas               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

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

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var statusLabels = map[entity.TransferStatus]string{
	entity.TransferStatusDraft:     "BORRADOR",
	entity.TransferStatusPending:   "PENDIENTE",
	entity.TransferStatusApproved:  "APROBADO",
	entity.TransferStatusShipped:   "DESPACHADO",
	entity.TransferStatusCompleted: "RECIBIDO",
	entity.TransferStatusCancelled: "ANULADO",
}

// ── Generator ─────────────────────────────────────────────────────────────────

var _ inventory.SlipGenerator = (*MarotoSlipGenerator)(nil)

// MarotoSlipGenerator implementa inventory.SlipGenerator usando Maroto v2.
type MarotoSlipGenerator struct {
	company string
}

// NewMarotoSlipGenerator construye el generador; company aparece como autor del documento.
func NewMarotoSlipGenerator(company string) *MarotoSlipGenerator {
	return &MarotoSlipGenerator{company: company}
}

// GenerateTransferSlip genera el PDF y devuelve sus bytes.
func (g *MarotoSlipGenerator) GenerateTransferSlip(_ context.Context, data inventory.SlipData) ([]byte, error) {
	if data.Transfer == nil {
		return nil, fmt.Errorf("pdf: traslado vacío")
	}
	t := data.Transfer
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Guía de traslado "+t.TransferNumber, true).
		WithAuthor(nonEmpty(g.company, "stock-ledger"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(t))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(warehousesRow(data.FromWarehouse, data.ToWarehouse))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(data.Lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(t))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(t))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y N° traslado + estado + fecha (der).
func headerRow(t *entity.StockTransfer) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("GUÍA DE TRASLADO ENTRE BODEGAS", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Tipo: "+string(t.TransferType), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(statusLabels[t.Status], props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(t.TransferNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+t.CreatedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// warehousesRow: bodega origen (izq) y destino (der).
func warehousesRow(from, to entity.Warehouse) core.Row {
	block := func(title string, w entity.Warehouse, a align.Type) []core.Component {
		return []core.Component{
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1, Align: a}),
			text.New(nonEmpty(w.Name, w.ID), props.Text{Style: fontstyle.Bold, Size: 10, Top: 6, Align: a}),
			text.New(nonEmpty(w.Address, "—"), props.Text{Size: 8, Top: 12, Color: colorGray, Align: a}),
		}
	}
	return row.New(18).Add(
		col.New(6).Add(block("BODEGA ORIGEN", from, align.Left)...),
		col.New(6).Add(block("BODEGA DESTINO", to, align.Right)...),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("SKU", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Pedido", 1, align.Right),
		h("Desp.", 1, align.Right),
		h("Recib.", 1, align.Right),
		h("Costo Unit.", 3, align.Right),
	)
}

// tableDetailRows: una fila por línea del traslado.
func tableDetailRows(lines []inventory.SlipLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		name := l.ProductName
		if l.VariantID != "" {
			name += " (" + l.VariantID + ")"
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(nonEmpty(l.SKU, "—"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(l.Requested.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(l.Shipped.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(l.Received.String(), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(
				"$"+formatMoney(l.UnitCost.StringFixed(0)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: cantidad y valor total alineados a la derecha.
func totalsRow(t *entity.StockTransfer) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1,
		})
	}
	return row.New(14).Add(
		col.New(6),
		col.New(3).Add(label("Cantidad total:"), label("Valor total:")),
		col.New(3).Add(
			text.New(t.TotalQuantity.String(), props.Text{Size: 9, Align: align.Right, Right: 1}),
			grandValue("$"+formatMoney(t.TotalValue.StringFixed(0))),
		),
	)
}

// footerRow: QR con el número de traslado, trazabilidad y espacio de firmas.
func footerRow(t *entity.StockTransfer) core.Row {
	trace := fmt.Sprintf("Creado por: %s\nDespachado: %s\nRecibido: %s",
		nonEmpty(t.CreatedBy, "—"), stamp(t.ShippedBy, t.ShippedAt), stamp(t.ReceivedBy, t.ReceivedAt))
	if t.Status == entity.TransferStatusCancelled {
		trace += "\nAnulado: " + stamp(t.CancelledBy, t.CancelledAt) + " " + t.CancelReason
	}
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(t.TransferNumber, props.Rect{Percent: 95, Center: true})),
		col.New(5).Add(text.New(trace, props.Text{Size: 8, Top: 2, Left: 3, Color: colorGray})),
		col.New(4).Add(
			text.New("______________________\nEntrega", props.Text{Size: 8, Top: 8, Align: align.Center}),
			text.New("______________________\nRecibe", props.Text{Size: 8, Top: 24, Align: align.Center}),
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

func stamp(user string, at *time.Time) string {
	if at == nil {
		return "—"
	}
	return nonEmpty(user, "—") + " " + at.Format("02/01/2006 15:04")
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	neg := len(s) > 0 && s[0] == '-'
	if neg {
		s = s[1:]
	}
	n := len(s)
	if n <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	buf := make([]byte, 0, n+n/3+1)
	if neg {
		buf = append(buf, '-')
	}
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
