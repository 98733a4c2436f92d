package infra

// pdf.go: daily cash report (corte de caja) rendered with go-pdf/fpdf.
// Letter-size page with:
//   - header with date and cut state
//   - totals (ingresos, egresos, saldo final)
//   - movement table
//   - the day's deliveries; cancelled folios are listed but excluded from sums

import (
	"bytes"
	"fmt"
	"time"

	"pasteleria/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var impresora = message.NewPrinter(language.MustParse("es-MX"))

// FormatoMoneda renders an amount as "$1,234.50".
func FormatoMoneda(d decimal.Decimal) string {
	s := impresora.Sprint(number.Decimal(d.Abs().InexactFloat64(), number.Scale(2)))
	if d.IsNegative() {
		return "-$" + s
	}
	return "$" + s
}

// DatosReporteCorte is everything the report page shows.
type DatosReporteCorte struct {
	Negocio     string
	Corte       model.CorteCaja
	Movimientos []model.MovimientoCaja
	Folios      []model.Folio
	Loc         *time.Location
}

// ResumenFolios sums the active folios of the day.
type ResumenFolios struct {
	Activos    int
	Cancelados int
	Total      decimal.Decimal
	Anticipos  decimal.Decimal
	Saldo      decimal.Decimal
}

func ResumirFolios(folios []model.Folio) ResumenFolios {
	var r ResumenFolios
	for _, f := range folios {
		if f.Cancelado() {
			r.Cancelados++
			continue
		}
		r.Activos++
		r.Total = r.Total.Add(f.Total)
		r.Anticipos = r.Anticipos.Add(f.Anticipo)
	}
	r.Saldo = r.Total.Sub(r.Anticipos)
	return r
}

// RenderReporteCorte returns the PDF bytes.
func RenderReporteCorte(d DatosReporteCorte) ([]byte, error) {
	loc := d.Loc
	if loc == nil {
		loc = time.UTC
	}
	negocio := d.Negocio
	if negocio == "" {
		negocio = "Pastelería"
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(negocio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr("Corte de caja del "+d.Corte.Fecha), "", 1, "C", false, 0, "")
	estado := "Abierto"
	if d.Corte.Estado == model.CorteCerrado {
		estado = "Cerrado"
		if d.Corte.CerradoAt != nil {
			estado += " " + d.Corte.CerradoAt.In(loc).Format("02/01/2006 15:04")
		}
	}
	pdf.CellFormat(contentW, 5, tr("Estado: "+estado), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Totals ───────────────────────────────────────────────────────────────
	half := contentW / 2
	fila := func(label, valor string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(half, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(half, 6, valor, "", 1, "R", false, 0, "")
	}
	fila("Total ingresos", FormatoMoneda(d.Corte.TotalIngresos), false)
	fila("Total egresos", FormatoMoneda(d.Corte.TotalEgresos), false)
	fila("Saldo final", FormatoMoneda(d.Corte.SaldoFinal), true)
	if d.Corte.NotasCierre != nil && *d.Corte.NotasCierre != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(contentW, 5, tr("Notas: "+*d.Corte.NotasCierre), "", "L", false)
	}
	pdf.Ln(3)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(3)

	// ── Movements ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, tr(fmt.Sprintf("Movimientos (%d)", len(d.Movimientos))), "", 1, "L", false, 0, "")

	cHora, cTipo, cCat, cMonto := contentW*0.12, contentW*0.14, contentW*0.50, contentW*0.24
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(cHora, 6, "Hora", "B", 0, "L", false, 0, "")
	pdf.CellFormat(cTipo, 6, "Tipo", "B", 0, "L", false, 0, "")
	pdf.CellFormat(cCat, 6, tr("Categoría / descripción"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(cMonto, 6, "Monto", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, m := range d.Movimientos {
		desc := m.Categoria
		if m.Descripcion != nil && *m.Descripcion != "" {
			desc += " - " + *m.Descripcion
		}
		monto := FormatoMoneda(m.Monto)
		if m.Tipo == model.MovimientoEgreso {
			monto = "-" + monto
		}
		pdf.CellFormat(cHora, 5, m.CreatedAt.In(loc).Format("15:04"), "", 0, "L", false, 0, "")
		pdf.CellFormat(cTipo, 5, m.Tipo, "", 0, "L", false, 0, "")
		pdf.CellFormat(cCat, 5, tr(truncar(desc, 60)), "", 0, "L", false, 0, "")
		pdf.CellFormat(cMonto, 5, monto, "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(3)

	// ── Deliveries ───────────────────────────────────────────────────────────
	res := ResumirFolios(d.Folios)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, tr(fmt.Sprintf("Entregas del día: %d activas, %d canceladas", res.Activos, res.Cancelados)),
		"", 1, "L", false, 0, "")

	cFolio, cCli, cHoraE, cEst, cTot := contentW*0.16, contentW*0.36, contentW*0.10, contentW*0.16, contentW*0.22
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(cFolio, 6, "Folio", "B", 0, "L", false, 0, "")
	pdf.CellFormat(cCli, 6, "Cliente", "B", 0, "L", false, 0, "")
	pdf.CellFormat(cHoraE, 6, "Hora", "B", 0, "L", false, 0, "")
	pdf.CellFormat(cEst, 6, "Estatus", "B", 0, "L", false, 0, "")
	pdf.CellFormat(cTot, 6, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, f := range d.Folios {
		est := f.EstatusPago
		if f.Cancelado() {
			est = f.EstatusFolio
		}
		pdf.CellFormat(cFolio, 5, f.NumeroFolio, "", 0, "L", false, 0, "")
		pdf.CellFormat(cCli, 5, tr(truncar(f.ClienteNombre, 34)), "", 0, "L", false, 0, "")
		pdf.CellFormat(cHoraE, 5, f.HoraEntrega, "", 0, "L", false, 0, "")
		pdf.CellFormat(cEst, 5, est, "", 0, "L", false, 0, "")
		pdf.CellFormat(cTot, 5, FormatoMoneda(f.Total), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
	fila("Total vendido", FormatoMoneda(res.Total), false)
	fila("Anticipos recibidos", FormatoMoneda(res.Anticipos), false)
	fila("Por cobrar", FormatoMoneda(res.Saldo), true)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}

func truncar(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "..."
}
