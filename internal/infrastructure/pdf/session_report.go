// Package pdf genera el informe de jornada de caja (X provisional, Z al cierre).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Caja + tipo          │  Informe X/Z + fechas         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: espèces / carte / chèque / virement / internos     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Hora | Tipo | Medio | Motivo | Importe               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ARQUEO: teórico / contado / ecart / justificación           │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/jhoicas/optica-core/internal/application/caisse"
	"github.com/jhoicas/optica-core/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

var _ caisse.ReportGenerator = (*MarotoReportGenerator)(nil)

// MarotoReportGenerator implementa caisse.ReportGenerator usando Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// GenerateSessionReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateSessionReport(_ context.Context, r caisse.SessionReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(reportTitle(r), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(totalsRows(r.Session)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(operationRows(r.Operations)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(closingRows(r)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar informe: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func reportTitle(r caisse.SessionReport) string {
	if r.Provisional {
		return "Rapport X - " + r.Register.Name
	}
	return "Rapport Z - " + r.Register.Name
}

// headerRow: caja (izq) y tipo de informe + fechas (der).
func headerRow(r caisse.SessionReport) core.Row {
	s := r.Session
	period := "Ouverture: " + s.OpenedAt.Format("02/01/2006 15:04")
	if s.ClosedAt != nil {
		period += "   Clôture: " + s.ClosedAt.Format("02/01/2006 15:04")
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(r.Register.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Caisse "+strings.ToLower(r.Register.Kind)+"   |   Journée "+s.ID, props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(reportTitle(r), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(period, props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Édité le "+r.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 7, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

// totalsRows: un renglón por total acumulado de la jornada.
func totalsRows(s *entity.CashSession) []core.Row {
	pairs := []struct {
		label string
		value decimal.Decimal
	}{
		{"Fonds de caisse", s.OpeningBalance},
		{"Encaissements espèces", s.CashIn},
		{"Décaissements espèces", s.CashOut},
		{"Carte bancaire", s.CardSales},
		{"Chèques", s.ChequeSales},
		{"Virements", s.WireSales},
		{"Mouvements internes (entrées)", s.InternalIn},
		{"Mouvements internes (sorties)", s.InternalOut},
		{"Dépenses", s.Expenses},
	}
	rows := make([]core.Row, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, row.New(5).Add(
			col.New(3),
			col.New(4).Add(text.New(p.label, props.Text{Size: 8, Align: align.Left, Top: 1})),
			col.New(3).Add(text.New(formatAmount(p.value), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2),
		))
	}
	return rows
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Heure", 1, align.Left),
		h("Opération", 2, align.Left),
		h("Moyen", 2, align.Left),
		h("Motif / pièce", 5, align.Left),
		h("Montant", 2, align.Right),
	)
}

// operationRows: una fila por operación; los décaissements van con signo negativo.
func operationRows(ops []*entity.CashOperation) []core.Row {
	if len(ops) == 0 {
		return []core.Row{row.New(6).Add(col.New(12).Add(
			text.New("Aucune opération", props.Text{Size: 8, Align: align.Center, Color: colorGray, Top: 1}),
		))}
	}
	rows := make([]core.Row, 0, len(ops))
	for _, op := range ops {
		amount := op.Amount
		if op.Type == entity.OperationDecaissement {
			amount = amount.Neg()
		}
		detail := op.Reason
		if op.InvoiceID != "" {
			detail = strings.TrimSpace(op.InvoiceID + " " + detail)
		}
		rows = append(rows, row.New(6).Add(
			col.New(1).Add(text.New(op.CreatedAt.Format("15:04"), props.Text{Size: 7.5, Top: 1, Left: 1})),
			col.New(2).Add(text.New(op.Type, props.Text{Size: 7.5, Top: 1, Left: 1})),
			col.New(2).Add(text.New(op.Means, props.Text{Size: 7.5, Top: 1, Left: 1})),
			col.New(5).Add(text.New(nonEmpty(detail, "—"), props.Text{Size: 7.5, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatAmount(amount), props.Text{Size: 7.5, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

// closingRows: saldo teórico y, si la jornada está cerrada, contado, ecart y justificación.
func closingRows(r caisse.SessionReport) []core.Row {
	s := r.Session
	rows := []core.Row{
		row.New(7).Add(
			col.New(6),
			col.New(3).Add(text.New("Solde théorique:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1, Right: 2})),
			col.New(3).Add(text.New(formatAmount(s.TheoreticalBalance()), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1})),
		),
	}
	if r.Provisional || s.ActualBalance == nil {
		return append(rows, row.New(8).Add(col.New(12).Add(
			text.New("Rapport provisoire: la journée est encore ouverte.", props.Text{Size: 7.5, Color: colorGray, Top: 2}),
		)))
	}

	ecart := decimal.Zero
	if s.Ecart != nil {
		ecart = *s.Ecart
	}
	ecartColor := colorPrimary
	if !ecart.IsZero() {
		ecartColor = colorAlert
	}
	rows = append(rows,
		row.New(7).Add(
			col.New(6),
			col.New(3).Add(text.New("Solde compté:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1, Right: 2})),
			col.New(3).Add(text.New(formatAmount(*s.ActualBalance), props.Text{Size: 9, Align: align.Right, Top: 1})),
		),
		row.New(7).Add(
			col.New(6),
			col.New(3).Add(text.New("Écart:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: ecartColor, Top: 1, Right: 2})),
			col.New(3).Add(text.New(formatAmount(ecart), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: ecartColor, Top: 1})),
		),
	)
	if s.Justification != "" {
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New("Justification: "+s.Justification, props.Text{Size: 8, Color: colorGray, Top: 2}),
		)))
	}
	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New("Clôturée par "+nonEmpty(s.ClosedBy, "—"), props.Text{Size: 7.5, Color: colorGray, Top: 2}),
	)))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatAmount formatea con dos decimales, espacio de miles y coma decimal.
// Ej: 1234.5 → "1 234,50 €", -20 → "-20,00 €"
func formatAmount(d decimal.Decimal) string {
	d = d.Round(2)
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, c)
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + string(buf) + "," + frac + " €"
}
