package export

import (
	"fmt"

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

	"github.com/jhoicas/Reagentes-api/internal/application/report"
)

var _ report.Exporter = (*PDFExporter)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

const gridSize = 12

// PDFExporter genera el reporte como tabla A4 usando Maroto v2.
type PDFExporter struct {
	lab string
}

// NewPDFExporter construye el exportador; lab aparece como autor y encabezado.
func NewPDFExporter(lab string) *PDFExporter { return &PDFExporter{lab: lab} }

func (e *PDFExporter) Format() string      { return "pdf" }
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Export arma encabezado, tabla y pie con el total de registros.
func (e *PDFExporter) Export(r *report.Report) ([]byte, error) {
	if len(r.Columns) > gridSize {
		return nil, fmt.Errorf("pdf: máximo %d columnas, reporte con %d", gridSize, len(r.Columns))
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 7}).
		WithTitle(r.Title, true).
		WithAuthor(e.lab, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(e.headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	widths := columnWidths(len(r.Columns))
	m.AddRows(tableRow(r.Columns, widths, props.Text{
		Style: fontstyle.Bold, Size: 7, Color: colorPrimary, Top: 1, Left: 0.5, Right: 0.5,
	}))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.2}))
	for _, rec := range r.Rows {
		m.AddRows(tableRow(rec, widths, props.Text{Size: 7, Top: 1, Left: 0.5, Right: 0.5}))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(row.New(6).Add(col.New(gridSize).Add(
		text.New(fmt.Sprintf("Total de registros: %d", r.Total), props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right,
		}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: laboratorio y título (izq), fecha de generación (der).
func (e *PDFExporter) headerRow(r *report.Report) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(nonEmpty(e.lab, "Laboratorio"), props.Text{
				Size: 8, Color: colorGray, Top: 1,
			}),
			text.New(r.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 6,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+r.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func tableRow(values []string, widths []int, style props.Text) core.Row {
	cols := make([]core.Col, 0, len(widths))
	for i, w := range widths {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		cols = append(cols, col.New(w).Add(text.New(v, style)))
	}
	return row.New(6).Add(cols...)
}

// columnWidths reparte las 12 columnas de la grilla; el sobrante va a las primeras.
func columnWidths(n int) []int {
	if n == 0 {
		return nil
	}
	widths := make([]int, n)
	base, extra := gridSize/n, gridSize%n
	for i := range widths {
		widths[i] = base
		if i < extra {
			widths[i]++
		}
	}
	return widths
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
