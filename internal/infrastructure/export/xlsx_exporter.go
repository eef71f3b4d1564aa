// Package export convierte reportes tabulares a archivos descargables (XLSX y PDF).
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Reagentes-api/internal/application/report"
)

var _ report.Exporter = (*XLSXExporter)(nil)

// XLSXExporter genera una planilla con una hoja por reporte usando excelize.
type XLSXExporter struct{}

// NewXLSXExporter construye el exportador.
func NewXLSXExporter() *XLSXExporter { return &XLSXExporter{} }

func (e *XLSXExporter) Format() string { return "xlsx" }

func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Export escribe la cabecera en la fila 1 (en negrita) y una fila por registro.
func (e *XLSXExporter) Export(r *report.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if name := sheetName(r.Title); name != "" && name != sheet {
		if err := f.SetSheetName(sheet, name); err != nil {
			return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
		}
		sheet = name
	}

	header := make([]interface{}, 0, len(r.Columns))
	for _, c := range r.Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx: cabecera: %w", err)
	}
	if len(r.Columns) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return nil, fmt.Errorf("xlsx: estilo: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(len(r.Columns), 1)
		if err != nil {
			return nil, fmt.Errorf("xlsx: celda: %w", err)
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return nil, fmt.Errorf("xlsx: estilo cabecera: %w", err)
		}
	}

	for i, rec := range r.Rows {
		excelRow := make([]interface{}, 0, len(rec))
		for _, v := range rec {
			excelRow = append(excelRow, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("xlsx: celda: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, fmt.Errorf("xlsx: fila %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName recorta el título al máximo de 31 caracteres que admite Excel.
func sheetName(title string) string {
	runes := []rune(title)
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}
