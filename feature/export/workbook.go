package export

import (
	"fmt"
	"strings"

	"equipment-inventory/feature/equipment/models"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the inventory.
const SheetName = "Equipos"

// ContentType is the MIME type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Columns are the header cells of the worksheet, in order.
var Columns = []string{"INE", "NNE", "Serie", "Tipo", "Estado", "Responsable", "Ubicación", "Especificaciones"}

// FormatSpecs renders specifications as "clave: valor" pairs joined by "; ".
func FormatSpecs(specs []models.Especificacion) string {
	parts := make([]string, 0, len(specs))
	for _, s := range specs {
		parts = append(parts, s.Clave+": "+s.Valor)
	}
	return strings.Join(parts, "; ")
}

// Workbook builds an XLSX document with one row per record after the header.
func Workbook(list []*models.Equipment) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name worksheet: %w", err)
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	specStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    border,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create specification style: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "H1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, e := range list {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		values := []any{e.INE, e.NNE, e.Serie, e.Tipo, e.Estado, e.Responsable, e.Ubicacion, FormatSpecs(e.Especificaciones)}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row for %s: %w", e.ID, err)
		}

		specCell, _ := excelize.CoordinatesToCellName(len(Columns), row)
		if err := f.SetCellStyle(SheetName, specCell, specCell, specStyle); err != nil {
			return nil, fmt.Errorf("failed to style row for %s: %w", e.ID, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 35); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "H", "H", 50); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
