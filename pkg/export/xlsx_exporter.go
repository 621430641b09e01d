package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXExporter renders datasets into an Excel workbook. The main table and
// each section get their own sheet.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Render produces an xlsx workbook for the dataset.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	mainSheet := "Details"
	if data.Title != "" {
		mainSheet = sanitizeSheetName(data.Title)
	}
	f.SetSheetName(f.GetSheetName(0), mainSheet)
	if err := writeSheet(f, mainSheet, data.Headers, data.Rows); err != nil {
		return nil, err
	}

	for _, section := range data.Sections {
		name := sanitizeSheetName(section.Name)
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create xlsx sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, section.Headers, section.Rows); err != nil {
			return nil, err
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows []map[string]string) error {
	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write xlsx headers: %w", err)
	}
	for i, row := range rows {
		record := make([]interface{}, len(headers))
		for j, header := range headers {
			record[j] = row[header]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			return fmt.Errorf("write xlsx row: %w", err)
		}
	}
	return nil
}

var sheetNameReplacer = strings.NewReplacer(":", "-", "\\", "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")")

// Excel sheet names cap at 31 characters and reject a few symbols.
func sanitizeSheetName(name string) string {
	name = sheetNameReplacer.Replace(name)
	if len(name) > 31 {
		name = name[:31]
	}
	if name == "" {
		name = "Sheet"
	}
	return name
}
