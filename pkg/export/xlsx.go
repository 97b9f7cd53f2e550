package export

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"
)

// Spreadsheet layout.
const (
	XLSXSheet       = "calculatedSuspicion"
	xlsxMethodWidth = 90
	xlsxFilterRange = "A1:E1"
	xlsxDefaultName = "Sheet1"
)

// XLSX writes the suspicion table as a spreadsheet with a frozen, filterable
// header row.
type XLSX struct{}

// Name implements Exporter.
func (XLSX) Name() string { return FormatXLSX }

// Extension implements Exporter.
func (XLSX) Extension() string { return ".xlsx" }

// Export implements Exporter.
func (x XLSX) Export(path string, report *Report) error {
	return exportAtomic(path, x.Name(), func(w io.Writer) error {
		return WriteXLSX(w, report)
	})
}

// WriteXLSX renders the workbook to w.
func WriteXLSX(w io.Writer, report *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	err := f.SetSheetName(xlsxDefaultName, XLSXSheet)
	if err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	err = writeXLSXRows(f, report)
	if err != nil {
		return err
	}

	err = formatXLSXSheet(f)
	if err != nil {
		return err
	}

	err = f.Write(w)
	if err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	return nil
}

func writeXLSXRows(f *excelize.File, report *Report) error {
	header := []any{"Method Name", "Tarantula Suspicion", "SBI Suspicion", "Jaccard Suspicion", "Ochai Suspicion"}

	err := f.SetSheetRow(XLSXSheet, "A1", &header)
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, entry := range report.Entries {
		cell, cellErr := excelize.CoordinatesToCellName(1, i+2)
		if cellErr != nil {
			return fmt.Errorf("row %d: %w", i+2, cellErr)
		}

		row := []any{entry.Method}
		for _, v := range entry.Scores.Keys() {
			row = append(row, xlsxValue(v))
		}

		err = f.SetSheetRow(XLSXSheet, cell, &row)
		if err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return nil
}

func formatXLSXSheet(f *excelize.File) error {
	err := f.SetColWidth(XLSXSheet, "A", "A", xlsxMethodWidth)
	if err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	err = f.SetRowStyle(XLSXSheet, 1, 1, bold)
	if err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	err = f.SetPanes(XLSXSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	err = f.AutoFilter(XLSXSheet, xlsxFilterRange, []excelize.AutoFilterOptions{})
	if err != nil {
		return fmt.Errorf("set auto filter: %w", err)
	}

	return nil
}

// xlsxValue returns v as a number, or its text form when spreadsheets cannot
// store it.
func xlsxValue(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return FormatScore(v)
	}

	return v
}
