package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook reads every sheet of an xlsx stream as raw cell values,
// ignoring number formats. The first row of each sheet is the header row.
func ReadWorkbook(r io.Reader) (map[string]*SheetData, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := make(map[string]*SheetData)
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		sheets[name] = processRows(name, rows)
	}
	return sheets, nil
}

// processRows converts raw string rows into SheetData
func processRows(name string, rows [][]string) *SheetData {
	data := &SheetData{Name: name}
	if len(rows) == 0 {
		return data
	}

	// Extract headers from first row
	data.Headers = make([]string, len(rows[0]))
	for i, header := range rows[0] {
		data.Headers[i] = strings.TrimSpace(header)
	}

	for _, row := range rows[1:] {
		rowData := make(RawRowData, len(data.Headers))
		for j, cell := range row {
			if j < len(data.Headers) {
				rowData[data.Headers[j]] = strings.TrimSpace(cell)
			}
		}
		data.Rows = append(data.Rows, rowData)
	}
	return data
}
