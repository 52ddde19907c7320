package excel

// RawRowData represents a row of raw Excel data as header-keyed strings
type RawRowData map[string]string

// SheetData is one worksheet read back as text
type SheetData struct {
	Name    string       // Sheet name
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// Sheet names written by the exporter.
const (
	SheetEntities  = "Entities"
	SheetGIR       = "GIR"
	SheetAnomalies = "Anomalies"
)
