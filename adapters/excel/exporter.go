// Package excel writes dashboard views to xlsx workbooks and reads them back.
package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"pillartwo/domain/dashboard"
	"pillartwo/domain/entity"
	"pillartwo/internal"
	"pillartwo/internal/errors"
	"pillartwo/ports"
)

// Built-in excelize number formats.
const (
	numFmtThousands = 3  // #,##0
	numFmtPercent   = 10 // 0.00%
	numFmtDecimal   = 2  // 0.00
)

var (
	entityHeaders = []interface{}{
		"Entity ID", "Name", "Jurisdiction", "Fiscal Year", "GloBE Income", "ETR",
		"Taxes Payable", "SBIE", "Top-Up Tax", "Safe Harbor", "Anomaly", "Anomaly Score",
	}
	girHeaders = []interface{}{
		"Jurisdiction", "Entities", "Total Income", "Total Taxes Payable", "Average ETR",
		"Economic Activity", "Safe Harbor Status",
	}
	anomalyHeaders = []interface{}{
		"Entity ID", "Entity", "Type", "Severity", "Feature", "Value", "Description",
	}
)

// Exporter writes the Entities, GIR and Anomalies sheets of a view.
type Exporter struct {
	logger *internal.Logger
}

var _ ports.WorkbookExporter = (*Exporter)(nil)

// NewExporter creates a workbook exporter
func NewExporter(logger *internal.Logger) *Exporter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Exporter{logger: logger}
}

// styles holds the style ids of one workbook.
type styles struct {
	header, thousands, percent, decimal int
}

// Export renders view as an xlsx workbook into w.
func (x *Exporter) Export(w io.Writer, view dashboard.View) error {
	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return errors.ExportFailed("workbook", err)
	}

	if err := f.SetSheetName("Sheet1", SheetEntities); err != nil {
		return errors.ExportFailed(SheetEntities, err)
	}
	if err := writeEntities(f, st, view.Entities); err != nil {
		return errors.ExportFailed(SheetEntities, err)
	}
	if _, err := f.NewSheet(SheetGIR); err != nil {
		return errors.ExportFailed(SheetGIR, err)
	}
	if err := writeGIR(f, st, view.GIR); err != nil {
		return errors.ExportFailed(SheetGIR, err)
	}
	if _, err := f.NewSheet(SheetAnomalies); err != nil {
		return errors.ExportFailed(SheetAnomalies, err)
	}
	records, err := writeAnomalies(f, st, view.Entities)
	if err != nil {
		return errors.ExportFailed(SheetAnomalies, err)
	}

	if err := f.Write(w); err != nil {
		return errors.ExportFailed("workbook", err)
	}
	x.logger.Info("exported %d entities, %d GIR rows, %d anomaly records", len(view.Entities), len(view.GIR), records)
	return nil
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	if st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	}); err != nil {
		return st, err
	}
	if st.thousands, err = f.NewStyle(&excelize.Style{NumFmt: numFmtThousands}); err != nil {
		return st, err
	}
	if st.percent, err = f.NewStyle(&excelize.Style{NumFmt: numFmtPercent}); err != nil {
		return st, err
	}
	st.decimal, err = f.NewStyle(&excelize.Style{NumFmt: numFmtDecimal})
	return st, err
}

func writeHeader(f *excelize.File, st styles, sheet string, headers []interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, st.header); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

// styleColumn applies style to rows 2..lastRow of one column.
func styleColumn(f *excelize.File, sheet, col string, lastRow, style int) error {
	if lastRow < 2 {
		return nil
	}
	return f.SetCellStyle(sheet, col+"2", fmt.Sprintf("%s%d", col, lastRow), style)
}

func writeEntities(f *excelize.File, st styles, entities []entity.Entity) error {
	if err := writeHeader(f, st, SheetEntities, entityHeaders); err != nil {
		return err
	}
	for i, e := range entities {
		anomaly, score := "No", 0.0
		if e.Annotation != nil {
			score = e.Annotation.AnomalyScore
			if e.Annotation.IsAnomaly {
				anomaly = "Yes"
			}
		}
		row := []interface{}{
			e.ID, e.Name, e.Jurisdiction, e.FiscalYear, e.GloBEIncome, e.JurisdictionalETR,
			e.TotalTaxesPayable, e.SubstanceBasedIncomeExclusion, e.TopUpTax, yesNo(e.SafeHarbor), anomaly, score,
		}
		if err := f.SetSheetRow(SheetEntities, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	last := len(entities) + 1
	for col, style := range map[string]int{
		"E": st.thousands, "F": st.percent, "G": st.thousands,
		"H": st.thousands, "I": st.thousands, "L": st.decimal,
	} {
		if err := styleColumn(f, SheetEntities, col, last, style); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetEntities, "B", "B", 48); err != nil {
		return err
	}
	return f.SetColWidth(SheetEntities, "C", "I", 18)
}

func writeGIR(f *excelize.File, st styles, rows []dashboard.GIRRow) error {
	if err := writeHeader(f, st, SheetGIR, girHeaders); err != nil {
		return err
	}
	for i, r := range rows {
		row := []interface{}{
			r.Jurisdiction, r.Entities, r.TotalIncome, r.TotalTaxesPayable, r.AverageETR,
			string(r.EconomicActivity), r.SafeHarborStatus,
		}
		if err := f.SetSheetRow(SheetGIR, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	last := len(rows) + 1
	for col, style := range map[string]int{"C": st.thousands, "D": st.thousands, "E": st.percent} {
		if err := styleColumn(f, SheetGIR, col, last, style); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetGIR, "A", "G", 20)
}

// writeAnomalies writes one row per anomaly record and returns the count.
func writeAnomalies(f *excelize.File, st styles, entities []entity.Entity) (int, error) {
	if err := writeHeader(f, st, SheetAnomalies, anomalyHeaders); err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entities {
		if !e.IsAnomaly() {
			continue
		}
		for _, a := range e.Annotation.Anomalies {
			row := []interface{}{
				e.ID, e.Name, string(a.Kind), string(a.Severity), a.Feature, a.Value, a.Description,
			}
			if err := f.SetSheetRow(SheetAnomalies, fmt.Sprintf("A%d", n+2), &row); err != nil {
				return n, err
			}
			n++
		}
	}
	if err := f.SetColWidth(SheetAnomalies, "G", "G", 60); err != nil {
		return n, err
	}
	return n, nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
