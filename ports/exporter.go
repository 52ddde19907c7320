package ports

import (
	"io"

	"pillartwo/domain/dashboard"
)

// WorkbookExporter writes a dashboard view to a spreadsheet.
type WorkbookExporter interface {
	Export(w io.Writer, view dashboard.View) error
}
