package ingest

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/ecomlogix/dispatch-cli/internal/model"
)

// ReadScanXLSX reads a carrier scan-history workbook. The first sheet is
// assumed to hold the export, header row first, matching the CSV schema.
func ReadScanXLSX(path string) ([]model.ScanEvent, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open xlsx")
	}

	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("ingest: workbook %s has no sheets", path)
	}
	sheet := f.Sheets[0]

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}

	return parseScanRows(rows)
}
