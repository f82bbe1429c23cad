package ingest

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ecomlogix/dispatch-cli/internal/model"
)

// timestampLayouts are tried in order. The carrier export uses the first;
// the rest cover re-saved files.
var timestampLayouts = []string{
	"01/02/2006 15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseScanRows maps raw rows (header first) to scan events. Header names
// are normalized (spaces → underscores) before lookup so "Route Code" and
// "Route_Code" address the same column.
func parseScanRows(records [][]string) ([]model.ScanEvent, error) {
	if len(records) < 2 {
		return nil, eris.New("ingest: file has no data rows")
	}

	header := records[0]
	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[normalizeHeader(col)] = i
	}

	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, eris.Wrap(&model.SchemaViolationError{Field: col}, "ingest: header")
		}
	}

	events := make([]model.ScanEvent, 0, len(records)-1)
	badTimestamps := 0

	for _, row := range records[1:] {
		raw := getCol(row, colIdx, colScanDateTime)
		ts, err := parseTimestamp(raw)
		if err != nil {
			// One bad timestamp is a data-quality matter; the core's schema
			// check still aborts if the whole column fails to parse.
			badTimestamps++
			continue
		}

		e := model.ScanEvent{
			ItemID:             getCol(row, colIdx, colItemID),
			TrackingNumber:     getCol(row, colIdx, colTracking),
			BillToAccount:      getCol(row, colIdx, colBillToAccount),
			ClientName:         getCol(row, colIdx, colClientName),
			StatusCode:         getCol(row, colIdx, colStatus),
			RouteCode:          getCol(row, colIdx, colRouteCode),
			DriverName:         getCol(row, colIdx, colDriverName),
			ShipToName:         getCol(row, colIdx, colShipToName),
			ShipToAddress:      getCol(row, colIdx, colShipToAddr),
			ShipToAddress2:     getCol(row, colIdx, colShipToAddr2),
			ShipToCity:         getCol(row, colIdx, colShipToCity),
			ShipToProvince:     getCol(row, colIdx, colShipToProv),
			ShipToPostalCode:   getCol(row, colIdx, colShipToPostal),
			ShipToCountry:      getCol(row, colIdx, colShipToCountry),
			DeliveryAddress:    getCol(row, colIdx, colDeliveryAddr),
			DeliveryCity:       getCol(row, colIdx, colDeliveryCity),
			DeliveryProvince:   getCol(row, colIdx, colDeliveryProv),
			DeliveryPostalCode: getCol(row, colIdx, colDeliveryPost),
			DeliveryCountry:    getCol(row, colIdx, colDeliveryCtry),
		}
		e.SetTimestamp(ts)

		events = append(events, e)
	}

	if badTimestamps > 0 {
		zap.L().Warn("ingest: skipped rows with unparseable scan timestamps",
			zap.Int("rows", badTimestamps),
		)
	}

	if len(events) == 0 {
		return nil, eris.New("ingest: no parseable data rows")
	}

	return events, nil
}

// normalizeHeader trims a header cell and replaces spaces with underscores.
func normalizeHeader(col string) string {
	return strings.ReplaceAll(strings.TrimSpace(col), " ", "_")
}

// getCol safely retrieves a column value from a row.
func getCol(row []string, colIdx map[string]int, col string) string {
	idx, ok := colIdx[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, eris.New("ingest: empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, eris.Errorf("ingest: unparseable timestamp %q", raw)
}
