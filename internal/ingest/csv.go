// Package ingest reads carrier scan-history files (CSV or XLSX) into typed
// scan events. Column naming and order are this layer's concern: headers are
// normalized before mapping so the core never sees the file schema.
package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ecomlogix/dispatch-cli/internal/model"
)

// Column names after header normalization (spaces → underscores).
const (
	colItemID        = "Item_ID"
	colBillToAccount = "Bill_To_Account_Number"
	colTracking      = "Tracking_Number"
	colScanDateTime  = "ScanCode_DateTime_(MM/DD/YYYY_HH:mm:ss)"
	colStatus        = "Status"
	colRouteCode     = "Route_Code"
	colDriverName    = "Delivery_Driver_Name"
	colShipToName    = "Ship_To_Name"
	colShipToAddr    = "Ship_To_Address"
	colShipToAddr2   = "Ship_To_Address_2"
	colShipToCity    = "Ship_To_City"
	colShipToProv    = "Ship_To_State/Province"
	colShipToPostal  = "Ship_To_Postal_Code/ZIP"
	colShipToCountry = "Ship_To_Country"
	colDeliveryAddr  = "Delivery_Address"
	colDeliveryCity  = "Delivery_City"
	colDeliveryProv  = "Delivery_Province"
	colDeliveryPost  = "Delivery_Postal_Code/ZIP"
	colDeliveryCtry  = "Delivery_Country"
	colClientName    = "Client_Name"
)

// requiredColumns must be present in the header; a missing one is a schema
// violation that aborts ingestion.
var requiredColumns = []string{
	colItemID,
	colStatus,
	colRouteCode,
	colDriverName,
	colScanDateTime,
	colDeliveryCity,
}

// ReadScanFile reads a scan-history file, dispatching on extension.
func ReadScanFile(path string) ([]model.ScanEvent, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadScanXLSX(path)
	default:
		return ReadScanCSV(path)
	}
}

// ReadScanCSV reads a carrier CSV export from disk.
func ReadScanCSV(path string) ([]model.ScanEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open csv")
	}
	defer f.Close()

	return ParseScanCSV(f)
}

// ParseScanCSV reads carrier CSV content from a reader. Used directly by the
// upload server, which never touches disk.
func ParseScanCSV(r io.Reader) ([]model.ScanEvent, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read csv")
	}

	return parseScanRows(records)
}
