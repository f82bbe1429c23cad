package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomlogix/dispatch-cli/internal/model"
)

const sampleCSV = `Item ID,Status,Route Code,Delivery Driver Name,ScanCode DateTime (MM/DD/YYYY HH:mm:ss),Delivery City,Ship To Name,Ship To Address
PKG-001,ITR_OFD,YYZ-1,Avery Cole,03/10/2025 08:15:00,Toronto,Jordan Lee,123 King St W
PKG-001,DEL_SIG,YYZ-1,Avery Cole,03/10/2025 12:30:45,Toronto,Jordan Lee,123 King St W
PKG-002,RET_TOR,YYZ-2,Blake Noor,03/10/2025 14:00:00,Oakville,Sam Roy,9 Lake Ave
`

func TestParseScanCSV(t *testing.T) {
	events, err := ParseScanCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, events, 3)

	e := events[0]
	assert.Equal(t, "PKG-001", e.ItemID)
	assert.Equal(t, "ITR_OFD", e.StatusCode)
	assert.Equal(t, "YYZ-1", e.RouteCode)
	assert.Equal(t, "Avery Cole", e.DriverName)
	assert.Equal(t, "Toronto", e.DeliveryCity)
	assert.Equal(t, "Jordan Lee", e.ShipToName)
	assert.Equal(t, "123 King St W", e.ShipToAddress)
	assert.Equal(t, "2025-03-10", e.ScanDate)
	assert.Equal(t, "08:15:00", e.ScanTime)
}

func TestParseScanCSV_UnderscoreHeaders(t *testing.T) {
	// Re-saved exports sometimes carry underscore headers already.
	csv := strings.ReplaceAll(sampleCSV, "Item ID", "Item_ID")
	csv = strings.ReplaceAll(csv, "Route Code", "Route_Code")

	events, err := ParseScanCSV(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, events, 3)
	assert.Equal(t, "YYZ-1", events[0].RouteCode)
}

func TestParseScanCSV_MissingColumn(t *testing.T) {
	csv := `Item ID,Status,Delivery Driver Name,ScanCode DateTime (MM/DD/YYYY HH:mm:ss),Delivery City
PKG-001,ITR_OFD,Avery Cole,03/10/2025 08:15:00,Toronto
`
	_, err := ParseScanCSV(strings.NewReader(csv))
	require.Error(t, err)

	var schemaErr *model.SchemaViolationError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "Route_Code", schemaErr.Field)
}

func TestParseScanCSV_SkipsBadTimestamps(t *testing.T) {
	csv := `Item ID,Status,Route Code,Delivery Driver Name,ScanCode DateTime (MM/DD/YYYY HH:mm:ss),Delivery City
PKG-001,ITR_OFD,YYZ-1,Avery Cole,not-a-date,Toronto
PKG-002,ITR_OFD,YYZ-1,Avery Cole,03/10/2025 08:16:00,Toronto
`
	events, err := ParseScanCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "PKG-002", events[0].ItemID)
}

func TestParseScanCSV_NoParseableRows(t *testing.T) {
	csv := `Item ID,Status,Route Code,Delivery Driver Name,ScanCode DateTime (MM/DD/YYYY HH:mm:ss),Delivery City
PKG-001,ITR_OFD,YYZ-1,Avery Cole,not-a-date,Toronto
`
	_, err := ParseScanCSV(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parseable data rows")
}

func TestParseScanCSV_HeaderOnly(t *testing.T) {
	csv := "Item ID,Status,Route Code,Delivery Driver Name,ScanCode DateTime (MM/DD/YYYY HH:mm:ss),Delivery City\n"
	_, err := ParseScanCSV(strings.NewReader(csv))
	require.Error(t, err)
}

func TestReadScanFile_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scans.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	events, err := ReadScanFile(path)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestReadScanFile_MissingFile(t *testing.T) {
	_, err := ReadScanFile(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}

func TestParseTimestamp_Layouts(t *testing.T) {
	for _, raw := range []string{
		"03/10/2025 08:15:00",
		"2025-03-10 08:15:00",
		"2025-03-10T08:15:00Z",
	} {
		ts, err := parseTimestamp(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, "2025-03-10", ts.Format("2006-01-02"), raw)
	}

	_, err := parseTimestamp("")
	assert.Error(t, err)
}
