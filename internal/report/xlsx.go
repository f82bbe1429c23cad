// Package report renders route-run partitions as the dispatch billing
// workbook: one sheet per service tier, one row per run.
package report

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/ecomlogix/dispatch-cli/internal/model"
)

// reportColumns defines the ordered workbook columns.
var reportColumns = []string{
	"Date",
	"Delivery_Driver_Name",
	"Route_Code",
	"Number_of_Packages",
	"Number_of_Stops",
	"Delivery_City",
	"Service",
	"Start_Time",
	"End_Time",
	"Delivered_No",
	"Mismatch_Route",
	"Mismatch_Count",
	"Confirmed_Return",
	"Rates",
	"Amount_to_be_paid",
}

// WriteWorkbook writes the three-sheet billing workbook to disk.
func WriteWorkbook(parts *model.Partitions, path string) error {
	f, err := buildWorkbook(parts)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save workbook %s", path)
	}
	return nil
}

// Write streams the workbook to w. Used by the upload server.
func Write(parts *model.Partitions, w io.Writer) error {
	f, err := buildWorkbook(parts)
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "report: write workbook")
	}
	return nil
}

func buildWorkbook(parts *model.Partitions) (*xlsx.File, error) {
	f := xlsx.NewFile()

	sheets := []struct {
		name string
		runs []model.RouteRun
	}{
		{"Next_Day", parts.NextDay},
		{"Same_Day", parts.SameDay},
		{"Montreal", parts.Montreal},
	}

	for _, s := range sheets {
		sheet, err := f.AddSheet(s.name)
		if err != nil {
			return nil, eris.Wrapf(err, "report: add sheet %s", s.name)
		}
		writeSheet(sheet, s.runs)
	}

	return f, nil
}

func writeSheet(sheet *xlsx.Sheet, runs []model.RouteRun) {
	header := sheet.AddRow()
	for _, col := range reportColumns {
		header.AddCell().Value = col
	}

	for _, run := range runs {
		row := sheet.AddRow()
		row.AddCell().Value = run.Date
		row.AddCell().Value = run.DriverName
		row.AddCell().Value = run.RouteCode
		row.AddCell().SetInt(run.PackageCount)
		row.AddCell().SetInt(run.StopCount)
		row.AddCell().Value = run.DeliveryCity
		row.AddCell().Value = string(run.ServiceTier)
		row.AddCell().Value = run.StartTime
		row.AddCell().Value = run.EndTime
		row.AddCell().SetInt(run.DeliveredCount)
		row.AddCell().Value = run.MismatchRoute
		row.AddCell().SetInt(run.MismatchCount)
		row.AddCell().SetInt(run.ConfirmedReturnCount)
		row.AddCell().SetFloatWithFormat(run.Rate.InexactFloat64(), "0.00")
		row.AddCell().SetFloatWithFormat(run.PayableAmount.InexactFloat64(), "0.00")
	}
}
