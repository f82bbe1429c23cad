package main

import (
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ecomlogix/dispatch-cli/internal/ingest"
	"github.com/ecomlogix/dispatch-cli/internal/model"
	"github.com/ecomlogix/dispatch-cli/internal/pipeline"
	"github.com/ecomlogix/dispatch-cli/internal/report"
)

var (
	reportInput  string
	reportOutput string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the dispatch billing workbook from a scan-history export",
	Long: `Reads a carrier scan-history export (CSV or XLSX), runs the
reconciliation pipeline, and writes the three-sheet billing workbook
(Next_Day, Same_Day, Montreal).

Examples:
  # CSV export in, default workbook name out
  dispatch-cli report --input History_20250313.csv

  # Custom output path and replacement classification tables
  dispatch-cli report --input scans.xlsx --output march.xlsx --tables tables.yaml`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		events, err := ingest.ReadScanFile(reportInput)
		if err != nil {
			return eris.Wrap(err, "report: read scans")
		}
		zap.L().Info("report: parsed scan file",
			zap.String("path", reportInput),
			zap.Int("events", len(events)),
		)

		p, err := pipeline.New(cfg)
		if err != nil {
			return eris.Wrap(err, "report: init pipeline")
		}

		parts, err := p.Process(ctx, events)
		if err != nil {
			return eris.Wrap(err, "report: process batch")
		}

		out := reportOutput
		if out == "" {
			out = cfg.Report.OutputPath
		}
		if err := report.WriteWorkbook(parts, out); err != nil {
			return eris.Wrap(err, "report: write workbook")
		}

		logPartitionSummary(parts, out)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportInput, "input", "", "path to scan-history file, CSV or XLSX (required)")
	reportCmd.Flags().StringVar(&reportOutput, "output", "", "workbook output path (default from config)")
	_ = reportCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(reportCmd)
}

// logPartitionSummary logs per-sheet run counts and payable totals.
func logPartitionSummary(parts *model.Partitions, out string) {
	zap.L().Info("report: workbook written",
		zap.String("path", out),
		zap.Int("next_day_runs", len(parts.NextDay)),
		zap.String("next_day_payable", payableTotal(parts.NextDay)),
		zap.Int("same_day_runs", len(parts.SameDay)),
		zap.String("same_day_payable", payableTotal(parts.SameDay)),
		zap.Int("montreal_runs", len(parts.Montreal)),
		zap.String("montreal_payable", payableTotal(parts.Montreal)),
	)
}

func payableTotal(runs []model.RouteRun) string {
	total := decimal.Zero
	for _, r := range runs {
		total = total.Add(r.PayableAmount)
	}
	return total.StringFixed(2)
}
