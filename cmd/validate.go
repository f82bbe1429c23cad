package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ecomlogix/dispatch-cli/internal/ingest"
	"github.com/ecomlogix/dispatch-cli/internal/pipeline"
)

var validateInput string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a scan-history export without writing a report",
	Long: `Parses a scan-history export, verifies the required columns are
present, and prints a data-quality summary of status and route codes that
would classify as Other. No workbook is written.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		events, err := ingest.ReadScanFile(validateInput)
		if err != nil {
			return eris.Wrap(err, "validate: read scans")
		}

		p, err := pipeline.New(cfg)
		if err != nil {
			return eris.Wrap(err, "validate: init pipeline")
		}

		if err := p.Validate(events); err != nil {
			return eris.Wrap(err, "validate: schema")
		}

		quality := p.Audit(events)
		if quality.Clean() {
			zap.L().Info("validate: batch clean",
				zap.String("path", validateInput),
				zap.Int("events", len(events)),
			)
		} else {
			zap.L().Warn("validate: batch has unclassified values",
				zap.String("path", validateInput),
				zap.Int("unknown_status_codes", len(quality.UnknownStatusCodes)),
				zap.Int("unknown_route_codes", len(quality.UnknownRouteCodes)),
			)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(quality)
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateInput, "input", "", "path to scan-history file, CSV or XLSX (required)")
	_ = validateCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(validateCmd)
}
