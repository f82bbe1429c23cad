package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ecomlogix/dispatch-cli/internal/config"
)

var cfg *config.Config

var rootTables string

var rootCmd = &cobra.Command{
	Use:   "dispatch-cli",
	Short: "Parcel-scan reconciliation and dispatch billing reports",
	Long:  "Reads carrier scan-history exports, reconciles them into per-day per-driver route-runs (mismatches, confirmed returns, billable amounts), and writes the three-sheet dispatch billing workbook.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		// A tables file replaces the built-in classification vocabulary.
		tablesPath := rootTables
		if tablesPath == "" {
			tablesPath = cfg.Tables.Path
		}
		if tablesPath != "" {
			tables, err := config.LoadTables(tablesPath)
			if err != nil {
				return fmt.Errorf("load tables: %w", err)
			}
			cfg.Tables.Statuses = tables.Statuses
			cfg.Tables.Services = tables.Services
		}

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootTables, "tables", "", "YAML file replacing the status/service classification tables")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
