package cmd

import (
	"fmt"
	"os"

	"github.com/satriadp/hadirku/internal/config"
	"github.com/satriadp/hadirku/internal/export"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the attendance log as CSV",
	Long: `Export all attendance records as CSV, newest first.
Writes to stdout unless --out is given.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("out", "", "Write the CSV to this file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	out := os.Stdout
	if path := mustGetString(cmd, "out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("cannot create %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}

	if err := export.ExportCSV(cmd.Context(), st, out); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	return nil
}
