package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/scholex/relworks/internal/export"
	"github.com/scholex/relworks/internal/paper"
	"github.com/spf13/cobra"
)

var exportDir string

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", ".", "Directory to write papers.csv and citations.csv into")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored records to CSV files",
	Long: `Export all stored records as papers.csv and citations.csv.

Examples:
  relworks export
  relworks export --dir out/`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	db := openStore(cfg)
	defer db.Close()

	records, err := db.ListRecords()
	if err != nil {
		exitWithError(ExitError, "listing records: %v", err)
	}
	if len(records) == 0 {
		exitWithError(ExitDataError, "no records to export")
	}

	if err := os.MkdirAll(exportDir, 0755); err != nil {
		exitWithError(ExitError, "creating export dir: %v", err)
	}

	papersPath := filepath.Join(exportDir, "papers.csv")
	if err := writeCSV(papersPath, records, export.WritePapersCSV); err != nil {
		exitWithError(ExitError, "writing %s: %v", papersPath, err)
	}

	citationsPath := filepath.Join(exportDir, "citations.csv")
	if err := writeCSV(citationsPath, records, export.WriteCitationsCSV); err != nil {
		exitWithError(ExitError, "writing %s: %v", citationsPath, err)
	}

	if humanOutput {
		outputHuman("exported %d papers to %s and %s\n", len(records), papersPath, citationsPath)
		return nil
	}
	return outputJSON(StatusResponse{Status: "exported", Path: exportDir})
}

func writeCSV(path string, records []paper.Record, write func(w io.Writer, records []paper.Record) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
