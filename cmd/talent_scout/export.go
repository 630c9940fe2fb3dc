package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/export"
	"github.com/jonathan/talent-scout/internal/export/sheets"
	"github.com/jonathan/talent-scout/internal/pipeline"
)

var (
	exportOwner string
	exportOut   string
	exportSheet string
	exportRange string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a pipeline to CSV or Google Sheets",
	Long: `Write the owner's saved candidates to a CSV file, or with --sheet replace
the contents of a Google Sheets range. Sheets export needs
GOOGLE_SHEETS_CREDENTIALS pointing at a service account key.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOwner, "owner", db.DefaultOwnerID, "Pipeline owner id")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "CSV output path (default talent-scout-candidates-<date>.csv)")
	exportCmd.Flags().StringVar(&exportSheet, "sheet", "", "Spreadsheet id to export into instead of a file")
	exportCmd.Flags().StringVar(&exportRange, "range", sheets.DefaultRange, "A1 range to write when exporting to a sheet")
	exportCmd.MarkFlagsMutuallyExclusive("out", "sheet")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	pipe, err := a.pipelineService(cmd.Context(), true)
	if err != nil {
		return err
	}
	candidates, err := pipe.List(cmd.Context(), pipeline.OwnerFromHeader(exportOwner))
	if err != nil {
		return err
	}

	if exportSheet != "" {
		if a.cfg.SheetsCredentials == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS is required for --sheet")
		}
		client, err := sheets.NewClient(cmd.Context(), sheets.Config{CredentialsPath: a.cfg.SheetsCredentials})
		if err != nil {
			return err
		}
		n, err := sheets.NewExporter(client).Export(cmd.Context(), exportSheet, exportRange, candidates)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "Exported %d candidates to sheet %s\n", n, exportSheet)
		return nil
	}

	path, err := writeCSVExport(candidates, exportOut, time.Now())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stdout, "Exported %d candidates to %s\n", len(candidates), path)
	return nil
}

// writeCSVExport writes the CSV to out, or to the dated default filename in
// the working directory, and returns the path written.
func writeCSVExport(candidates []db.SavedCandidate, out string, now time.Time) (string, error) {
	content, err := export.CSV(candidates)
	if err != nil {
		return "", err
	}
	if out == "" {
		out = export.Filename(now)
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(out, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return out, nil
}
