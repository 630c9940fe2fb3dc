package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/observability"
	"github.com/jonathan/talent-scout/internal/pipeline"
)

var listOwner string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the candidates saved in a pipeline",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listOwner, "owner", db.DefaultOwnerID, "Pipeline owner id")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	pipe, err := a.pipelineService(cmd.Context(), true)
	if err != nil {
		return err
	}
	candidates, err := pipe.List(cmd.Context(), pipeline.OwnerFromHeader(listOwner))
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintPipeline(candidates)
	return nil
}
