package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-scout/internal/db"
	"github.com/jonathan/talent-scout/internal/pipeline"
)

var (
	saveOwner string
	saveNotes string
	saveTags  []string
)

var saveCmd = &cobra.Command{
	Use:   "save <login>",
	Short: "Save a developer to the pipeline",
	Long:  "Looks the developer up by login and saves a snapshot of the profile into the owner's pipeline. Saving an existing login refreshes its snapshot.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSave,
}

func init() {
	saveCmd.Flags().StringVar(&saveOwner, "owner", db.DefaultOwnerID, "Pipeline owner id")
	saveCmd.Flags().StringVar(&saveNotes, "notes", "", "Notes to attach")
	saveCmd.Flags().StringSliceVar(&saveTags, "tag", nil, "Tag to attach (repeatable)")
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	svc, err := a.requireSearch()
	if err != nil {
		return err
	}
	pipe, err := a.pipelineService(cmd.Context(), true)
	if err != nil {
		return err
	}

	dev, err := svc.GetDeveloperByLogin(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	in := pipeline.Snapshot(dev.User)
	if notes := strings.TrimSpace(saveNotes); notes != "" {
		in.Notes = &notes
	}
	if len(saveTags) > 0 {
		in.Tags = saveTags
	}

	saved, err := pipe.Save(cmd.Context(), pipeline.OwnerFromHeader(saveOwner), in)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Saved %s to pipeline %s\n", saved.Login, saved.OwnerID)
	return nil
}
