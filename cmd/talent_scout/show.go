package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-scout/internal/observability"
)

var showCmd = &cobra.Command{
	Use:   "show <login>",
	Short: "Show one developer's profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	svc, err := a.requireSearch()
	if err != nil {
		return err
	}
	dev, err := svc.GetDeveloperByLogin(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintDeveloper(dev)
	return nil
}
