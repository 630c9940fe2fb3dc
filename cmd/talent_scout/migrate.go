package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-scout/internal/db"
)

var migratePrint bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the saved_candidates table",
	Long:  "Applies the pipeline schema to DATABASE_URL. The schema is idempotent and safe to re-run.",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migratePrint, "print", false, "Print the schema SQL instead of applying it")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	if migratePrint {
		_, _ = fmt.Fprint(os.Stdout, db.Schema())
		return nil
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	database, err := a.database(cmd.Context())
	if err != nil {
		return err
	}
	if database == nil {
		return errDatabaseRequired
	}
	if err := database.EnsureSchema(cmd.Context()); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	_, _ = fmt.Fprintln(os.Stdout, "Schema is up to date")
	return nil
}
