package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/talent-scout/internal/config"
	"github.com/jonathan/talent-scout/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes developer and repository search and the
saved-candidate pipeline. Search needs BOUNTYLAB_API_KEY; the pipeline needs
DATABASE_URL. Missing either leaves the server up with those routes answering 503.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	searchSvc, err := a.searchService()
	if err != nil {
		return err
	}
	pipelineSvc, err := a.pipelineService(ctx, false)
	if err != nil {
		return err
	}
	if !searchSvc.Configured() {
		a.log.Warn("search disabled: BOUNTYLAB_API_KEY is not set")
	}
	if !pipelineSvc.Configured() {
		a.log.Warn("pipeline disabled: DATABASE_URL is not set")
	}

	srv := server.New(server.Config{Port: resolvePort(servePort, a.cfg)}, searchSvc, pipelineSvc, a.log)
	return srv.Run(ctx)
}

// resolvePort prefers the flag, then the config, then the default.
func resolvePort(flag int, cfg config.Config) int {
	switch {
	case flag > 0:
		return flag
	case cfg.Port > 0:
		return cfg.Port
	default:
		return config.DefaultPort
	}
}
