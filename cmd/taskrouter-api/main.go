package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskrouter/taskrouter-api/internal/catalog"
	"github.com/taskrouter/taskrouter-api/internal/config"
	"github.com/taskrouter/taskrouter-api/internal/domain"
	"github.com/taskrouter/taskrouter-api/internal/infrastructure/logging"
	"github.com/taskrouter/taskrouter-api/internal/infrastructure/server"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "taskrouter-api",
		Short:        "Schema-driven LLM task and router service",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			Args:  cobra.NoArgs,
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "catalog [provider]",
			Short: "Print registered task and router names as JSON",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printCatalog(cmd.OutOrStdout(), os.Getenv("TR_CATALOG_FILE"), args)
			},
		},
	)
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting taskrouter API...")
	if err := server.New(cfg, log).Run(cmd.Context()); err != nil {
		log.Errorw("Server exited with error", "error", err)
		return err
	}
	return nil
}

// printCatalog writes the provider → {tasks, routers} listing. It needs no backends.
func printCatalog(w io.Writer, overlay string, args []string) error {
	tasks, routers, err := catalog.Build(overlay, nil)
	if err != nil {
		return err
	}
	names := catalog.Names(tasks, routers)

	var out any = names
	if len(args) == 1 {
		p, err := domain.ParseProvider(args[0])
		if err != nil {
			return err
		}
		out = names[p]
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}
