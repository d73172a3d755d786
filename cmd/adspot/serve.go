package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/adspot/internal/orchestrator"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the purchase wizard as MCP tools",
	Long: `Start an MCP server (streamable HTTP) that drives one wizard session.

Tools cover navigation, station and plan selection, script editing,
audition previews and order submission.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "127.0.0.1:8765", "Listen address (use :0 for a random port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	orch, err := orchestrator.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	if err := orch.Start(); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer func() {
		if err := orch.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		}
	}()

	url, err := orch.Serve(serveFlags.addr)
	if err != nil {
		return fmt.Errorf("failed to start MCP server: %w", err)
	}
	fmt.Printf("Serving session '%s' at %s\n", cfg.Session, url)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		fmt.Println("\nShutting down gracefully...")
	case <-cmd.Context().Done():
	}
	return nil
}
