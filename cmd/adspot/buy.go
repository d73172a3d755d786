package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/adspot/internal/catalog"
	"github.com/mark3labs/adspot/internal/orchestrator"
	"github.com/spf13/cobra"
)

var buyCmd = &cobra.Command{
	Use:   "buy",
	Short: "Open the purchase wizard",
	Long: `Open the full-screen purchase wizard.

The wizard has four stages: Create (write the script and pick stations),
Preview (listen to auditions), Schedule (choose a plan) and Confirm (pay).`,
	RunE: runBuy,
}

func runBuy(cmd *cobra.Command, args []string) error {
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

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		if _, ok := <-sigChan; ok {
			_ = orch.Stop()
			os.Exit(0)
		}
	}()

	result, err := orch.RunTUI()
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}

	switch {
	case result.Receipt != nil:
		fmt.Printf("Order %s placed at %s\n", result.Receipt.OrderID, result.Receipt.PlacedAt.Format("2006-01-02 15:04"))
		q := orch.Wizard().Quote()
		fmt.Printf("%s on %d station(s), total %s\n", q.PlanName, len(result.Snapshot.Channels), catalog.FormatCents(q.TotalCents))
	case result.Cancelled:
		fmt.Println("Purchase cancelled.")
	default:
		fmt.Println("No order placed.")
	}
	return nil
}
