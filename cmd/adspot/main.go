package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/mark3labs/adspot/internal/config"
	"github.com/mark3labs/adspot/internal/logger"
	"github.com/mark3labs/adspot/internal/tui/theme"
	"github.com/spf13/cobra"
)

const (
	logoText1 = "▄▀█ █▀▄ █▀ █▀█ █▀█ ▀█▀"
	logoText2 = "█▀█ █▄▀ ▄█ █▀▀ █▄█  █ "
)

// Version set via ldflags during build
var version = "dev"

func main() {
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "adspot",
	Short: "Buy radio airtime for an event from the terminal",
}

// Flags shared by every command that opens a session.
var sessionFlags struct {
	session     string
	dataDir     string
	catalog     string
	defaultPlan string
}

func renderLogo() string {
	t := theme.Current()
	return strings.Join([]string{
		theme.Gradient(logoText1, t.Primary, t.Secondary),
		theme.Gradient(logoText2, t.Primary, t.Secondary),
	}, "\n")
}

// loadConfig loads the layered config and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if sessionFlags.session != "" {
		cfg.Session = sessionFlags.session
	}
	if sessionFlags.dataDir != "" {
		cfg.DataDir = sessionFlags.dataDir
	}
	if sessionFlags.catalog != "" {
		cfg.Catalog = sessionFlags.catalog
	}
	if sessionFlags.defaultPlan != "" {
		cfg.DefaultPlan = sessionFlags.defaultPlan
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

func init() {
	rootCmd.Long = renderLogo() + `

adspot walks through writing a radio spot, previewing voiced auditions,
picking a schedule plan and paying for it. Orders are kept in an embedded
NATS JetStream log, and the same wizard can be driven over MCP.`

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&sessionFlags.session, "session", "n", "", "Session name (default: from config)")
	pf.StringVar(&sessionFlags.dataDir, "data-dir", "", "Data directory for the order log (default: from config)")
	pf.StringVarP(&sessionFlags.catalog, "catalog", "c", "", "Catalog YAML file (default: built-in catalog)")
	pf.StringVar(&sessionFlags.defaultPlan, "plan", "", "Plan selected when the wizard opens")

	rootCmd.AddCommand(buyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(setupCmd)
}
