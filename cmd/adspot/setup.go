package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/adspot/internal/config"
	"github.com/spf13/cobra"
)

var setupFlags struct {
	project bool
	force   bool
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create adspot configuration file",
	Long: `Create an adspot configuration file with the built-in defaults.

By default, creates a global config at ~/.config/adspot/adspot.yml.
Use --project to create a project-local config in the current directory.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	setupCmd.Flags().BoolVarP(&setupFlags.force, "force", "f", false, "Overwrite existing config file")
}

func runSetup(cmd *cobra.Command, args []string) error {
	targetPath := config.GlobalPath()
	if setupFlags.project {
		targetPath = config.ProjectPath()
	}

	if !setupFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	cfg := config.Default()
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

	var err error
	if setupFlags.project {
		err = config.WriteProject(cfg)
	} else {
		err = config.WriteGlobal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Config written to: %s\n\n", targetPath)
	fmt.Println("Run 'adspot buy' to get started.")
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
