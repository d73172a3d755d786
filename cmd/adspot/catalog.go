package main

import (
	"fmt"
	"strings"

	"github.com/mark3labs/adspot/internal/catalog"
	"github.com/mark3labs/adspot/internal/orchestrator"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List stations, auditions and plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		c, err := orchestrator.LoadCatalog(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if c.Event.Name != "" {
			fmt.Fprintf(out, "%s (%s)\n\n", c.Event.Name, c.Event.When)
		}

		fmt.Fprintln(out, "Stations:")
		for _, s := range c.Stations {
			fmt.Fprintf(out, "  %-8s %s\n", s.ID, s.Name)
		}

		fmt.Fprintln(out, "\nAuditions:")
		for _, a := range c.Auditions {
			fmt.Fprintf(out, "  %-8s %-22s %s\n", a.ID, a.Name, a.Duration)
		}

		fmt.Fprintln(out, "\nPlans:")
		for _, p := range c.Plans {
			marker := " "
			if p.ID == cfg.DefaultPlan {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %-18s %10s  %d days\n", marker, p.ID, catalog.FormatCents(p.PriceCents), p.Days)
			if len(p.Addons) > 0 {
				fmt.Fprintf(out, "    + %s\n", strings.Join(p.Addons, ", "))
			}
		}
		return nil
	},
}
