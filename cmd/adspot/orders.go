package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/adspot/internal/catalog"
	"github.com/mark3labs/adspot/internal/hooks"
	"github.com/mark3labs/adspot/internal/orchestrator"
	"github.com/mark3labs/adspot/internal/orders"
	"github.com/spf13/cobra"
)

var ordersFlags struct {
	json bool
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List orders placed in a session",
	RunE:  runOrdersList,
}

var orderCancelCmd = &cobra.Command{
	Use:   "cancel <order-id>",
	Short: "Cancel a placed order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrders(func(ctx context.Context, store *orders.Store) error {
			if err := store.Cancel(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %s cancelled\n", args[0])

			hookCfg, err := orchestrator.LoadHooks()
			if err != nil {
				return err
			}
			dir, _ := os.Getwd()
			out, err := hooks.RunCancelled(ctx, hookCfg, dir, store.Session(), args[0])
			if out != "" {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return err
		})
	},
}

var ordersResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every order recorded in the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withOrders(func(ctx context.Context, store *orders.Store) error {
			if err := store.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order log of session '%s' cleared\n", store.Session())
			return nil
		})
	},
}

func init() {
	ordersCmd.Flags().BoolVar(&ordersFlags.json, "json", false, "Output JSON")
	ordersCmd.AddCommand(orderCancelCmd)
	ordersCmd.AddCommand(ordersResetCmd)
}

// withOrders opens the session's order log for the duration of fn.
func withOrders(fn func(ctx context.Context, store *orders.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	events, err := orchestrator.OpenOrderLog(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open order log: %w", err)
	}
	defer func() { _ = events.Close() }()

	return fn(ctx, orders.NewStore(events.JS, events.Stream, cfg.Session))
}

func runOrdersList(cmd *cobra.Command, args []string) error {
	return withOrders(func(ctx context.Context, store *orders.Store) error {
		list, err := store.List(ctx, store.Session())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if ordersFlags.json {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}
		if len(list) == 0 {
			fmt.Fprintf(out, "No orders in session '%s'\n", store.Session())
			return nil
		}
		for _, o := range list {
			status := "placed"
			if o.Cancelled {
				status = "cancelled"
			}
			fmt.Fprintf(out, "%s  %s  %-9s  %-18s %10s  %s\n",
				o.ID, o.PlacedAt.Local().Format("2006-01-02 15:04"), status,
				o.Quote.PlanID, catalog.FormatCents(o.Quote.TotalCents), strings.Join(o.Stations, ","))
		}
		return nil
	})
}
