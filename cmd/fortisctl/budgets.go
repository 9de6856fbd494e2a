package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fortis/internal/core"
	"fortis/internal/period"
)

var flagPolicy string

var budgetsCmd = &cobra.Command{
	Use:   "budgets",
	Short: "List budgets with spend for the current period",
	RunE:  withApp(runBudgets),
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Advance stale budget checkpoints (one user with --user, otherwise everyone)",
	RunE:  withApp(runReset),
}

func init() {
	budgetsCmd.Flags().StringVar(&flagPolicy, "policy", string(period.Rolling), "Spend policy (rolling|calendar)")
	rootCmd.AddCommand(budgetsCmd, resetCmd)
}

func runBudgets(ctx context.Context, a *app, _ []string) error {
	if err := requireUser(); err != nil {
		return err
	}
	view, err := a.budgets.View(ctx, flagUser, period.Policy(strings.ToLower(flagPolicy)))
	if err != nil && view.Budgets == nil {
		return err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: reset not saved: %v\n", err)
	}

	return render(os.Stdout, view, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "CATEGORY\tBUDGETED\tSPENT\tREMAINING\tLAST RESET")
		for _, b := range view.Budgets {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				b.Category,
				core.FormatDollars(b.Budgeted),
				core.FormatDollars(b.Spent),
				core.FormatDollars(b.Budgeted.Sub(b.Spent)),
				b.LastReset.Format("2006-01-02"))
		}
	})
}

func runReset(ctx context.Context, a *app, _ []string) error {
	if flagUser == "" {
		n, err := a.budgets.SweepResets(ctx, a.be.Store)
		fmt.Printf("reset %d user(s)\n", n)
		return err
	}

	res, err := a.budgets.ResetStale(ctx, flagUser)
	if err != nil && res.Budgets == nil {
		return err
	}
	return render(os.Stdout, res, func(w *tabwriter.Writer) {
		if len(res.ResetIDs) == 0 {
			fmt.Fprintln(w, "no stale budgets")
			return
		}
		fmt.Fprintf(w, "reset %d budget(s), durable=%t\n", len(res.ResetIDs), res.Durable)
		for _, id := range res.ResetIDs {
			fmt.Fprintf(w, "  %s\n", id)
		}
	})
}
