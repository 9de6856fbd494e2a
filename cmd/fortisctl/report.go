package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fortis/internal/core"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the spending report for the last seven days",
	RunE:  withApp(runReport),
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish weekly reports for every opted-in user (requires AMQP_URL)",
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		n, err := a.reports.PublishWeekly(ctx, a.be.Store)
		fmt.Printf("published %d report(s)\n", n)
		return err
	}),
}

func init() {
	reportCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReport(ctx context.Context, a *app, _ []string) error {
	if err := requireUser(); err != nil {
		return err
	}
	r, err := a.reports.Weekly(ctx, flagUser)
	if err != nil {
		return err
	}
	return render(os.Stdout, r, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "%s to %s\n\n", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
		fmt.Fprintf(w, "income\t%s\n", core.FormatDollars(r.Income))
		fmt.Fprintf(w, "expense\t%s\n", core.FormatDollars(r.Expense))
		fmt.Fprintf(w, "net\t%s\n\n", core.FormatDollars(r.Net))
		for _, c := range r.ByCategory {
			fmt.Fprintf(w, "%s\t%s\n", c.Name, core.FormatDollars(c.Amount))
		}
	})
}
