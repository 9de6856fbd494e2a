package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show the alert feed",
	RunE:  withApp(runAlerts),
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss [alert-id]",
	Short: "Dismiss one alert, or every current alert with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE:  withApp(runDismiss),
}

var flagDismissAll bool

func init() {
	dismissCmd.Flags().BoolVar(&flagDismissAll, "all", false, "Dismiss every alert in the feed")
	alertsCmd.AddCommand(dismissCmd)
	rootCmd.AddCommand(alertsCmd)
}

func runAlerts(ctx context.Context, a *app, _ []string) error {
	if err := requireUser(); err != nil {
		return err
	}
	feed, err := a.alerts.Feed(ctx, flagUser, "")
	if err != nil && feed.Items == nil {
		return err
	}
	return render(os.Stdout, feed, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "%d unread\n\n", feed.Unread)
		fmt.Fprintln(w, "ID\tSEVERITY\tTITLE\tDETAIL\tDISMISSED")
		for _, it := range feed.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", it.ID, it.Severity, it.Title, it.Description, it.Dismissed)
		}
	})
}

func runDismiss(ctx context.Context, a *app, args []string) error {
	if err := requireUser(); err != nil {
		return err
	}
	switch {
	case flagDismissAll:
		settings, err := a.alerts.DismissAll(ctx, flagUser)
		if err != nil {
			return err
		}
		fmt.Printf("%d alert(s) dismissed\n", len(settings.DismissedAlertIDs))
		return nil
	case len(args) == 1:
		if _, err := a.alerts.Dismiss(ctx, flagUser, args[0]); err != nil {
			return err
		}
		fmt.Printf("dismissed %s\n", args[0])
		return nil
	default:
		return fmt.Errorf("an alert id or --all is required")
	}
}
