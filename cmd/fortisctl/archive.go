package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fortis/internal/archive"
	"fortis/internal/core"
)

var archiveCmd = &cobra.Command{
	Use:   "archive [transaction-id...]",
	Short: "Archive transactions; with no ids, every eligible one",
	RunE:  withApp(runArchive),
}

var eligibleCmd = &cobra.Command{
	Use:   "eligible",
	Short: "List transactions old enough to archive",
	RunE:  withApp(runEligible),
}

var restoreCmd = &cobra.Command{
	Use:   "restore transaction-id...",
	Short: "Restore archived transactions",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		res, err := a.archive.Restore(ctx, flagUser, args)
		return printBulk(res, err)
	}),
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Permanently delete archived transactions",
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		res, err := a.archive.Purge(ctx, flagUser)
		return printBulk(res, err)
	}),
}

func init() {
	archiveCmd.AddCommand(eligibleCmd, restoreCmd, purgeCmd)
	rootCmd.AddCommand(archiveCmd)
}

func runArchive(ctx context.Context, a *app, args []string) error {
	if err := requireUser(); err != nil {
		return err
	}
	var (
		res archive.BulkResult
		err error
	)
	if len(args) == 0 {
		res, err = a.archive.ArchiveEligible(ctx, flagUser)
	} else {
		res, err = a.archive.Archive(ctx, flagUser, args)
	}
	return printBulk(res, err)
}

func runEligible(ctx context.Context, a *app, _ []string) error {
	if err := requireUser(); err != nil {
		return err
	}
	txs, err := a.archive.Eligible(ctx, flagUser)
	if err != nil {
		return err
	}
	return render(os.Stdout, txs, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tDATE\tCATEGORY\tAMOUNT\tDESCRIPTION")
		for _, tx := range txs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				tx.ID, tx.Date.Format("2006-01-02"), tx.Category, core.FormatDollars(tx.Amount), tx.Description)
		}
	})
}

func printBulk(res archive.BulkResult, err error) error {
	renderErr := render(os.Stdout, res, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "applied\t%d\n", len(res.Applied))
		fmt.Fprintf(w, "skipped\t%d\n", len(res.Skipped))
		for _, f := range res.Failed {
			fmt.Fprintf(w, "failed\t%s\t%v\n", f.ID, f.Err)
		}
	})
	if renderErr != nil {
		return renderErr
	}
	return err
}
