package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fortis/internal/core"
	"fortis/internal/services"
	"fortis/internal/shield"
)

var (
	flagAmount string
	flagVaults []string
	flagCommit bool
)

var partitionCmd = &cobra.Command{
	Use:   "partition",
	Short: "Split a deposit across savings vaults (preview unless --commit)",
	RunE:  withApp(runPartition),
}

var autofillCmd = &cobra.Command{
	Use:   "autofill",
	Short: "Suggest a greedy allocation that funds vaults fully in order",
	RunE:  withApp(runAutoFill),
}

func init() {
	for _, c := range []*cobra.Command{partitionCmd, autofillCmd} {
		c.Flags().StringVarP(&flagAmount, "amount", "a", "", "Deposit amount")
		_ = c.MarkFlagRequired("amount")
	}
	partitionCmd.Flags().StringSliceVar(&flagVaults, "vault", nil, "Vault ids to fund, in order (default: all)")
	partitionCmd.Flags().BoolVar(&flagCommit, "commit", false, "Credit the vault balances")
	rootCmd.AddCommand(partitionCmd, autofillCmd)
}

func runPartition(ctx context.Context, a *app, _ []string) error {
	if err := requireUser(); err != nil {
		return err
	}
	amount, err := core.ParseAmount(flagAmount)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	var res services.DepositResult
	if flagCommit {
		res, err = a.deposits.Commit(ctx, flagUser, amount, flagVaults)
	} else {
		res, err = a.deposits.Preview(ctx, flagUser, amount, flagVaults)
	}
	if err != nil && res.Allocations == nil {
		return err
	}

	renderErr := render(os.Stdout, res, func(w *tabwriter.Writer) {
		printAllocations(w, res.Allocations)
		fmt.Fprintf(w, "\nshielded\t%s\n", core.FormatDollars(res.ShieldedTotal))
		fmt.Fprintf(w, "spendable\t%s\n", core.FormatDollars(res.SpendableTotal))
		if res.Overcommitted {
			fmt.Fprintln(w, "warning\tvault targets exceed the deposit")
		}
		for _, id := range res.Skipped {
			fmt.Fprintf(w, "skipped\t%s\n", id)
		}
		for _, id := range res.Failed {
			fmt.Fprintf(w, "failed\t%s\n", id)
		}
	})
	if renderErr != nil {
		return renderErr
	}
	return err
}

func runAutoFill(ctx context.Context, a *app, _ []string) error {
	if err := requireUser(); err != nil {
		return err
	}
	amount, err := core.ParseAmount(flagAmount)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	s, err := a.deposits.AutoFill(ctx, flagUser, amount)
	if err != nil {
		return err
	}
	return render(os.Stdout, s, func(w *tabwriter.Writer) {
		printAllocations(w, s.Allocations)
		fmt.Fprintf(w, "\nremaining\t%s\n", core.FormatDollars(s.Remaining))
	})
}

func printAllocations(w *tabwriter.Writer, allocs []shield.Allocation) {
	fmt.Fprintln(w, "VAULT\tALLOCATED\tCAPPED")
	for _, al := range allocs {
		fmt.Fprintf(w, "%s\t%s\t%t\n", al.VaultID, core.FormatDollars(al.Allocated), al.Capped)
	}
}
