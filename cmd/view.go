package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"splitsui/coin"
	"splitsui/ledger/ledger"
	"splitsui/recon"
)

var viewAddress string

func viewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "show group payment requests or transaction history for an address",
	}
	cmd.AddCommand(viewRequestsCommand())
	cmd.AddCommand(viewHistoryCommand())

	cmd.PersistentFlags().StringVarP(&viewAddress, "address", "a", "", "address to inspect (required)")
	err := cmd.MarkPersistentFlagRequired("address")
	if err != nil {
		log.Fatal(err)
		return nil
	}

	return cmd
}

func viewRequestsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "requests",
		Short:   "list the group payment requests the address is involved in",
		Example: `splitsui view requests --address 0xabc...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := buildServices(serviceOptions{notifyMode: notifyGoChan})
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := svc.Reconciler.Reconcile(cmd.Context(), ledger.Address(viewAddress))
			if err != nil {
				return err
			}

			fmt.Printf("As payer (%d):\n", len(result.AsPayer))
			for _, req := range result.AsPayer {
				printRequest(req)
			}
			fmt.Printf("As creator (%d):\n", len(result.AsCreator))
			for _, req := range result.AsCreator {
				printRequest(req)
			}
			return nil
		},
	}
}

func printRequest(req recon.PaymentRequest) {
	fmt.Printf("  %s %q collected %s/%s SUI, %d of %d payers paid\n",
		req.ID, req.Description,
		coin.ToSUI(req.TotalCollected), coin.ToSUI(req.TotalAmount),
		len(req.PaidPayers), len(req.Payers))
}

func viewHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "history",
		Short:   "list the address's classified transaction history",
		Example: `splitsui view history --address 0xabc...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := buildServices(serviceOptions{notifyMode: notifyGoChan})
			if err != nil {
				return err
			}
			defer cleanup()

			history, err := svc.Client.QueryTransactionHistory(cmd.Context(),
				ledger.Address(viewAddress), svc.Config.HistoryPageLimit)
			if err != nil {
				return err
			}

			for _, tx := range svc.Classifier.Classify(history) {
				fmt.Printf("  %s  %-28s %-8s gas %s", tx.Timestamp, tx.Kind, tx.Status, tx.GasUsed)
				for key, value := range tx.Details {
					fmt.Printf("  %s=%s", key, value)
				}
				fmt.Println()
			}
			return nil
		},
	}
}
