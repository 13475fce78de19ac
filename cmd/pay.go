package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"splitsui/ledger/ledger"
)

var (
	paySender  string
	payRequest string
	payAmount  string
)

func payCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "contribute to, release or cancel a group payment request",
	}
	cmd.AddCommand(contributeCommand())
	cmd.AddCommand(releaseCommand())
	cmd.AddCommand(cancelCommand())

	cmd.PersistentFlags().StringVarP(&paySender, "sender", "s", "", "sender address (required)")
	err := cmd.MarkPersistentFlagRequired("sender")
	if err != nil {
		log.Fatal(err)
		return nil
	}
	cmd.PersistentFlags().StringVarP(&payRequest, "request", "r", "", "group payment request object id (required)")
	err = cmd.MarkPersistentFlagRequired("request")
	if err != nil {
		log.Fatal(err)
		return nil
	}

	return cmd
}

func contributeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contribute",
		Short:   "pay your share into a group payment request",
		Example: `splitsui pay contribute --sender 0xabc... --request 0xreq... --amount 1.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := buildServices(serviceOptions{notifyMode: notifyGoChan})
			if err != nil {
				return err
			}
			defer cleanup()

			outcome, err := svc.Submitter.Contribute(cmd.Context(),
				ledger.Address(paySender), ledger.ObjectID(payRequest), payAmount)
			if err != nil {
				return err
			}
			fmt.Printf("Contributed %s SUI, digest: %s, status: %s\n", payAmount, outcome.Digest, outcome.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&payAmount, "amount", "a", "", "amount in SUI (required)")
	err := cmd.MarkFlagRequired("amount")
	if err != nil {
		log.Fatal(err)
		return nil
	}

	return cmd
}

func releaseCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "release",
		Short:   "release collected funds to the recipient before everyone has paid",
		Example: `splitsui pay release --sender 0xabc... --request 0xreq...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := buildServices(serviceOptions{notifyMode: notifyGoChan})
			if err != nil {
				return err
			}
			defer cleanup()

			outcome, err := svc.Submitter.ManualRelease(cmd.Context(),
				ledger.Address(paySender), ledger.ObjectID(payRequest))
			if err != nil {
				return err
			}
			fmt.Printf("Released request %s, digest: %s, status: %s\n", payRequest, outcome.Digest, outcome.Status)
			return nil
		},
	}
}

func cancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "cancel",
		Short:   "cancel a request and refund every contribution",
		Example: `splitsui pay cancel --sender 0xabc... --request 0xreq...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := buildServices(serviceOptions{notifyMode: notifyGoChan})
			if err != nil {
				return err
			}
			defer cleanup()

			outcome, err := svc.Submitter.CancelAndRefund(cmd.Context(),
				ledger.Address(paySender), ledger.ObjectID(payRequest))
			if err != nil {
				return err
			}
			fmt.Printf("Cancelled request %s, digest: %s, status: %s\n", payRequest, outcome.Digest, outcome.Status)
			return nil
		},
	}
}
