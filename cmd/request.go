package cmd

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"splitsui/ledger/ledger"
)

var (
	requestInputPath   string
	requestSender      string
	requestRecipient   string
	requestDescription string
)

func requestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "request",
		Short:   "create a group payment request",
		Long:    `Reads payers and amounts from a CSV file and creates a shared group payment request that collects into the recipient address.`,
		Example: `splitsui request --sender 0xabc... --recipient 0xdef... --input payers.csv --description "team dinner"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputFile, err := os.Open(requestInputPath)
			if err != nil {
				return err
			}
			defer func(inputFile *os.File) {
				err := inputFile.Close()
				if err != nil {
					log.Fatalf("Failed to close input file: %v", err)
				}
			}(inputFile)

			csvContent, err := csv.NewReader(inputFile).ReadAll()
			if err != nil {
				return err
			}

			payers, err := ParseCSVToRecipients(csvContent)
			if err != nil {
				return fmt.Errorf("failed to parse CSV: %w", err)
			}
			if len(payers) == 0 {
				return fmt.Errorf("no valid payers found in the CSV")
			}

			svc, cleanup, err := buildServices(serviceOptions{notifyMode: notifyGoChan})
			if err != nil {
				return err
			}
			defer cleanup()

			outcome, err := svc.Submitter.CreateGroupPayment(cmd.Context(),
				ledger.Address(requestSender), payers, ledger.Address(requestRecipient), requestDescription)
			if err != nil {
				return err
			}

			fmt.Printf("Created group payment with %d payers, digest: %s, status: %s\n", len(payers), outcome.Digest, outcome.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&requestInputPath, "input", "i", "", "csv input file path (required)")
	err := cmd.MarkFlagRequired("input")
	if err != nil {
		log.Fatal(err)
		return nil
	}
	cmd.Flags().StringVarP(&requestSender, "sender", "s", "", "creator address (required)")
	err = cmd.MarkFlagRequired("sender")
	if err != nil {
		log.Fatal(err)
		return nil
	}
	cmd.Flags().StringVarP(&requestRecipient, "recipient", "r", "", "address the collected funds release to (required)")
	err = cmd.MarkFlagRequired("recipient")
	if err != nil {
		log.Fatal(err)
		return nil
	}
	cmd.Flags().StringVarP(&requestDescription, "description", "d", "", "request description")

	return cmd
}
