package cmd

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"splitsui/ledger/ledger"
)

var sendInputPath string
var sendSender string

func sendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "send",
		Short:   "batch-send SUI to the recipients in a CSV file",
		Long:    `Reads recipients and amounts from a CSV file and submits one multi-send transaction funded by a single coin of the sender.`,
		Example: `splitsui send --sender 0xabc... --input recipients.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputFile, err := os.Open(sendInputPath)
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

			recipients, err := ParseCSVToRecipients(csvContent)
			if err != nil {
				return fmt.Errorf("failed to parse CSV: %w", err)
			}
			if len(recipients) == 0 {
				return fmt.Errorf("no valid recipients found in the CSV")
			}

			svc, cleanup, err := buildServices(serviceOptions{notifyMode: notifyGoChan})
			if err != nil {
				return err
			}
			defer cleanup()

			outcome, err := svc.Submitter.MultiSend(cmd.Context(), ledger.Address(sendSender), recipients)
			if err != nil {
				return err
			}

			fmt.Printf("Sent to %d recipients, digest: %s, status: %s\n", len(recipients), outcome.Digest, outcome.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sendInputPath, "input", "i", "", "csv input file path (required)")
	err := cmd.MarkFlagRequired("input")
	if err != nil {
		log.Fatal(err)
		return nil
	}
	cmd.Flags().StringVarP(&sendSender, "sender", "s", "", "sender address (required)")
	err = cmd.MarkFlagRequired("sender")
	if err != nil {
		log.Fatal(err)
		return nil
	}

	return cmd
}
