package cmd

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"splitsui/ledger/ledger"
	"splitsui/submit"
)

// Column headers accepted for the recipient address and the SUI amount.
// Matching is case-insensitive.
var (
	addressHeaders = []string{"address", "wallet", "recipient", "to", "addr"}
	amountHeaders  = []string{"amount", "value", "sum", "total", "sui", "balance", "payment"}
)

// ParseCSVToRecipients turns CSV content into submit recipients. The
// first row must be a header naming an address column and an amount
// column; rows with an invalid address or a non-positive amount are
// skipped rather than failing the whole file.
func ParseCSVToRecipients(csvContent [][]string) ([]submit.Recipient, error) {
	if len(csvContent) == 0 {
		return nil, fmt.Errorf("CSV is empty")
	}

	addrCol, amountCol, err := findColumns(csvContent[0])
	if err != nil {
		return nil, err
	}

	var recipients []submit.Recipient
	for _, row := range csvContent[1:] {
		if addrCol >= len(row) || amountCol >= len(row) {
			continue
		}
		addr := strings.TrimSpace(row[addrCol])
		amount := strings.TrimSpace(row[amountCol])
		if !validRecipientAddress(addr) || !positiveAmount(amount) {
			continue
		}
		recipients = append(recipients, submit.Recipient{
			Address: ledger.Address(addr),
			Amount:  amount,
		})
	}
	return recipients, nil
}

func findColumns(header []string) (addrCol, amountCol int, err error) {
	addrCol, amountCol = -1, -1
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		if addrCol == -1 && contains(addressHeaders, name) {
			addrCol = i
		}
		if amountCol == -1 && contains(amountHeaders, name) {
			amountCol = i
		}
	}
	if addrCol == -1 {
		return 0, 0, fmt.Errorf("no address column found, accepted headers: %s", strings.Join(addressHeaders, ", "))
	}
	if amountCol == -1 {
		return 0, 0, fmt.Errorf("no amount column found, accepted headers: %s", strings.Join(amountHeaders, ", "))
	}
	return addrCol, amountCol, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func validRecipientAddress(addr string) bool {
	return strings.HasPrefix(addr, "0x") && len(addr) >= 10
}

func positiveAmount(s string) bool {
	d, err := decimal.NewFromString(s)
	return err == nil && d.IsPositive()
}
