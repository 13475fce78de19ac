package cmd

import (
	"testing"
)

func TestParseCSVToRecipients(t *testing.T) {
	content := [][]string{
		{"Name", "Address", "Amount"},
		{"alice", "0xaaa4567890", "1.5"},
		{"bob", "0xbbb4567890", "0.25"},
	}

	recipients, err := ParseCSVToRecipients(content)
	if err != nil {
		t.Fatalf("ParseCSVToRecipients() error = %v", err)
	}
	if len(recipients) != 2 {
		t.Fatalf("expected 2 recipients, got %d", len(recipients))
	}
	if recipients[0].Address != "0xaaa4567890" || recipients[0].Amount != "1.5" {
		t.Errorf("unexpected first recipient: %+v", recipients[0])
	}
	if recipients[1].Address != "0xbbb4567890" || recipients[1].Amount != "0.25" {
		t.Errorf("unexpected second recipient: %+v", recipients[1])
	}
}

func TestParseCSVToRecipientsHeaderAliases(t *testing.T) {
	tests := []struct {
		name   string
		header []string
	}{
		{"wallet and value", []string{"Wallet", "Value"}},
		{"to and sui", []string{"To", "SUI"}},
		{"recipient and payment", []string{"Recipient", "Payment"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := [][]string{
				tt.header,
				{"0xaaa4567890", "2"},
			}
			recipients, err := ParseCSVToRecipients(content)
			if err != nil {
				t.Fatalf("ParseCSVToRecipients() error = %v", err)
			}
			if len(recipients) != 1 {
				t.Fatalf("expected 1 recipient, got %d", len(recipients))
			}
		})
	}
}

func TestParseCSVToRecipientsSkipsInvalidRows(t *testing.T) {
	content := [][]string{
		{"address", "amount"},
		{"0xaaa4567890", "1"},
		{"not-an-address", "1"},
		{"0xbbb4567890", "-3"},
		{"0xccc4567890", "abc"},
		{"0xshort", "1"},
		{"0xddd4567890", "0"},
		{"0xeee4567890"},
	}

	recipients, err := ParseCSVToRecipients(content)
	if err != nil {
		t.Fatalf("ParseCSVToRecipients() error = %v", err)
	}
	if len(recipients) != 1 {
		t.Fatalf("expected only the valid row to survive, got %d recipients", len(recipients))
	}
	if recipients[0].Address != "0xaaa4567890" {
		t.Errorf("unexpected recipient: %+v", recipients[0])
	}
}

func TestParseCSVToRecipientsErrors(t *testing.T) {
	tests := []struct {
		name    string
		content [][]string
	}{
		{"empty", nil},
		{"no address column", [][]string{{"name", "amount"}}},
		{"no amount column", [][]string{{"address", "note"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCSVToRecipients(tt.content); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
