package recon

import (
	"splitsui/coin"
	"splitsui/ledger/ledger"
)

// PaymentRequest is one group-payment request reconstructed from its
// creation event and the current on-chain object state. The object read is
// authoritative; the event is trusted only for identity and filtering.
type PaymentRequest struct {
	ID          ledger.ObjectID
	Creator     ledger.Address
	Recipient   ledger.Address
	Description string

	// Payers and Amounts are parallel: Amounts[i] is what Payers[i] owes.
	Payers  []ledger.Address
	Amounts []coin.Mist

	TotalAmount    coin.Mist
	TotalCollected coin.Mist

	PaidStatus   map[ledger.Address]bool
	PaidPayers   []ledger.Address
	UnpaidPayers []ledger.Address

	// View of the reconciling user.
	UserAmount      coin.Mist
	UserContributed bool
	IsCreator       bool
	IsPayer         bool
}

// Result partitions reconstructed requests by the current user's role.
// A user who is both creator and payer appears in both lists with the
// same reconstructed record.
type Result struct {
	AsPayer   []PaymentRequest
	AsCreator []PaymentRequest
}
