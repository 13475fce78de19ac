// Package store archives reconciliation passes and classified history
// so the last known state survives node outages and page reloads.
package store

import (
	"splitsui/ledger/ledger"
)

type Archive interface {
	// SavePass stores one reconciliation pass; it becomes the address's
	// latest pass.
	SavePass(pass *ReconcilePass) error
	// LatestPass returns the most recent stored pass for the address,
	// or nil when none exists.
	LatestPass(addr ledger.Address) (*ReconcilePass, error)
	// SaveTransactions upserts classified history entries by digest.
	SaveTransactions(addr ledger.Address, txs []ArchivedTransaction) error
	// GetTransactions returns stored history newest first, at most limit
	// entries.
	GetTransactions(addr ledger.Address, limit int) ([]ArchivedTransaction, error)
}
