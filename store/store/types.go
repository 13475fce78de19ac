package store

import (
	"time"

	"github.com/google/uuid"

	"splitsui/ledger/ledger"
)

// Role records how the archived user related to a request at pass time.
type Role string

const (
	RoleCreator Role = "creator"
	RolePayer   Role = "payer"
	RoleBoth    Role = "both"
)

// ReconcilePass is one archived reconciliation run for one address.
type ReconcilePass struct {
	ID       uuid.UUID
	Address  ledger.Address
	RunAt    time.Time
	Requests []ArchivedRequest
}

// ArchivedRequest is the flattened, storage-friendly form of a
// reconstructed payment request.
type ArchivedRequest struct {
	RequestID      ledger.ObjectID
	Creator        ledger.Address
	Recipient      ledger.Address
	Description    string
	Payers         []string
	Amounts        []int64
	TotalAmount    int64
	TotalCollected int64
	Role           Role
}

// ArchivedTransaction is one classified history entry keyed by digest.
type ArchivedTransaction struct {
	Digest    ledger.Digest
	Address   ledger.Address
	Kind      string
	Status    string
	Timestamp string
	GasUsed   string
	Details   map[string]string
}
