package notify

import (
	"splitsui/ledger/ledger"
)

// Change classifies what happened to a payment request between two
// reconciliation passes.
type Change int

const (
	ChangeCreated Change = iota
	ChangeUpdated
	ChangeRemoved
	ChangeCnt
)

func (c Change) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeRemoved:
		return "removed"
	}
	return "unknown"
}

// OutcomeMessage reports the terminal result of one submitted operation
// to the user who submitted it.
type OutcomeMessage struct {
	Address ledger.Address
	Kind    string
	Digest  ledger.Digest
	Status  string
	Reason  string
}

func (m OutcomeMessage) GetTopic() ledger.Address {
	return m.Address
}

// RequestChangeMessage tells a user that one of their payment requests
// changed since they last looked.
type RequestChangeMessage struct {
	Address   ledger.Address
	RequestID ledger.ObjectID
	Change    Change
}

func (m RequestChangeMessage) GetTopic() ledger.Address {
	return m.Address
}
