package store

import (
	"time"

	"github.com/google/uuid"

	"splitsui/classify"
	"splitsui/ledger/ledger"
	"splitsui/recon"
)

// NewPassFromResult flattens a reconciliation result into an archivable
// pass. A request the user holds in both roles is stored once with
// RoleBoth.
func NewPassFromResult(addr ledger.Address, result *recon.Result) *ReconcilePass {
	pass := &ReconcilePass{
		ID:      uuid.New(),
		Address: addr,
		RunAt:   time.Now().UTC(),
	}
	if result == nil {
		return pass
	}

	roles := make(map[ledger.ObjectID]Role)
	requests := make(map[ledger.ObjectID]recon.PaymentRequest)
	for _, req := range result.AsCreator {
		roles[req.ID] = RoleCreator
		requests[req.ID] = req
	}
	for _, req := range result.AsPayer {
		if _, alsoCreator := roles[req.ID]; alsoCreator {
			roles[req.ID] = RoleBoth
		} else {
			roles[req.ID] = RolePayer
			requests[req.ID] = req
		}
	}

	for id, req := range requests {
		pass.Requests = append(pass.Requests, archiveRequest(req, roles[id]))
	}
	return pass
}

func archiveRequest(req recon.PaymentRequest, role Role) ArchivedRequest {
	payers := make([]string, len(req.Payers))
	for i, p := range req.Payers {
		payers[i] = string(p)
	}
	amounts := make([]int64, len(req.Amounts))
	for i, a := range req.Amounts {
		amounts[i] = int64(a)
	}
	return ArchivedRequest{
		RequestID:      req.ID,
		Creator:        req.Creator,
		Recipient:      req.Recipient,
		Description:    req.Description,
		Payers:         payers,
		Amounts:        amounts,
		TotalAmount:    int64(req.TotalAmount),
		TotalCollected: int64(req.TotalCollected),
		Role:           role,
	}
}

// NewArchivedTransactions converts classified history entries for
// storage under the given address.
func NewArchivedTransactions(addr ledger.Address, txs []classify.ClassifiedTransaction) []ArchivedTransaction {
	out := make([]ArchivedTransaction, 0, len(txs))
	for _, tx := range txs {
		out = append(out, ArchivedTransaction{
			Digest:    tx.Digest,
			Address:   addr,
			Kind:      string(tx.Kind),
			Status:    tx.Status,
			Timestamp: tx.Timestamp,
			GasUsed:   tx.GasUsed,
			Details:   tx.Details,
		})
	}
	return out
}
