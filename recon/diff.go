package recon

import (
	"fmt"

	"github.com/r3labs/diff/v3"

	"splitsui/ledger/ledger"
)

// Changes partitions the requests that differ between two
// reconciliation passes by what happened to them.
type Changes struct {
	Created []ledger.ObjectID
	Updated []ledger.ObjectID
	Removed []ledger.ObjectID
}

// Empty reports whether nothing changed between the passes.
func (c *Changes) Empty() bool {
	return len(c.Created) == 0 && len(c.Updated) == 0 && len(c.Removed) == 0
}

// DiffResults compares two reconciliation passes per request. A request
// only in next is created, only in prev is removed, and present in both
// with any field difference is updated.
func DiffResults(prev, next *Result) (*Changes, error) {
	before := indexByID(prev)
	after := indexByID(next)

	changes := &Changes{}
	for id, nextReq := range after {
		prevReq, existed := before[id]
		if !existed {
			changes.Created = append(changes.Created, id)
			continue
		}
		changelog, err := diff.Diff(prevReq, nextReq)
		if err != nil {
			return nil, fmt.Errorf("diff request %s: %w", id, err)
		}
		if len(changelog) > 0 {
			changes.Updated = append(changes.Updated, id)
		}
	}
	for id := range before {
		if _, stillThere := after[id]; !stillThere {
			changes.Removed = append(changes.Removed, id)
		}
	}
	return changes, nil
}

// ChangedRequests flattens DiffResults into the ids of every request
// that differs.
func ChangedRequests(prev, next *Result) ([]ledger.ObjectID, error) {
	changes, err := DiffResults(prev, next)
	if err != nil {
		return nil, err
	}
	out := make([]ledger.ObjectID, 0, len(changes.Created)+len(changes.Updated)+len(changes.Removed))
	out = append(out, changes.Created...)
	out = append(out, changes.Updated...)
	out = append(out, changes.Removed...)
	return out, nil
}

func indexByID(result *Result) map[ledger.ObjectID]PaymentRequest {
	out := make(map[ledger.ObjectID]PaymentRequest)
	if result == nil {
		return out
	}
	for _, req := range result.AsPayer {
		out[req.ID] = req
	}
	for _, req := range result.AsCreator {
		out[req.ID] = req
	}
	return out
}
