package recon

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"splitsui/ledger/ledger"
)

// Reconciler rebuilds a user's group-payment view from chain state.
// Events only locate the request objects; every displayed field comes
// from a fresh object read, so a stale or lying event payload cannot
// leak into the result.
type Reconciler struct {
	client    ledger.Client
	packageID string
	pageLimit int
	log       *zap.Logger
}

func New(client ledger.Client, packageID string, pageLimit int, log *zap.Logger) *Reconciler {
	return &Reconciler{
		client:    client,
		packageID: packageID,
		pageLimit: pageLimit,
		log:       log,
	}
}

// EventType is the fully qualified creation event this reconciler scans.
func (r *Reconciler) EventType() string {
	return r.packageID + "::group_payment::GroupPaymentCreatedEvent"
}

// Reconcile scans recent creation events, keeps the ones that involve
// user as creator or payer, reads the live request objects in one batch,
// and partitions them by the user's role. A request that fails to decode
// is skipped and logged; only the event query itself is fatal.
func (r *Reconciler) Reconcile(ctx context.Context, user ledger.Address) (*Result, error) {
	events, err := r.client.QueryEvents(ctx, r.EventType(), r.pageLimit)
	if err != nil {
		return nil, fmt.Errorf("query creation events: %w", err)
	}

	type candidate struct {
		id    ledger.ObjectID
		thunk func() (*ledger.ObjectSnapshot, error)
	}

	loader := ledger.NewObjectLoader(r.client)
	creators := make(map[ledger.ObjectID]ledger.Address)
	var candidates []candidate
	for _, ev := range events {
		created, err := decodeCreationEvent(ev)
		if err != nil {
			r.log.Warn("skipping malformed creation event",
				zap.String("tx", string(ev.TxDigest)), zap.Error(err))
			continue
		}
		if !involves(created, user) {
			continue
		}
		if _, queued := creators[created.RequestID]; queued {
			continue
		}
		creators[created.RequestID] = created.Creator
		candidates = append(candidates, candidate{
			id:    created.RequestID,
			thunk: loader.Objects.LoadThunk(ctx, created.RequestID),
		})
	}

	result := &Result{}
	for _, c := range candidates {
		snap, err := c.thunk()
		if err != nil || snap == nil {
			r.log.Warn("skipping unreadable payment request",
				zap.String("request", string(c.id)), zap.Error(err))
			continue
		}
		req, err := decodeRequestObject(c.id, snap)
		if err != nil {
			r.log.Warn("skipping undecodable payment request",
				zap.String("request", string(c.id)), zap.Error(err))
			continue
		}
		req.Creator = creators[c.id]

		req.IsCreator = req.Creator == user
		for i, payer := range req.Payers {
			if payer == user {
				req.IsPayer = true
				req.UserAmount = req.Amounts[i]
				req.UserContributed = req.PaidStatus[payer]
				break
			}
		}
		if !req.IsCreator && !req.IsPayer {
			// the event matched but the live object no longer names
			// the user, drop it rather than show someone else's request
			continue
		}
		if req.IsPayer {
			result.AsPayer = append(result.AsPayer, *req)
		}
		if req.IsCreator {
			result.AsCreator = append(result.AsCreator, *req)
		}
	}
	return result, nil
}

func involves(created creationEvent, user ledger.Address) bool {
	if created.Creator == user {
		return true
	}
	for _, payer := range created.Payers {
		if payer == user {
			return true
		}
	}
	return false
}
