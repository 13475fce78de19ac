package ledger

import (
	"context"
	"errors"

	"splitsui/coin"
)

// ErrNotFound is returned when a referenced object no longer exists on the
// ledger. During reconciliation it is treated like a decode failure: skip
// the one entry and continue.
var ErrNotFound = errors.New("object not found")

// ErrDecode marks a malformed object or event payload. Per-item decode
// failures never abort a whole reconciliation or classification pass.
var ErrDecode = errors.New("malformed ledger payload")

// Client is the narrow surface this application consumes from a Sui
// fullnode and its signing bridge. The ledger behind it is the sole source
// of truth; everything read through it is a possibly-stale snapshot.
type Client interface {
	// QueryEvents returns up to limit events of the given type,
	// most recent first. No server-side filtering by user is assumed.
	QueryEvents(ctx context.Context, eventType string, limit int) ([]Event, error)
	// GetObject returns the current state of one object, or ErrNotFound.
	GetObject(ctx context.Context, id ObjectID) (*ObjectSnapshot, error)
	// MultiGetObjects returns current state for the given ids. Missing or
	// unreadable objects are simply absent from the result map.
	MultiGetObjects(ctx context.Context, ids []ObjectID) (map[ObjectID]*ObjectSnapshot, error)
	// GetOwnedCoins lists the owner's coin objects of the given coin type.
	GetOwnedCoins(ctx context.Context, owner Address, coinType string) ([]coin.CoinObject, error)
	// Submit hands a prepared call to the signing side and waits for the
	// terminal outcome. It is never retried by this layer.
	Submit(ctx context.Context, call *OperationCall) (*ExecutionOutcome, error)
	// QueryTransactionHistory returns up to limit transactions sent by
	// owner, most recent first.
	QueryTransactionHistory(ctx context.Context, owner Address, limit int) ([]HistoricalTransaction, error)
}
