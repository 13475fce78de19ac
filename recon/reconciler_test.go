package recon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"splitsui/coin"
	"splitsui/ledger/ledger"
	"splitsui/ledger/mem"
)

const testPackage = "0x1"

func creationEventFor(requestID ledger.ObjectID, creator ledger.Address, payers ...string) ledger.Event {
	payerList := make([]any, len(payers))
	for i, p := range payers {
		payerList[i] = p
	}
	return ledger.Event{
		Type:     testPackage + "::group_payment::GroupPaymentCreatedEvent",
		TxDigest: ledger.Digest("tx-" + string(requestID)),
		Payload: map[string]any{
			"request_id": string(requestID),
			"creator":    string(creator),
			"payers":     payerList,
		},
	}
}

func newTestReconciler(client ledger.Client) *Reconciler {
	return New(client, testPackage, 100, zap.NewNop())
}

func seedRequest(chain *mem.InMemoryLedger, id ledger.ObjectID) {
	chain.AddEvent(creationEventFor(id, "0xcreator", "0xaaa", "0xbbb"))
	chain.PutObject(requestSnapshot(id, requestFields()))
}

func TestReconcileAsPayer(t *testing.T) {
	chain := mem.NewInMemoryLedger()
	seedRequest(chain, "0xr1")

	result, err := newTestReconciler(chain).Reconcile(context.Background(), "0xbbb")
	require.NoError(t, err)

	require.Len(t, result.AsPayer, 1)
	assert.Empty(t, result.AsCreator)

	req := result.AsPayer[0]
	assert.Equal(t, ledger.ObjectID("0xr1"), req.ID)
	assert.Equal(t, ledger.Address("0xcreator"), req.Creator)
	assert.Equal(t, 2*coin.MistPerSui, req.UserAmount)
	assert.False(t, req.UserContributed)
	assert.True(t, req.IsPayer)
	assert.False(t, req.IsCreator)
}

func TestReconcileAsCreator(t *testing.T) {
	chain := mem.NewInMemoryLedger()
	seedRequest(chain, "0xr1")

	result, err := newTestReconciler(chain).Reconcile(context.Background(), "0xcreator")
	require.NoError(t, err)

	assert.Empty(t, result.AsPayer)
	require.Len(t, result.AsCreator, 1)
	assert.True(t, result.AsCreator[0].IsCreator)
	assert.False(t, result.AsCreator[0].IsPayer)
}

func TestReconcileCreatorWhoIsAlsoPayer(t *testing.T) {
	chain := mem.NewInMemoryLedger()
	chain.AddEvent(creationEventFor("0xr1", "0xaaa", "0xaaa", "0xbbb"))
	chain.PutObject(requestSnapshot("0xr1", requestFields()))

	result, err := newTestReconciler(chain).Reconcile(context.Background(), "0xaaa")
	require.NoError(t, err)

	require.Len(t, result.AsPayer, 1)
	require.Len(t, result.AsCreator, 1)
	assert.Equal(t, coin.MistPerSui, result.AsPayer[0].UserAmount)
	assert.True(t, result.AsPayer[0].UserContributed)
}

func TestReconcileIgnoresUninvolvedUser(t *testing.T) {
	chain := mem.NewInMemoryLedger()
	seedRequest(chain, "0xr1")

	result, err := newTestReconciler(chain).Reconcile(context.Background(), "0xstranger")
	require.NoError(t, err)
	assert.Empty(t, result.AsPayer)
	assert.Empty(t, result.AsCreator)
}

func TestReconcileSkipsMissingObject(t *testing.T) {
	chain := mem.NewInMemoryLedger()
	seedRequest(chain, "0xr1")
	// object destroyed after the event fired
	chain.AddEvent(creationEventFor("0xr2", "0xcreator", "0xaaa"))

	result, err := newTestReconciler(chain).Reconcile(context.Background(), "0xcreator")
	require.NoError(t, err)
	require.Len(t, result.AsCreator, 1)
	assert.Equal(t, ledger.ObjectID("0xr1"), result.AsCreator[0].ID)
}

func TestReconcileSkipsUndecodableObject(t *testing.T) {
	chain := mem.NewInMemoryLedger()
	seedRequest(chain, "0xr1")

	broken := requestFields()
	broken["amounts"] = []any{"1000000000"}
	chain.AddEvent(creationEventFor("0xr2", "0xcreator", "0xaaa"))
	chain.PutObject(requestSnapshot("0xr2", broken))

	result, err := newTestReconciler(chain).Reconcile(context.Background(), "0xcreator")
	require.NoError(t, err)
	require.Len(t, result.AsCreator, 1)
	assert.Equal(t, ledger.ObjectID("0xr1"), result.AsCreator[0].ID)
}

func TestReconcileSkipsMalformedEvent(t *testing.T) {
	chain := mem.NewInMemoryLedger()
	chain.AddEvent(ledger.Event{
		Type:    testPackage + "::group_payment::GroupPaymentCreatedEvent",
		Payload: map[string]any{"creator": "0xcreator"},
	})
	seedRequest(chain, "0xr1")

	result, err := newTestReconciler(chain).Reconcile(context.Background(), "0xcreator")
	require.NoError(t, err)
	assert.Len(t, result.AsCreator, 1)
}

func TestReconcileDeduplicatesRepeatedEvents(t *testing.T) {
	chain := mem.NewInMemoryLedger()
	seedRequest(chain, "0xr1")
	chain.AddEvent(creationEventFor("0xr1", "0xcreator", "0xaaa", "0xbbb"))

	result, err := newTestReconciler(chain).Reconcile(context.Background(), "0xbbb")
	require.NoError(t, err)
	assert.Len(t, result.AsPayer, 1)
}

func TestReconcileIsIdempotent(t *testing.T) {
	chain := mem.NewInMemoryLedger()
	seedRequest(chain, "0xr1")
	r := newTestReconciler(chain)

	first, err := r.Reconcile(context.Background(), "0xbbb")
	require.NoError(t, err)
	second, err := r.Reconcile(context.Background(), "0xbbb")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	changed, err := ChangedRequests(first, second)
	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestChangedRequests(t *testing.T) {
	base := PaymentRequest{ID: "0xr1", TotalCollected: 0}
	paid := base
	paid.TotalCollected = coin.MistPerSui

	prev := &Result{AsPayer: []PaymentRequest{base}}
	next := &Result{
		AsPayer:   []PaymentRequest{paid},
		AsCreator: []PaymentRequest{{ID: "0xr2"}},
	}

	changed, err := ChangedRequests(prev, next)
	require.NoError(t, err)
	assert.ElementsMatch(t, []ledger.ObjectID{"0xr1", "0xr2"}, changed)

	removed, err := ChangedRequests(next, prev)
	require.NoError(t, err)
	assert.Contains(t, removed, ledger.ObjectID("0xr2"))
}

func TestDiffResultsPartitionsByKind(t *testing.T) {
	base := PaymentRequest{ID: "0xr1"}
	paid := base
	paid.TotalCollected = coin.MistPerSui

	prev := &Result{
		AsPayer:   []PaymentRequest{base},
		AsCreator: []PaymentRequest{{ID: "0xgone"}},
	}
	next := &Result{
		AsPayer:   []PaymentRequest{paid},
		AsCreator: []PaymentRequest{{ID: "0xnew"}},
	}

	changes, err := DiffResults(prev, next)
	require.NoError(t, err)
	assert.Equal(t, []ledger.ObjectID{"0xnew"}, changes.Created)
	assert.Equal(t, []ledger.ObjectID{"0xr1"}, changes.Updated)
	assert.Equal(t, []ledger.ObjectID{"0xgone"}, changes.Removed)
	assert.False(t, changes.Empty())

	same, err := DiffResults(next, next)
	require.NoError(t, err)
	assert.True(t, same.Empty())
}
