package mem

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"splitsui/coin"
	lgr "splitsui/ledger/ledger"
)

// SubmitHandler lets a test or the dev server decide what a submitted call
// does to the in-memory state and what outcome it yields.
type SubmitHandler func(call *lgr.OperationCall) (*lgr.ExecutionOutcome, error)

// InMemoryLedger is an in-memory implementation of ledger.Client.
// It serves tests and the dev server; state is seeded through the Add/Put
// methods and read back through the Client interface.
type InMemoryLedger struct {
	mu sync.RWMutex

	// events in append (chronological) order; queries return them newest first
	events  []lgr.Event
	objects map[lgr.ObjectID]*lgr.ObjectSnapshot
	coins   map[lgr.Address][]coin.CoinObject
	history map[lgr.Address][]lgr.HistoricalTransaction

	submitHandler SubmitHandler
	submitted     []*lgr.OperationCall
}

func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{
		objects: make(map[lgr.ObjectID]*lgr.ObjectSnapshot),
		coins:   make(map[lgr.Address][]coin.CoinObject),
		history: make(map[lgr.Address][]lgr.HistoricalTransaction),
	}
}

// AddEvent appends an event to the stream. Events added later are
// considered more recent.
func (l *InMemoryLedger) AddEvent(ev lgr.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

// PutObject stores or replaces the current state of an object.
func (l *InMemoryLedger) PutObject(snap *lgr.ObjectSnapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	snapCopy := *snap
	l.objects[snap.ID] = &snapCopy
}

// RemoveObject deletes an object, simulating it being wrapped or destroyed.
func (l *InMemoryLedger) RemoveObject(id lgr.ObjectID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.objects, id)
}

// SetCoins replaces the owner's coin listing.
func (l *InMemoryLedger) SetCoins(owner lgr.Address, coins []coin.CoinObject) {
	l.mu.Lock()
	defer l.mu.Unlock()
	coinsCopy := make([]coin.CoinObject, len(coins))
	copy(coinsCopy, coins)
	l.coins[owner] = coinsCopy
}

// AddHistory appends transactions to the owner's history, oldest first.
func (l *InMemoryLedger) AddHistory(owner lgr.Address, txs ...lgr.HistoricalTransaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history[owner] = append(l.history[owner], txs...)
}

// SetSubmitHandler installs the behavior of Submit. Without a handler every
// submission succeeds with a generated digest.
func (l *InMemoryLedger) SetSubmitHandler(h SubmitHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.submitHandler = h
}

// SubmittedCalls returns a copy of every call passed to Submit, in order.
func (l *InMemoryLedger) SubmittedCalls() []*lgr.OperationCall {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*lgr.OperationCall, len(l.submitted))
	copy(out, l.submitted)
	return out
}

func (l *InMemoryLedger) QueryEvents(_ context.Context, eventType string, limit int) ([]lgr.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []lgr.Event
	for i := len(l.events) - 1; i >= 0 && len(out) < limit; i-- {
		if l.events[i].Type == eventType {
			out = append(out, l.events[i])
		}
	}
	return out, nil
}

func (l *InMemoryLedger) GetObject(_ context.Context, id lgr.ObjectID) (*lgr.ObjectSnapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap, exists := l.objects[id]
	if !exists {
		return nil, fmt.Errorf("object %s: %w", id, lgr.ErrNotFound)
	}
	snapCopy := *snap
	return &snapCopy, nil
}

func (l *InMemoryLedger) MultiGetObjects(_ context.Context, ids []lgr.ObjectID) (map[lgr.ObjectID]*lgr.ObjectSnapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[lgr.ObjectID]*lgr.ObjectSnapshot, len(ids))
	for _, id := range ids {
		if snap, exists := l.objects[id]; exists {
			snapCopy := *snap
			out[id] = &snapCopy
		}
	}
	return out, nil
}

func (l *InMemoryLedger) GetOwnedCoins(_ context.Context, owner lgr.Address, _ string) ([]coin.CoinObject, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	coins := l.coins[owner]
	out := make([]coin.CoinObject, len(coins))
	copy(out, coins)
	return out, nil
}

func (l *InMemoryLedger) Submit(_ context.Context, call *lgr.OperationCall) (*lgr.ExecutionOutcome, error) {
	l.mu.Lock()
	callCopy := *call
	l.submitted = append(l.submitted, &callCopy)
	handler := l.submitHandler
	l.mu.Unlock()

	if handler != nil {
		return handler(call)
	}
	return &lgr.ExecutionOutcome{
		Digest: lgr.Digest(uuid.NewString()),
		Status: "success",
	}, nil
}

func (l *InMemoryLedger) QueryTransactionHistory(_ context.Context, owner lgr.Address, limit int) ([]lgr.HistoricalTransaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	txs := l.history[owner]
	var out []lgr.HistoricalTransaction
	for i := len(txs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, txs[i])
	}
	return out, nil
}
