package mem

import (
	"sort"
	"sync"

	"splitsui/ledger/ledger"
	st "splitsui/store/store"
)

// inMemoryArchive is an in-memory implementation of st.Archive. It backs
// tests and the dev server; stored values are copied both ways.
type inMemoryArchive struct {
	mu sync.RWMutex

	// passes per address, append order; the last entry is the latest
	passes map[ledger.Address][]*st.ReconcilePass
	// transactions per address keyed by digest
	transactions map[ledger.Address]map[ledger.Digest]st.ArchivedTransaction
}

// NewInMemoryArchive creates and returns a new instance of inMemoryArchive.
func NewInMemoryArchive() st.Archive {
	return &inMemoryArchive{
		passes:       make(map[ledger.Address][]*st.ReconcilePass),
		transactions: make(map[ledger.Address]map[ledger.Digest]st.ArchivedTransaction),
	}
}

func (a *inMemoryArchive) SavePass(pass *st.ReconcilePass) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.passes[pass.Address] = append(a.passes[pass.Address], copyPass(pass))
	return nil
}

func (a *inMemoryArchive) LatestPass(addr ledger.Address) (*st.ReconcilePass, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	passes := a.passes[addr]
	if len(passes) == 0 {
		return nil, nil
	}
	return copyPass(passes[len(passes)-1]), nil
}

func (a *inMemoryArchive) SaveTransactions(addr ledger.Address, txs []st.ArchivedTransaction) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	byDigest := a.transactions[addr]
	if byDigest == nil {
		byDigest = make(map[ledger.Digest]st.ArchivedTransaction)
		a.transactions[addr] = byDigest
	}
	for _, tx := range txs {
		byDigest[tx.Digest] = tx
	}
	return nil
}

func (a *inMemoryArchive) GetTransactions(addr ledger.Address, limit int) ([]st.ArchivedTransaction, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]st.ArchivedTransaction, 0, len(a.transactions[addr]))
	for _, tx := range a.transactions[addr] {
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyPass(pass *st.ReconcilePass) *st.ReconcilePass {
	passCopy := *pass
	passCopy.Requests = make([]st.ArchivedRequest, len(pass.Requests))
	copy(passCopy.Requests, pass.Requests)
	return &passCopy
}
