package pg

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"splitsui/ledger/ledger"
	st "splitsui/store/store"
)

// GORMArchive is a GORM-based PostgreSQL implementation of st.Archive.
type GORMArchive struct {
	db *gorm.DB
}

// NewGORMArchive creates and returns a new instance of GORMArchive.
func NewGORMArchive(db *gorm.DB) st.Archive {
	return &GORMArchive{
		db: db,
	}
}

// SavePass stores one reconciliation pass and its requests in a single
// transaction.
func (a *GORMArchive) SavePass(pass *st.ReconcilePass) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		passModel := ReconcilePassModel{
			ID:      pass.ID,
			Address: string(pass.Address),
			RunAt:   pass.RunAt,
		}
		if result := tx.Create(&passModel); result.Error != nil {
			return fmt.Errorf("failed to create reconcile pass: %w", result.Error)
		}

		if len(pass.Requests) == 0 {
			return nil
		}
		requestModels := make([]ArchivedRequestModel, 0, len(pass.Requests))
		for _, req := range pass.Requests {
			requestModels = append(requestModels, ArchivedRequestModel{
				PassID:         pass.ID,
				RequestID:      string(req.RequestID),
				Creator:        string(req.Creator),
				Recipient:      string(req.Recipient),
				Description:    req.Description,
				Payers:         req.Payers,
				Amounts:        req.Amounts,
				TotalAmount:    req.TotalAmount,
				TotalCollected: req.TotalCollected,
				Role:           string(req.Role),
			})
		}
		if result := tx.Create(&requestModels); result.Error != nil {
			return fmt.Errorf("failed to create archived requests for pass %s: %w", pass.ID, result.Error)
		}
		return nil
	})
}

// LatestPass returns the most recent pass for the address, or nil when
// the address has never been reconciled.
func (a *GORMArchive) LatestPass(addr ledger.Address) (*st.ReconcilePass, error) {
	var passModel ReconcilePassModel
	result := a.db.Where("address = ?", string(addr)).Order("run_at DESC").First(&passModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest pass for %s: %w", addr, result.Error)
	}

	var requestModels []ArchivedRequestModel
	if result := a.db.Where("pass_id = ?", passModel.ID).Find(&requestModels); result.Error != nil {
		return nil, fmt.Errorf("failed to load archived requests for pass %s: %w", passModel.ID, result.Error)
	}

	pass := &st.ReconcilePass{
		ID:      passModel.ID,
		Address: ledger.Address(passModel.Address),
		RunAt:   passModel.RunAt,
	}
	for _, m := range requestModels {
		pass.Requests = append(pass.Requests, st.ArchivedRequest{
			RequestID:      ledger.ObjectID(m.RequestID),
			Creator:        ledger.Address(m.Creator),
			Recipient:      ledger.Address(m.Recipient),
			Description:    m.Description,
			Payers:         m.Payers,
			Amounts:        m.Amounts,
			TotalAmount:    m.TotalAmount,
			TotalCollected: m.TotalCollected,
			Role:           st.Role(m.Role),
		})
	}
	return pass, nil
}

// SaveTransactions upserts classified history entries by digest and
// address.
func (a *GORMArchive) SaveTransactions(addr ledger.Address, txs []st.ArchivedTransaction) error {
	if len(txs) == 0 {
		return nil
	}

	models := make([]ArchivedTransactionModel, 0, len(txs))
	for _, tx := range txs {
		details, err := json.Marshal(tx.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal details for %s: %w", tx.Digest, err)
		}
		models = append(models, ArchivedTransactionModel{
			Digest:    string(tx.Digest),
			Address:   string(addr),
			Kind:      tx.Kind,
			Status:    tx.Status,
			Timestamp: tx.Timestamp,
			GasUsed:   tx.GasUsed,
			Details:   string(details),
		})
	}

	result := a.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "digest"}, {Name: "address"}},
		UpdateAll: true,
	}).Create(&models)
	if result.Error != nil {
		return fmt.Errorf("failed to save archived transactions: %w", result.Error)
	}
	return nil
}

// GetTransactions returns stored history for the address, newest first.
func (a *GORMArchive) GetTransactions(addr ledger.Address, limit int) ([]st.ArchivedTransaction, error) {
	var models []ArchivedTransactionModel
	query := a.db.Where("address = ?", string(addr)).Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if result := query.Find(&models); result.Error != nil {
		return nil, fmt.Errorf("failed to load archived transactions for %s: %w", addr, result.Error)
	}

	out := make([]st.ArchivedTransaction, 0, len(models))
	for _, m := range models {
		var details map[string]string
		if m.Details != "" {
			if err := json.Unmarshal([]byte(m.Details), &details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal details for %s: %w", m.Digest, err)
			}
		}
		out = append(out, st.ArchivedTransaction{
			Digest:    ledger.Digest(m.Digest),
			Address:   ledger.Address(m.Address),
			Kind:      m.Kind,
			Status:    m.Status,
			Timestamp: m.Timestamp,
			GasUsed:   m.GasUsed,
			Details:   details,
		})
	}
	return out, nil
}
