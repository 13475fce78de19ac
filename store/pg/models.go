package pg

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ReconcilePassModel struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Address string    `gorm:"size:255;not null;index"`
	RunAt   time.Time `gorm:"not null"`
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for ReconcilePassModel.
func (ReconcilePassModel) TableName() string {
	return "reconcile_passes"
}

type ArchivedRequestModel struct {
	PassID         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	RequestID      string         `gorm:"size:255;primaryKey"`
	Creator        string         `gorm:"size:255;not null"`
	Recipient      string         `gorm:"size:255;not null"`
	Description    string         `gorm:"size:1024"`
	Payers         pq.StringArray `gorm:"type:text[];not null"`
	Amounts        pq.Int64Array  `gorm:"type:bigint[];not null"`
	TotalAmount    int64          `gorm:"not null"`
	TotalCollected int64          `gorm:"not null"`
	Role           string         `gorm:"size:16;not null"`
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for ArchivedRequestModel.
func (ArchivedRequestModel) TableName() string {
	return "archived_requests"
}

type ArchivedTransactionModel struct {
	Digest    string `gorm:"size:255;primaryKey"`
	Address   string `gorm:"size:255;primaryKey"`
	Kind      string `gorm:"size:64;not null"`
	Status    string `gorm:"size:16;not null"`
	Timestamp string `gorm:"size:64"`
	GasUsed   string `gorm:"size:64"`
	Details   string `gorm:"type:jsonb"`
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for ArchivedTransactionModel.
func (ArchivedTransactionModel) TableName() string {
	return "archived_transactions"
}
