package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is a journal line tying exactly one ledger and at most one
// account. Amount is the total applied to the account; BaseAmount/GSTAmount
// are the tax decomposition and are nil when no GST applies. Rows are never
// hard-deleted: delete sets IsDeleted after reversing the balance effects.
type Transaction struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index:idx_transactions_owner" json:"client_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_transactions_owner" json:"user_id"`

	LedgerID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"ledger_id"`
	AccountID *uuid.UUID `gorm:"type:uuid;index" json:"account_id"`

	Type       string           `gorm:"size:30;not null" json:"type"`
	Amount     decimal.Decimal  `gorm:"type:numeric(18,2);not null" json:"amount"`
	BaseAmount *decimal.Decimal `gorm:"type:numeric(18,2)" json:"base_amount,omitempty"`
	GSTAmount  *decimal.Decimal `gorm:"type:numeric(18,2)" json:"gst_amount,omitempty"`

	Description string     `gorm:"type:text" json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	IsDeleted   bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
