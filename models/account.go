package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account kinds. Every (client, user) pair has at most one cash account,
// enforced by a partial unique index.
const (
	AccountTypeBank = "bank"
	AccountTypeCash = "cash"
)

// Account is a store of value (bank or cash). Its balance moves by the full
// transaction amount; GST decomposition only affects ledgers.
type Account struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index:idx_accounts_owner;uniqueIndex:idx_accounts_owner_name;uniqueIndex:idx_accounts_one_cash,where:account_type = 'cash'" json:"client_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_accounts_owner;uniqueIndex:idx_accounts_owner_name;uniqueIndex:idx_accounts_one_cash,where:account_type = 'cash'" json:"user_id"`

	AccountName string `gorm:"size:100;not null;uniqueIndex:idx_accounts_owner_name" json:"account_name"`
	BankName    string `gorm:"size:100" json:"bank_name,omitempty"`

	AccountType string          `gorm:"size:20;not null;default:bank" json:"account_type"`
	Balance     decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"balance"`
	Active      bool            `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
