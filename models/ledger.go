package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ledger is a named category bucket ("Income", "GST Paid", ...). Its balance
// is the running sum of base (GST-excluded) movements posted to it. Ledgers
// are created lazily on first reference; name lookup is case-insensitive
// within (client, user).
type Ledger struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index:idx_ledgers_owner" json:"client_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_ledgers_owner" json:"user_id"`

	Name    string          `gorm:"size:100;not null" json:"name"`
	Type    string          `gorm:"size:20;not null;index" json:"type"`
	Balance decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"balance"`
}

func (l *Ledger) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
