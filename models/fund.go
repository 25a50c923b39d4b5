package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Fund records a transfer from a company admin to one of its users.
type Fund struct {
	FundID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"fund_id"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Amount      decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	Description string          `gorm:"type:text" json:"description,omitempty"`

	TransferredAt time.Time `gorm:"autoCreateTime" json:"transferred_at"`
}

func (f *Fund) BeforeCreate(tx *gorm.DB) error {
	if f.FundID == uuid.Nil {
		f.FundID = uuid.New()
	}
	return nil
}
