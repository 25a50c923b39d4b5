package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FinancialSettings holds per (client, user) tax configuration. When several
// rows exist, the one with the latest financial year start is authoritative.
type FinancialSettings struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index:idx_settings_owner" json:"client_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_settings_owner" json:"user_id"`

	FinancialYearStart time.Time `gorm:"type:date;not null" json:"financial_year_start"`
	CurrencyCode       string    `gorm:"size:10;default:INR" json:"currency_code"`
	Language           string    `gorm:"size:20;default:en" json:"language"`
	Timezone           string    `gorm:"size:50;default:Asia/Kolkata" json:"timezone"`

	GSTEnabled bool            `gorm:"not null;default:false" json:"gst_enabled"`
	GSTRate    decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"gst_rate"`
}

func (s *FinancialSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
