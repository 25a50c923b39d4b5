package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Inventory is a stock record created alongside its purchase transaction.
type Inventory struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index:idx_inventory_owner" json:"client_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index:idx_inventory_owner" json:"user_id"`

	ItemName    string          `gorm:"size:100;not null" json:"item_name"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Category    string          `gorm:"size:50" json:"category,omitempty"`
	Quantity    decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"unit_price"`
	TotalValue  decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"total_value"`
	Unit        string          `gorm:"size:20" json:"unit,omitempty"`
	Active      bool            `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Inventory) TableName() string { return "inventory" }

func (i *Inventory) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
