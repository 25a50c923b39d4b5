package models

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the identity service's view of a user. Identity itself is
// verified externally; this row only carries the role and contact details
// needed for invitations and fund transfers.
type User struct {
	ID       string    `gorm:"primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	ClientID uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`

	Name         string `gorm:"size:255" json:"name,omitempty"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	MobileNumber string `gorm:"size:20;uniqueIndex" json:"mobile_number,omitempty"`
	IsCompany    bool   `gorm:"not null;default:false" json:"is_company"`
	Role         string `gorm:"size:50;not null;default:user" json:"role"`
	Active       bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
}
