package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
)

// Invitation records an admin inviting a user into a client. At most one
// pending invitation per (client, invited user) is allowed.
type Invitation struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`

	InvitedUserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"invited_user_id"`
	InvitedByUserID uuid.UUID `gorm:"type:uuid;not null" json:"invited_by_user_id"`

	MobileNumber string `gorm:"size:20" json:"mobile_number,omitempty"`
	Status       string `gorm:"size:20;not null;default:pending" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
