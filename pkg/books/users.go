package books

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"khata/models"
)

// UserService covers user setup, invitations and admin fund transfers.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type UserSetup struct {
	UserID       uuid.UUID
	ClientID     uuid.UUID
	Name         string
	Email        string
	MobileNumber string
	AccountType  string // "company" or "person"
}

// Setup registers a user, mapping company accounts to the admin role.
// Any collision on user id, email or mobile number is a conflict.
func (s *UserService) Setup(ctx context.Context, payload UserSetup) (*models.User, error) {
	db := s.db.WithContext(ctx)

	var existing models.User
	err := db.Where("user_id = ? OR email = ? OR mobile_number = ?", payload.UserID, payload.Email, payload.MobileNumber).First(&existing).Error
	if err == nil {
		switch {
		case existing.UserID == payload.UserID:
			return nil, fmt.Errorf("%w: user_id %s", ErrDuplicateUser, payload.UserID)
		case existing.Email == payload.Email:
			return nil, fmt.Errorf("%w: email %s", ErrDuplicateUser, payload.Email)
		default:
			return nil, fmt.Errorf("%w: mobile number %s", ErrDuplicateUser, payload.MobileNumber)
		}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	isCompany := strings.EqualFold(strings.TrimSpace(payload.AccountType), "company")
	role := "user"
	if isCompany {
		role = "admin"
	}
	user := models.User{
		ID:           uuid.NewString(),
		UserID:       payload.UserID,
		ClientID:     payload.ClientID,
		Name:         payload.Name,
		Email:        payload.Email,
		MobileNumber: payload.MobileNumber,
		IsCompany:    isCompany,
		Role:         role,
		Active:       true,
	}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateUser, payload.Email)
		}
		return nil, err
	}
	return &user, nil
}

type UserInvite struct {
	ClientID        uuid.UUID
	InvitedByUserID uuid.UUID
	Email           string
	MobileNumber    string
}

// Invite lets an admin invite an existing user into a client. A second
// pending invitation for the same (client, user) is a conflict.
func (s *UserService) Invite(ctx context.Context, payload UserInvite) (*models.Invitation, error) {
	db := s.db.WithContext(ctx)

	var inviter models.User
	err := db.Where("user_id = ?", payload.InvitedByUserID).First(&inviter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: inviting user does not exist", ErrUserNotFound)
	}
	if err != nil {
		return nil, err
	}
	if inviter.Role != "admin" {
		return nil, fmt.Errorf("%w: only admins can invite users", ErrUnauthorized)
	}
	if payload.Email == "" && payload.MobileNumber == "" {
		return nil, fmt.Errorf("%w: email or mobile number required", ErrInvalidInput)
	}

	var target models.User
	if payload.Email != "" {
		err = db.Where("email = ?", payload.Email).First(&target).Error
	} else {
		err = db.Where("mobile_number = ?", payload.MobileNumber).First(&target).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user to invite not found", ErrUserNotFound)
	}
	if err != nil {
		return nil, err
	}
	if target.UserID == inviter.UserID {
		return nil, fmt.Errorf("%w: admins cannot invite themselves", ErrInvalidInput)
	}

	var pending models.Invitation
	err = db.Where("client_id = ? AND invited_user_id = ? AND status = ?", payload.ClientID, target.UserID, models.InvitationPending).First(&pending).Error
	if err == nil {
		return nil, ErrPendingInvitation
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	invitation := models.Invitation{
		ClientID:        payload.ClientID,
		InvitedUserID:   target.UserID,
		InvitedByUserID: payload.InvitedByUserID,
		MobileNumber:    payload.MobileNumber,
		Status:          models.InvitationPending,
	}
	if err := db.Create(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// InvitationStatus reports whether an invitation has been accepted.
type InvitationStatus struct {
	InvitationID uuid.UUID `json:"invitation_id"`
	MobileNumber string    `json:"mobile_number"`
	Accepted     bool      `json:"accepted"`
	Message      string    `json:"message"`
}

func (s *UserService) InvitationStatus(ctx context.Context, mobileNumber string, invitationID uuid.UUID) (*InvitationStatus, error) {
	var invitation models.Invitation
	err := s.db.WithContext(ctx).Where("mobile_number = ? AND id = ?", mobileNumber, invitationID).First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no invitation for this user", ErrInvitationNotFound)
	}
	if err != nil {
		return nil, err
	}
	accepted := strings.EqualFold(invitation.Status, models.InvitationAccepted)
	msg := "Invitation pending"
	if accepted {
		msg = "Invitation accepted"
	}
	return &InvitationStatus{
		InvitationID: invitation.ID,
		MobileNumber: invitation.MobileNumber,
		Accepted:     accepted,
		Message:      msg,
	}, nil
}

type FundTransfer struct {
	CompanyID   uuid.UUID
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Description string
}

// TransferFunds records an admin-to-user transfer. Only admins may send, and
// never to another admin.
func (s *UserService) TransferFunds(ctx context.Context, payload FundTransfer) (*models.Fund, error) {
	db := s.db.WithContext(ctx)

	var admin models.User
	err := db.Where("id = ? OR user_id = ?", payload.CompanyID.String(), payload.CompanyID).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: company %s", ErrUserNotFound, payload.CompanyID)
	}
	if err != nil {
		return nil, err
	}
	if admin.Role != "admin" {
		return nil, fmt.Errorf("%w: only admin users can transfer funds", ErrUnauthorized)
	}

	var target models.User
	err = db.Where("id = ? OR user_id = ?", payload.UserID.String(), payload.UserID).First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %s", ErrUserNotFound, payload.UserID)
	}
	if err != nil {
		return nil, err
	}
	if target.Role == "admin" {
		return nil, fmt.Errorf("%w: cannot transfer funds to another admin", ErrInvalidInput)
	}
	if !payload.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: transfer amount must be positive", ErrInvalidInput)
	}

	fund := models.Fund{
		CompanyID:   admin.UserID,
		UserID:      target.UserID,
		Amount:      payload.Amount,
		Description: payload.Description,
	}
	if err := db.Create(&fund).Error; err != nil {
		return nil, err
	}
	return &fund, nil
}
