package books

import (
	"errors"
	"strings"
)

// Business-rule failures surfaced by the engine. Handlers map these onto HTTP
// status codes; everything else is treated as a persistence failure.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvitationNotFound  = errors.New("invitation not found")

	ErrDuplicateAccount  = errors.New("account with this name already exists")
	ErrCashAccountExists = errors.New("cash account already exists")
	ErrDuplicateUser     = errors.New("user already exists")
	ErrPendingInvitation = errors.New("user already has a pending invitation")

	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrDailyLimitReached = errors.New("daily transaction limit reached")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
)

// isUniqueConstraintError sniffs driver error strings for uniqueness
// violations. Used as a fallback where ON CONFLICT clauses cannot express the
// constraint.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "UNIQUE constraint") || strings.Contains(s, "already exists")
}
