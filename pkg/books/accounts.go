package books

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"khata/models"
)

// AccountService manages bank and cash accounts. Balance mutation happens
// only inside the transaction engine; this service owns creation and lookup.
type AccountService struct {
	db       *gorm.DB
	verifier UserVerifier
}

func NewAccountService(db *gorm.DB, verifier UserVerifier) *AccountService {
	return &AccountService{db: db, verifier: verifier}
}

// CreateAccount is an account creation request. Token is the caller's bearer
// token, passed through to the external identity verification.
type CreateAccount struct {
	ClientID    uuid.UUID
	UserID      uuid.UUID
	AccountName string
	BankName    string
	AccountType string
	Balance     decimal.Decimal
	Token       string
}

// GetOrCreateCashAccount returns the unique cash account for (client, user),
// creating it when absent. A concurrent creator winning the uniqueness race
// is tolerated: the insert is ON CONFLICT DO NOTHING and the existing row is
// re-read instead of failing.
func (s *AccountService) GetOrCreateCashAccount(ctx context.Context, clientID, userID uuid.UUID, initial decimal.Decimal) (*models.Account, bool, error) {
	db := s.db.WithContext(ctx)

	existing, err := s.findCashAccount(db, clientID, userID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	account := models.Account{
		ClientID:    clientID,
		UserID:      userID,
		AccountName: "Cash",
		AccountType: models.AccountTypeCash,
		Balance:     initial,
		Active:      true,
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&account)
	if res.Error != nil && !isUniqueConstraintError(res.Error) {
		return nil, false, res.Error
	}
	if res.Error == nil && res.RowsAffected > 0 {
		return &account, true, nil
	}

	// Lost the race: the row exists now, return it.
	existing, err = s.findCashAccount(db, clientID, userID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, res.Error
	}
	return existing, false, nil
}

func (s *AccountService) findCashAccount(db *gorm.DB, clientID, userID uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := db.Where("client_id = ? AND user_id = ? AND account_type = ?", clientID, userID, models.AccountTypeCash).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Create verifies the user against the external identity service, then
// creates the account. For cash accounts "already exists" is an error here,
// unlike GetOrCreateCashAccount which treats it as a fetch.
func (s *AccountService) Create(ctx context.Context, req CreateAccount) (*models.Account, error) {
	if s.verifier != nil && !s.verifier.VerifyUser(ctx, req.ClientID, req.UserID, req.Token) {
		return nil, fmt.Errorf("%w: user verification failed", ErrUnauthorized)
	}

	if strings.EqualFold(req.AccountType, models.AccountTypeCash) {
		account, created, err := s.GetOrCreateCashAccount(ctx, req.ClientID, req.UserID, req.Balance)
		if err != nil {
			return nil, err
		}
		if !created {
			return nil, ErrCashAccountExists
		}
		return account, nil
	}

	account := models.Account{
		ClientID:    req.ClientID,
		UserID:      req.UserID,
		AccountName: req.AccountName,
		BankName:    req.BankName,
		AccountType: models.AccountTypeBank,
		Balance:     req.Balance,
		Active:      true,
	}
	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAccount, req.AccountName)
		}
		return nil, err
	}
	return &account, nil
}

// ListByUser returns all accounts for (client, user); a user with no accounts
// is a not-found condition.
func (s *AccountService) ListByUser(ctx context.Context, clientID, userID uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.WithContext(ctx).Where("client_id = ? AND user_id = ?", clientID, userID).Find(&accounts).Error; err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: no accounts for this user", ErrAccountNotFound)
	}
	return accounts, nil
}

// GetByID returns an account owned by (client, user).
func (s *AccountService) GetByID(ctx context.Context, id, clientID, userID uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("id = ? AND client_id = ? AND user_id = ?", id, clientID, userID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// lockForUpdate takes a row lock on dialects that support SELECT ... FOR
// UPDATE. SQLite serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// lockOwnedAccount re-reads an account under lock inside the caller's
// transaction, checking ownership. The re-read keeps the insufficient-funds
// check from racing a concurrent posting against a stale balance.
func lockOwnedAccount(tx *gorm.DB, id, clientID, userID uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := lockForUpdate(tx).Where("id = ? AND client_id = ? AND user_id = ?", id, clientID, userID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}
