package books

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"khata/models"
)

// findOrCreateLedger resolves a ledger by case-insensitive name within
// (client, user), creating it with zero balance when absent. The create goes
// through tx so the new row is visible to later lookups in the same unit of
// work.
func findOrCreateLedger(tx *gorm.DB, clientID, userID uuid.UUID, name, ledgerType string) (*models.Ledger, error) {
	var ledger models.Ledger
	err := tx.Where("client_id = ? AND user_id = ? AND lower(name) = lower(?)", clientID, userID, name).First(&ledger).Error
	if err == nil {
		return &ledger, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	ledger = models.Ledger{
		ClientID: clientID,
		UserID:   userID,
		Name:     name,
		Type:     ledgerType,
		Balance:  decimal.Zero,
	}
	if err := tx.Create(&ledger).Error; err != nil {
		return nil, err
	}
	return &ledger, nil
}

// resolveLedgerForType finds or creates the canonical category ledger for a
// transaction type (income -> "Income", expense -> "Expense", ...).
func resolveLedgerForType(tx *gorm.DB, clientID, userID uuid.UUID, txType TxType) (*models.Ledger, error) {
	return findOrCreateLedger(tx, clientID, userID, txType.DefaultLedgerName(), string(txType))
}

// gstLedgerFor resolves the tax ledger for a transaction type: "GST Paid"
// (input credit) for debit types, "GST Collected" (output tax) for credit
// types. Returns nil for types with no tax concept.
func gstLedgerFor(tx *gorm.DB, clientID, userID uuid.UUID, txType TxType) (*models.Ledger, error) {
	switch {
	case txType == TypeExpense || txType == TypeLoanReceivable:
		return findOrCreateLedger(tx, clientID, userID, "GST Paid", string(TypeExpense))
	case txType == TypeIncome || txType == TypeLoanPayable:
		return findOrCreateLedger(tx, clientID, userID, "GST Collected", string(TypeIncome))
	}
	return nil, nil
}

// LedgerService exposes ledger CRUD for the API layer. Engine-internal
// resolution goes through the package-level helpers above so it shares the
// caller's transaction.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// LedgerCreate is an explicit ledger creation request.
type LedgerCreate struct {
	ClientID uuid.UUID
	UserID   uuid.UUID
	Name     string
	Type     string
	Balance  decimal.Decimal
}

func (s *LedgerService) Create(ctx context.Context, payload LedgerCreate) (*models.Ledger, error) {
	if payload.Name == "" {
		return nil, fmt.Errorf("%w: ledger name required", ErrInvalidInput)
	}
	ledger := models.Ledger{
		ClientID: payload.ClientID,
		UserID:   payload.UserID,
		Name:     payload.Name,
		Type:     payload.Type,
		Balance:  payload.Balance,
	}
	if err := s.db.WithContext(ctx).Create(&ledger).Error; err != nil {
		return nil, err
	}
	return &ledger, nil
}

// PageByUser returns one page of the user's ledgers plus the total count.
func (s *LedgerService) PageByUser(ctx context.Context, clientID, userID uuid.UUID, page, size int) ([]models.Ledger, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	q := s.db.WithContext(ctx).Model(&models.Ledger{}).Where("client_id = ? AND user_id = ?", clientID, userID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []models.Ledger
	if err := q.Offset((page - 1) * size).Limit(size).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
