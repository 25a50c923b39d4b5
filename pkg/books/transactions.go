package books

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"khata/models"
)

// TransactionService owns the transaction lifecycle and all balance
// adjustments. Every operation runs as one database transaction: either the
// row and every balance delta persist together, or nothing does.
type TransactionService struct {
	db        *gorm.DB
	settings  *SettingsService
	maxPerDay int
}

func NewTransactionService(db *gorm.DB, settings *SettingsService, maxPerDay int) *TransactionService {
	return &TransactionService{db: db, settings: settings, maxPerDay: maxPerDay}
}

// movement is the signed balance effect of one transaction on its three
// possible participants. It is computed purely from the transaction snapshot,
// so reversing is exactly negation and create-then-reverse is a no-op on all
// balances.
type movement struct {
	account decimal.Decimal
	ledger  decimal.Decimal
	gst     decimal.Decimal
}

func (m movement) negated() movement {
	return movement{account: m.account.Neg(), ledger: m.ledger.Neg(), gst: m.gst.Neg()}
}

// movementFor builds the sign table: the account always moves by the full
// amount (negative for debit types), the category ledger by the base part,
// and the GST ledger by the tax part. When no split is stored the category
// ledger takes the full amount.
func movementFor(txType TxType, amount decimal.Decimal, base, gst *decimal.Decimal) movement {
	gstPart := decimal.Zero
	if gst != nil {
		gstPart = *gst
	}
	basePart := amount.Sub(gstPart)
	if base != nil {
		basePart = *base
	}
	m := movement{ledger: basePart, gst: gstPart}
	if txType.Debit() {
		m.account = amount.Neg()
	} else {
		m.account = amount
	}
	return m
}

// applyMovement persists a movement. Account and ledger may be nil (a
// transaction whose account was since removed still reverses its ledger
// side). The GST ledger is resolved lazily, only when there is a tax part.
func applyMovement(tx *gorm.DB, account *models.Account, ledger *models.Ledger, m movement, clientID, userID uuid.UUID, txType TxType) error {
	if account != nil && !m.account.IsZero() {
		account.Balance = account.Balance.Add(m.account)
		if err := tx.Save(account).Error; err != nil {
			return err
		}
	}
	if ledger != nil && !m.ledger.IsZero() {
		ledger.Balance = ledger.Balance.Add(m.ledger)
		if err := tx.Save(ledger).Error; err != nil {
			return err
		}
	}
	if !m.gst.IsZero() {
		gstLedger, err := gstLedgerFor(tx, clientID, userID, txType)
		if err != nil {
			return err
		}
		if gstLedger != nil {
			gstLedger.Balance = gstLedger.Balance.Add(m.gst)
			if err := tx.Save(gstLedger).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// reverseEffects undoes a persisted transaction's balance effects using only
// its stored snapshot. Participants that no longer exist are skipped.
func reverseEffects(tx *gorm.DB, rec *models.Transaction) error {
	var account *models.Account
	if rec.AccountID != nil {
		var a models.Account
		err := lockForUpdate(tx).First(&a, "id = ?", *rec.AccountID).Error
		if err == nil {
			account = &a
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	var ledger *models.Ledger
	var l models.Ledger
	err := tx.First(&l, "id = ?", rec.LedgerID).Error
	if err == nil {
		ledger = &l
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	m := movementFor(TxType(rec.Type), rec.Amount, rec.BaseAmount, rec.GSTAmount).negated()
	return applyMovement(tx, account, ledger, m, rec.ClientID, rec.UserID, TxType(rec.Type))
}

// gstSplit computes the optional base/tax decomposition for a posting.
// Returns nils when the caller opted out or GST is disabled or zero-rated.
func (s *TransactionService) gstSplit(tx *gorm.DB, clientID, userID uuid.UUID, amount decimal.Decimal, includeGST bool) (*decimal.Decimal, *decimal.Decimal, error) {
	if !includeGST {
		return nil, nil, nil
	}
	settings, err := s.settings.Active(tx, clientID, userID)
	if err != nil {
		return nil, nil, err
	}
	if settings == nil || !settings.GSTEnabled || !settings.GSTRate.IsPositive() {
		return nil, nil, nil
	}
	base, gst := SplitInclusive(amount, settings.GSTRate)
	return &base, &gst, nil
}

// Create posts a new transaction: admission check, account and ledger
// resolution, optional GST split, balance deltas, then the row itself —
// all inside one unit of work.
func (s *TransactionService) Create(ctx context.Context, req CreateTransaction) (*models.Transaction, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unsupported transaction type %q", ErrInvalidInput, req.Type)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	var created *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := EnforceDailyLimit(tx, req.ClientID, req.UserID, s.maxPerDay); err != nil {
			return err
		}
		account, err := lockOwnedAccount(tx, req.AccountID, req.ClientID, req.UserID)
		if err != nil {
			return err
		}
		ledger, err := resolveLedgerForType(tx, req.ClientID, req.UserID, req.Type)
		if err != nil {
			return err
		}
		base, gst, err := s.gstSplit(tx, req.ClientID, req.UserID, req.Amount, req.IncludeGST)
		if err != nil {
			return err
		}

		if req.Type.Debit() && account.Balance.LessThan(req.Amount) {
			return fmt.Errorf("%w: account %s", ErrInsufficientFunds, account.ID)
		}
		m := movementFor(req.Type, req.Amount, base, gst)
		if err := applyMovement(tx, account, ledger, m, req.ClientID, req.UserID, req.Type); err != nil {
			return err
		}

		accountID := account.ID
		rec := models.Transaction{
			ClientID:    req.ClientID,
			UserID:      req.UserID,
			LedgerID:    ledger.ID,
			AccountID:   &accountID,
			Type:        string(req.Type),
			Amount:      req.Amount,
			BaseAmount:  base,
			GSTAmount:   gst,
			Description: req.Description,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		created = &rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update reverses the transaction's current effects, then re-applies with the
// new values. The reversal is flushed before the new account balance is read,
// so the insufficient-funds check sees the already-reversed balance.
func (s *TransactionService) Update(ctx context.Context, txID, clientID, userID uuid.UUID, req UpdateTransaction) (*models.Transaction, error) {
	if req.Type != nil && !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unsupported transaction type %q", ErrInvalidInput, *req.Type)
	}
	if req.Amount != nil && !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	var updated *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.Transaction
		err := tx.Where("id = ? AND client_id = ? AND user_id = ? AND is_deleted = ?", txID, clientID, userID, false).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrTransactionNotFound, txID)
		}
		if err != nil {
			return err
		}

		if err := reverseEffects(tx, &rec); err != nil {
			return err
		}

		// Target account: caller override, else the existing one re-read
		// post-reversal.
		var account *models.Account
		switch {
		case req.AccountID != nil:
			account, err = lockOwnedAccount(tx, *req.AccountID, clientID, userID)
			if err != nil {
				return err
			}
		case rec.AccountID != nil:
			account, err = lockOwnedAccount(tx, *rec.AccountID, clientID, userID)
			if err != nil {
				return err
			}
		}

		effType := TxType(rec.Type)
		if req.Type != nil {
			effType = *req.Type
		}
		var ledger *models.Ledger
		if req.Type != nil {
			ledger, err = resolveLedgerForType(tx, clientID, userID, effType)
			if err != nil {
				return err
			}
		} else {
			var l models.Ledger
			if err := tx.First(&l, "id = ?", rec.LedgerID).Error; err != nil {
				return err
			}
			ledger = &l
		}

		amount := rec.Amount
		if req.Amount != nil {
			amount = *req.Amount
		}

		// Recompute the split when the caller toggled tax handling, or when
		// the amount changed and the stored split went stale with it.
		base, gst := rec.BaseAmount, rec.GSTAmount
		recompute := req.IncludeGST != nil || (req.Amount != nil && rec.GSTAmount != nil)
		if recompute {
			wantGST := rec.GSTAmount != nil
			if req.IncludeGST != nil {
				wantGST = *req.IncludeGST
			}
			base, gst, err = s.gstSplit(tx, clientID, userID, amount, wantGST)
			if err != nil {
				return err
			}
		}

		if effType.Debit() && account != nil && account.Balance.LessThan(amount) {
			return fmt.Errorf("%w: account %s", ErrInsufficientFunds, account.ID)
		}
		m := movementFor(effType, amount, base, gst)
		if err := applyMovement(tx, account, ledger, m, clientID, userID, effType); err != nil {
			return err
		}

		if req.AccountID != nil {
			rec.AccountID = req.AccountID
		}
		if req.Type != nil {
			rec.Type = string(effType)
			rec.LedgerID = ledger.ID
		}
		if req.Amount != nil {
			rec.Amount = amount
		}
		if req.Description != nil {
			rec.Description = *req.Description
		}
		if recompute {
			rec.BaseAmount = base
			rec.GSTAmount = gst
		}
		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		updated = &rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete reverses the transaction's effects and soft-deletes the row.
// Deleted rows stay in the table but are excluded from balances, quota
// counting and filtered queries.
func (s *TransactionService) Delete(ctx context.Context, txID, clientID, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.Transaction
		err := tx.Where("id = ? AND client_id = ? AND user_id = ? AND is_deleted = ?", txID, clientID, userID, false).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrTransactionNotFound, txID)
		}
		if err != nil {
			return err
		}
		if err := reverseEffects(tx, &rec); err != nil {
			return err
		}
		now := time.Now()
		rec.IsDeleted = true
		rec.DeletedAt = &now
		return tx.Save(&rec).Error
	})
}
