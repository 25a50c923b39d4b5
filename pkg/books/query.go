package books

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"khata/models"
)

// QueryService turns natural-language text into postings. Parsing happens
// before the unit of work opens: a parser failure aborts before any balance
// is touched, and the DB transaction never waits on the network.
type QueryService struct {
	db        *gorm.DB
	parser    QueryParser
	settings  *SettingsService
	inventory *InventoryService
	maxPerDay int
}

func NewQueryService(db *gorm.DB, parser QueryParser, settings *SettingsService, inventory *InventoryService, maxPerDay int) *QueryService {
	return &QueryService{db: db, parser: parser, settings: settings, inventory: inventory, maxPerDay: maxPerDay}
}

type QueryRequest struct {
	ClientID  uuid.UUID
	UserID    uuid.UUID
	Query     string
	AccountID *uuid.UUID
}

// QueryPreview is the transient payload returned when no account was chosen:
// the parsed intent plus the user's accounts to pick from. Nothing persists.
type QueryPreview struct {
	Accounts []models.Account `json:"accounts"`
	Preview  *ParsedQuery     `json:"preview"`
}

// HandleQuery returns a preview when the request names no account, otherwise
// creates the transaction.
func (s *QueryService) HandleQuery(ctx context.Context, req QueryRequest) (*QueryPreview, *models.Transaction, error) {
	if req.AccountID != nil {
		rec, err := s.CreateFromQuery(ctx, req)
		return nil, rec, err
	}

	parsed, err := s.parse(ctx, req.Query)
	if err != nil {
		return nil, nil, err
	}
	var accounts []models.Account
	if err := s.db.WithContext(ctx).Where("client_id = ? AND user_id = ?", req.ClientID, req.UserID).Find(&accounts).Error; err != nil {
		return nil, nil, err
	}
	if len(accounts) == 0 {
		return nil, nil, fmt.Errorf("%w: no accounts for this user", ErrAccountNotFound)
	}
	return &QueryPreview{Accounts: accounts, Preview: parsed}, nil, nil
}

func (s *QueryService) parse(ctx context.Context, text string) (*ParsedQuery, error) {
	parsed, err := s.parser.ParseQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: could not parse query: %v", ErrInvalidInput, err)
	}
	if !parsed.Type.Valid() {
		return nil, fmt.Errorf("%w: unsupported transaction type %q", ErrInvalidInput, parsed.Type)
	}
	if !parsed.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: transaction amount not specified or not positive", ErrInvalidInput)
	}
	return parsed, nil
}

// CreateFromQuery posts the parsed transaction against the chosen account.
// Purchases of goods take the inventory path so the stock record and the
// expense land together.
func (s *QueryService) CreateFromQuery(ctx context.Context, req QueryRequest) (*models.Transaction, error) {
	if req.AccountID == nil {
		return nil, fmt.Errorf("%w: account required", ErrInvalidInput)
	}
	parsed, err := s.parse(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	if parsed.Inventory != nil {
		_, rec, err := s.inventory.CreateItem(ctx, InventoryItem{
			ClientID:    req.ClientID,
			UserID:      req.UserID,
			AccountID:   *req.AccountID,
			ItemName:    parsed.Inventory.Item,
			Description: parsed.Description,
			Category:    parsed.Category,
			Quantity:    parsed.Inventory.Quantity,
			UnitPrice:   parsed.Inventory.UnitPrice,
			TotalValue:  parsed.Inventory.TotalValue,
		})
		return rec, err
	}

	var created *models.Transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := EnforceDailyLimit(tx, req.ClientID, req.UserID, s.maxPerDay); err != nil {
			return err
		}
		account, err := lockOwnedAccount(tx, *req.AccountID, req.ClientID, req.UserID)
		if err != nil {
			return err
		}

		base, gst, err := s.splitForParsed(tx, req.ClientID, req.UserID, parsed)
		if err != nil {
			return err
		}

		ledgerName := parsed.Category
		if ledgerName == "" {
			ledgerName = parsed.Type.DefaultLedgerName()
		}
		ledger, err := findOrCreateLedger(tx, req.ClientID, req.UserID, ledgerName, string(parsed.Type))
		if err != nil {
			return err
		}

		if parsed.Type.Debit() && account.Balance.LessThan(parsed.Amount) {
			return fmt.Errorf("%w: account %s", ErrInsufficientFunds, account.ID)
		}
		m := movementFor(parsed.Type, parsed.Amount, base, gst)
		if err := applyMovement(tx, account, ledger, m, req.ClientID, req.UserID, parsed.Type); err != nil {
			return err
		}

		accountID := account.ID
		rec := models.Transaction{
			ClientID:    req.ClientID,
			UserID:      req.UserID,
			LedgerID:    ledger.ID,
			AccountID:   &accountID,
			Type:        string(parsed.Type),
			Amount:      parsed.Amount,
			BaseAmount:  base,
			GSTAmount:   gst,
			Description: parsed.Description,
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

// splitForParsed picks the tax decomposition for a parsed query. A usable
// parser-supplied split wins; the tax part is re-derived from the base so
// amount == base + gst holds exactly. Otherwise the active settings split
// applies, income and expense only.
func (s *QueryService) splitForParsed(tx *gorm.DB, clientID, userID uuid.UUID, parsed *ParsedQuery) (*decimal.Decimal, *decimal.Decimal, error) {
	if parsed.GST != nil && parsed.GST.GSTAmount.IsPositive() {
		base := parsed.GST.BaseAmount.Round(2)
		if base.IsPositive() && base.LessThan(parsed.Amount) {
			gst := parsed.Amount.Sub(base)
			return &base, &gst, nil
		}
	}
	if parsed.Type != TypeIncome && parsed.Type != TypeExpense {
		return nil, nil, nil
	}
	settings, err := s.settings.Active(tx, clientID, userID)
	if err != nil {
		return nil, nil, err
	}
	if settings == nil || !settings.GSTEnabled || !settings.GSTRate.IsPositive() {
		return nil, nil, nil
	}
	base, gst := SplitInclusive(parsed.Amount, settings.GSTRate)
	return &base, &gst, nil
}
