package books

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxType classifies a transaction. Debit types move money out of the account,
// credit types move money in.
type TxType string

const (
	TypeIncome         TxType = "income"
	TypeExpense        TxType = "expense"
	TypeLoanPayable    TxType = "loan_payable"
	TypeLoanReceivable TxType = "loan_receivable"
)

func (t TxType) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeLoanPayable, TypeLoanReceivable:
		return true
	}
	return false
}

// Debit reports whether the type debits the account balance.
func (t TxType) Debit() bool {
	return t == TypeExpense || t == TypeLoanReceivable
}

// DefaultLedgerName maps a transaction type to its canonical category ledger.
func (t TxType) DefaultLedgerName() string {
	switch t {
	case TypeIncome:
		return "Income"
	case TypeExpense:
		return "Expense"
	case TypeLoanPayable:
		return "Loan Payable"
	case TypeLoanReceivable:
		return "Loan Receivable"
	}
	return string(t)
}

// CreateTransaction is the explicit-amount posting request.
type CreateTransaction struct {
	ClientID    uuid.UUID
	UserID      uuid.UUID
	AccountID   uuid.UUID
	Type        TxType
	Amount      decimal.Decimal
	Description string
	IncludeGST  bool
}

// UpdateTransaction carries only the fields the caller wants to change.
// A nil IncludeGST means "keep the existing tax treatment", except that a
// changed amount invalidates a stale split and forces recomputation.
type UpdateTransaction struct {
	AccountID   *uuid.UUID
	Type        *TxType
	Amount      *decimal.Decimal
	Description *string
	IncludeGST  *bool
}

// ParsedQuery is the structured result of the natural-language parser.
type ParsedQuery struct {
	Type        TxType           `json:"type"`
	Amount      decimal.Decimal  `json:"amount"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Inventory   *ParsedInventory `json:"inventory,omitempty"`
	GST         *ParsedGST       `json:"gst_details,omitempty"`
}

type ParsedInventory struct {
	Item       string          `json:"item"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalValue decimal.Decimal `json:"total_value"`
}

type ParsedGST struct {
	BaseAmount decimal.Decimal `json:"base_amount"`
	GSTAmount  decimal.Decimal `json:"gst_amount"`
}

// QueryParser turns free text into a transaction intent. Implemented by
// pkg/nlparse; injected so the engine can be tested without the external
// service.
type QueryParser interface {
	ParseQuery(ctx context.Context, text string) (*ParsedQuery, error)
}

// UserVerifier checks a user against the external identity service.
type UserVerifier interface {
	VerifyUser(ctx context.Context, clientID, userID uuid.UUID, token string) bool
}
