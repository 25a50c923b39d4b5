package books

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"khata/models"
)

// ReportService answers date-range filtering and period summary queries.
// Soft-deleted transactions are invisible here.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// DateFilter names a relative date range.
type DateFilter string

const (
	FilterToday     DateFilter = "today"
	FilterYesterday DateFilter = "yesterday"
	FilterThisWeek  DateFilter = "this_week"
	FilterLastWeek  DateFilter = "last_week"
	FilterThisMonth DateFilter = "this_month"
	FilterCustom    DateFilter = "custom"
)

// DateRange resolves a filter to inclusive start/end dates. Weeks start on
// Monday. Custom requires both bounds.
func DateRange(filter DateFilter, now time.Time, start, end *time.Time) (time.Time, time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	sinceMonday := (int(today.Weekday()) + 6) % 7

	switch filter {
	case FilterToday:
		return today, today, nil
	case FilterYesterday:
		y := today.AddDate(0, 0, -1)
		return y, y, nil
	case FilterThisWeek:
		s := today.AddDate(0, 0, -sinceMonday)
		return s, s.AddDate(0, 0, 6), nil
	case FilterLastWeek:
		e := today.AddDate(0, 0, -sinceMonday-1)
		return e.AddDate(0, 0, -6), e, nil
	case FilterThisMonth:
		s := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		return s, s.AddDate(0, 1, -1), nil
	case FilterCustom:
		if start == nil || end == nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: custom filter requires start and end dates", ErrInvalidInput)
		}
		return *start, *end, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown filter %q", ErrInvalidInput, filter)
}

// FilteredTransactions is the result of a date-range query.
type FilteredTransactions struct {
	Filter       DateFilter           `json:"filter"`
	StartDate    time.Time            `json:"start_date"`
	EndDate      time.Time            `json:"end_date"`
	Transactions []models.Transaction `json:"transactions"`
}

func (s *ReportService) FilterTransactions(ctx context.Context, filter DateFilter, clientID, userID uuid.UUID, start, end *time.Time) (*FilteredTransactions, error) {
	from, to, err := DateRange(filter, time.Now(), start, end)
	if err != nil {
		return nil, err
	}
	var txs []models.Transaction
	err = s.db.WithContext(ctx).
		Where("client_id = ? AND user_id = ? AND is_deleted = ?", clientID, userID, false).
		Where("date(created_at) >= date(?) AND date(created_at) <= date(?)", from, to).
		Order("created_at desc").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("%w: no transactions in range", ErrTransactionNotFound)
	}
	return &FilteredTransactions{Filter: filter, StartDate: from, EndDate: to, Transactions: txs}, nil
}

// Period names a summary window.
type Period string

const (
	PeriodThisWeek  Period = "this_week"
	PeriodLastWeek  Period = "last_week"
	PeriodThisMonth Period = "this_month"
	PeriodLastMonth Period = "last_month"
)

// LedgerSummary totals amounts per transaction type over a period. Total
// nets money in against money out.
type LedgerSummary struct {
	Period         Period          `json:"period"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	Income         decimal.Decimal `json:"income"`
	Expense        decimal.Decimal `json:"expense"`
	LoanPayable    decimal.Decimal `json:"loan_payable"`
	LoanReceivable decimal.Decimal `json:"loan_receivable"`
	Total          decimal.Decimal `json:"total"`
}

func periodRange(period Period, now time.Time) (time.Time, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	sinceMonday := (int(today.Weekday()) + 6) % 7

	switch period {
	case PeriodThisWeek:
		return today.AddDate(0, 0, -sinceMonday), today
	case PeriodLastWeek:
		s := today.AddDate(0, 0, -sinceMonday-7)
		return s, s.AddDate(0, 0, 6)
	case PeriodThisMonth:
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()), today
	case PeriodLastMonth:
		firstThis := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		lastPrev := firstThis.AddDate(0, 0, -1)
		return time.Date(lastPrev.Year(), lastPrev.Month(), 1, 0, 0, 0, 0, today.Location()), lastPrev
	}
	return today, today
}

func (s *ReportService) Summary(ctx context.Context, period Period, clientID, userID uuid.UUID) (*LedgerSummary, error) {
	from, to := periodRange(period, time.Now())
	var txs []models.Transaction
	err := s.db.WithContext(ctx).
		Where("client_id = ? AND user_id = ? AND is_deleted = ?", clientID, userID, false).
		Where("date(created_at) >= date(?) AND date(created_at) <= date(?)", from, to).
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("%w: no transactions in period", ErrTransactionNotFound)
	}

	out := LedgerSummary{Period: period, StartDate: from, EndDate: to}
	for _, t := range txs {
		switch TxType(t.Type) {
		case TypeIncome:
			out.Income = out.Income.Add(t.Amount)
		case TypeExpense:
			out.Expense = out.Expense.Add(t.Amount)
		case TypeLoanPayable:
			out.LoanPayable = out.LoanPayable.Add(t.Amount)
		case TypeLoanReceivable:
			out.LoanReceivable = out.LoanReceivable.Add(t.Amount)
		}
	}
	out.Total = out.Income.Sub(out.Expense).Add(out.LoanReceivable).Sub(out.LoanPayable)
	return &out, nil
}
