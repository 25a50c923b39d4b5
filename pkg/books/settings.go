package books

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"khata/models"
)

// SettingsService manages per-user financial settings. The engine consumes
// only Active; Create/ListByUser back the settings endpoints.
type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

type SettingsCreate struct {
	ClientID           uuid.UUID
	UserID             uuid.UUID
	FinancialYearStart time.Time
	CurrencyCode       string
	Language           string
	Timezone           string
	GSTEnabled         bool
	GSTRate            decimal.Decimal
}

func (s *SettingsService) Create(ctx context.Context, payload SettingsCreate) (*models.FinancialSettings, error) {
	settings := models.FinancialSettings{
		ClientID:           payload.ClientID,
		UserID:             payload.UserID,
		FinancialYearStart: payload.FinancialYearStart,
		CurrencyCode:       payload.CurrencyCode,
		Language:           payload.Language,
		Timezone:           payload.Timezone,
		GSTEnabled:         payload.GSTEnabled,
		GSTRate:            payload.GSTRate,
	}
	if err := s.db.WithContext(ctx).Create(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *SettingsService) ListByUser(ctx context.Context, clientID, userID uuid.UUID, limit, offset int) ([]models.FinancialSettings, error) {
	if limit < 1 {
		limit = 10
	}
	var items []models.FinancialSettings
	err := s.db.WithContext(ctx).
		Where("client_id = ? AND user_id = ?", clientID, userID).
		Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Active returns the authoritative settings row for (client, user): the one
// with the most recent financial year start. Nil when none exist. Reads
// through tx so engine operations see settings consistent with their unit of
// work.
func (s *SettingsService) Active(tx *gorm.DB, clientID, userID uuid.UUID) (*models.FinancialSettings, error) {
	var settings models.FinancialSettings
	err := tx.Where("client_id = ? AND user_id = ?", clientID, userID).
		Order("financial_year_start desc").
		First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}
