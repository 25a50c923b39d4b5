package books

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"khata/models"
)

// DefaultDailyLimit caps transaction creations per user per server date.
const DefaultDailyLimit = 15

// EnforceDailyLimit fails with ErrDailyLimitReached once (client, user) has
// created `limit` non-deleted transactions on the current server date. Runs
// on every creation path and never on update or delete.
func EnforceDailyLimit(tx *gorm.DB, clientID, userID uuid.UUID, limit int) error {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	var count int64
	err := tx.Model(&models.Transaction{}).
		Where("client_id = ? AND user_id = ? AND is_deleted = ?", clientID, userID, false).
		Where("date(created_at) = current_date").
		Count(&count).Error
	if err != nil {
		return err
	}
	if count >= int64(limit) {
		return fmt.Errorf("%w (max %d per day)", ErrDailyLimitReached, limit)
	}
	return nil
}
