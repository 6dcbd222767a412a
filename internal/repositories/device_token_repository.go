package repositories

import (
	"gorm.io/gorm"

	"github.com/groupo-app/backend/internal/models"
)

// DeviceTokenRepository defines the interface for device token data operations
type DeviceTokenRepository interface {
	Register(token *models.DeviceToken) error
	ListForUsers(userIDs []uint) ([]models.DeviceToken, error)
}

// PostgresDeviceTokenRepository implements DeviceTokenRepository for PostgreSQL
type PostgresDeviceTokenRepository struct {
	db *gorm.DB
}

// NewPostgresDeviceTokenRepository creates a new PostgresDeviceTokenRepository
func NewPostgresDeviceTokenRepository(db *gorm.DB) *PostgresDeviceTokenRepository {
	return &PostgresDeviceTokenRepository{db: db}
}

// Register stores a device token. Registering an existing (user, token)
// pair is a no-op.
func (r *PostgresDeviceTokenRepository) Register(token *models.DeviceToken) error {
	if token.Platform == "" {
		token.Platform = "expo"
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.DeviceToken{}).
			Where("user_id = ? AND token = ?", token.UserID, token.Token).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Create(token).Error
	})
}

// ListForUsers retrieves all device tokens registered by the given users
func (r *PostgresDeviceTokenRepository) ListForUsers(userIDs []uint) ([]models.DeviceToken, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var tokens []models.DeviceToken
	if err := r.db.Where("user_id IN ?", userIDs).Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}
