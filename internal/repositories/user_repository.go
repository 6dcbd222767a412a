package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/groupo-app/backend/internal/apperrors"
	"github.com/groupo-app/backend/internal/models"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByToken(token string) (*models.User, error)
	UpdateToken(userID uint, token string) error
	Search(query string, excludeID uint) ([]models.User, error)
	AddFriend(userID, friendID uint) error
	ListFriends(userID uint) ([]models.User, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Create creates a new user, failing when the username is already taken.
func (r *PostgresUserRepository) Create(user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.ErrDuplicateUsername
		}
		return tx.Create(user).Error
	})
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by username
func (r *PostgresUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &user, nil
}

// GetByToken retrieves a user by exact API token match
func (r *PostgresUserRepository) GetByToken(token string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("api_token = ?", token).First(&user).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &user, nil
}

// UpdateToken sets a user's API token
func (r *PostgresUserRepository) UpdateToken(userID uint, token string) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).Update("api_token", token).Error
}

// Search finds users by case-insensitive substring match over username,
// first name or last name, excluding the requester.
func (r *PostgresUserRepository) Search(query string, excludeID uint) ([]models.User, error) {
	var users []models.User
	pattern := "%" + query + "%"
	err := r.db.Where(
		"id <> ? AND (LOWER(username) LIKE LOWER(?) OR LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?))",
		excludeID, pattern, pattern, pattern,
	).Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// AddFriend records a directed friend edge. Adding an existing edge is a
// no-op; the reverse direction is never inserted implicitly (reads emulate
// symmetry instead, see ListFriends).
func (r *PostgresUserRepository) AddFriend(userID, friendID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var friend models.User
		if err := tx.First(&friend, friendID).Error; err != nil {
			return notFoundOr(err)
		}
		var count int64
		if err := tx.Table("friends").Where("user_id = ? AND friend_id = ?", userID, friendID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Exec("INSERT INTO friends (user_id, friend_id) VALUES (?, ?)", userID, friendID).Error
	})
}

// ListFriends returns users connected to userID by a friend edge in either
// direction.
func (r *PostgresUserRepository) ListFriends(userID uint) ([]models.User, error) {
	var friends []models.User
	outgoing := r.db.Table("friends").Select("friend_id").Where("user_id = ?", userID)
	incoming := r.db.Table("friends").Select("user_id").Where("friend_id = ?", userID)
	if err := r.db.Where("id IN (?) OR id IN (?)", outgoing, incoming).Find(&friends).Error; err != nil {
		return nil, err
	}
	return friends, nil
}

// notFoundOr translates gorm's record-not-found into the domain sentinel.
func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	return err
}
