package repositories

import (
	"gorm.io/gorm"

	"github.com/groupo-app/backend/internal/apperrors"
	"github.com/groupo-app/backend/internal/models"
)

// GroupRepository defines the interface for group data operations
type GroupRepository interface {
	Create(group *models.Group, creator *models.User) error
	GetByID(id uint) (*models.Group, error)
	ListForUser(userID uint) ([]models.Group, error)
	AddMember(groupID, userID uint) error
	IsMember(groupID, userID uint) (bool, error)
	Rename(groupID uint, name string) error
}

// PostgresGroupRepository implements GroupRepository for PostgreSQL
type PostgresGroupRepository struct {
	db *gorm.DB
}

// NewPostgresGroupRepository creates a new PostgresGroupRepository
func NewPostgresGroupRepository(db *gorm.DB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db}
}

// Create creates a group with the creator as its sole initial member.
func (r *PostgresGroupRepository) Create(group *models.Group, creator *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		return tx.Model(group).Association("Members").Append(creator)
	})
}

// GetByID retrieves a group with its members preloaded
func (r *PostgresGroupRepository) GetByID(id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.Preload("Members").First(&group, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &group, nil
}

// ListForUser retrieves all groups the user is a member of
func (r *PostgresGroupRepository) ListForUser(userID uint) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID).
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// AddMember adds a user to a group. Adding an existing member is a no-op.
func (r *PostgresGroupRepository) AddMember(groupID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.First(&group, groupID).Error; err != nil {
			return notFoundOr(err)
		}
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return notFoundOr(err)
		}
		var count int64
		if err := tx.Table("group_members").
			Where("group_id = ? AND user_id = ?", groupID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Model(&group).Association("Members").Append(&user)
	})
}

// IsMember reports whether the user belongs to the group
func (r *PostgresGroupRepository) IsMember(groupID, userID uint) (bool, error) {
	var count int64
	err := r.db.Table("group_members").
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rename updates a group's name
func (r *PostgresGroupRepository) Rename(groupID uint, name string) error {
	res := r.db.Model(&models.Group{}).Where("id = ?", groupID).Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
