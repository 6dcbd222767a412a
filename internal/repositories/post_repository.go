package repositories

import (
	"gorm.io/gorm"

	"github.com/groupo-app/backend/internal/apperrors"
	"github.com/groupo-app/backend/internal/models"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id uint) (*models.Post, error)
	ListByGroup(groupID uint) ([]models.Post, error)
	Like(id uint) (int, error)
	Delete(id uint, requesterID uint) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// Create creates a post, failing when the author is not a member of the
// target group. The membership check and the insert share one transaction.
func (r *PostgresPostRepository) Create(post *models.Post) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table("group_members").
			Where("group_id = ? AND user_id = ?", post.GroupID, post.UserID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperrors.ErrNotAMember
		}
		return tx.Create(post).Error
	})
}

// GetByID retrieves a post with its comments and authors preloaded
func (r *PostgresPostRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.
		Preload("Comments").
		Preload("Comments.User").
		Preload("User").
		First(&post, id).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &post, nil
}

// ListByGroup retrieves all posts in a group, oldest first
func (r *PostgresPostRepository) ListByGroup(groupID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.
		Preload("Comments").
		Preload("Comments.User").
		Preload("User").
		Where("group_id = ?", groupID).
		Order("id ASC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Like increments the like counter atomically in the database and returns
// the new count. No read-modify-write, so concurrent likes cannot lose
// updates; repeat likes by the same user are not deduplicated.
func (r *PostgresPostRepository) Like(id uint) (int, error) {
	var likes int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ?", id).
			UpdateColumn("likes", gorm.Expr("likes + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		var post models.Post
		if err := tx.Select("likes").First(&post, id).Error; err != nil {
			return err
		}
		likes = post.Likes
		return nil
	})
	return likes, err
}

// Delete removes a post and all its comments. Only the author may delete.
func (r *PostgresPostRepository) Delete(id uint, requesterID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, id).Error; err != nil {
			return notFoundOr(err)
		}
		if post.UserID != requesterID {
			return apperrors.ErrForbidden
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}
