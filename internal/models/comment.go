package models

import "time"

// Comment belongs to a post and is deleted with it.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Content   string    `json:"content" gorm:"size:300;not null"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	PostID    uint      `json:"post_id" gorm:"index;not null"`
	User      User      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	Comment string `json:"comment" validate:"required,min=1,max=300"`
}

// CommentView is the read-side shape of a comment.
type CommentView struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
