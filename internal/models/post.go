package models

import "time"

// Post is content posted into a group. Media references are persisted as a
// single comma-delimited string of storage keys or URLs; individual
// references never contain a comma.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	ImageURLs string    `json:"-" gorm:"type:text"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	GroupID   uint      `json:"group_id" gorm:"index;not null"`
	Likes     int       `json:"likes" gorm:"not null;default:0"`
	Comments  []Comment `json:"comments,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	User      User      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePostRequest defines the JSON request body for creating a post with
// base64-encoded attachments (the mobile client path). Multipart uploads
// bypass this struct.
type CreatePostRequest struct {
	Content string       `json:"content" validate:"required,min=1"`
	Files   []Base64File `json:"files,omitempty"`
}

// Base64File is one base64-encoded attachment in a CreatePostRequest.
// Data may carry a data:<mime>;base64, prefix.
type Base64File struct {
	Data        string `json:"data"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// PostView is the read-side shape of a post, with stored media references
// resolved into client-usable URLs.
type PostView struct {
	ID        uint          `json:"id"`
	Content   string        `json:"content"`
	MediaURLs []string      `json:"image_urls"`
	UserID    uint          `json:"user_id"`
	Username  string        `json:"username"`
	GroupID   uint          `json:"group_id"`
	Likes     int           `json:"likes"`
	Comments  []CommentView `json:"comments"`
	CreatedAt time.Time     `json:"created_at"`
}
