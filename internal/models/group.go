package models

import "time"

// Group is a circle of users; only members may read or write its posts.
type Group struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Members   []User    `json:"members,omitempty" gorm:"many2many:group_members"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateGroupRequest defines the request body for creating a group
type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// UpdateGroupRequest defines the request body for renaming a group
type UpdateGroupRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// AddMemberRequest defines the request body for adding a member by username
type AddMemberRequest struct {
	Username string `json:"username" validate:"required"`
}
