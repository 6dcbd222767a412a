package models

import "time"

type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:80;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"size:200;not null"` // Store bcrypt hash, ignore for JSON serialization
	FirstName string    `json:"first_name" gorm:"size:100;not null"`
	LastName  string    `json:"last_name" gorm:"size:100;not null"`
	APIToken  *string   `json:"-" gorm:"size:64;uniqueIndex"` // Opaque 64-hex bearer credential for the mobile API
	CreatedAt time.Time `json:"created_at"`

	Groups  []Group `json:"-" gorm:"many2many:group_members"`
	Friends []User  `json:"-" gorm:"many2many:friends;joinForeignKey:UserID;joinReferences:FriendID"`
}

// RegisterRequest defines the request body for registering a new user
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=1,max=80"`
	Password  string `json:"password" validate:"required,min=1"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

// LoginRequest defines the request body for authenticating a user
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
