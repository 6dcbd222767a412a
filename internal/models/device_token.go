package models

import "time"

// DeviceToken is an opaque push token issued by a push gateway for one
// installed app instance. A (user, token) pair is never duplicated.
type DeviceToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_device_token"`
	Token     string    `json:"token" gorm:"size:255;not null;uniqueIndex:idx_user_device_token"`
	Platform  string    `json:"platform" gorm:"size:20;default:'expo'"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterDeviceTokenRequest defines the request body for registering a
// device push token
type RegisterDeviceTokenRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"omitempty,oneof=expo fcm"`
}
