package models

import "time"

// Session is an issued refresh-token session; rows past ExpiresAt are reaped.
type Session struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	RefreshToken string    `gorm:"size:500;not null" json:"-"`
	ExpiresAt    time.Time `gorm:"index;not null" json:"expires_at"`
	DeviceInfo   string    `gorm:"type:text" json:"device_info,omitempty"` // JSON
	CreatedAt    time.Time `json:"created_at"`
}

func (Session) TableName() string { return "sessions" }
