package models

import "time"

// SystemConfig is a numeric runtime tunable (stored in database)
type SystemConfig struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Key         string    `gorm:"column:key;uniqueIndex;size:100;not null" json:"key"`
	Value       float64   `gorm:"not null" json:"value"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (SystemConfig) TableName() string { return "system_configs" }
