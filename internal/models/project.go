package models

import "time"

const (
	ProjectStatusPending   = "pending"
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
)

// Project is a client request for services in one country.
type Project struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CountryID      uint      `gorm:"index;not null" json:"country_id"`
	Title          string    `gorm:"size:200;not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	ServicesNeeded IDList    `json:"services_needed"`
	Budget         float64   `gorm:"type:decimal(10,2)" json:"budget"`
	Status         string    `gorm:"size:50;index;default:pending" json:"status"` // pending, active, completed
	ClientID       uint      `gorm:"index;not null" json:"client_id"`
	Client         *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }
