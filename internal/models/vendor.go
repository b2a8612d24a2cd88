package models

import "time"

// Vendor is a service provider that can be matched to projects.
type Vendor struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Name               string    `gorm:"size:150;not null" json:"name"`
	Email              string    `gorm:"uniqueIndex;size:250;not null" json:"email"`
	CountriesSupported IDList    `json:"countries_supported"`
	ServicesOffered    IDList    `json:"services_offered"`
	Rating             float64   `gorm:"type:decimal(3,1);default:0" json:"rating"` // 0-5
	ResponseSLAHours   float64   `gorm:"column:response_sla_hours;default:0" json:"response_sla_hours"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Vendor) TableName() string { return "vendors" }
