package models

import "time"

// Match is the persisted compatibility record of one project and one vendor.
// (project_id, vendor_id) is unique; the row is rescored in place on every rebuild.
type Match struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ProjectID    uint       `gorm:"uniqueIndex:idx_match_project_vendor;not null" json:"project_id"`
	Project      *Project   `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"project,omitempty"`
	VendorID     uint       `gorm:"uniqueIndex:idx_match_project_vendor;index;not null" json:"vendor_id"`
	Vendor       *Vendor    `gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE" json:"vendor,omitempty"`
	CountryID    uint       `gorm:"not null" json:"country_id"` // copied from the project at creation
	Score        float64    `gorm:"type:decimal(10,2);not null;default:0" json:"score"`
	NotifiedAt   *time.Time `json:"notified_at"` // SLA clock start
	IsSLAExpired bool       `gorm:"column:is_sla_expired;default:false" json:"is_sla_expired"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Match) TableName() string { return "matches" }
