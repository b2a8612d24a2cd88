package services

import (
	"context"
	"fmt"

	"github.com/matchwise/backend/internal/models"
	"gorm.io/gorm"
)

// MatchVendor is the read-only projection of a vendor used by the engine.
type MatchVendor struct {
	ID                 uint
	Name               string
	CountriesSupported []uint
	ServicesOffered    []uint
	Rating             float64
	ResponseSLAHours   float64

	// decodeErr is set when a stored id list could not be decoded.
	decodeErr error
}

// VendorDirectory lists the current vendor population. No filtering happens
// at the source; eligibility is decided by the scoring function.
type VendorDirectory interface {
	ListAll(ctx context.Context) ([]MatchVendor, error)
}

type VendorService struct {
	db *gorm.DB
}

func NewVendorService(db *gorm.DB) *VendorService {
	return &VendorService{db: db}
}

// vendorRow reads the id list columns as raw text so one undecodable row
// does not fail the whole listing.
type vendorRow struct {
	ID                 uint
	Name               string
	CountriesSupported *string
	ServicesOffered    *string
	Rating             float64
	ResponseSLAHours   float64
}

// ListAll returns every vendor. Rows whose id lists are not valid JSON are
// still returned, flagged so the caller can isolate them.
func (s *VendorService) ListAll(ctx context.Context) ([]MatchVendor, error) {
	var rows []vendorRow
	err := s.db.WithContext(ctx).
		Model(&models.Vendor{}).
		Select("id, name, countries_supported, services_offered, rating, response_sla_hours").
		Order("id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	views := make([]MatchVendor, 0, len(rows))
	for _, row := range rows {
		v := MatchVendor{
			ID:               row.ID,
			Name:             row.Name,
			Rating:           row.Rating,
			ResponseSLAHours: row.ResponseSLAHours,
		}
		countries, cErr := decodeIDList(row.CountriesSupported)
		offered, sErr := decodeIDList(row.ServicesOffered)
		switch {
		case cErr != nil:
			v.decodeErr = fmt.Errorf("countries_supported: %w", cErr)
		case sErr != nil:
			v.decodeErr = fmt.Errorf("services_offered: %w", sErr)
		default:
			v.CountriesSupported = countries
			v.ServicesOffered = offered
		}
		views = append(views, v)
	}
	return views, nil
}

func decodeIDList(raw *string) ([]uint, error) {
	if raw == nil {
		return nil, nil
	}
	var ids models.IDList
	if err := ids.Scan(*raw); err != nil {
		return nil, err
	}
	return []uint(ids), nil
}
