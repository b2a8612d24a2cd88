package services

import (
	"context"
	"errors"
	"time"

	"github.com/matchwise/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const slaScanBatchSize = 500

// SLARecord is one match joined with the SLA commitment of its vendor.
type SLARecord struct {
	MatchID          uint
	ProjectID        uint
	VendorID         uint
	NotifiedAt       *time.Time
	IsSLAExpired     bool
	ResponseSLAHours float64
}

// MatchStore owns persisted matches keyed by (project, vendor).
type MatchStore interface {
	// FindByPair returns nil, nil when no match exists for the pair.
	FindByPair(ctx context.Context, projectID, vendorID uint) (*models.Match, error)
	// Upsert inserts m if the pair is new, otherwise rewrites only its score.
	// created reports whether a row was inserted.
	Upsert(ctx context.Context, m *models.Match) (stored *models.Match, created bool, err error)
	CountByProject(ctx context.Context, projectID uint) (int64, error)
	// ScanWithVendorSLA calls fn for every match in id order. An error from fn aborts the scan.
	ScanWithVendorSLA(ctx context.Context, fn func(SLARecord) error) error
	MarkSLAExpired(ctx context.Context, matchID uint) error
}

type GormMatchStore struct {
	db        *gorm.DB
	batchSize int
}

func NewGormMatchStore(db *gorm.DB) *GormMatchStore {
	return &GormMatchStore{db: db, batchSize: slaScanBatchSize}
}

var pairColumns = []clause.Column{{Name: "project_id"}, {Name: "vendor_id"}}

func (s *GormMatchStore) FindByPair(ctx context.Context, projectID, vendorID uint) (*models.Match, error) {
	var m models.Match
	err := s.db.WithContext(ctx).
		Where("project_id = ? AND vendor_id = ?", projectID, vendorID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Upsert relies on the (project_id, vendor_id) unique index: the insert is a
// no-op on conflict, in which case the existing row is rescored. Concurrent
// writers of the same pair never produce a second row.
func (s *GormMatchStore) Upsert(ctx context.Context, m *models.Match) (*models.Match, bool, error) {
	var stored models.Match
	created := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.Match{
			ProjectID:    m.ProjectID,
			VendorID:     m.VendorID,
			CountryID:    m.CountryID,
			Score:        m.Score,
			NotifiedAt:   m.NotifiedAt,
			IsSLAExpired: m.IsSLAExpired,
		}
		res := tx.Clauses(clause.OnConflict{Columns: pairColumns, DoNothing: true}).Create(&row)
		if res.Error != nil {
			return res.Error
		}
		created = res.RowsAffected == 1

		if !created {
			err := tx.Model(&models.Match{}).
				Where("project_id = ? AND vendor_id = ?", m.ProjectID, m.VendorID).
				Updates(map[string]interface{}{
					"score":      m.Score,
					"updated_at": time.Now(),
				}).Error
			if err != nil {
				return err
			}
		}

		return tx.Where("project_id = ? AND vendor_id = ?", m.ProjectID, m.VendorID).First(&stored).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &stored, created, nil
}

func (s *GormMatchStore) CountByProject(ctx context.Context, projectID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("project_id = ?", projectID).
		Count(&count).Error
	return count, err
}

// ScanWithVendorSLA pages through matches by id so no cursor stays open while
// fn writes back to the same table.
func (s *GormMatchStore) ScanWithVendorSLA(ctx context.Context, fn func(SLARecord) error) error {
	var lastID uint
	for {
		var batch []SLARecord
		err := s.db.WithContext(ctx).
			Model(&models.Match{}).
			Select("matches.id AS match_id, matches.project_id, matches.vendor_id, matches.notified_at, matches.is_sla_expired, vendors.response_sla_hours").
			Joins("JOIN vendors ON vendors.id = matches.vendor_id").
			Where("matches.id > ?", lastID).
			Order("matches.id ASC").
			Limit(s.batchSize).
			Scan(&batch).Error
		if err != nil {
			return err
		}

		for _, rec := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(rec); err != nil {
				return err
			}
			lastID = rec.MatchID
		}

		if len(batch) < s.batchSize {
			return nil
		}
	}
}

// MarkSLAExpired sets the one-way expiry flag. There is no call that clears it.
func (s *GormMatchStore) MarkSLAExpired(ctx context.Context, matchID uint) error {
	res := s.db.WithContext(ctx).
		Model(&models.Match{}).
		Where("id = ?", matchID).
		Updates(map[string]interface{}{
			"is_sla_expired": true,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMatchNotFound
	}
	return nil
}

type MatchListRequest struct {
	Page      int  `form:"page" binding:"omitempty,min=1"`
	PageSize  int  `form:"page_size" binding:"omitempty,min=1,max=100"`
	ProjectID uint `form:"project_id"`
}

type MatchListResponse struct {
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Items    []models.Match `json:"items"`
}

// List returns paginated matches, best score first.
func (s *GormMatchStore) List(ctx context.Context, req *MatchListRequest) (*MatchListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	query := s.db.WithContext(ctx).Model(&models.Match{})
	if req.ProjectID != 0 {
		query = query.Where("project_id = ?", req.ProjectID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []models.Match
	offset := (req.Page - 1) * req.PageSize
	err := query.Preload("Vendor").
		Order("score DESC").Order("id ASC").
		Offset(offset).Limit(req.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &MatchListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// ListByProject returns every match of a project ordered by score descending.
func (s *GormMatchStore) ListByProject(ctx context.Context, projectID uint) ([]models.Match, error) {
	var items []models.Match
	err := s.db.WithContext(ctx).
		Preload("Vendor").
		Where("project_id = ?", projectID).
		Order("score DESC").Order("id ASC").
		Find(&items).Error
	return items, err
}

func (s *GormMatchStore) GetByID(ctx context.Context, id uint) (*models.Match, error) {
	var m models.Match
	err := s.db.WithContext(ctx).Preload("Vendor").First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Delete removes a match. This is an administrative operation; the engine never deletes.
func (s *GormMatchStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Match{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMatchNotFound
	}
	return nil
}
