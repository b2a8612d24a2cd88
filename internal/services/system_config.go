package services

import (
	"context"
	"errors"

	"github.com/matchwise/backend/internal/models"
	"github.com/matchwise/backend/pkg/logger"
	"gorm.io/gorm"
)

// ConfigProvider exposes numeric tunables. GetFloat never fails: any missing
// key or read error yields the caller-supplied default.
type ConfigProvider interface {
	GetFloat(ctx context.Context, key string, defaultValue float64) float64
}

type SystemConfigService struct {
	db *gorm.DB
}

func NewSystemConfigService(db *gorm.DB) *SystemConfigService {
	return &SystemConfigService{db: db}
}

var ErrConfigNotFound = errors.New("config not found")

func (s *SystemConfigService) Get(ctx context.Context, key string) (*models.SystemConfig, error) {
	var cfg models.SystemConfig
	if err := s.db.WithContext(ctx).Where(&models.SystemConfig{Key: key}).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

func (s *SystemConfigService) GetFloat(ctx context.Context, key string, defaultValue float64) float64 {
	cfg, err := s.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrConfigNotFound) {
			logger.Warn().Err(err).Str("key", key).Msg("[SystemConfig] read failed, using default")
		}
		return defaultValue
	}
	return cfg.Value
}

func (s *SystemConfigService) List(ctx context.Context) ([]models.SystemConfig, error) {
	var configs []models.SystemConfig
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

type UpdateSystemConfigRequest struct {
	Value       *float64 `json:"value" binding:"required"`
	Description *string  `json:"description"`
}

// Set creates or updates the tunable identified by key.
func (s *SystemConfigService) Set(ctx context.Context, key string, req *UpdateSystemConfigRequest) (*models.SystemConfig, error) {
	cfg, err := s.Get(ctx, key)
	if errors.Is(err, ErrConfigNotFound) {
		cfg = &models.SystemConfig{Key: key, Value: *req.Value}
		if req.Description != nil {
			cfg.Description = *req.Description
		}
		if err := s.db.WithContext(ctx).Create(cfg).Error; err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"value": *req.Value}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if err := s.db.WithContext(ctx).Model(cfg).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, key)
}
