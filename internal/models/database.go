package models

import (
	"fmt"

	"github.com/matchwise/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Tunable keys read by the matching engine.
const (
	ConfigServicesOverlapMultiplier = "services_overlap_multiplier"
	ConfigSLAWeightBase             = "sla_weight_base"
	ConfigMaxMatchesPerProject      = "max_matches_per_project"
)

func InitDB(cfg *config.DatabaseConfig) error {
	db, err := Open(cfg, logger.Warn)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open connects to the configured database without touching the package global.
func Open(cfg *config.DatabaseConfig, level logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(level),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

func AutoMigrate() error {
	return Migrate(DB)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Client{},
		&Vendor{},
		&Project{},
		&Match{},
		&Session{},
		&SystemConfig{},
		&SchedulerLock{},
		&SystemLog{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// DefaultSystemConfigs are the engine tunables seeded on first start.
func DefaultSystemConfigs() []SystemConfig {
	return []SystemConfig{
		{Key: ConfigServicesOverlapMultiplier, Value: 2, Description: "Points per service shared by project and vendor"},
		{Key: ConfigSLAWeightBase, Value: 20, Description: "Numerator of the SLA weight term base / (sla_hours + 1)"},
		{Key: ConfigMaxMatchesPerProject, Value: 10000, Description: "Maximum matches returned by one rebuild"},
	}
}

// SeedDefaultData creates default data if not exists
func SeedDefaultData() error {
	return Seed(DB)
}

func Seed(db *gorm.DB) error {
	for _, cfg := range DefaultSystemConfigs() {
		var count int64
		db.Model(&SystemConfig{}).Where(&SystemConfig{Key: cfg.Key}).Count(&count)
		if count == 0 {
			if err := db.Create(&cfg).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
