package storage

import (
	"github.com/lcalzada-xor/wifitrack/internal/core/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// SQLiteStore implements ports.ConfigStore using GORM and SQLite. It keeps a
// durable copy of the saved-network and subscription sets so the tracker can
// prime its counts across restarts.
type SQLiteStore struct {
	db *gorm.DB
}

// ConfigModel is the GORM model for saved standard configurations.
type ConfigModel struct {
	Key       string `gorm:"primaryKey"`
	NetworkID int
	SSID      string
	Security  string
	Hidden    bool
	Proxy     string
}

// PasspointConfigModel is the GORM model for saved Passpoint subscriptions.
type PasspointConfigModel struct {
	FQDN         string `gorm:"primaryKey"`
	FriendlyName string
}

// NewSQLiteStore initializes the database and migrates schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&ConfigModel{}, &PasspointConfigModel{}); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// SaveStandardConfigs replaces the stored standard-config set in one
// transaction.
func (s *SQLiteStore) SaveStandardConfigs(configs []domain.Config) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&ConfigModel{}).Error; err != nil {
			return err
		}
		if len(configs) == 0 {
			return nil
		}
		models := make([]ConfigModel, 0, len(configs))
		for _, cfg := range configs {
			models = append(models, ConfigModel{
				Key:       domain.ConfigKey(cfg),
				NetworkID: cfg.NetworkID,
				SSID:      cfg.SSID,
				Security:  string(cfg.Security),
				Hidden:    cfg.Hidden,
				Proxy:     string(cfg.Proxy),
			})
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&models).Error
	})
}

// SavePasspointConfigs replaces the stored subscription set in one
// transaction.
func (s *SQLiteStore) SavePasspointConfigs(configs []domain.PasspointConfig) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&PasspointConfigModel{}).Error; err != nil {
			return err
		}
		if len(configs) == 0 {
			return nil
		}
		models := make([]PasspointConfigModel, 0, len(configs))
		for _, cfg := range configs {
			models = append(models, PasspointConfigModel{
				FQDN:         cfg.FQDN,
				FriendlyName: cfg.FriendlyName,
			})
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&models).Error
	})
}

// LoadStandardConfigs reads back the stored standard-config set.
func (s *SQLiteStore) LoadStandardConfigs() ([]domain.Config, error) {
	var models []ConfigModel
	if err := s.db.Find(&models).Error; err != nil {
		return nil, err
	}
	configs := make([]domain.Config, 0, len(models))
	for _, m := range models {
		configs = append(configs, domain.Config{
			NetworkID: m.NetworkID,
			SSID:      m.SSID,
			Security:  domain.SecurityType(m.Security),
			Hidden:    m.Hidden,
			Proxy:     domain.ProxySettings(m.Proxy),
		})
	}
	return configs, nil
}

// LoadPasspointConfigs reads back the stored subscription set.
func (s *SQLiteStore) LoadPasspointConfigs() ([]domain.PasspointConfig, error) {
	var models []PasspointConfigModel
	if err := s.db.Find(&models).Error; err != nil {
		return nil, err
	}
	configs := make([]domain.PasspointConfig, 0, len(models))
	for _, m := range models {
		configs = append(configs, domain.PasspointConfig{
			FQDN:         m.FQDN,
			FriendlyName: m.FriendlyName,
		})
	}
	return configs, nil
}
