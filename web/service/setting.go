package service

import (
	"strconv"

	"github.com/evergreenbank/panel/database"
	"github.com/evergreenbank/panel/database/model"
	"github.com/evergreenbank/panel/logger"
	"github.com/evergreenbank/panel/util/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// defaultSessionTimeout is the fallback, in minutes, when the
	// session_timeout setting is missing or unreadable.
	defaultSessionTimeout = 15

	defaultBankName = "Evergreen Bank"
)

// defaultValueMap backs reads of keys that have no stored row yet.
var defaultValueMap = map[string]string{
	"setup_complete":  "false",
	"bank_name":       defaultBankName,
	"support_email":   "support@evergreenbank.com",
	"address":         "123 Financial Street, Banking City, BC 12345",
	"phone":           "(555) 123-4567",
	"session_timeout": strconv.Itoa(defaultSessionTimeout),
}

// SettingService is the key/value configuration store. The setup gate
// reads setup_complete through it and the session service reads
// session_timeout; the settings API exposes the rest.
type SettingService struct {
	db *gorm.DB
}

func NewSettingService(db *gorm.DB) *SettingService {
	return &SettingService{db: db}
}

func (s *SettingService) getSetting(key string) (*model.Setting, error) {
	setting := &model.Setting{}
	err := s.db.Model(model.Setting{}).Where("key = ?", key).First(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}

func (s *SettingService) saveSetting(key string, value string) error {
	return upsertSetting(s.db, key, value)
}

// upsertSetting writes one key on the given handle so callers inside a
// transaction can pass their tx.
func upsertSetting(db *gorm.DB, key string, value string) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model.Setting{Key: key, Value: value}).Error
}

func (s *SettingService) getString(key string) (string, error) {
	setting, err := s.getSetting(key)
	if database.IsNotFound(err) {
		value, ok := defaultValueMap[key]
		if !ok {
			return "", common.NewErrorf("no value or default for key %q", key)
		}
		return value, nil
	} else if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *SettingService) setString(key string, value string) error {
	return s.saveSetting(key, value)
}

// GetSetting returns one stored setting row. Missing keys surface as a
// not-found error; the typed getters below are the fallback-aware path.
func (s *SettingService) GetSetting(key string) (*model.Setting, error) {
	return s.getSetting(key)
}

// SetSetting upserts one key.
func (s *SettingService) SetSetting(key string, value string) error {
	return s.setString(key, value)
}

// GetAllSettings returns every stored setting as a key/value map.
func (s *SettingService) GetAllSettings() (map[string]string, error) {
	settings := make([]*model.Setting, 0)
	err := s.db.Model(model.Setting{}).Find(&settings).Error
	if err != nil {
		return nil, err
	}
	all := make(map[string]string, len(settings))
	for _, setting := range settings {
		all[setting.Key] = setting.Value
	}
	return all, nil
}

// UpdateSettings applies a batch of key/value writes in one transaction
// so a partial failure never leaves a mix of old and new values.
func (s *SettingService) UpdateSettings(settings map[string]string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range settings {
			if err := upsertSetting(tx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetSessionTimeout returns the session timeout in minutes. Resolution
// is best-effort: missing key, non-numeric value, or a store error all
// degrade to the default rather than failing the request.
func (s *SettingService) GetSessionTimeout() int {
	str, err := s.getString("session_timeout")
	if err != nil {
		logger.Warning("get session timeout:", err)
		return defaultSessionTimeout
	}
	minutes, err := strconv.Atoi(str)
	if err != nil || minutes <= 0 {
		logger.Warningf("invalid session_timeout value %q, using default", str)
		return defaultSessionTimeout
	}
	return minutes
}

func (s *SettingService) SetSessionTimeout(minutes int) error {
	return s.setString("session_timeout", strconv.Itoa(minutes))
}

// GetBankName is used for response metadata only, never for gating.
func (s *SettingService) GetBankName() string {
	name, err := s.getString("bank_name")
	if err != nil || name == "" {
		return defaultBankName
	}
	return name
}

// GetSetupComplete reports whether the stored flag is literally "true".
// Any other value, a missing key, or a read error reads as pending; the
// bootstrap path deliberately fails open so a broken store still allows
// setup diagnosis.
func (s *SettingService) GetSetupComplete() bool {
	setting, err := s.getSetting("setup_complete")
	if database.IsNotFound(err) {
		return false
	} else if err != nil {
		logger.Warning("check setup status:", err)
		return false
	}
	return setting.Value == "true"
}
