// Package database manages the sqlite store shared by the panel's
// services: connection lifecycle, migration, and default seeding.
package database

import (
	"io/fs"
	"log"
	"os"
	"path"

	"github.com/evergreenbank/panel/config"
	"github.com/evergreenbank/panel/database/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// defaultSettings seeds a fresh store. The setup wizard overwrites the
// branding values; setup_complete stays "false" until the wizard runs.
var defaultSettings = map[string]string{
	"setup_complete":  "false",
	"bank_name":       "Evergreen Bank",
	"support_email":   "support@evergreenbank.com",
	"address":         "123 Financial Street, Banking City, BC 12345",
	"phone":           "(555) 123-4567",
	"session_timeout": "15",
}

func initModels() error {
	models := []any{
		&model.User{},
		&model.Session{},
		&model.Setting{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			log.Printf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

func initDefaultSettings() error {
	var count int64
	err := db.Model(model.Setting{}).Where("key = ?", "setup_complete").Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	settings := make([]model.Setting, 0, len(defaultSettings))
	for key, value := range defaultSettings {
		settings = append(settings, model.Setting{Key: key, Value: value})
	}
	return db.Create(&settings).Error
}

func InitDB(dbPath string) error {
	dir := path.Dir(dbPath)
	err := os.MkdirAll(dir, fs.ModePerm)
	if err != nil {
		return err
	}

	var gormLogger logger.Interface

	if config.IsDebug() {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}

	c := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}

	dsn := dbPath + "?cache=shared&_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err = gorm.Open(sqlite.Open(dsn), c)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	_, err = sqlDB.Exec("PRAGMA foreign_keys = ON;")
	if err != nil {
		return err
	}

	if err := initModels(); err != nil {
		return err
	}
	return initDefaultSettings()
}

func CloseDB() error {
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

func GetDB() *gorm.DB {
	return db
}

func IsNotFound(err error) bool {
	return err == gorm.ErrRecordNotFound
}
