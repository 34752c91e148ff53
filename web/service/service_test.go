package service

import (
	"os"
	"testing"

	"github.com/evergreenbank/panel/database"
	"github.com/evergreenbank/panel/logger"

	"github.com/op/go-logging"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "bankpanel-logs")
	if err == nil {
		os.Setenv("BANKPANEL_LOG_FOLDER", tmp)
	}
	logger.InitLogger(logging.DEBUG)
	code := m.Run()
	if tmp != "" {
		os.RemoveAll(tmp)
	}
	os.Exit(code)
}

// setupTestDB opens a fresh seeded store in a per-test temp dir.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := t.TempDir() + "/test.db"
	if err := database.InitDB(dbPath); err != nil {
		t.Fatalf("init test db: %v", err)
	}
	t.Cleanup(func() {
		database.CloseDB()
	})
	return database.GetDB()
}
