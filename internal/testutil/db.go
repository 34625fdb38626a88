package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/sankha1545/Bhakasamilani/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewTestDB 每个测试独立的内存 SQLite 库，已完成 AutoMigrate
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.Options())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}
