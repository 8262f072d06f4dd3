// Package dbtest opens throwaway SQLite databases with the service schema for
// repository, service and handler tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nurpe/haulops-billing/internal/model"
)

func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(
		&model.Company{},
		&model.Dispatcher{},
		&model.Driver{},
		&model.Unit{},
		&model.JobType{},
		&model.Invoice{},
		&model.Job{},
		&model.InvoiceLine{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database
}
