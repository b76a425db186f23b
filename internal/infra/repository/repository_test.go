package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/opencivic/civicpulse"
	"github.com/opencivic/civicpulse/internal/domain"
	"github.com/opencivic/civicpulse/internal/infra/database/models"
)

var dbSeq atomic.Int64

// setupDB opens a fresh in-memory database per test. A single
// connection keeps sqlite's locking out of the way; the postgres
// semantics under test live in the SQL, not the driver.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:repotest%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Report{}, &models.Vote{}, &models.Administrator{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

func seedReport(t *testing.T, db *gorm.DB, id string) domain.Report {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	report := domain.Report{
		ID:            id,
		Title:         "Collapsed drainage near market",
		Description:   "Flooding every time it rains",
		Category:      civicpulse.CategoryInfrastructure,
		Status:        civicpulse.StatusReported,
		LocationName:  "Central Market",
		IntegrityHash: civicpulse.ReportStamp("Collapsed drainage near market", now),
		CreatedAt:     now,
	}
	if err := NewReportRepository(db).Create(context.Background(), report); err != nil {
		t.Fatalf("failed to seed report: %v", err)
	}
	return report
}
