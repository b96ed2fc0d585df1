package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"p4b.in/bodyshop/config"
	"p4b.in/bodyshop/models"
)

func setExportTestDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Job{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	prev := config.DB
	config.DB = db
	t.Cleanup(func() { config.DB = prev })
}

func TestExportRejectsUnknownStageFilter(t *testing.T) {
	setExportTestDB(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/jobs/export/csv?stage=finished", nil)
	ExportJobsToCSV(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/v1/jobs/export/excel?stage=finished", nil)
	ExportJobsToExcel(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("excel status = %d, want 400", rec.Code)
	}
}

func TestExportCSVHonorsStageFilter(t *testing.T) {
	setExportTestDB(t)

	ready := &models.Job{Stage: models.StageReady, CustomerName: "Dana Fields", Items: models.ItemList{}}
	confirmed := &models.Job{Stage: models.StageConfirmed, CustomerName: "Lee Park", Items: models.ItemList{}}
	if err := config.DB.Create(ready).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := config.DB.Create(confirmed).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/jobs/export/csv?stage=ready", nil)
	ExportJobsToCSV(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Dana Fields") {
		t.Error("filtered export is missing the matching job")
	}
	if strings.Contains(body, "Lee Park") {
		t.Error("filtered export contains a job from another stage")
	}
}
