package handlers

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"p4b.in/bodyshop/models"
)

func newTestNotificationService(t *testing.T) *NotificationService {
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
	return &NotificationService{db: db, dismissed: make(map[string]bool)}
}

func TestDismissHidesOnlyThatAlert(t *testing.T) {
	s := newTestNotificationService(t)
	now := time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC)

	first := &models.Job{Stage: models.StageReady, CustomerName: "Dana Fields", Items: models.ItemList{}}
	second := &models.Job{Stage: models.StageReady, CustomerName: "Lee Park", Items: models.ItemList{}}
	for _, job := range []*models.Job{first, second} {
		if err := s.db.Create(job).Error; err != nil {
			t.Fatalf("create job: %v", err)
		}
	}

	alerts, err := s.Current(now)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2: %+v", len(alerts), alerts)
	}

	s.Dismiss(alerts[0].ID)

	remaining, err := s.Current(now)
	if err != nil {
		t.Fatalf("Current after dismiss: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("got %d alerts after dismiss, want 1: %+v", len(remaining), remaining)
	}
	if remaining[0].ID != alerts[1].ID {
		t.Errorf("remaining alert = %q, want %q", remaining[0].ID, alerts[1].ID)
	}
}

func TestDismissSurvivesRecompute(t *testing.T) {
	s := newTestNotificationService(t)
	now := time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC)

	job := &models.Job{Stage: models.StageReady, CustomerName: "Dana Fields", Items: models.ItemList{}}
	if err := s.db.Create(job).Error; err != nil {
		t.Fatalf("create job: %v", err)
	}

	s.Dismiss(job.ID.String() + "-ready-pickup")

	// The alert stays hidden on every recompute, not just the next one.
	for i := 0; i < 3; i++ {
		alerts, err := s.Current(now)
		if err != nil {
			t.Fatalf("Current: %v", err)
		}
		if len(alerts) != 0 {
			t.Fatalf("dismissed alert came back on call %d: %+v", i+1, alerts)
		}
	}
}

func TestDismissNeverTouchesTheJob(t *testing.T) {
	s := newTestNotificationService(t)
	now := time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC)

	job := &models.Job{Stage: models.StageReady, CustomerName: "Dana Fields", Items: models.ItemList{}}
	job.AppendTimeline(models.TimelineEntry{Stage: models.StageConfirmed, Label: models.CreatedEntryLabel})
	if err := s.db.Create(job).Error; err != nil {
		t.Fatalf("create job: %v", err)
	}

	alerts, err := s.Current(now)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	s.Dismiss(alerts[0].ID)
	if _, err := s.Current(now); err != nil {
		t.Fatalf("Current after dismiss: %v", err)
	}

	var stored models.Job
	if err := s.db.First(&stored, "id = ?", job.ID).Error; err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if stored.Stage != models.StageReady {
		t.Errorf("stage changed to %s", stored.Stage)
	}
	if len(stored.Timeline) != 1 {
		t.Errorf("timeline length = %d, want 1", len(stored.Timeline))
	}
	if stored.CustomerNotified {
		t.Error("dismissal flipped a job flag")
	}
}
