package handlers

import (
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"p4b.in/bodyshop/models"
)

func newTestEngine(t *testing.T) *WorkflowEngine {
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
	return &WorkflowEngine{db: db}
}

func createTestJob(t *testing.T, we *WorkflowEngine, mutate func(*models.Job)) *models.Job {
	t.Helper()
	job := &models.Job{
		Stage:        models.StageConfirmed,
		CustomerName: "Dana Fields",
		Items:        models.ItemList{},
	}
	job.AppendTimeline(models.TimelineEntry{Stage: models.StageConfirmed, Label: models.CreatedEntryLabel})
	if mutate != nil {
		mutate(job)
	}
	if err := we.db.Create(job).Error; err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func TestAdvanceFromConfirmed(t *testing.T) {
	we := newTestEngine(t)
	job := createTestJob(t, we, nil)

	result, err := we.Advance(job.ID, false)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if result.Job.Stage != models.StagePreparation {
		t.Errorf("stage = %s, want preparation", result.Job.Stage)
	}
	if len(result.Job.Timeline) != 2 {
		t.Fatalf("timeline length = %d, want 2", len(result.Job.Timeline))
	}
	if result.Job.Timeline[1].Label != "📋 Preparation started." {
		t.Errorf("timeline label = %q", result.Job.Timeline[1].Label)
	}
}

func TestAdvanceBlockedByHardRequirements(t *testing.T) {
	we := newTestEngine(t)
	job := createTestJob(t, we, func(j *models.Job) {
		j.Stage = models.StagePreparation
	})

	result, err := we.Advance(job.ID, false)
	if err == nil || result == nil {
		t.Fatal("expected blocked transition")
	}
	if len(result.Missing) != 2 {
		t.Fatalf("missing = %v", result.Missing)
	}
	if result.Missing[0] != "Car not on site" || result.Missing[1] != "Schedule not set" {
		t.Errorf("missing = %v", result.Missing)
	}

	// Confirming does not override hard requirements.
	if _, err := we.Advance(job.ID, true); err == nil {
		t.Error("confirm must not bypass hard requirements")
	}

	var stored models.Job
	we.db.First(&stored, "id = ?", job.ID)
	if stored.Stage != models.StagePreparation {
		t.Errorf("blocked advance changed stage to %s", stored.Stage)
	}
	if len(stored.Timeline) != 1 {
		t.Errorf("blocked advance wrote a timeline entry")
	}
}

func TestAdvanceWarningsNeedConfirmation(t *testing.T) {
	we := newTestEngine(t)
	job := createTestJob(t, we, func(j *models.Job) {
		j.Stage = models.StagePreparation
		j.CarHere = true
		j.StartDate = "2026-09-01"
		j.EndDate = "2026-09-05"
		j.Items = models.ItemList{{Type: "Replace", Desc: "Grille"}}
	})

	result, err := we.Advance(job.ID, false)
	if err == nil {
		t.Fatal("expected confirmation requirement")
	}
	if len(result.Warnings) != 1 || result.Warnings[0] != "Parts not fully ordered (0/1)" {
		t.Errorf("warnings = %v", result.Warnings)
	}

	// Same call with confirm goes through.
	result, err = we.Advance(job.ID, true)
	if err != nil {
		t.Fatalf("confirmed advance: %v", err)
	}
	if result.Job.Stage != models.StageInProgress {
		t.Errorf("stage = %s, want in_progress", result.Job.Stage)
	}
	if !strings.Contains(result.Job.Timeline[1].Label, "Estimated due date is Sep 5.") {
		t.Errorf("timeline label = %q", result.Job.Timeline[1].Label)
	}
}

func TestAdvanceStopsAtDone(t *testing.T) {
	we := newTestEngine(t)
	job := createTestJob(t, we, func(j *models.Job) {
		j.Stage = models.StageDone
	})

	result, err := we.Advance(job.ID, true)
	if err == nil {
		t.Fatal("advancing a done job must fail")
	}
	// The refusal carries a reason the client can show; there are no
	// missing requirements to list.
	if result.Message != "Job is already Done." {
		t.Errorf("message = %q", result.Message)
	}
	if len(result.Missing) != 0 {
		t.Errorf("missing = %v, want none", result.Missing)
	}
}

func TestRevertAppendsAndNeverRemoves(t *testing.T) {
	we := newTestEngine(t)
	job := createTestJob(t, we, func(j *models.Job) {
		j.Stage = models.StageInProgress
	})

	result, err := we.Revert(job.ID)
	if err != nil {
		t.Fatalf("Revert: %v", err)
	}
	if result.Job.Stage != models.StagePreparation {
		t.Errorf("stage = %s, want preparation", result.Job.Stage)
	}
	if len(result.Job.Timeline) != 2 {
		t.Fatalf("timeline length = %d, want 2", len(result.Job.Timeline))
	}
	if result.Job.Timeline[1].Label != "⏪ Reverted to Preparation." {
		t.Errorf("revert label = %q", result.Job.Timeline[1].Label)
	}

	// Revert then advance again: both entries stay.
	result.Job.CarHere = true
	result.Job.StartDate = "2026-09-01"
	result.Job.EndDate = "2026-09-05"
	if err := we.db.Save(result.Job).Error; err != nil {
		t.Fatalf("save: %v", err)
	}
	result, err = we.Advance(job.ID, true)
	if err != nil {
		t.Fatalf("Advance after revert: %v", err)
	}
	if len(result.Job.Timeline) != 3 {
		t.Errorf("timeline length = %d, want 3", len(result.Job.Timeline))
	}
}

func TestRevertStopsAtConfirmed(t *testing.T) {
	we := newTestEngine(t)
	job := createTestJob(t, we, nil)

	if _, err := we.Revert(job.ID); err == nil {
		t.Error("reverting a confirmed job must fail")
	}
}

func TestToggleFlags(t *testing.T) {
	we := newTestEngine(t)
	job := createTestJob(t, we, nil)

	got, err := we.Toggle(job.ID, models.FlagCarHere)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !got.CarHere {
		t.Error("car_here was not flipped")
	}
	if got.Timeline[len(got.Timeline)-1].Label != "🚗 Vehicle arrived on site." {
		t.Errorf("toggle label = %q", got.Timeline[len(got.Timeline)-1].Label)
	}

	got, err = we.Toggle(job.ID, models.FlagCarHere)
	if err != nil {
		t.Fatalf("Toggle back: %v", err)
	}
	if got.CarHere {
		t.Error("car_here was not flipped back")
	}
	if got.Timeline[len(got.Timeline)-1].Label != "🚗 Vehicle marked as not on site." {
		t.Errorf("toggle-off label = %q", got.Timeline[len(got.Timeline)-1].Label)
	}

	if _, err := we.Toggle(job.ID, "car_filed_in"); err == nil {
		t.Error("car_filed_in is not toggleable")
	}
}

func TestMarkCarFiledIn(t *testing.T) {
	we := newTestEngine(t)
	job := createTestJob(t, we, nil)

	got, err := we.MarkCarFiledIn(job.ID)
	if err != nil {
		t.Fatalf("MarkCarFiledIn: %v", err)
	}
	if !got.CarFiledIn || !got.CarHere {
		t.Errorf("flags after filing: filed=%v here=%v", got.CarFiledIn, got.CarHere)
	}
	if got.Timeline[len(got.Timeline)-1].Label != models.CarInEntryLabel {
		t.Errorf("car-in label = %q", got.Timeline[len(got.Timeline)-1].Label)
	}
}
