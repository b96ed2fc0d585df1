package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBuildAlerts(t *testing.T) {
	now := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)

	dueTomorrow := Job{
		ID:      uuid.New(),
		Stage:   StageInProgress,
		EndDate: "2026-09-01",
	}
	needsDropoff := Job{
		ID:    uuid.New(),
		Stage: StagePreparation,
		Items: ItemList{{Type: "Replace", Desc: "Grille", Ordered: true, Arrived: true}},
	}
	// Has a start date, so it fires ready_start without also asking for a
	// dropoff arrangement.
	readyToStart := Job{
		ID:        uuid.New(),
		Stage:     StagePreparation,
		CarHere:   true,
		StartDate: "2026-09-02",
		Items:     ItemList{},
	}
	readyPickup := Job{
		ID:    uuid.New(),
		Stage: StageReady,
	}
	doneJob := Job{
		ID:      uuid.New(),
		Stage:   StageDone,
		EndDate: "2026-09-01",
	}

	alerts := BuildAlerts([]Job{readyPickup, dueTomorrow, needsDropoff, readyToStart, doneJob}, now)

	if len(alerts) != 4 {
		t.Fatalf("got %d alerts, want 4: %+v", len(alerts), alerts)
	}

	// Priority order: due_tomorrow (0), arrange_dropoff (1), ready_start (2), ready_pickup (3).
	wantTypes := []AlertType{AlertDueTomorrow, AlertArrangeDropoff, AlertReadyStart, AlertReadyPickup}
	for i, want := range wantTypes {
		if alerts[i].Type != want {
			t.Errorf("alerts[%d].Type = %s, want %s", i, alerts[i].Type, want)
		}
	}

	if alerts[0].ID != dueTomorrow.ID.String()+"-due-tomorrow" {
		t.Errorf("due tomorrow alert ID = %q", alerts[0].ID)
	}
	if alerts[0].Message != "Due date is tomorrow!" {
		t.Errorf("due tomorrow message = %q", alerts[0].Message)
	}
	if alerts[1].Message != "Please arrange drop off with customer." {
		t.Errorf("arrange dropoff message = %q", alerts[1].Message)
	}
}

func TestBuildAlertsSkipsDoneAndNonMatching(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

	jobs := []Job{
		{ID: uuid.New(), Stage: StageDone},
		// Due date is today, not tomorrow.
		{ID: uuid.New(), Stage: StageInProgress, EndDate: "2026-08-31"},
		// Preparation but parts not arrived: neither dropoff nor ready_start.
		{ID: uuid.New(), Stage: StagePreparation, CarHere: true,
			Items: ItemList{{Type: "Replace", Desc: "Grille", Ordered: true}}},
		// Confirmed stage fires nothing.
		{ID: uuid.New(), Stage: StageConfirmed},
	}

	if alerts := BuildAlerts(jobs, now); len(alerts) != 0 {
		t.Errorf("got %d alerts, want 0: %+v", len(alerts), alerts)
	}
}

func TestBuildAlertsDueDateIsLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 11 PM local on Aug 31; tomorrow locally is Sep 1.
	now := time.Date(2026, 8, 31, 23, 0, 0, 0, loc)

	job := Job{ID: uuid.New(), Stage: StageInProgress, EndDate: "2026-09-01"}
	alerts := BuildAlerts([]Job{job}, now)
	if len(alerts) != 1 || alerts[0].Type != AlertDueTomorrow {
		t.Fatalf("expected due_tomorrow alert, got %+v", alerts)
	}
}

func TestBuildAlertsScheduledPreparationJobGetsNoDropoff(t *testing.T) {
	now := time.Now()
	job := Job{
		ID:        uuid.New(),
		Stage:     StagePreparation,
		StartDate: "2026-09-03",
		Items:     ItemList{},
	}
	alerts := BuildAlerts([]Job{job}, now)
	for _, a := range alerts {
		if a.Type == AlertArrangeDropoff {
			t.Errorf("scheduled job should not ask for dropoff arrangement")
		}
	}
}
