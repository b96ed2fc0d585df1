package models

import (
	"testing"
	"time"
)

func TestSortJobs(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	jobs := []Job{
		{CustomerName: "done", Stage: StageDone, CreatedAt: base},
		{CustomerName: "in_progress", Stage: StageInProgress, CreatedAt: base},
		{CustomerName: "ready", Stage: StageReady, CreatedAt: base},
		{CustomerName: "confirmed-old", Stage: StageConfirmed, CreatedAt: base},
		{CustomerName: "confirmed-new", Stage: StageConfirmed, CreatedAt: base.AddDate(0, 0, 5)},
		{CustomerName: "preparation", Stage: StagePreparation, CreatedAt: base},
	}

	SortJobs(jobs)

	// Ready sorts ahead of In Progress: pickup columns come before work in
	// flight. Within a column newest comes first.
	want := []string{"confirmed-new", "confirmed-old", "preparation", "ready", "in_progress", "done"}
	for i, name := range want {
		if jobs[i].CustomerName != name {
			t.Errorf("jobs[%d] = %q, want %q", i, jobs[i].CustomerName, name)
		}
	}
}

func TestMatchesSearch(t *testing.T) {
	job := &Job{
		CustomerName:     "Dana Fields",
		VehicleMakeModel: "Honda Accord",
		VehiclePlate:     "AB-PLATE123",
	}

	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"dana", true},
		{"FIELDS", true},
		{"accord", true},
		{"plate123", true},
		{"ab-", true},
		{"toyota", false},
		{"555", false},
	}
	for _, tt := range tests {
		if got := job.MatchesSearch(tt.query); got != tt.want {
			t.Errorf("MatchesSearch(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestFilterJobs(t *testing.T) {
	jobs := []Job{
		{CustomerName: "Dana", Stage: StageConfirmed},
		{CustomerName: "Dana", Stage: StageDone},
		{CustomerName: "Lee", Stage: StageConfirmed},
	}

	got := FilterJobs(jobs, "dana", StageConfirmed)
	if len(got) != 1 {
		t.Fatalf("got %d jobs, want 1", len(got))
	}
	if got[0].CustomerName != "Dana" || got[0].Stage != StageConfirmed {
		t.Errorf("wrong job survived the filter: %+v", got[0])
	}

	if got := FilterJobs(jobs, "", ""); len(got) != 3 {
		t.Errorf("empty filter dropped jobs: got %d", len(got))
	}
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	thisMonth := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)

	jobs := []Job{
		{Stage: StageConfirmed, CreatedAt: thisMonth},
		{Stage: StageDone, CreatedAt: thisMonth},
		{Stage: StageDone, CreatedAt: lastMonth},
		{Stage: StageInProgress, CreatedAt: lastMonth},
	}

	stats := ComputeStats(jobs, now)
	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
	if stats.Active != 2 {
		t.Errorf("Active = %d, want 2", stats.Active)
	}
	if stats.ByStage[StageDone] != 2 {
		t.Errorf("ByStage[done] = %d, want 2", stats.ByStage[StageDone])
	}
	if stats.CreatedThisMonth != 2 {
		t.Errorf("CreatedThisMonth = %d, want 2", stats.CreatedThisMonth)
	}
	// Only jobs opened this month count as finished this month.
	if stats.DoneThisMonth != 1 {
		t.Errorf("DoneThisMonth = %d, want 1", stats.DoneThisMonth)
	}
}
