package models

import (
	"sort"
	"strings"
	"time"
)

// listRank orders the board columns for listing. Ready intentionally sorts
// ahead of In Progress even though the workflow goes the other way round,
// cars waiting for pickup need eyes before cars already on the lift.
var listRank = map[Stage]int{
	StageConfirmed:   1,
	StagePreparation: 2,
	StageReady:       3,
	StageInProgress:  4,
	StageDone:        5,
}

func stageListRank(s Stage) int {
	if r, ok := listRank[s]; ok {
		return r
	}
	return 99
}

// SortJobs orders jobs by board column, newest first within a column.
// The sort is in place.
func SortJobs(jobs []Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		ri, rj := stageListRank(jobs[i].Stage), stageListRank(jobs[j].Stage)
		if ri != rj {
			return ri < rj
		}
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
}

// MatchesSearch reports whether the job matches a free-text query.
// Matching is a case-insensitive substring test over customer name,
// vehicle make/model and plate.
func (j *Job) MatchesSearch(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(j.CustomerName), q) ||
		strings.Contains(strings.ToLower(j.VehicleMakeModel), q) ||
		strings.Contains(strings.ToLower(j.VehiclePlate), q)
}

// FilterJobs applies the free-text search and the optional exact stage filter.
func FilterJobs(jobs []Job, query string, stage Stage) []Job {
	out := make([]Job, 0, len(jobs))
	for i := range jobs {
		if stage != "" && jobs[i].Stage != stage {
			continue
		}
		if !jobs[i].MatchesSearch(query) {
			continue
		}
		out = append(out, jobs[i])
	}
	return out
}

// Stats is the dashboard summary block.
type Stats struct {
	Total            int           `json:"total"`
	ByStage          map[Stage]int `json:"by_stage"`
	Active           int           `json:"active"`
	CreatedThisMonth int           `json:"created_this_month"`
	DoneThisMonth    int           `json:"done_this_month"`
}

// ComputeStats derives the dashboard counters from the full job list.
// "This month" means the calendar month containing now, in now's location.
func ComputeStats(jobs []Job, now time.Time) Stats {
	stats := Stats{ByStage: make(map[Stage]int)}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)

	for i := range jobs {
		job := &jobs[i]
		stats.Total++
		stats.ByStage[job.Stage]++
		if job.Stage != StageDone {
			stats.Active++
		}
		if !job.CreatedAt.Before(monthStart) && job.CreatedAt.Before(nextMonth) {
			stats.CreatedThisMonth++
			if job.Stage == StageDone {
				stats.DoneThisMonth++
			}
		}
	}
	return stats
}
