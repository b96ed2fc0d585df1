package models

import (
	"fmt"
	"sort"
	"time"
)

// AlertType identifies one of the dashboard notification rules.
type AlertType string

const (
	AlertArrangeDropoff AlertType = "arrange_dropoff"
	AlertDueTomorrow    AlertType = "due_tomorrow"
	AlertReadyStart     AlertType = "ready_start"
	AlertReadyPickup    AlertType = "ready_pickup"
)

// Alert is one dashboard notification. Its ID is stable across recomputes
// ({jobID}-{rule}) so that a session-local dismissal keeps suppressing it.
type Alert struct {
	ID       string    `json:"id"`
	JobID    string    `json:"job_id"`
	Type     AlertType `json:"type"`
	Icon     string    `json:"icon"`
	Color    string    `json:"color"`
	Message  string    `json:"message"`
	Priority int       `json:"priority"`
}

// BuildAlerts evaluates the four notification rules against every non-Done
// job and returns the matches sorted ascending by priority (0 is most
// urgent); ties keep job order. Dismissals are filtered by the caller, the
// rules themselves are stateless.
func BuildAlerts(jobs []Job, now time.Time) []Alert {
	var alerts []Alert

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)

	for i := range jobs {
		job := &jobs[i]
		if job.Stage == StageDone {
			continue
		}

		allPartsReady := job.AllPartsReady()

		// 1. Parts are squared away but no drop-off has been scheduled.
		if job.StartDate == "" && allPartsReady && job.Stage == StagePreparation {
			alerts = append(alerts, Alert{
				ID:       fmt.Sprintf("%s-arrange-dropoff", job.ID),
				JobID:    job.ID.String(),
				Type:     AlertArrangeDropoff,
				Icon:     "Calendar",
				Color:    "orange",
				Message:  "Please arrange drop off with customer.",
				Priority: 1,
			})
		}

		// 2. Due date is tomorrow. Local calendar-date comparison, not a
		// timestamp diff.
		if job.EndDate != "" && job.Stage == StageInProgress {
			if due, err := time.ParseInLocation("2006-01-02", job.EndDate, now.Location()); err == nil {
				if due.Equal(tomorrow) {
					alerts = append(alerts, Alert{
						ID:       fmt.Sprintf("%s-due-tomorrow", job.ID),
						JobID:    job.ID.String(),
						Type:     AlertDueTomorrow,
						Icon:     "AlertTriangle",
						Color:    "red",
						Message:  "Due date is tomorrow!",
						Priority: 0,
					})
				}
			}
		}

		// 3. Car is on site and parts have arrived: work can start.
		if job.Stage == StagePreparation && job.CarHere && allPartsReady {
			alerts = append(alerts, Alert{
				ID:       fmt.Sprintf("%s-ready-start", job.ID),
				JobID:    job.ID.String(),
				Type:     AlertReadyStart,
				Icon:     "Wrench",
				Color:    "green",
				Message:  "Ready to start work.",
				Priority: 2,
			})
		}

		// 4. Repair finished, waiting on the customer.
		if job.Stage == StageReady {
			alerts = append(alerts, Alert{
				ID:       fmt.Sprintf("%s-ready-pickup", job.ID),
				JobID:    job.ID.String(),
				Type:     AlertReadyPickup,
				Icon:     "CheckCircle2",
				Color:    "teal",
				Message:  "Ready for customer pickup.",
				Priority: 3,
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Priority < alerts[j].Priority
	})
	return alerts
}
