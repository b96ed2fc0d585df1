package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"p4b.in/bodyshop/config"
	"p4b.in/bodyshop/models"
)

// BuildCalendarEvent turns a job into a single-day all-day event on its
// start date. With no start date it lands on today.
func BuildCalendarEvent(job *models.Job, now time.Time) *calendar.Event {
	title := strings.TrimSpace(job.VehicleYear + " " + job.VehicleMakeModel)
	if title == "" {
		title = "Unknown Vehicle"
	}

	plate := job.VehiclePlate
	if plate == "" {
		plate = "N/A"
	}
	customer := job.CustomerName
	if customer == "" {
		customer = "Unknown Customer"
	}
	phone := job.CustomerPhone
	if phone == "" {
		phone = "N/A"
	}
	var itemLines []string
	for _, it := range job.Items {
		itemLines = append(itemLines, it.Desc)
	}
	description := fmt.Sprintf("%s\n%s | %s\n------\n%s",
		plate, customer, phone, strings.Join(itemLines, "\n"))

	startDate := job.StartDate
	if startDate == "" {
		startDate = now.Format("2006-01-02")
	}
	// All-day end dates are exclusive, so next day means a one-day event.
	endDate := startDate
	if t, err := time.Parse("2006-01-02", startDate); err == nil {
		endDate = t.AddDate(0, 0, 1).Format("2006-01-02")
	}

	return &calendar.Event{
		Summary:     title,
		Description: description,
		Start:       &calendar.EventDateTime{Date: startDate},
		End:         &calendar.EventDateTime{Date: endDate},
		Reminders: &calendar.EventReminders{
			UseDefault:      false,
			ForceSendFields: []string{"UseDefault"},
		},
	}
}

func newCalendarService(ctx context.Context) (*calendar.Service, error) {
	credsPath := os.Getenv("GOOGLE_CREDENTIALS_PATH")
	if credsPath != "" {
		return calendar.NewService(ctx, option.WithCredentialsFile(credsPath))
	}
	return calendar.NewService(ctx)
}

func calendarID() string {
	if id := os.Getenv("GOOGLE_CALENDAR_ID"); id != "" {
		return id
	}
	return "primary"
}

type eventResult struct {
	JobID     string `json:"job_id,omitempty"`
	Title     string `json:"title"`
	Success   bool   `json:"success"`
	EventID   string `json:"event_id,omitempty"`
	EventLink string `json:"event_link,omitempty"`
	Error     string `json:"error,omitempty"`
}

// CreateCalendarEvent puts one job on the shop calendar.
// POST /api/v1/jobs/{id}/create-calendar-event
func CreateCalendarEvent(w http.ResponseWriter, r *http.Request) {
	job, ok := loadJob(w, r)
	if !ok {
		return
	}

	svc, err := newCalendarService(r.Context())
	if err != nil {
		http.Error(w, "calendar service unavailable: "+err.Error(), http.StatusBadGateway)
		return
	}

	event := BuildCalendarEvent(job, time.Now())
	created, err := svc.Events.Insert(calendarID(), event).Do()
	if err != nil {
		log.Printf("❌ Calendar insert failed for job %s: %v", job.ID, err)
		http.Error(w, "calendar insert failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(eventResult{
		JobID:     job.ID.String(),
		Title:     event.Summary,
		Success:   true,
		EventID:   created.Id,
		EventLink: created.HtmlLink,
	})
}

type importReq struct {
	JobIDs []string `json:"job_ids"`
}

type importResp struct {
	Total   int           `json:"total"`
	Success int           `json:"success"`
	Failed  int           `json:"failed"`
	Events  []eventResult `json:"events"`
}

// ImportToCalendar bulk-creates events for the named jobs, or for every
// scheduled job when no IDs are given. Failures are reported per job, one
// bad job never aborts the batch.
// POST /api/v1/import-to-calendar
func ImportToCalendar(w http.ResponseWriter, r *http.Request) {
	var req importReq
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
	}

	var jobs []models.Job
	q := config.DB
	if len(req.JobIDs) > 0 {
		q = q.Where("id IN ?", req.JobIDs)
	} else {
		q = q.Where("start_date <> ''")
	}
	if err := q.Find(&jobs).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	svc, err := newCalendarService(r.Context())
	if err != nil {
		http.Error(w, "calendar service unavailable: "+err.Error(), http.StatusBadGateway)
		return
	}

	resp := importResp{Total: len(jobs), Events: []eventResult{}}
	now := time.Now()
	for i := range jobs {
		job := &jobs[i]
		event := BuildCalendarEvent(job, now)
		res := eventResult{JobID: job.ID.String(), Title: event.Summary}
		created, err := svc.Events.Insert(calendarID(), event).Do()
		if err != nil {
			res.Error = err.Error()
			resp.Failed++
		} else {
			res.Success = true
			res.EventID = created.Id
			res.EventLink = created.HtmlLink
			resp.Success++
		}
		resp.Events = append(resp.Events, res)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
