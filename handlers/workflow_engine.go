package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"p4b.in/bodyshop/config"
	"p4b.in/bodyshop/models"
)

// WorkflowEngine owns every stage transition and flag flip. All of them go
// through here so the timeline stays the single source of truth for what
// happened to a job and when.
type WorkflowEngine struct {
	db *gorm.DB
}

// NewWorkflowEngine creates a new workflow engine instance
func NewWorkflowEngine() *WorkflowEngine {
	return &WorkflowEngine{
		db: config.DB,
	}
}

// ErrBlocked is returned when a hard requirement prevents the transition.
var ErrBlocked = errors.New("transition blocked")

// ErrNeedsConfirm is returned when soft warnings exist and the caller has
// not confirmed them yet.
var ErrNeedsConfirm = errors.New("transition needs confirmation")

// TransitionResult reports what a transition attempt did or why it refused.
// Message carries a refusal reason that is not a missing requirement, such
// as the stage having nowhere further to go.
type TransitionResult struct {
	Job      *models.Job
	Missing  []string
	Warnings []string
	Message  string
}

// Advance moves a job one stage forward. Hard requirements always block;
// soft warnings block only until the caller passes confirm=true.
func (we *WorkflowEngine) Advance(id uuid.UUID, confirm bool) (*TransitionResult, error) {
	var job models.Job
	if err := we.db.First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}

	next, ok := job.Stage.Next()
	if !ok {
		msg := fmt.Sprintf("Job is already %s.", job.Stage.Info().Label)
		return &TransitionResult{Job: &job, Message: msg}, fmt.Errorf("%w: %s", ErrBlocked, msg)
	}

	if !job.CanAdvance() {
		return &TransitionResult{Job: &job, Missing: job.MissingRequirements()}, ErrBlocked
	}

	if warnings := job.AdvanceWarnings(); len(warnings) > 0 && !confirm {
		return &TransitionResult{Job: &job, Warnings: warnings}, ErrNeedsConfirm
	}

	job.Stage = next
	job.AppendTimeline(models.TimelineEntry{
		Stage: next,
		Label: job.StageEntryLabel(next),
	})
	if err := we.db.Save(&job).Error; err != nil {
		return nil, err
	}
	log.Printf("✅ Job %s advanced to %s", job.ID, next)
	return &TransitionResult{Job: &job}, nil
}

// Revert moves a job one stage back. Reverting is always allowed; the
// timeline records it rather than any gate preventing it.
func (we *WorkflowEngine) Revert(id uuid.UUID) (*TransitionResult, error) {
	var job models.Job
	if err := we.db.First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}

	prev, ok := job.Stage.Prev()
	if !ok {
		return &TransitionResult{Job: &job}, fmt.Errorf("%w: job is already %s", ErrBlocked, job.Stage.Info().Label)
	}

	job.Stage = prev
	job.AppendTimeline(models.TimelineEntry{
		Stage: prev,
		Type:  "revert",
		Label: models.RevertEntryLabel(prev),
	})
	if err := we.db.Save(&job).Error; err != nil {
		return nil, err
	}
	log.Printf("⏪ Job %s reverted to %s", job.ID, prev)
	return &TransitionResult{Job: &job}, nil
}

// Toggle flips one of the boolean job flags and writes the matching
// timeline entry.
func (we *WorkflowEngine) Toggle(id uuid.UUID, flag models.ToggleFlag) (*models.Job, error) {
	var job models.Job
	if err := we.db.First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}

	var newValue bool
	switch flag {
	case models.FlagCarHere:
		job.CarHere = !job.CarHere
		newValue = job.CarHere
	case models.FlagPartsOrdered:
		job.PartsOrdered = !job.PartsOrdered
		newValue = job.PartsOrdered
	case models.FlagPartsArrived:
		job.PartsArrived = !job.PartsArrived
		newValue = job.PartsArrived
	case models.FlagRentalRequested:
		job.RentalRequested = !job.RentalRequested
		newValue = job.RentalRequested
	case models.FlagCustomerNotified:
		job.CustomerNotified = !job.CustomerNotified
		newValue = job.CustomerNotified
	default:
		return nil, fmt.Errorf("unknown toggle flag %q", flag)
	}

	label, err := models.ToggleLabel(flag, newValue)
	if err != nil {
		return nil, err
	}
	job.AppendTimeline(models.TimelineEntry{
		Type:  "toggle",
		Label: label,
	})
	if err := we.db.Save(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkCarFiledIn records a successful car-in filing: sets the flag, marks
// the car on site and appends the timeline entry.
func (we *WorkflowEngine) MarkCarFiledIn(id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := we.db.First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	job.CarFiledIn = true
	job.CarHere = true
	job.AppendTimeline(models.TimelineEntry{
		Type:  "car_in",
		Label: models.CarInEntryLabel,
	})
	if err := we.db.Save(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

type advanceReq struct {
	Confirm bool `json:"confirm"`
}

// AdvanceJob handles POST /jobs/{id}/advance. A blocked transition returns
// 409 with the missing requirements; unconfirmed warnings return 409 with
// the warning list so the client can ask the user.
func AdvanceJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseJobID(r)
	if err != nil {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}
	var req advanceReq
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
	}

	engine := NewWorkflowEngine()
	result, err := engine.Advance(id, req.Confirm)
	switch {
	case err == nil:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(toJobView(*result.Job))
	case errors.Is(err, ErrBlocked):
		msg := result.Message
		if msg == "" {
			msg = missingMessage(result.Missing)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":   "blocked",
			"missing": result.Missing,
			"message": msg,
		})
	case errors.Is(err, ErrNeedsConfirm):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":    "needs_confirmation",
			"warnings": result.Warnings,
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "job not found", http.StatusNotFound)
	default:
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
	}
}

func missingMessage(missing []string) string {
	if len(missing) == 0 {
		return ""
	}
	msg := "Missing: "
	for i, m := range missing {
		if i > 0 {
			msg += ", "
		}
		msg += m
	}
	return msg
}

// RevertJob handles POST /jobs/{id}/revert.
func RevertJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseJobID(r)
	if err != nil {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}

	engine := NewWorkflowEngine()
	result, err := engine.Revert(id)
	switch {
	case err == nil:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(toJobView(*result.Job))
	case errors.Is(err, ErrBlocked):
		http.Error(w, "job cannot be reverted further", http.StatusConflict)
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "job not found", http.StatusNotFound)
	default:
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
	}
}

// ToggleJobFlag handles POST /jobs/{id}/toggle/{flag}.
func ToggleJobFlag(w http.ResponseWriter, r *http.Request) {
	id, err := parseJobID(r)
	if err != nil {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}
	flag := models.ToggleFlag(mux.Vars(r)["flag"])

	engine := NewWorkflowEngine()
	job, err := engine.Toggle(id, flag)
	switch {
	case err == nil:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(toJobView(*job))
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "job not found", http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}
