package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"p4b.in/bodyshop/config"
	"p4b.in/bodyshop/models"
)

// JobInput is the client payload for creating a job. Stage and timeline are
// server-owned and never taken from the request.
type JobInput struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`

	VehicleYear      string `json:"vehicle_year"`
	VehicleMakeModel string `json:"vehicle_make_model"`
	VehiclePlate     string `json:"vehicle_plate"`
	VehicleVIN       string `json:"vehicle_vin"`

	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	Items models.ItemList `json:"items"`
	Notes string          `json:"notes"`

	RentalCompany      string `json:"rental_company"`
	RentalVehicle      string `json:"rental_vehicle"`
	RentalStartDate    string `json:"rental_start_date"`
	RentalConfirmation string `json:"rental_confirmation"`
	RentalNotes        string `json:"rental_notes"`
}

// JobPatch carries a partial update. Pointer fields distinguish "not sent"
// from "set to zero value" so a PATCH never clobbers fields it did not name.
type JobPatch struct {
	CustomerName  *string `json:"customer_name"`
	CustomerPhone *string `json:"customer_phone"`

	VehicleYear      *string `json:"vehicle_year"`
	VehicleMakeModel *string `json:"vehicle_make_model"`
	VehiclePlate     *string `json:"vehicle_plate"`
	VehicleVIN       *string `json:"vehicle_vin"`

	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`

	Items *models.ItemList `json:"items"`
	Notes *string          `json:"notes"`

	RentalCompany      *string `json:"rental_company"`
	RentalVehicle      *string `json:"rental_vehicle"`
	RentalStartDate    *string `json:"rental_start_date"`
	RentalConfirmation *string `json:"rental_confirmation"`
	RentalNotes        *string `json:"rental_notes"`
}

func applyPatch(job *models.Job, p *JobPatch) {
	if p.CustomerName != nil {
		job.CustomerName = *p.CustomerName
	}
	if p.CustomerPhone != nil {
		job.CustomerPhone = *p.CustomerPhone
	}
	if p.VehicleYear != nil {
		job.VehicleYear = *p.VehicleYear
	}
	if p.VehicleMakeModel != nil {
		job.VehicleMakeModel = *p.VehicleMakeModel
	}
	if p.VehiclePlate != nil {
		job.VehiclePlate = *p.VehiclePlate
	}
	if p.VehicleVIN != nil {
		job.VehicleVIN = *p.VehicleVIN
	}
	if p.StartDate != nil {
		job.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		job.EndDate = *p.EndDate
	}
	if p.Items != nil {
		job.Items = *p.Items
	}
	if p.Notes != nil {
		job.Notes = *p.Notes
	}
	if p.RentalCompany != nil {
		job.RentalCompany = *p.RentalCompany
	}
	if p.RentalVehicle != nil {
		job.RentalVehicle = *p.RentalVehicle
	}
	if p.RentalStartDate != nil {
		job.RentalStartDate = *p.RentalStartDate
	}
	if p.RentalConfirmation != nil {
		job.RentalConfirmation = *p.RentalConfirmation
	}
	if p.RentalNotes != nil {
		job.RentalNotes = *p.RentalNotes
	}
}

// JobView is a Job plus the derived fields the board renders from.
type JobView struct {
	models.Job
	StageInfo        models.StageInfo         `json:"stage_info"`
	PreparationPhase *models.PreparationPhase `json:"preparation_phase,omitempty"`
	CanAdvance       bool                     `json:"can_advance"`
	Missing          []string                 `json:"missing,omitempty"`
	Warnings         []string                 `json:"warnings,omitempty"`
}

func toJobView(job models.Job) JobView {
	view := JobView{
		Job:        job,
		StageInfo:  job.Stage.Info(),
		CanAdvance: job.CanAdvance(),
		Missing:    job.MissingRequirements(),
		Warnings:   job.AdvanceWarnings(),
	}
	view.Items = job.Items.SortedForDisplay()
	if job.Stage == models.StagePreparation {
		phase := models.GetPreparationPhase(&job)
		view.PreparationPhase = &phase
	}
	return view
}

func parseJobID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)["id"])
}

func loadJob(w http.ResponseWriter, r *http.Request) (*models.Job, bool) {
	id, err := parseJobID(r)
	if err != nil {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return nil, false
	}
	var job models.Job
	if err := config.DB.First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "job not found", http.StatusNotFound)
		} else {
			http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		}
		return nil, false
	}
	return &job, true
}

// ListJobs returns the full board, sorted by column then newest first.
// Optional query params: q (free-text search), stage (exact filter).
func ListJobs(w http.ResponseWriter, r *http.Request) {
	var jobs []models.Job
	if err := config.DB.Find(&jobs).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query().Get("q")
	stage := models.Stage(r.URL.Query().Get("stage"))
	if stage != "" && !stage.Valid() {
		http.Error(w, "invalid stage filter", http.StatusBadRequest)
		return
	}

	jobs = models.FilterJobs(jobs, query, stage)
	models.SortJobs(jobs)

	views := make([]JobView, len(jobs))
	for i := range jobs {
		views[i] = toJobView(jobs[i])
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

// GetJob returns a single job with its derived fields.
func GetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := loadJob(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toJobView(*job))
}

// CreateJob opens a new work order in the Confirmed stage.
func CreateJob(w http.ResponseWriter, r *http.Request) {
	var in JobInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if in.CustomerName == "" {
		http.Error(w, "customer_name is required", http.StatusBadRequest)
		return
	}

	job := models.Job{
		Stage:              models.StageConfirmed,
		CustomerName:       in.CustomerName,
		CustomerPhone:      in.CustomerPhone,
		VehicleYear:        in.VehicleYear,
		VehicleMakeModel:   in.VehicleMakeModel,
		VehiclePlate:       in.VehiclePlate,
		VehicleVIN:         in.VehicleVIN,
		StartDate:          in.StartDate,
		EndDate:            in.EndDate,
		Items:              in.Items,
		Notes:              in.Notes,
		RentalCompany:      in.RentalCompany,
		RentalVehicle:      in.RentalVehicle,
		RentalStartDate:    in.RentalStartDate,
		RentalConfirmation: in.RentalConfirmation,
		RentalNotes:        in.RentalNotes,
	}
	if job.Items == nil {
		job.Items = models.ItemList{}
	}
	job.AppendTimeline(models.TimelineEntry{
		Stage: models.StageConfirmed,
		Label: models.CreatedEntryLabel,
	})

	if err := config.DB.Create(&job).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toJobView(job))
}

// UpdateJob applies a partial update. Stage, flags and timeline cannot be
// changed here; those go through the workflow endpoints so every change
// leaves a timeline entry.
func UpdateJob(w http.ResponseWriter, r *http.Request) {
	job, ok := loadJob(w, r)
	if !ok {
		return
	}
	var patch JobPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	applyPatch(job, &patch)
	if err := config.DB.Save(job).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toJobView(*job))
}

// DeleteJob removes a work order permanently.
func DeleteJob(w http.ResponseWriter, r *http.Request) {
	job, ok := loadJob(w, r)
	if !ok {
		return
	}
	if err := config.DB.Delete(job).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
