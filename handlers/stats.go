package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"p4b.in/bodyshop/config"
	"p4b.in/bodyshop/models"
)

// GetStats returns the dashboard counters.
// GET /api/v1/stats
func GetStats(w http.ResponseWriter, r *http.Request) {
	var jobs []models.Job
	if err := config.DB.Find(&jobs).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	stats := models.ComputeStats(jobs, time.Now())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
