package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

var notificationService = NewNotificationService()

// GetNotifications returns the current dashboard alerts.
// GET /api/v1/notifications
func GetNotifications(w http.ResponseWriter, r *http.Request) {
	alerts, err := notificationService.Current(time.Now())
	if err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alerts)
}

// DismissNotification hides one alert for the rest of the process lifetime.
// POST /api/v1/notifications/{id}/dismiss
func DismissNotification(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "missing notification id", http.StatusBadRequest)
		return
	}
	notificationService.Dismiss(id)
	w.WriteHeader(http.StatusNoContent)
}
