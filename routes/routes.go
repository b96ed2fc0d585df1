package routes

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"p4b.in/bodyshop/handlers"
	"p4b.in/bodyshop/middleware"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/register", handlers.Register).Methods("POST")
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.HandleFunc("/health", handleHealth).Methods("GET")
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir("./uploads"))),
	)

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/me", handlers.GetCurrentUser).Methods("GET")

	registerJobRoutes(api)
	registerInsuranceRoutes(api)

	// Dashboard
	api.HandleFunc("/notifications", handlers.GetNotifications).Methods("GET")
	api.HandleFunc("/notifications/{id}/dismiss", handlers.DismissNotification).Methods("POST")
	api.HandleFunc("/stats", handlers.GetStats).Methods("GET")

	// Intake helpers
	api.HandleFunc("/analyze", handlers.AnalyzeEstimate).Methods("POST")
	api.HandleFunc("/decodevin/{vin}", handlers.DecodeVIN).Methods("GET")

	// Calendar
	api.HandleFunc("/import-to-calendar", handlers.ImportToCalendar).Methods("POST")

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// registerJobRoutes wires the work-order CRUD and workflow endpoints.
func registerJobRoutes(api *mux.Router) {
	api.HandleFunc("/jobs", handlers.ListJobs).Methods("GET")
	api.HandleFunc("/jobs", handlers.CreateJob).Methods("POST")
	api.HandleFunc("/jobs/export/excel", handlers.ExportJobsToExcel).Methods("GET")
	api.HandleFunc("/jobs/export/csv", handlers.ExportJobsToCSV).Methods("GET")
	api.HandleFunc("/jobs/{id}", handlers.GetJob).Methods("GET")
	api.HandleFunc("/jobs/{id}", handlers.UpdateJob).Methods("PATCH", "PUT")
	api.HandleFunc("/jobs/{id}", handlers.DeleteJob).Methods("DELETE")

	// Workflow: every stage change and flag flip goes through these so the
	// timeline stays complete.
	api.HandleFunc("/jobs/{id}/advance", handlers.AdvanceJob).Methods("POST")
	api.HandleFunc("/jobs/{id}/revert", handlers.RevertJob).Methods("POST")
	api.HandleFunc("/jobs/{id}/toggle/{flag}", handlers.ToggleJobFlag).Methods("POST")
	api.HandleFunc("/jobs/{id}/file-car-in", handlers.FileCarIn).Methods("POST")
	api.HandleFunc("/jobs/{id}/create-calendar-event", handlers.CreateCalendarEvent).Methods("POST")
}

// registerInsuranceRoutes wires the insurance photo case endpoints.
func registerInsuranceRoutes(api *mux.Router) {
	api.HandleFunc("/insurance-cases", handlers.ListInsuranceCases).Methods("GET")
	api.HandleFunc("/insurance-cases", handlers.CreateInsuranceCase).Methods("POST")
	api.HandleFunc("/insurance-cases/{id}", handlers.GetInsuranceCase).Methods("GET")
	api.HandleFunc("/insurance-cases/{id}", handlers.RenameInsuranceCase).Methods("PATCH", "PUT")
	api.HandleFunc("/insurance-cases/{id}", handlers.DeleteInsuranceCase).Methods("DELETE")
	api.HandleFunc("/insurance-cases/{id}/photos", handlers.UploadCasePhotos).Methods("POST")
	api.HandleFunc("/insurance-cases/{id}/photos/{photoId}", handlers.DownloadCasePhoto).Methods("GET")
	api.HandleFunc("/insurance-cases/{id}/photos/{photoId}", handlers.DeleteCasePhoto).Methods("DELETE")
}
