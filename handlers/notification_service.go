package handlers

import (
	"sync"
	"time"

	"gorm.io/gorm"

	"p4b.in/bodyshop/config"
	"p4b.in/bodyshop/models"
)

// NotificationService recomputes dashboard alerts from the live job list.
// Alerts are derived state, never stored; dismissals live in memory and an
// alert whose ID was dismissed stays hidden until the process restarts.
type NotificationService struct {
	db *gorm.DB

	mu        sync.Mutex
	dismissed map[string]bool
}

// NewNotificationService creates a new notification service instance
func NewNotificationService() *NotificationService {
	return &NotificationService{
		db:        config.DB,
		dismissed: make(map[string]bool),
	}
}

// Current returns the active alerts sorted by priority, with dismissed
// ones filtered out.
func (s *NotificationService) Current(now time.Time) ([]models.Alert, error) {
	db := s.db
	if db == nil {
		// Package-level services are built before config.Connect runs.
		db = config.DB
	}
	var jobs []models.Job
	if err := db.Find(&jobs).Error; err != nil {
		return nil, err
	}
	alerts := models.BuildAlerts(jobs, now)

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Alert, 0, len(alerts))
	for _, a := range alerts {
		if !s.dismissed[a.ID] {
			out = append(out, a)
		}
	}
	return out, nil
}

// Dismiss hides one alert ID until restart. Dismissing an ID that is not
// currently active is fine; it just suppresses the alert if it ever fires.
func (s *NotificationService) Dismiss(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dismissed[id] = true
}
