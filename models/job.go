package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stage is the primary workflow state of a repair job.
type Stage string

const (
	StageConfirmed   Stage = "confirmed"
	StagePreparation Stage = "preparation"
	StageInProgress  Stage = "in_progress"
	StageReady       Stage = "ready"
	StageDone        Stage = "done"
)

// stageOrder is the real workflow progression used by advance/revert.
var stageOrder = []Stage{
	StageConfirmed,
	StagePreparation,
	StageInProgress,
	StageReady,
	StageDone,
}

// StageInfo describes how a stage is presented.
type StageInfo struct {
	Label       string `json:"label"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

var stageInfo = map[Stage]StageInfo{
	StageConfirmed:   {Label: "Confirmed", Color: "blue", Description: "Case created, review details"},
	StagePreparation: {Label: "Preparation", Color: "orange", Description: "Preparing for repair"},
	StageInProgress:  {Label: "In Progress", Color: "purple", Description: "Repair in progress"},
	StageReady:       {Label: "Ready", Color: "teal", Description: "Ready for pickup"},
	StageDone:        {Label: "Done", Color: "green", Description: "Case completed"},
}

// Info returns display metadata for the stage; unknown stages fall back to Confirmed.
func (s Stage) Info() StageInfo {
	if info, ok := stageInfo[s]; ok {
		return info
	}
	return stageInfo[StageConfirmed]
}

// Valid reports whether s is one of the five workflow stages.
func (s Stage) Valid() bool {
	_, ok := stageInfo[s]
	return ok
}

// Next returns the following stage in the workflow, or false from Done.
func (s Stage) Next() (Stage, bool) {
	for i, st := range stageOrder {
		if st == s && i < len(stageOrder)-1 {
			return stageOrder[i+1], true
		}
	}
	return "", false
}

// Prev returns the preceding stage in the workflow, or false from Confirmed.
func (s Stage) Prev() (Stage, bool) {
	for i, st := range stageOrder {
		if st == s && i > 0 {
			return stageOrder[i-1], true
		}
	}
	return "", false
}

// RepairItem is one line on the work order. Replace items represent parts
// that have to be procured and carry their own ordered/arrived flags.
type RepairItem struct {
	ID              int64  `json:"id,omitempty"`
	Type            string `json:"type"`
	Desc            string `json:"desc"`
	PartNum         string `json:"partNum,omitempty"`
	CustomTitle     string `json:"customTitle,omitempty"`
	Ordered         bool   `json:"ordered,omitempty"`
	Arrived         bool   `json:"arrived,omitempty"`
	AddedInProgress bool   `json:"addedInProgress,omitempty"`
}

// IsReplace reports whether the item is a part to procure.
func (it RepairItem) IsReplace() bool {
	return strings.EqualFold(it.Type, "replace")
}

// itemTypeRank orders items for display: Repair, Replace, Blend, Polish, Other.
// Storage order is never touched; listings sort a copy.
func itemTypeRank(t string) int {
	switch strings.TrimSpace(t) {
	case "Repair":
		return 1
	case "Replace":
		return 2
	case "Blend":
		return 3
	case "Polish/Touch up", "Polish":
		return 4
	case "Other":
		return 5
	}
	return 6
}

// ItemList is the JSONB-backed ordered list of repair items.
type ItemList []RepairItem

// Scan implements the sql.Scanner interface
func (l *ItemList) Scan(value interface{}) error {
	if value == nil {
		*l = ItemList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("ItemList.Scan: unsupported type %T", value)
	}
}

// Value implements the driver.Valuer interface
func (l ItemList) Value() (driver.Value, error) {
	if l == nil {
		l = ItemList{}
	}
	return json.Marshal(l)
}

// GormDataType defines the data type for GORM
func (ItemList) GormDataType() string {
	return "jsonb"
}

// SortedForDisplay returns the items re-ordered by type rank while keeping
// insertion order within each type.
func (l ItemList) SortedForDisplay() []RepairItem {
	out := make([]RepairItem, len(l))
	copy(out, l)
	sort.SliceStable(out, func(i, j int) bool {
		return itemTypeRank(out[i].Type) < itemTypeRank(out[j].Type)
	})
	return out
}

// TimelineEntry is one event in a job's append-only audit log.
type TimelineEntry struct {
	Stage     Stage    `json:"stage,omitempty"`
	Type      string   `json:"type,omitempty"`
	Timestamp JSONTime `json:"timestamp"`
	Label     string   `json:"label"`
}

// Timeline is the JSONB-backed audit log. Entries are only ever appended.
type Timeline []TimelineEntry

// Scan implements the sql.Scanner interface
func (t *Timeline) Scan(value interface{}) error {
	if value == nil {
		*t = Timeline{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("Timeline.Scan: unsupported type %T", value)
	}
}

// Value implements the driver.Valuer interface
func (t Timeline) Value() (driver.Value, error) {
	if t == nil {
		t = Timeline{}
	}
	return json.Marshal(t)
}

// GormDataType defines the data type for GORM
func (Timeline) GormDataType() string {
	return "jsonb"
}

// Job is a repair work order: one vehicle, one customer, one pass through
// the Confirmed → Preparation → In Progress → Ready → Done pipeline.
type Job struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Stage Stage     `gorm:"size:20;not null;default:'confirmed';index" json:"stage"`

	CustomerName  string `gorm:"size:255" json:"customer_name"`
	CustomerPhone string `gorm:"size:50" json:"customer_phone"`

	VehicleYear      string `gorm:"size:10" json:"vehicle_year"`
	VehicleMakeModel string `gorm:"size:255" json:"vehicle_make_model"`
	VehiclePlate     string `gorm:"size:50" json:"vehicle_plate"`
	VehicleVIN       string `gorm:"column:vehicle_vin;size:17" json:"vehicle_vin"`

	// Calendar dates, "YYYY-MM-DD", empty until scheduled.
	StartDate string `gorm:"size:10" json:"start_date"`
	EndDate   string `gorm:"size:10" json:"end_date"`

	Items ItemList `gorm:"type:jsonb;not null;default:'[]'" json:"items"`
	Notes string   `gorm:"type:text" json:"notes"`

	CarHere          bool `gorm:"default:false" json:"car_here"`
	PartsOrdered     bool `gorm:"default:false" json:"parts_ordered"`
	PartsArrived     bool `gorm:"default:false" json:"parts_arrived"`
	CustomerNotified bool `gorm:"default:false" json:"customer_notified"`
	RentalRequested  bool `gorm:"default:false" json:"rental_requested"`
	CarFiledIn       bool `gorm:"default:false" json:"car_filed_in"`

	RentalCompany      string `gorm:"size:255" json:"rental_company"`
	RentalVehicle      string `gorm:"size:255" json:"rental_vehicle"`
	RentalStartDate    string `gorm:"size:10" json:"rental_start_date"`
	RentalConfirmation string `gorm:"size:100" json:"rental_confirmation"`
	RentalNotes        string `gorm:"type:text" json:"rental_notes"`

	Timeline Timeline `gorm:"type:jsonb;not null;default:'[]'" json:"timeline"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Job
func (Job) TableName() string {
	return "jobs"
}

// BeforeCreate assigns a UUID if one was not provided.
func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// ReplaceItems returns the items that represent parts to order.
func (j *Job) ReplaceItems() []RepairItem {
	var parts []RepairItem
	for _, it := range j.Items {
		if it.IsReplace() {
			parts = append(parts, it)
		}
	}
	return parts
}

// HasParts reports whether the job has any replace-type items.
func (j *Job) HasParts() bool {
	return len(j.ReplaceItems()) > 0
}

// AllPartsOrdered is true when every replace item is marked ordered, or the
// job-level parts_ordered flag overrides the per-item state.
func (j *Job) AllPartsOrdered() bool {
	if j.PartsOrdered {
		return true
	}
	for _, it := range j.ReplaceItems() {
		if !it.Ordered {
			return false
		}
	}
	return true
}

// AllPartsArrived mirrors AllPartsOrdered for the arrived flags.
func (j *Job) AllPartsArrived() bool {
	if j.PartsArrived {
		return true
	}
	for _, it := range j.ReplaceItems() {
		if !it.Arrived {
			return false
		}
	}
	return true
}

// AllPartsReady is true when the job needs no parts or every part has arrived.
func (j *Job) AllPartsReady() bool {
	return !j.HasParts() || j.AllPartsArrived()
}

// HasSchedule reports whether both calendar dates are set.
func (j *Job) HasSchedule() bool {
	return j.StartDate != "" && j.EndDate != ""
}

// HasRentalInfo reports whether a rental company or vehicle has been recorded.
func (j *Job) HasRentalInfo() bool {
	return j.RentalCompany != "" || j.RentalVehicle != ""
}

// CanAdvance checks the hard requirements for moving one stage forward.
// Soft warnings (see AdvanceWarnings) never affect this.
func (j *Job) CanAdvance() bool {
	switch j.Stage {
	case StageConfirmed, StageInProgress:
		return true
	case StagePreparation:
		return j.CarHere && j.HasSchedule()
	case StageReady:
		return j.CustomerNotified
	default:
		return false
	}
}

// MissingRequirements lists the unmet hard requirements for the current stage.
// Empty when CanAdvance is true.
func (j *Job) MissingRequirements() []string {
	if j.CanAdvance() {
		return nil
	}
	var missing []string
	switch j.Stage {
	case StagePreparation:
		if !j.CarHere {
			missing = append(missing, "Car not on site")
		}
		if !j.HasSchedule() {
			missing = append(missing, "Schedule not set")
		}
	case StageReady:
		if !j.CustomerNotified {
			missing = append(missing, "Customer not notified")
		}
	}
	return missing
}

// AdvanceWarnings lists the soft requirements the caller should confirm
// before advancing. Only the preparation stage produces warnings.
func (j *Job) AdvanceWarnings() []string {
	if j.Stage != StagePreparation {
		return nil
	}
	var warnings []string
	parts := j.ReplaceItems()
	hasParts := len(parts) > 0

	allOrdered := j.AllPartsOrdered()
	allArrived := j.AllPartsArrived()

	if hasParts && !allOrdered {
		ordered := 0
		for _, p := range parts {
			if p.Ordered {
				ordered++
			}
		}
		warnings = append(warnings, fmt.Sprintf("Parts not fully ordered (%d/%d)", ordered, len(parts)))
	}
	if hasParts && allOrdered && !allArrived {
		arrived := 0
		for _, p := range parts {
			if p.Arrived {
				arrived++
			}
		}
		warnings = append(warnings, fmt.Sprintf("Parts not fully arrived (%d/%d)", arrived, len(parts)))
	}
	if j.HasRentalInfo() && !j.RentalRequested {
		warnings = append(warnings, "Rental not requested")
	}
	return warnings
}

// AppendTimeline adds one entry to the audit log. Existing entries are never
// rewritten; every state-changing action goes through here exactly once.
func (j *Job) AppendTimeline(entry TimelineEntry) {
	if time.Time(entry.Timestamp).IsZero() {
		entry.Timestamp = JSONTime(time.Now())
	}
	j.Timeline = append(j.Timeline, entry)
}

// StageEntryLabel builds the timeline label written when a job enters a stage.
func (j *Job) StageEntryLabel(next Stage) string {
	switch next {
	case StagePreparation:
		return "📋 Preparation started."
	case StageInProgress:
		due := "TBD"
		if j.EndDate != "" {
			if t, err := time.Parse("2006-01-02", j.EndDate); err == nil {
				due = t.Format("Jan 2")
			}
		}
		return fmt.Sprintf("🔧 Work started. Estimated due date is %s.", due)
	case StageReady:
		return "✅ Repair Finished."
	case StageDone:
		return "🎉 Case completed and closed."
	}
	return fmt.Sprintf("Moved to %s", next.Info().Label)
}

// RevertEntryLabel builds the timeline label written when a job moves back a stage.
func RevertEntryLabel(prev Stage) string {
	return fmt.Sprintf("⏪ Reverted to %s.", prev.Info().Label)
}

// CreatedEntryLabel is the first timeline entry of every job.
const CreatedEntryLabel = "📝 Case created."

// CarInEntryLabel is written when the car-in filing succeeds.
const CarInEntryLabel = "🚗 Vehicle dropped off and filed car-in."

// ToggleFlag names a boolean job flag that can flip from the job card.
type ToggleFlag string

const (
	FlagCarHere          ToggleFlag = "car_here"
	FlagPartsOrdered     ToggleFlag = "parts_ordered"
	FlagPartsArrived     ToggleFlag = "parts_arrived"
	FlagRentalRequested  ToggleFlag = "rental_requested"
	FlagCustomerNotified ToggleFlag = "customer_notified"
)

// ToggleLabel returns the timeline label for flipping a flag to newValue.
func ToggleLabel(flag ToggleFlag, newValue bool) (string, error) {
	switch flag {
	case FlagCarHere:
		if newValue {
			return "🚗 Vehicle arrived on site.", nil
		}
		return "🚗 Vehicle marked as not on site.", nil
	case FlagPartsOrdered:
		if newValue {
			return "📦 All parts are ordered, waiting for arrival.", nil
		}
		return "📦 Parts order cancelled.", nil
	case FlagPartsArrived:
		if newValue {
			return "✅ All parts have arrived.", nil
		}
		return "📦 Parts marked as not arrived.", nil
	case FlagRentalRequested:
		if newValue {
			return "🚙 Rental has been arranged.", nil
		}
		return "🚙 Rental request cancelled.", nil
	case FlagCustomerNotified:
		if newValue {
			return "📞 Customer notified.", nil
		}
		return "📞 Customer notification undone.", nil
	}
	return "", fmt.Errorf("unknown toggle flag %q", flag)
}
