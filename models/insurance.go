package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InsurancePhoto is one uploaded damage photo inside a case.
type InsurancePhoto struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	URL        string   `json:"url"`
	UploadedAt JSONTime `json:"uploaded_at"`
}

// PhotoList is the JSONB-backed photo collection of an insurance case.
type PhotoList []InsurancePhoto

// Scan implements the sql.Scanner interface
func (l *PhotoList) Scan(value interface{}) error {
	if value == nil {
		*l = PhotoList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("PhotoList.Scan: unsupported type %T", value)
	}
}

// Value implements the driver.Valuer interface
func (l PhotoList) Value() (driver.Value, error) {
	if l == nil {
		l = PhotoList{}
	}
	return json.Marshal(l)
}

// GormDataType defines the data type for GORM
func (PhotoList) GormDataType() string {
	return "jsonb"
}

// InsuranceCase groups damage photos for one insurance claim. Cases are
// independent of jobs; a claim often exists before a work order does.
type InsuranceCase struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Photos    PhotoList `gorm:"type:jsonb;not null;default:'[]'" json:"photos"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for InsuranceCase
func (InsuranceCase) TableName() string {
	return "insurance_cases"
}

// BeforeCreate assigns a UUID if one was not provided.
func (c *InsuranceCase) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
