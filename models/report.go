package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report statuses form a one-way machine: pending -> verified -> collected.
const (
	ReportStatusPending   = "pending"
	ReportStatusVerified  = "verified"
	ReportStatusCollected = "collected"
)

// Report is a user-submitted record of observed waste needing collection.
type Report struct {
	ID                 uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `json:"-" gorm:"index"`
	UserID             uint            `json:"user_id" gorm:"not null;index"`
	User               User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Location           string          `json:"location" gorm:"type:text;not null"`
	WasteType          string          `json:"waste_type" gorm:"not null"`
	Amount             string          `json:"amount" gorm:"not null"`
	ImageURL           string          `json:"image_url,omitempty" gorm:"type:text"`
	VerificationResult json.RawMessage `json:"verification_result,omitempty" gorm:"type:jsonb"`
	Status             string          `json:"status" gorm:"not null;default:pending"`
	CollectorID        *uint           `json:"collector_id,omitempty"`
	Collector          *User           `gorm:"foreignKey:CollectorID;constraint:OnDelete:SET NULL" json:"-"`
}

// CollectedWaste records the completed pickup of a report.
type CollectedWaste struct {
	Model
	ReportID       uuid.UUID `json:"report_id" gorm:"type:uuid;not null"`
	CollectorID    uint      `json:"collector_id" gorm:"not null"`
	CollectionDate time.Time `json:"collection_date" gorm:"not null"`
	Status         string    `json:"status" gorm:"not null;default:collected"`
}

type CreateReportRequest struct {
	Location  string `json:"location" binding:"required"`
	WasteType string `json:"waste_type" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	ImageURL  string `json:"image_url"`
}

type PaginatedReports struct {
	Reports  []Report `json:"reports"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
	Total    int64    `json:"total"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// CanTransitionTo reports whether the status machine allows the move.
func (r *Report) CanTransitionTo(status string) bool {
	switch r.Status {
	case ReportStatusPending:
		return status == ReportStatusVerified
	case ReportStatusVerified:
		return status == ReportStatusCollected
	}
	return false
}

// ValidateStatus rejects anything outside the closed status set.
func ValidateStatus(status string) error {
	switch status {
	case ReportStatusPending, ReportStatusVerified, ReportStatusCollected:
		return nil
	}
	return fmt.Errorf("unknown report status %q", status)
}
