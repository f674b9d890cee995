package models

import "time"

// ParkGuide carries the licensing state of a guide account.
type ParkGuide struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	UserID              uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	CertificationStatus string     `gorm:"size:32;not null;default:not_applicable" json:"certification_status"`
	LicenseExpiryDate   *time.Time `json:"license_expiry_date"`
	AssignedParkID      *uint      `json:"assigned_park_id"`
	RequestedParkID     *uint      `json:"requested_park_id"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	User                User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
}

const (
	// GuideLicensePending marks a guide awaiting a license decision.
	GuideLicensePending = "pending"
	// GuideLicenseApproved marks a licensed guide.
	GuideLicenseApproved = "approved"
	// GuideLicenseRejected marks a declined license request.
	GuideLicenseRejected = "rejected"
)

// GuideTrainingProgress tracks a guide's position within a training module.
type GuideTrainingProgress struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	GuideID        uint       `gorm:"not null;uniqueIndex:idx_guide_module_progress" json:"guide_id"`
	ModuleID       uint       `gorm:"not null;uniqueIndex:idx_guide_module_progress" json:"module_id"`
	Status         string     `gorm:"size:32;not null" json:"status"`
	CompletionDate *time.Time `json:"completion_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

const (
	// TrainingInProgress marks a module the guide has started but not finished.
	TrainingInProgress = "in_progress"
	// TrainingCompleted marks a module the guide has passed.
	TrainingCompleted = "completed"
)
