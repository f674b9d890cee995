package dto

import (
	"time"

	"github.com/semenggoh/parkguide-api/internal/models"
)

// LicenseDecisionRequest approves or rejects a guide's license application.
type LicenseDecisionRequest struct {
	CertificationStatus string `json:"certification_status" validate:"required,oneof=approved rejected"`
}

// LicenseDecisionResponse reports the applied license transition.
type LicenseDecisionResponse struct {
	Message             string     `json:"message"`
	GuideID             uint       `json:"guideId"`
	CertificationStatus string     `json:"certificationStatus"`
	LicenseExpiryDate   *time.Time `json:"licenseExpiryDate,omitempty"`
	AssignedParkID      *uint      `json:"assignedParkId,omitempty"`
}

// LicenseApplicationRequest submits a guide's park assignment request.
type LicenseApplicationRequest struct {
	GuideID         uint `json:"guide_id" validate:"required,gt=0"`
	RequestedParkID uint `json:"requested_park_id" validate:"required,gt=0"`
}

// PendingGuideResponse lists a guide awaiting a license decision.
type PendingGuideResponse struct {
	GuideID         uint   `json:"guide_id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	RequestedParkID *uint  `json:"requested_park_id"`
}

// NewPendingGuideResponse converts a guide model into its pending-list form.
func NewPendingGuideResponse(model models.ParkGuide) PendingGuideResponse {
	return PendingGuideResponse{
		GuideID:         model.ID,
		FirstName:       model.User.FirstName,
		LastName:        model.User.LastName,
		Email:           model.User.Email,
		RequestedParkID: model.RequestedParkID,
	}
}

// CertificationResponse is one credential with its validity window.
type CertificationResponse struct {
	ID         uint      `json:"id"`
	ModuleID   uint      `json:"module_id"`
	ModuleName string    `json:"module_name"`
	IssuedDate time.Time `json:"issued_date"`
	ExpiryDate time.Time `json:"expiry_date"`
	Expired    bool      `json:"expired"`
}

// NewCertificationResponse converts a certification model into its DTO form.
func NewCertificationResponse(model models.Certification, reference time.Time) CertificationResponse {
	return CertificationResponse{
		ID:         model.ID,
		ModuleID:   model.ModuleID,
		ModuleName: model.Module.Name,
		IssuedDate: model.IssuedDate,
		ExpiryDate: model.ExpiryDate,
		Expired:    model.IsExpired(reference),
	}
}
