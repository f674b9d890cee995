package dto

import (
	"time"

	"github.com/semenggoh/parkguide-api/internal/models"
)

// FreeEnrollmentResponse is returned when a user enrolls in a free module.
type FreeEnrollmentResponse struct {
	Message  string `json:"message"`
	ModuleID uint   `json:"moduleId"`
	Status   string `json:"status"`
}

// PaidEnrollmentRequest carries the multipart fields accompanying a receipt
// upload when initiating a paid module purchase.
type PaidEnrollmentRequest struct {
	Method string  `form:"payment_method" validate:"required,oneof=debit credit bank_transfer e_wallet"`
	Amount float64 `form:"amount" validate:"required,gt=0"`
}

// PaidEnrollmentResponse reports the recorded pending purchase.
type PaidEnrollmentResponse struct {
	Message    string `json:"message"`
	ModuleID   uint   `json:"moduleId"`
	PaymentID  uint   `json:"paymentId"`
	PurchaseID uint   `json:"purchaseId"`
	Status     string `json:"status"`
}

// PurchasedModuleResponse lists an owned module with its progress.
type PurchasedModuleResponse struct {
	ID                   uint      `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Duration             string    `json:"duration"`
	PurchaseDate         time.Time `json:"purchase_date"`
	CompletionPercentage int       `json:"completion_percentage"`
}

// NewPurchasedModuleResponse converts an active purchase into its DTO form.
func NewPurchasedModuleResponse(model models.ModulePurchase) PurchasedModuleResponse {
	return PurchasedModuleResponse{
		ID:                   model.Module.ID,
		Name:                 model.Module.Name,
		Description:          model.Module.Description,
		Duration:             model.Module.Duration,
		PurchaseDate:         model.PurchaseDate,
		CompletionPercentage: model.CompletionPercentage,
	}
}

// NewPurchasedModuleResponseSlice maps a slice of purchases.
func NewPurchasedModuleResponseSlice(purchases []models.ModulePurchase) []PurchasedModuleResponse {
	out := make([]PurchasedModuleResponse, 0, len(purchases))
	for _, purchase := range purchases {
		out = append(out, NewPurchasedModuleResponse(purchase))
	}
	return out
}

// ProgressUpdateRequest advances the caller's completion percentage.
type ProgressUpdateRequest struct {
	ModuleID uint `json:"moduleId" validate:"required,gt=0"`
	Progress int  `json:"progress" validate:"gte=0,lte=100"`
}

// ProgressUpdateResponse reports the stored percentage after an update call.
type ProgressUpdateResponse struct {
	Message  string `json:"message"`
	ModuleID uint   `json:"moduleId"`
	Progress int    `json:"progress"`
	Updated  bool   `json:"updated"`
}
