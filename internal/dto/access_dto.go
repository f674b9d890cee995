package dto

import (
	"time"

	"github.com/semenggoh/parkguide-api/internal/models"
)

// AccessResponse reports the resolved access state for a (user, module) pair.
type AccessResponse struct {
	HasAccess bool   `json:"hasAccess"`
	Reason    string `json:"reason"`
	Status    string `json:"status,omitempty"`
}

// ModuleLite summarizes a training module in access and status responses.
type ModuleLite struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	IsCompulsory bool    `json:"is_compulsory"`
}

// NewModuleLite converts a TrainingModule model into its summary form.
func NewModuleLite(model models.TrainingModule) ModuleLite {
	return ModuleLite{
		ID:           model.ID,
		Name:         model.Name,
		Price:        model.Price,
		IsCompulsory: model.IsCompulsory,
	}
}

// PurchaseDetail describes a purchase with its linked payment state.
type PurchaseDetail struct {
	ID                   uint      `json:"id"`
	Status               string    `json:"status"`
	PaymentID            uint      `json:"payment_id"`
	PaymentStatus        string    `json:"payment_status"`
	CompletionPercentage int       `json:"completion_percentage"`
	PurchaseDate         time.Time `json:"purchase_date"`
}

// NewPurchaseDetail converts a ModulePurchase model into its DTO form.
func NewPurchaseDetail(model models.ModulePurchase) PurchaseDetail {
	return PurchaseDetail{
		ID:                   model.ID,
		Status:               model.Status,
		PaymentID:            model.PaymentID,
		PaymentStatus:        model.Payment.Status,
		CompletionPercentage: model.CompletionPercentage,
		PurchaseDate:         model.PurchaseDate,
	}
}

// PurchaseStatusResponse is returned by the purchase-status endpoint.
type PurchaseStatusResponse struct {
	Status   string          `json:"status"`
	Module   ModuleLite      `json:"module"`
	Purchase *PurchaseDetail `json:"purchase,omitempty"`
}
