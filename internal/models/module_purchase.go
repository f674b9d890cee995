package models

import "time"

// ModulePurchase is the access-granting record for a (user, module) pair,
// distinct from the payment ledger entry it references. The partial unique
// index enforces at most one active purchase per (user, module) even under
// concurrent enrollment.
type ModulePurchase struct {
	ID                   uint               `gorm:"primaryKey" json:"id"`
	UserID               uint               `gorm:"not null;uniqueIndex:idx_active_purchase,where:is_active = true" json:"user_id"`
	ModuleID             uint               `gorm:"not null;uniqueIndex:idx_active_purchase,where:is_active = true" json:"module_id"`
	PaymentID            uint               `gorm:"not null" json:"payment_id"`
	Status               string             `gorm:"size:32;not null;default:pending" json:"status"`
	IsActive             bool               `gorm:"not null" json:"is_active"`
	CompletionPercentage int                `gorm:"not null;default:0" json:"completion_percentage"`
	PurchaseDate         time.Time          `gorm:"not null" json:"purchase_date"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
	Module               TrainingModule     `gorm:"foreignKey:ModuleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"module"`
	Payment              PaymentTransaction `gorm:"foreignKey:PaymentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"payment"`
}

const (
	// PurchaseStatusPending marks a purchase whose payment is not yet approved.
	PurchaseStatusPending = "pending"
	// PurchaseStatusActive marks a purchase granting access.
	PurchaseStatusActive = "active"
	// PurchaseStatusSuspended marks a purchase whose access has been revoked.
	PurchaseStatusSuspended = "suspended"
)
