package models

import "time"

// PaymentTransaction is the ledger record for a purchase or license fee.
// It is created by enrollment and mutated only by the approval cascade.
type PaymentTransaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	Purpose         string    `gorm:"size:255;not null" json:"purpose"`
	Method          string    `gorm:"size:32;not null" json:"method"`
	Amount          float64   `gorm:"not null" json:"amount"`
	Status          string    `gorm:"size:32;not null;default:pending" json:"status"`
	ModuleID        *uint     `gorm:"index" json:"module_id"`
	ReceiptURL      string    `gorm:"size:512" json:"receipt_url"`
	TransactionDate time.Time `gorm:"not null" json:"transaction_date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	User            User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
}

const (
	// PaymentStatusPending marks a payment awaiting an admin decision.
	PaymentStatusPending = "pending"
	// PaymentStatusApproved marks a captured payment.
	PaymentStatusApproved = "approved"
	// PaymentStatusRejected marks a declined payment.
	PaymentStatusRejected = "rejected"
)

// IsTerminal reports whether the payment has reached a final state.
func (p PaymentTransaction) IsTerminal() bool {
	return p.Status == PaymentStatusApproved || p.Status == PaymentStatusRejected
}
