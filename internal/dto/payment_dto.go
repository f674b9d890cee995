package dto

import (
	"time"

	"github.com/semenggoh/parkguide-api/internal/models"
)

// PaymentDecisionRequest updates a payment's status. The wire values
// pending/completed/failed are normalized to the ledger statuses.
type PaymentDecisionRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=pending completed failed approved rejected"`
}

// PaymentDecisionResponse reports the applied transition.
type PaymentDecisionResponse struct {
	Message       string `json:"message"`
	PaymentID     uint   `json:"paymentId"`
	PaymentStatus string `json:"paymentStatus"`
	PurchaseID    *uint  `json:"purchaseId,omitempty"`
}

// PaymentHistoryEntry is one ledger row in the caller's payment history.
type PaymentHistoryEntry struct {
	ID              uint      `json:"payment_id"`
	Purpose         string    `json:"purpose"`
	Method          string    `json:"method"`
	Amount          float64   `json:"amount"`
	Status          string    `json:"status"`
	ModuleID        *uint     `json:"module_id,omitempty"`
	ReceiptURL      string    `json:"receipt_url,omitempty"`
	TransactionDate time.Time `json:"transaction_date"`
}

// NewPaymentHistoryEntry converts a ledger model into its DTO form.
func NewPaymentHistoryEntry(model models.PaymentTransaction) PaymentHistoryEntry {
	return PaymentHistoryEntry{
		ID:              model.ID,
		Purpose:         model.Purpose,
		Method:          model.Method,
		Amount:          model.Amount,
		Status:          model.Status,
		ModuleID:        model.ModuleID,
		ReceiptURL:      model.ReceiptURL,
		TransactionDate: model.TransactionDate,
	}
}

// NewPaymentHistoryEntrySlice maps a slice of ledger rows.
func NewPaymentHistoryEntrySlice(payments []models.PaymentTransaction) []PaymentHistoryEntry {
	out := make([]PaymentHistoryEntry, 0, len(payments))
	for _, payment := range payments {
		out = append(out, NewPaymentHistoryEntry(payment))
	}
	return out
}
