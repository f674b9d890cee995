package models

import "time"

// Certification is a time-bounded credential issued after a passing quiz
// attempt. The unique index keeps automated issuance idempotent per
// (guide, module).
type Certification struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	GuideID    uint           `gorm:"not null;uniqueIndex:idx_guide_module_cert" json:"guide_id"`
	ModuleID   uint           `gorm:"not null;uniqueIndex:idx_guide_module_cert" json:"module_id"`
	IssuedDate time.Time      `gorm:"not null" json:"issued_date"`
	ExpiryDate time.Time      `gorm:"not null" json:"expiry_date"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	Module     TrainingModule `gorm:"foreignKey:ModuleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"module"`
}

// IsExpired reports whether the certification has lapsed at the reference time.
func (c Certification) IsExpired(reference time.Time) bool {
	return reference.After(c.ExpiryDate)
}
