package models

import "time"

// TrainingModule is a purchasable unit of guide training content.
type TrainingModule struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	Price        float64   `gorm:"not null;default:0" json:"price"`
	IsCompulsory bool      `gorm:"not null;default:false" json:"is_compulsory"`
	Duration     string    `gorm:"size:64" json:"duration"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsFree reports whether the module is accessible without purchase.
func (m TrainingModule) IsFree() bool {
	return m.Price == 0
}
