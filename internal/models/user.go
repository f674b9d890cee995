package models

import "time"

// User represents a registered account resolved from the external auth provider.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UID       string    `gorm:"size:128;uniqueIndex;not null" json:"uid"`
	FirstName string    `gorm:"size:100" json:"first_name"`
	LastName  string    `gorm:"size:100" json:"last_name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	Status    string    `gorm:"size:32;not null;default:pending" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	// RoleGuide identifies park guide accounts.
	RoleGuide = "park_guide"
	// RoleAdmin identifies administrator accounts.
	RoleAdmin = "admin"
)

const (
	// UserStatusPending marks an account awaiting admin review.
	UserStatusPending = "pending"
	// UserStatusApproved marks an account cleared to use the system.
	UserStatusApproved = "approved"
	// UserStatusRejected marks an account that failed review. Accounts are
	// never hard-deleted; rejection is a status transition.
	UserStatusRejected = "rejected"
)

// IsApproved reports whether the account may perform authenticated operations.
func (u User) IsApproved() bool {
	return u.Status == UserStatusApproved
}
