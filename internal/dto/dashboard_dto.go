package dto

import "time"

// DashboardProgressEntry summarizes one training-progress row.
type DashboardProgressEntry struct {
	ModuleID       uint       `json:"module_id"`
	Status         string     `json:"status"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
}

// GuideDashboardResponse aggregates a guide's modules, progress, and
// certifications. Served from cache when fresh.
type GuideDashboardResponse struct {
	Modules        []PurchasedModuleResponse `json:"modules"`
	Progress       []DashboardProgressEntry  `json:"progress"`
	Certifications []CertificationResponse   `json:"certifications"`
	GeneratedAt    time.Time                 `json:"generated_at"`
	CacheHit       bool                      `json:"-"`
}
