// internal/models/onboarding.go
package models

// Onboarding tracks post-placement onboarding progress for a candidate.
type Onboarding struct {
	ID          string `json:"id"`
	PlacementID string `json:"placementId"`
	ProfilerID  string `json:"profilerId"`
	Status      string `json:"status"`
	StartDate   string `json:"startDate,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Onboarding status values.
const (
	OnboardingStatusInitiated  = "initiated"
	OnboardingStatusInProgress = "in_progress"
	OnboardingStatusCompleted  = "completed"
	OnboardingStatusCancelled  = "cancelled"
)
