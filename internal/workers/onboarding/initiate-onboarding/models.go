// internal/workers/onboarding/initiate-onboarding/models.go
package initiateonboarding

type Input struct {
	PlacementID string `json:"placementId"`
	ProfilerID  string `json:"profilerId"`
	StartDate   string `json:"startDate,omitempty"` // ISO 8601 date
}

type Output struct {
	OnboardingID     string `json:"onboardingId"`
	OnboardingStatus string `json:"onboardingStatus"`
	TaskCount        int    `json:"taskCount"`
	CreatedAt        string `json:"createdAt"`
}
