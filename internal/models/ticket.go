// internal/models/ticket.go
package models

// BudgetRange describes the money a ticket can spend on a candidate rate.
type BudgetRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

// Ticket is a staffing request describing a role to be filled.
type Ticket struct {
	ID              string       `json:"id"`
	PositionTitle   string       `json:"positionTitle"`
	CompanyName     string       `json:"companyName"`
	RequiredSkills  []string     `json:"requiredSkills"`
	PreferredSkills []string     `json:"preferredSkills"`
	Budget          *BudgetRange `json:"budget,omitempty"`
	Location        string       `json:"location"`
	StartTiming     string       `json:"startTiming,omitempty"`
	ExperienceLevel string       `json:"experienceLevel,omitempty"`
	Status          string       `json:"status"`
	CreatedAt       string       `json:"createdAt"`
	UpdatedAt       string       `json:"updatedAt,omitempty"`
}
