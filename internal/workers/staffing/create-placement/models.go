// internal/workers/staffing/create-placement/models.go
package createplacement

type Input struct {
	TicketID   string  `json:"ticketId"`
	ProfilerID string  `json:"profilerId"`
	MatchScore float64 `json:"matchScore"`
	ProposedBy string  `json:"proposedBy,omitempty"`
}

type Output struct {
	PlacementID     string `json:"placementId"`
	PlacementStatus string `json:"placementStatus"`
	CreatedAt       string `json:"createdAt"`
}
