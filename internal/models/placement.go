// internal/models/placement.go
package models

// Placement is a proposed or confirmed assignment of a candidate to a ticket.
// At most one non-withdrawn placement may exist per (ticket, profiler) pair.
type Placement struct {
	ID         string  `json:"id"`
	TicketID   string  `json:"ticketId"`
	ProfilerID string  `json:"profilerId"`
	Status     string  `json:"status"`
	MatchScore float64 `json:"matchScore,omitempty"`
	ProposedBy string  `json:"proposedBy,omitempty"`
	CreatedAt  string  `json:"createdAt"`
	UpdatedAt  string  `json:"updatedAt,omitempty"`
}

// Placement status values.
const (
	PlacementStatusProposed  = "proposed"
	PlacementStatusAccepted  = "accepted"
	PlacementStatusRejected  = "rejected"
	PlacementStatusWithdrawn = "withdrawn"
)
