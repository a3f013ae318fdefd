// internal/workers/staffing/match-candidates/models.go
package matchcandidates

import "staffing-workers/internal/matching"

type Input struct {
	TicketID         string              `json:"ticketId"`
	Ticket           *matching.Ticket    `json:"ticket,omitempty"`
	Candidates       []matching.Candidate `json:"candidates,omitempty"`
	AvailabilityOnly bool                `json:"availabilityOnly"`
	MinMatchScore    float64             `json:"minMatchScore"`
	Limit            *int                `json:"limit,omitempty"`
}

type Output struct {
	Ticket           matching.Ticket    `json:"ticket"`
	MatchedProfilers []matching.Result  `json:"matchedProfilers"`
	Skipped          []matching.Skipped `json:"skipped,omitempty"`
	TotalEvaluated   int                `json:"totalEvaluated"`
}
