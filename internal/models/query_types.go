// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeTicketDetails    QueryType = "ticket_details"
	QueryTypeProfilerProfile  QueryType = "profiler_profile"
	QueryTypeProfilerPool     QueryType = "profiler_pool"
	QueryTypeTicketPlacements QueryType = "ticket_placements"
	QueryTypeOnboardingStatus QueryType = "onboarding_status"
)
