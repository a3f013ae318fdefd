// internal/workers/data-access/query-postgresql/models.go
package querypostgresql

import "staffing-workers/internal/models"

type Input struct {
	QueryType   string                 `json:"queryType"`
	TicketID    string                 `json:"ticketId,omitempty"`
	ProfilerID  string                 `json:"profilerId,omitempty"`
	PlacementID string                 `json:"placementId,omitempty"`
	Filters     map[string]interface{} `json:"filters,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType
