// internal/workers/data-access/query-postgresql/queries/ticket.go
package queries

import (
	"context"
	"database/sql"
	"time"
)

func TicketDetails(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	ticketID, ok := params["ticketId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id, positionTitle, companyName, location, status string
	var requiredSkills, preferredSkills string
	var budgetMin, budgetMax sql.NullFloat64
	var budgetCurrency, experienceLevel sql.NullString
	var createdAt, updatedAt string

	err := db.QueryRowContext(ctx, `
		SELECT id, position_title, company_name, required_skills, preferred_skills,
		       budget_min, budget_max, budget_currency, location, experience_level,
		       status, created_at, updated_at
		FROM tickets
		WHERE id = $1`, ticketID).Scan(
		&id, &positionTitle, &companyName,
		&requiredSkills, &preferredSkills,
		&budgetMin, &budgetMax, &budgetCurrency,
		&location, &experienceLevel,
		&status, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"id":              id,
		"positionTitle":   positionTitle,
		"companyName":     companyName,
		"requiredSkills":  requiredSkills,
		"preferredSkills": preferredSkills,
		"location":        location,
		"status":          status,
		"createdAt":       createdAt,
		"updatedAt":       updatedAt,
	}
	if budgetMax.Valid {
		result["budgetMin"] = budgetMin.Float64
		result["budgetMax"] = budgetMax.Float64
		result["budgetCurrency"] = budgetCurrency.String
	}
	if experienceLevel.Valid {
		result["experienceLevel"] = experienceLevel.String
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

func TicketPlacements(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	ticketID, ok := params["ticketId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT id, ticket_id, profiler_id, status, match_score, proposed_by, created_at
		FROM placements
		WHERE ticket_id = $1
		ORDER BY created_at DESC`, ticketID)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, tID, profilerID, status, proposedBy, createdAt string
		var matchScore float64
		err := rows.Scan(&id, &tID, &profilerID, &status, &matchScore, &proposedBy, &createdAt)
		if err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"id":         id,
			"ticketId":   tID,
			"profilerId": profilerID,
			"status":     status,
			"matchScore": matchScore,
			"proposedBy": proposedBy,
			"createdAt":  createdAt,
		})
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}
