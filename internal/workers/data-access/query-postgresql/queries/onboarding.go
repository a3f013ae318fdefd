// internal/workers/data-access/query-postgresql/queries/onboarding.go
package queries

import (
	"context"
	"database/sql"
	"time"
)

func OnboardingStatus(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	placementID, ok := params["placementId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id, pID, profilerID, status, createdAt string
	var startDate sql.NullString

	err := db.QueryRowContext(ctx, `
		SELECT id, placement_id, profiler_id, status, start_date, created_at
		FROM onboardings
		WHERE placement_id = $1`, placementID).Scan(
		&id, &pID, &profilerID, &status, &startDate, &createdAt,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	var completed, total int
	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE completed), COUNT(*)
		FROM onboarding_tasks
		WHERE onboarding_id = $1`, id).Scan(&completed, &total)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"id":             id,
		"placementId":    pID,
		"profilerId":     profilerID,
		"status":         status,
		"tasksCompleted": completed,
		"taskCount":      total,
		"createdAt":      createdAt,
	}
	if startDate.Valid {
		result["startDate"] = startDate.String
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}
