// internal/workers/data-access/query-postgresql/queries/profiler.go
package queries

import (
	"context"
	"database/sql"
	"time"
)

func ProfilerProfile(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	profilerID, ok := params["profilerId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id, name, email, location, availabilityStatus, skills string
	var yearsOfExperience sql.NullFloat64
	var experienceLevel sql.NullString
	var hourlyRate, dailyRate sql.NullFloat64
	var currency sql.NullString

	err := db.QueryRowContext(ctx, `
		SELECT id, name, email, location, availability_status, skills,
		       years_of_experience, experience_level, hourly_rate, daily_rate, currency
		FROM profilers
		WHERE id = $1`, profilerID).Scan(
		&id, &name, &email, &location, &availabilityStatus, &skills,
		&yearsOfExperience, &experienceLevel, &hourlyRate, &dailyRate, &currency,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"id":                 id,
		"name":               name,
		"email":              email,
		"location":           location,
		"availabilityStatus": availabilityStatus,
		"skills":             skills,
	}
	if yearsOfExperience.Valid {
		result["yearsOfExperience"] = yearsOfExperience.Float64
	}
	if experienceLevel.Valid {
		result["experienceLevel"] = experienceLevel.String
	}
	if hourlyRate.Valid {
		result["hourlyRate"] = hourlyRate.Float64
	}
	if dailyRate.Valid {
		result["dailyRate"] = dailyRate.Float64
	}
	if currency.Valid {
		result["currency"] = currency.String
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

func ProfilerPool(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	start := time.Now()

	query := `
		SELECT id, name, location, availability_status, skills, experience_level
		FROM profilers`
	args := []interface{}{}

	if filters, ok := params["filters"].(map[string]interface{}); ok {
		if availability, ok := filters["availabilityStatus"].(string); ok && availability != "" {
			query += ` WHERE availability_status = $1`
			args = append(args, availability)
		}
	}
	query += ` ORDER BY id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, name, location, availabilityStatus, skills string
		var experienceLevel sql.NullString
		err := rows.Scan(&id, &name, &location, &availabilityStatus, &skills, &experienceLevel)
		if err != nil {
			return nil, 0, 0, err
		}
		row := map[string]interface{}{
			"id":                 id,
			"name":               name,
			"location":           location,
			"availabilityStatus": availabilityStatus,
			"skills":             skills,
		}
		if experienceLevel.Valid {
			row["experienceLevel"] = experienceLevel.String
		}
		results = append(results, row)
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}
