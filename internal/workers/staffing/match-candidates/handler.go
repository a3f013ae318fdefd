// internal/workers/staffing/match-candidates/handler.go
package matchcandidates

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	stderrors "staffing-workers/internal/common/errors"
	"staffing-workers/internal/common/logger"
	"staffing-workers/internal/common/metrics"
	"staffing-workers/internal/matching"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "match-candidates"
)

type Handler struct {
	config     *Config
	db         *sql.DB
	redis      *redis.Client
	logger     logger.Logger
	errHandler *stderrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		db:         db,
		redis:      redis,
		logger:     scoped,
		errHandler: stderrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		code := "MATCH_FAILED"
		var stdErr *stderrors.StandardError
		if errors.As(err, &stdErr) {
			code = string(stdErr.Code)
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	ticket := input.Ticket
	if ticket == nil {
		if input.TicketID == "" {
			return nil, stderrors.NewTicketNotFoundError("")
		}
		loaded, err := h.getTicket(ctx, input.TicketID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, stderrors.NewTicketNotFoundError(input.TicketID)
			}
			return nil, stderrors.NewQueryExecutionFailedError("ticket_details", err)
		}
		ticket = loaded
	}

	candidates := input.Candidates
	if candidates == nil {
		pool, err := h.getCandidatePool(ctx, ticket.ID)
		if err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("profiler_pool", err)
		}
		candidates = pool
	}

	placements, err := h.getActivePlacements(ctx, ticket.ID)
	if err != nil {
		h.logger.Warn("failed to load placements, matching without placement flags", map[string]interface{}{
			"ticketId": ticket.ID,
			"error":    err,
		})
		placements = nil
	}

	limit := input.Limit
	if limit == nil && h.config.MaxResults > 0 {
		maxResults := h.config.MaxResults
		limit = &maxResults
	}

	opts := matching.Options{
		AvailabilityOnly: input.AvailabilityOnly,
		MinMatchScore:    input.MinMatchScore,
		Limit:            limit,
		Weights:          h.config.Weights,
		Placements:       placements,
	}

	results, skipped, err := matching.Match(*ticket, candidates, opts)
	if err != nil {
		return nil, stderrors.NewMatchOptionsInvalidError(err.Error())
	}

	metrics.MatchCandidatesEvaluated.WithLabelValues("scored").Add(float64(len(results)))
	metrics.MatchCandidatesEvaluated.WithLabelValues("skipped").Add(float64(len(skipped)))

	h.logger.Info("candidates matched", map[string]interface{}{
		"ticketId": ticket.ID,
		"matched":  len(results),
		"skipped":  len(skipped),
		"pool":     len(candidates),
	})

	return &Output{
		Ticket:           *ticket,
		MatchedProfilers: results,
		Skipped:          skipped,
		TotalEvaluated:   len(candidates),
	}, nil
}

func (h *Handler) getTicket(ctx context.Context, ticketID string) (*matching.Ticket, error) {
	row := h.db.QueryRowContext(ctx, `
		SELECT id, position_title, company_name, required_skills, preferred_skills,
		       budget_min, budget_max, budget_currency, location, experience_level
		FROM tickets WHERE id = $1`, ticketID)

	var ticket matching.Ticket
	var requiredSkills, preferredSkills []byte
	var budgetMin, budgetMax sql.NullFloat64
	var budgetCurrency, experienceLevel sql.NullString

	err := row.Scan(&ticket.ID, &ticket.PositionTitle, &ticket.CompanyName,
		&requiredSkills, &preferredSkills,
		&budgetMin, &budgetMax, &budgetCurrency, &ticket.Location, &experienceLevel)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(requiredSkills, &ticket.RequiredSkills); err != nil {
		ticket.RequiredSkills = []string{}
	}
	if err := json.Unmarshal(preferredSkills, &ticket.PreferredSkills); err != nil {
		ticket.PreferredSkills = []string{}
	}
	if budgetMax.Valid {
		ticket.Budget = &matching.BudgetRange{
			Min:      budgetMin.Float64,
			Max:      budgetMax.Float64,
			Currency: budgetCurrency.String,
		}
	}
	ticket.ExperienceLevel = experienceLevel.String

	return &ticket, nil
}

// getCandidatePool loads the profiler pool for a ticket, cache-aside through
// Redis so repeated match requests for the same ticket skip the database.
func (h *Handler) getCandidatePool(ctx context.Context, ticketID string) ([]matching.Candidate, error) {
	cacheKey := "ticket:pool:" + ticketID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var pool []matching.Candidate
		if err := json.Unmarshal([]byte(val), &pool); err == nil {
			metrics.MatchPoolCacheHits.WithLabelValues("hit").Inc()
			return pool, nil
		}
	}
	metrics.MatchPoolCacheHits.WithLabelValues("miss").Inc()

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, name, email, location, availability_status, skills,
		       years_of_experience, experience_level, hourly_rate, daily_rate, currency
		FROM profilers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pool := []matching.Candidate{}
	for rows.Next() {
		var candidate matching.Candidate
		var skills []byte
		var experienceLevel, currency sql.NullString
		var hourlyRate, dailyRate sql.NullFloat64

		err := rows.Scan(&candidate.ID, &candidate.Name, &candidate.Email,
			&candidate.Location, &candidate.AvailabilityStatus, &skills,
			&candidate.YearsOfExperience, &experienceLevel, &hourlyRate, &dailyRate, &currency)
		if err != nil {
			return nil, err
		}

		// Unparseable skill data leaves Skills nil, the matcher reports the
		// record as skipped instead of failing the batch.
		if len(skills) > 0 {
			var parsed []matching.Skill
			if err := json.Unmarshal(skills, &parsed); err == nil {
				candidate.Skills = parsed
			}
		}
		candidate.ExperienceLevel = experienceLevel.String
		candidate.Currency = currency.String
		if hourlyRate.Valid {
			rate := hourlyRate.Float64
			candidate.HourlyRate = &rate
		}
		if dailyRate.Valid {
			rate := dailyRate.Float64
			candidate.DailyRate = &rate
		}

		pool = append(pool, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	data, _ := json.Marshal(pool)
	h.redis.Set(ctx, cacheKey, data, h.config.PoolCacheTTL)

	return pool, nil
}

// getActivePlacements maps profiler ID to the ID of that profiler's
// non-withdrawn placement on the ticket.
func (h *Handler) getActivePlacements(ctx context.Context, ticketID string) (map[string]string, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT profiler_id, id FROM placements
		WHERE ticket_id = $1 AND status <> 'withdrawn'`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	placements := make(map[string]string)
	for rows.Next() {
		var profilerID, placementID string
		if err := rows.Scan(&profilerID, &placementID); err != nil {
			return nil, err
		}
		placements[profilerID] = placementID
	}
	return placements, rows.Err()
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
