// internal/workers/onboarding/initiate-onboarding/handler.go
package initiateonboarding

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"staffing-workers/internal/common/logger"
	"staffing-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "initiate-onboarding"
)

var (
	ErrOnboardingInsertFailed = errors.New("ONBOARDING_INSERT_FAILED")
	ErrDuplicateOnboarding    = errors.New("DUPLICATE_ONBOARDING")
)

// defaultTasks is the onboarding checklist, inserted in this order.
var defaultTasks = []string{
	"Sign contract",
	"Provision equipment and accounts",
	"Schedule team introductions",
}

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "UNKNOWN_ERROR"
		retries := int32(0)
		if errors.Is(err, ErrOnboardingInsertFailed) {
			errorCode = "ONBOARDING_INSERT_FAILED"
			retries = 3
		} else if errors.Is(err, ErrDuplicateOnboarding) {
			errorCode = "DUPLICATE_ONBOARDING"
			retries = 0
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	// One onboarding per placement, cancelled runs don't block a restart.
	var exists bool
	err := h.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM onboardings
			WHERE placement_id = $1 AND status <> 'cancelled'
		)`, input.PlacementID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrOnboardingInsertFailed, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: onboarding already exists for placement %s",
			ErrDuplicateOnboarding, input.PlacementID)
	}

	onboardingID := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", ErrOnboardingInsertFailed, err)
	}
	defer tx.Rollback()

	var startDate sql.NullString
	if input.StartDate != "" {
		startDate = sql.NullString{String: input.StartDate, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO onboardings (
			id, placement_id, profiler_id, status, start_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		onboardingID,
		input.PlacementID,
		input.ProfilerID,
		models.OnboardingStatusInitiated,
		startDate,
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %v", ErrOnboardingInsertFailed, err)
	}

	for i, title := range defaultTasks {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO onboarding_tasks (
				id, onboarding_id, position, title, completed, created_at
			) VALUES ($1, $2, $3, $4, false, $5)`,
			uuid.New().String(),
			onboardingID,
			i+1,
			title,
			createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: task insert failed: %v", ErrOnboardingInsertFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit failed: %v", ErrOnboardingInsertFailed, err)
	}

	// Audit entry is non-critical, log and continue on failure.
	auditDetailsJSON, err := json.Marshal(map[string]interface{}{
		"placementId": input.PlacementID,
		"profilerId":  input.ProfilerID,
		"taskCount":   len(defaultTasks),
	})
	if err != nil {
		h.logger.Warn("failed to marshal audit log details", map[string]interface{}{
			"error": err,
		})
		auditDetailsJSON = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"onboarding_initiated",
		"onboarding",
		onboardingID,
		auditDetailsJSON,
		createdAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":        err,
			"onboardingId": onboardingID,
		})
	}

	h.logger.Info("onboarding initiated", map[string]interface{}{
		"onboardingId": onboardingID,
		"placementId":  input.PlacementID,
		"profilerId":   input.ProfilerID,
		"taskCount":    len(defaultTasks),
	})

	return &Output{
		OnboardingID:     onboardingID,
		OnboardingStatus: models.OnboardingStatusInitiated,
		TaskCount:        len(defaultTasks),
		CreatedAt:        createdAt,
	}, nil
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
	} else {
		h.logger.Info("job completed successfully", map[string]interface{}{
			"jobKey": job.Key,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

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
