// internal/workers/staffing/create-placement/handler.go
package createplacement

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
	TaskType = "create-placement"
)

var (
	ErrPlacementInsertFailed = errors.New("PLACEMENT_INSERT_FAILED")
	ErrDuplicatePlacement    = errors.New("DUPLICATE_PLACEMENT")
)

type Handler struct {
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "UNKNOWN_ERROR"
		retries := int32(0)
		if errors.Is(err, ErrPlacementInsertFailed) {
			errorCode = "PLACEMENT_INSERT_FAILED"
			retries = 3
		} else if errors.Is(err, ErrDuplicatePlacement) {
			errorCode = "DUPLICATE_PLACEMENT"
			retries = 0
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	// At most one non-withdrawn placement per (ticket, profiler) pair. The
	// database carries a matching partial unique index, this check surfaces
	// the business error before the constraint fires.
	var exists bool
	err := h.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM placements
			WHERE ticket_id = $1 AND profiler_id = $2 AND status <> 'withdrawn'
		)`, input.TicketID, input.ProfilerID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrPlacementInsertFailed, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: placement already exists for ticket %s and profiler %s",
			ErrDuplicatePlacement, input.TicketID, input.ProfilerID)
	}

	placementID := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO placements (
			id, ticket_id, profiler_id, status, match_score, proposed_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		placementID,
		input.TicketID,
		input.ProfilerID,
		models.PlacementStatusProposed,
		input.MatchScore,
		input.ProposedBy,
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %v", ErrPlacementInsertFailed, err)
	}

	// Audit entry is non-critical, log and continue on failure.
	auditDetailsJSON, err := json.Marshal(map[string]interface{}{
		"ticketId":   input.TicketID,
		"profilerId": input.ProfilerID,
		"matchScore": input.MatchScore,
		"proposedBy": input.ProposedBy,
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
		"placement_created",
		"placement",
		placementID,
		auditDetailsJSON,
		createdAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":       err,
			"placementId": placementID,
		})
	}

	h.logger.Info("placement created", map[string]interface{}{
		"placementId": placementID,
		"ticketId":    input.TicketID,
		"profilerId":  input.ProfilerID,
		"matchScore":  input.MatchScore,
	})

	return &Output{
		PlacementID:     placementID,
		PlacementStatus: models.PlacementStatusProposed,
		CreatedAt:       createdAt,
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
