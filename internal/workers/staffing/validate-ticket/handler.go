// internal/workers/staffing/validate-ticket/handler.go
package validateticket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"staffing-workers/internal/common/logger"
	"staffing-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-ticket"
)

var (
	ErrTicketValidationFailed = errors.New("TICKET_VALIDATION_FAILED")
)

// ticketSchema is the JSON schema every incoming staffing request must
// satisfy before it enters the matching pipeline.
const ticketSchema = `{
	"type": "object",
	"required": ["id", "positionTitle", "companyName", "location"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"positionTitle": {"type": "string", "minLength": 1, "maxLength": 200},
		"companyName": {"type": "string", "minLength": 1, "maxLength": 200},
		"location": {"type": "string", "minLength": 1},
		"requiredSkills": {"type": "array", "items": {"type": "string"}},
		"preferredSkills": {"type": "array", "items": {"type": "string"}},
		"budget": {
			"type": "object",
			"required": ["max", "currency"],
			"properties": {
				"min": {"type": "number", "minimum": 0},
				"max": {"type": "number", "minimum": 0},
				"currency": {"type": "string", "minLength": 3, "maxLength": 3}
			}
		},
		"startTiming": {"type": "string"},
		"experienceLevel": {
			"type": "string",
			"enum": ["junior", "mid", "mid-level", "senior", "lead", "principal"]
		}
	}
}`

type Handler struct {
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
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
		h.failJob(client, job, "PARSE_ERROR", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "TICKET_VALIDATION_FAILED", err.Error())
		return
	}

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
		h.logger.Error("failed to complete job", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.Ticket == nil {
		return nil, fmt.Errorf("%w: ticket payload missing", ErrTicketValidationFailed)
	}

	result, err := validation.ValidateAgainstSchema(input.Ticket, ticketSchema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTicketValidationFailed, err)
	}

	h.logger.Info("validation completed", map[string]interface{}{
		"ticketId":   input.Ticket["id"],
		"isValid":    result.Valid,
		"errorCount": len(result.Errors),
	})

	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrTicketValidationFailed,
			strings.Join(result.GetErrorMessages(), "; "))
	}

	if err := checkBudgetRange(input.Ticket); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTicketValidationFailed, err)
	}

	return &Output{
		IsValid:          true,
		ValidatedTicket:  sanitizeTicket(input.Ticket),
		ValidationErrors: []validation.ValidationError{},
	}, nil
}

// checkBudgetRange enforces min <= max on the budget object, a cross-field
// constraint the schema cannot express.
func checkBudgetRange(ticket map[string]interface{}) error {
	budget, ok := ticket["budget"].(map[string]interface{})
	if !ok {
		return nil
	}
	min, hasMin := toNumber(budget["min"])
	max, hasMax := toNumber(budget["max"])
	if hasMin && hasMax && min > max {
		return fmt.Errorf("budget: min %.2f exceeds max %.2f", min, max)
	}
	return nil
}

func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// sanitizeTicket trims string fields and drops empty skill entries so the
// matcher sees normalized data.
func sanitizeTicket(ticket map[string]interface{}) map[string]interface{} {
	sanitized := make(map[string]interface{}, len(ticket))
	for key, value := range ticket {
		switch v := value.(type) {
		case string:
			sanitized[key] = strings.TrimSpace(v)
		case []interface{}:
			if key == "requiredSkills" || key == "preferredSkills" {
				skills := make([]interface{}, 0, len(v))
				for _, item := range v {
					if s, ok := item.(string); ok {
						if trimmed := strings.TrimSpace(s); trimmed != "" {
							skills = append(skills, trimmed)
						}
					}
				}
				sanitized[key] = skills
				continue
			}
			sanitized[key] = v
		default:
			sanitized[key] = v
		}
	}
	return sanitized
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
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
