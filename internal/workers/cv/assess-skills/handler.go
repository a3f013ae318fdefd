// internal/workers/cv/assess-skills/handler.go
package assessskills

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	commonhttp "staffing-workers/internal/common/http"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "assess-skills"
)

var (
	ErrAssessmentTimeout  = errors.New("ASSESSMENT_TIMEOUT")
	ErrCVAssessmentFailed = errors.New("CV_ASSESSMENT_FAILED")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config *Config
	client *commonhttp.Client
	logger Logger
}

func NewHandler(config *Config, log Logger) *Handler {
	return &Handler{
		config: config,
		// No client-level timeout, the request context bounds each call.
		client: commonhttp.NewClient(0),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("parse input: %w", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		retries := int32(0)
		if errors.Is(err, ErrAssessmentTimeout) {
			retries = 1
		} else if errors.Is(err, ErrCVAssessmentFailed) {
			retries = 1
		}
		h.failJob(client, job, err, retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.CVText) == "" {
		return nil, fmt.Errorf("%w: empty CV text", ErrCVAssessmentFailed)
	}

	prompt := h.buildPrompt(input)
	requestBody := map[string]interface{}{
		"prompt": prompt,
		"context": map[string]interface{}{
			"profilerId":     input.ProfilerID,
			"requiredSkills": input.RequiredSkills,
		},
		"max_tokens":  h.config.MaxTokens,
		"temperature": h.config.Temperature,
	}

	body, _ := json.Marshal(requestBody)
	req, err := http.NewRequestWithContext(ctx, "POST", h.config.GenAIBaseURL+"/api/ai/assess-cv", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCVAssessmentFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrAssessmentTimeout
			}
		}

		resp, lastErr = h.client.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return nil, ErrAssessmentTimeout
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrAssessmentTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrCVAssessmentFailed, lastErr)
	}

	if resp == nil {
		return nil, fmt.Errorf("%w: no successful response after retries", ErrCVAssessmentFailed)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Skills            []AssessedSkill `json:"skills"`
		YearsOfExperience float64         `json:"yearsOfExperience"`
		ExperienceLevel   string          `json:"experienceLevel"`
		Summary           string          `json:"summary"`
		Confidence        float64         `json:"confidence"`
	}
	decoder := json.NewDecoder(resp.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrCVAssessmentFailed, err)
	}

	// Validate response
	if len(apiResponse.Skills) == 0 {
		return nil, fmt.Errorf("%w: assessment returned no skills", ErrCVAssessmentFailed)
	}
	for _, s := range apiResponse.Skills {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("%w: assessment contains unnamed skill", ErrCVAssessmentFailed)
		}
	}

	if apiResponse.YearsOfExperience < 0 {
		apiResponse.YearsOfExperience = 0
	}

	if apiResponse.Confidence < 0.0 || apiResponse.Confidence > 1.0 {
		apiResponse.Confidence = 0.5
	}

	h.logger.Info("CV assessment completed", map[string]interface{}{
		"profilerId": input.ProfilerID,
		"skillCount": len(apiResponse.Skills),
		"confidence": apiResponse.Confidence,
	})

	return &Output{
		ProfilerID:        input.ProfilerID,
		Skills:            apiResponse.Skills,
		YearsOfExperience: apiResponse.YearsOfExperience,
		ExperienceLevel:   apiResponse.ExperienceLevel,
		Summary:           apiResponse.Summary,
		Confidence:        apiResponse.Confidence,
	}, nil
}

func (h *Handler) buildPrompt(input *Input) string {
	var parts []string

	parts = append(parts, "You are a technical recruiter. Assess the candidate's skills based ONLY on the CV text below.")
	parts = append(parts, fmt.Sprintf("\nCV Text:\n%s", input.CVText))

	if len(input.RequiredSkills) > 0 {
		parts = append(parts, "\nPay particular attention to these skills:")
		for _, s := range input.RequiredSkills {
			parts = append(parts, fmt.Sprintf("- %s", s))
		}
	}

	parts = append(parts, "\nInstructions:")
	parts = append(parts, "- List every skill with a level: beginner, intermediate, advanced, or expert")
	parts = append(parts, "- Estimate total years of professional experience")
	parts = append(parts, "- Classify the seniority: junior, mid-level, senior, lead, or principal")
	parts = append(parts, "- Return confidence score between 0.0 and 1.0")
	parts = append(parts, "- Respond with JSON only")

	return strings.Join(parts, "\n")
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, retries int32) {
	errorCode := "UNKNOWN_ERROR"
	if errors.Is(err, ErrAssessmentTimeout) {
		errorCode = "ASSESSMENT_TIMEOUT"
	} else if errors.Is(err, ErrCVAssessmentFailed) {
		errorCode = "CV_ASSESSMENT_FAILED"
	}

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": errorCode,
		"retries":   retries,
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(err.Error()).
		Send(context.Background())
}

// Execute method for direct usage
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
