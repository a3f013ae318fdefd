// internal/workers/cv/assess-skills/handler_test.go
package assessskills

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{
		t:      t,
		fields: make(map[string]interface{}),
	}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	newLogger := &TestLogger{
		t:      l.t,
		fields: make(map[string]interface{}),
	}
	for k, v := range l.fields {
		newLogger.fields[k] = v
	}
	for k, v := range fields {
		newLogger.fields[k] = v
	}
	return newLogger
}

func (l *TestLogger) mergeFields(fields map[string]interface{}) map[string]interface{} {
	allFields := make(map[string]interface{})
	for k, v := range l.fields {
		allFields[k] = v
	}
	for k, v := range fields {
		allFields[k] = v
	}
	return allFields
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig(baseURL string) *Config {
	return &Config{
		GenAIBaseURL: baseURL,
		Timeout:      5 * time.Second,
		MaxRetries:   1,
		MaxTokens:    500,
		Temperature:  0.2,
	}
}

func createTestInput() *Input {
	return &Input{
		ProfilerID:     "profiler-001",
		CVText:         "Ten years building backend systems in Go and PostgreSQL. Led a platform team of six.",
		RequiredSkills: []string{"Go", "PostgreSQL"},
	}
}

func assessmentResponse() map[string]interface{} {
	return map[string]interface{}{
		"skills": []map[string]interface{}{
			{"name": "Go", "level": "expert"},
			{"name": "PostgreSQL", "level": "advanced"},
		},
		"yearsOfExperience": 10.0,
		"experienceLevel":   "senior",
		"summary":           "Seasoned backend engineer with platform leadership experience.",
		"confidence":        0.85,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	var capturedRequest map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/ai/assess-cv", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&capturedRequest))
		json.NewEncoder(w).Encode(assessmentResponse())
	}))
	defer server.Close()

	handler := NewHandler(createTestConfig(server.URL), NewTestLogger(t))

	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, "profiler-001", output.ProfilerID)
	require.Len(t, output.Skills, 2)
	assert.Equal(t, "Go", output.Skills[0].Name)
	assert.Equal(t, "expert", output.Skills[0].Level)
	assert.Equal(t, 10.0, output.YearsOfExperience)
	assert.Equal(t, "senior", output.ExperienceLevel)
	assert.Equal(t, 0.85, output.Confidence)

	prompt, ok := capturedRequest["prompt"].(string)
	require.True(t, ok)
	assert.Contains(t, prompt, "Ten years building backend systems")
	assert.Contains(t, prompt, "- Go")
}

func TestHandler_Execute_EmptyCVText(t *testing.T) {
	handler := NewHandler(createTestConfig("http://localhost:0"), NewTestLogger(t))

	input := createTestInput()
	input.CVText = "   "

	output, err := handler.Execute(context.Background(), input)

	require.Error(t, err)
	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrCVAssessmentFailed)
}

func TestHandler_Execute_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid JSON", `{"skills": [`},
		{"unexpected field", `{"skills": [{"name": "Go", "level": "expert"}], "confidence": 0.9, "rating": 5}`},
		{"no skills", `{"skills": [], "confidence": 0.9}`},
		{"unnamed skill", `{"skills": [{"name": "  ", "level": "expert"}], "confidence": 0.9}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			handler := NewHandler(createTestConfig(server.URL), NewTestLogger(t))

			output, err := handler.Execute(context.Background(), createTestInput())

			require.Error(t, err)
			assert.Nil(t, output)
			assert.ErrorIs(t, err, ErrCVAssessmentFailed)
		})
	}
}

func TestHandler_Execute_RetriesOnServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(assessmentResponse())
	}))
	defer server.Close()

	handler := NewHandler(createTestConfig(server.URL), NewTestLogger(t))

	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, "senior", output.ExperienceLevel)
}

func TestHandler_Execute_ExhaustedRetriesFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	handler := NewHandler(createTestConfig(server.URL), NewTestLogger(t))

	output, err := handler.Execute(context.Background(), createTestInput())

	require.Error(t, err)
	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrCVAssessmentFailed)
	assert.Contains(t, err.Error(), "status 502")
}

func TestHandler_Execute_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		json.NewEncoder(w).Encode(assessmentResponse())
	}))
	defer server.Close()

	config := createTestConfig(server.URL)
	config.Timeout = 50 * time.Millisecond

	handler := NewHandler(config, NewTestLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	output, err := handler.Execute(ctx, createTestInput())

	require.Error(t, err)
	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrAssessmentTimeout)
}

func TestHandler_Execute_ConfidenceClamped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"skills": [{"name": "Go", "level": "expert"}], "yearsOfExperience": -2, "confidence": 1.7}`))
	}))
	defer server.Close()

	handler := NewHandler(createTestConfig(server.URL), NewTestLogger(t))

	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, 0.5, output.Confidence)
	assert.Equal(t, 0.0, output.YearsOfExperience)
}

func TestBuildPrompt_OmitsSkillSectionWhenEmpty(t *testing.T) {
	handler := NewHandler(createTestConfig("http://localhost:0"), NewTestLogger(t))

	input := createTestInput()
	input.RequiredSkills = nil

	prompt := handler.buildPrompt(input)

	assert.False(t, strings.Contains(prompt, "particular attention"))
	assert.Contains(t, prompt, "Respond with JSON only")
}
