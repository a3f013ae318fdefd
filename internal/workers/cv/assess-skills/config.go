// internal/workers/cv/assess-skills/config.go
package assessskills

import "time"

type Config struct {
	GenAIBaseURL string
	Timeout      time.Duration
	MaxRetries   int
	MaxTokens    int
	Temperature  float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
