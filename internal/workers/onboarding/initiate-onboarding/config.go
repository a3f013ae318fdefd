// internal/workers/onboarding/initiate-onboarding/config.go
package initiateonboarding

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
