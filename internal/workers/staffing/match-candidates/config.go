// internal/workers/staffing/match-candidates/config.go
package matchcandidates

import (
	"time"

	"staffing-workers/internal/matching"
)

type Config struct {
	PoolCacheTTL time.Duration
	Timeout      time.Duration
	MaxResults   int
	Weights      *matching.Weights
}

func LoadConfig() *Config {
	return &Config{
		PoolCacheTTL: 5 * time.Minute,
		Timeout:      30 * time.Second,
		MaxResults:   100,
	}
}
