// internal/workers/intelligence/market-snapshot/config.go
package marketsnapshot

import "time"

type Config struct {
	Timeout       time.Duration
	TicketIndex   string
	ProfilerIndex string
	SnapshotTTL   time.Duration
	SkillLimit    int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       30 * time.Second,
		TicketIndex:   "tickets",
		ProfilerIndex: "profilers",
		SnapshotTTL:   15 * time.Minute,
		SkillLimit:    20,
	}
}
