// internal/workers/intelligence/market-snapshot/models.go
package marketsnapshot

type Input struct {
	Region       string `json:"region,omitempty"` // empty means "global"
	SkillLimit   int    `json:"skillLimit,omitempty"`
	ForceRefresh bool   `json:"forceRefresh,omitempty"`
}

type Output struct {
	Region      string      `json:"region"`
	GeneratedAt string      `json:"generatedAt"` // ISO 8601
	Skills      []SkillStat `json:"skills"`
	FromCache   bool        `json:"fromCache"`
}

// SkillStat aggregates demand and supply for one skill.
type SkillStat struct {
	Skill         string  `json:"skill"`
	DemandCount   int64   `json:"demandCount"`
	SupplyCount   int64   `json:"supplyCount"`
	AvgHourlyRate float64 `json:"avgHourlyRate"`
	ScarcityRatio float64 `json:"scarcityRatio"`
}
