// internal/workers/cv/assess-skills/models.go
package assessskills

type Input struct {
	ProfilerID     string   `json:"profilerId"`
	CVText         string   `json:"cvText"`
	RequiredSkills []string `json:"requiredSkills,omitempty"`
}

type Output struct {
	ProfilerID        string          `json:"profilerId"`
	Skills            []AssessedSkill `json:"skills"`
	YearsOfExperience float64         `json:"yearsOfExperience"`
	ExperienceLevel   string          `json:"experienceLevel"`
	Summary           string          `json:"summary"`
	Confidence        float64         `json:"confidence"`
}

type AssessedSkill struct {
	Name  string `json:"name"`
	Level string `json:"level"` // "beginner", "intermediate", "advanced", "expert"
}
