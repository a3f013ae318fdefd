// internal/models/profiler.go
package models

// ProfilerSkill carries an optional proficiency level. Source records may
// store skills as bare strings, the workers normalize those on read.
type ProfilerSkill struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// Profiler is a candidate profile eligible for matching against tickets.
type Profiler struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Email              string          `json:"email"`
	Phone              string          `json:"phone,omitempty"`
	Location           string          `json:"location"`
	AvailabilityStatus string          `json:"availabilityStatus"`
	Skills             []ProfilerSkill `json:"skills"`
	YearsOfExperience  float64         `json:"yearsOfExperience"`
	ExperienceLevel    string          `json:"experienceLevel,omitempty"`
	HourlyRate         *float64        `json:"hourlyRate,omitempty"`
	DailyRate          *float64        `json:"dailyRate,omitempty"`
	Currency           string          `json:"currency,omitempty"`
	NoticePeriodDays   int             `json:"noticePeriodDays,omitempty"`
	CVAssessmentID     string          `json:"cvAssessmentId,omitempty"`
}
