// internal/matching/types.go
package matching

import (
	"encoding/json"
	"fmt"
	"math"
)

// Skill is a candidate skill with an optional proficiency level. Upstream
// records store skills either as a bare name string or as a {name, level}
// object, both forms decode into this one shape.
type Skill struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// UnmarshalJSON accepts both the bare-string and the structured form.
func (s *Skill) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		s.Name = name
		s.Level = ""
		return nil
	}

	var structured struct {
		Name  string `json:"name"`
		Level string `json:"level"`
	}
	if err := json.Unmarshal(data, &structured); err != nil {
		return fmt.Errorf("skill must be a string or a {name, level} object: %w", err)
	}
	s.Name = structured.Name
	s.Level = structured.Level
	return nil
}

// BudgetRange is the money a ticket can spend on a candidate rate.
type BudgetRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

// Ticket is the matching view of a staffing request. Immutable for the
// duration of one match call.
type Ticket struct {
	ID              string       `json:"id"`
	PositionTitle   string       `json:"positionTitle"`
	CompanyName     string       `json:"companyName"`
	RequiredSkills  []string     `json:"requiredSkills"`
	PreferredSkills []string     `json:"preferredSkills"`
	Budget          *BudgetRange `json:"budget,omitempty"`
	Location        string       `json:"location"`
	StartTiming     string       `json:"startTiming,omitempty"`
	ExperienceLevel string       `json:"experienceLevel,omitempty"`
}

// Candidate is the matching view of a profiler. Skills stays nil when the
// source record carried no skill list at all, which marks the record as
// malformed for scoring purposes.
type Candidate struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Location           string   `json:"location"`
	AvailabilityStatus string   `json:"availabilityStatus"`
	Skills             []Skill  `json:"skills"`
	YearsOfExperience  float64  `json:"yearsOfExperience"`
	ExperienceLevel    string   `json:"experienceLevel,omitempty"`
	HourlyRate         *float64 `json:"hourlyRate,omitempty"`
	DailyRate          *float64 `json:"dailyRate,omitempty"`
	Currency           string   `json:"currency,omitempty"`
	NoticePeriodDays   int      `json:"noticePeriodDays,omitempty"`
}

// Weights holds the five sub-score weights applied uniformly to every
// candidate in one match call. They must be non-negative and sum to 1.
type Weights struct {
	Skills       float64 `json:"skills"`
	Experience   float64 `json:"experience"`
	Location     float64 `json:"location"`
	Availability float64 `json:"availability"`
	Budget       float64 `json:"budget"`
}

// DefaultWeights is the stock weighting used when the caller supplies none.
var DefaultWeights = Weights{
	Skills:       0.35,
	Experience:   0.20,
	Location:     0.15,
	Availability: 0.20,
	Budget:       0.10,
}

const weightSumTolerance = 1e-9

// Validate checks that the weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"skills":       w.Skills,
		"experience":   w.Experience,
		"location":     w.Location,
		"availability": w.Availability,
		"budget":       w.Budget,
	} {
		if v < 0 {
			return fmt.Errorf("weight %q must be non-negative, got %v", name, v)
		}
	}

	sum := w.Skills + w.Experience + w.Location + w.Availability + w.Budget
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %v", sum)
	}
	return nil
}

// Options configures one match call.
type Options struct {
	// AvailabilityOnly drops candidates whose status is not "available"
	// before scoring.
	AvailabilityOnly bool `json:"availabilityOnly"`

	// MinMatchScore drops candidates whose composite score falls below the
	// threshold, applied after scoring. Must lie in [0,1].
	MinMatchScore float64 `json:"minMatchScore"`

	// Limit caps the number of returned results after sorting. Nil means
	// unlimited; zero yields an empty list.
	Limit *int `json:"limit,omitempty"`

	// Weights overrides DefaultWeights when non-nil.
	Weights *Weights `json:"weights,omitempty"`

	// Placements maps candidate ID to that candidate's existing placement ID
	// for this ticket, supplied by the caller when known.
	Placements map[string]string `json:"-"`
}

// Validate rejects out-of-range options before scoring begins.
func (o Options) Validate() error {
	if o.MinMatchScore < 0 || o.MinMatchScore > 1 {
		return fmt.Errorf("minMatchScore must lie in [0,1], got %v", o.MinMatchScore)
	}
	if o.Limit != nil && *o.Limit < 0 {
		return fmt.Errorf("limit must be >= 0, got %d", *o.Limit)
	}
	if o.Weights != nil {
		if err := o.Weights.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Details is the per-candidate sub-score breakdown, each value in [0,1].
type Details struct {
	SkillsMatch         float64 `json:"skills_match"`
	ExperienceMatch     float64 `json:"experience_match"`
	LocationMatch       float64 `json:"location_match"`
	AvailabilityMatch   float64 `json:"availability_match"`
	BudgetCompatibility float64 `json:"budget_compatibility"`
}

// Result is one scored candidate.
type Result struct {
	Candidate
	MatchScore        float64 `json:"match_score"`
	MatchDetails      Details `json:"match_details"`
	BudgetCompatible  bool    `json:"budget_compatible"`
	ExistingPlacement string  `json:"existing_placement,omitempty"`
}

// Skipped reports a candidate excluded from scoring and why.
type Skipped struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}
