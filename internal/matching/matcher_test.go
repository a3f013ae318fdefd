// internal/matching/matcher_test.go
package matching

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func testTicket() Ticket {
	return Ticket{
		ID:              "ticket-001",
		PositionTitle:   "Backend Engineer",
		CompanyName:     "Acme GmbH",
		RequiredSkills:  []string{"Go", "PostgreSQL"},
		PreferredSkills: []string{"Kubernetes"},
		Budget:          &BudgetRange{Min: 50, Max: 100, Currency: "EUR"},
		Location:        "Berlin, Germany",
	}
}

func testCandidate(id string) Candidate {
	return Candidate{
		ID:                 id,
		Name:               "Test Candidate",
		Email:              id + "@example.com",
		Location:           "Berlin, Germany",
		AvailabilityStatus: "available",
		Skills: []Skill{
			{Name: "Go"},
			{Name: "PostgreSQL"},
			{Name: "Kubernetes"},
		},
		YearsOfExperience: 5,
		HourlyRate:        floatPtr(75),
	}
}

func TestMatch_FullMatchScenario(t *testing.T) {
	// Candidate matches all skills, location, availability, and sits at the
	// budget midpoint. Experience defaults neutral (ticket names no level):
	// 0.35*1.0 + 0.20*0.5 + 0.15*1.0 + 0.20*1.0 + 0.10*1.0 = 0.90
	results, skipped, err := Match(testTicket(), []Candidate{testCandidate("p-001")}, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, skipped)

	result := results[0]
	assert.InDelta(t, 0.90, result.MatchScore, 1e-9)
	assert.Equal(t, 1.0, result.MatchDetails.SkillsMatch)
	assert.Equal(t, 0.5, result.MatchDetails.ExperienceMatch)
	assert.Equal(t, 1.0, result.MatchDetails.LocationMatch)
	assert.Equal(t, 1.0, result.MatchDetails.AvailabilityMatch)
	assert.Equal(t, 1.0, result.MatchDetails.BudgetCompatibility)
	assert.True(t, result.BudgetCompatible)
}

func TestMatch_Determinism(t *testing.T) {
	candidates := []Candidate{
		testCandidate("p-003"),
		testCandidate("p-001"),
		testCandidate("p-002"),
	}

	first, firstSkipped, err := Match(testTicket(), candidates, Options{})
	require.NoError(t, err)
	second, secondSkipped, err := Match(testTicket(), candidates, Options{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstSkipped, secondSkipped)
}

func TestMatch_ScoreBounds(t *testing.T) {
	candidates := []Candidate{
		testCandidate("p-001"),
		{
			ID:                 "p-002",
			Location:           "Lagos, Nigeria",
			AvailabilityStatus: "unavailable",
			Skills:             []Skill{{Name: "COBOL"}},
			HourlyRate:         floatPtr(500), // 5x over budget ceiling
		},
		{
			ID:                 "p-003",
			Location:           "",
			AvailabilityStatus: "sabbatical",
			Skills:             []Skill{},
		},
	}

	results, _, err := Match(testTicket(), candidates, Options{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, r := range results {
		assert.GreaterOrEqual(t, r.MatchScore, 0.0)
		assert.LessOrEqual(t, r.MatchScore, 1.0)
		for _, sub := range []float64{
			r.MatchDetails.SkillsMatch,
			r.MatchDetails.ExperienceMatch,
			r.MatchDetails.LocationMatch,
			r.MatchDetails.AvailabilityMatch,
			r.MatchDetails.BudgetCompatibility,
		} {
			assert.GreaterOrEqual(t, sub, 0.0)
			assert.LessOrEqual(t, sub, 1.0)
		}
	}
}

func TestMatch_AvailabilityOnlyFilter(t *testing.T) {
	busy := testCandidate("p-busy")
	busy.AvailabilityStatus = "busy"
	unavailable := testCandidate("p-unavailable")
	unavailable.AvailabilityStatus = "Unavailable"

	results, _, err := Match(testTicket(), []Candidate{testCandidate("p-available"), busy, unavailable}, Options{
		AvailabilityOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "p-available", results[0].ID)
}

func TestMatch_MinMatchScoreFilter(t *testing.T) {
	weak := Candidate{
		ID:                 "p-weak",
		Location:           "Tokyo, Japan",
		AvailabilityStatus: "unavailable",
		Skills:             []Skill{{Name: "Fortran"}},
		HourlyRate:         floatPtr(400),
	}

	results, _, err := Match(testTicket(), []Candidate{testCandidate("p-strong"), weak}, Options{
		MinMatchScore: 0.5,
	})
	require.NoError(t, err)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.MatchScore, 0.5)
	}
	require.Len(t, results, 1)
	assert.Equal(t, "p-strong", results[0].ID)
}

func TestMatch_LimitRespected(t *testing.T) {
	candidates := []Candidate{
		testCandidate("p-001"),
		testCandidate("p-002"),
		testCandidate("p-003"),
	}

	results, _, err := Match(testTicket(), candidates, Options{Limit: intPtr(2)})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, _, err = Match(testTicket(), candidates, Options{Limit: intPtr(0)})
	require.NoError(t, err)
	assert.Empty(t, results)

	// Nil limit returns everything.
	results, _, err = Match(testTicket(), candidates, Options{})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestMatch_SortOrder(t *testing.T) {
	strong := testCandidate("p-b-strong")
	strongTwin := testCandidate("p-a-strong")
	placed := testCandidate("p-0-placed")
	weak := testCandidate("p-weak")
	weak.Skills = []Skill{{Name: "Go"}}

	results, _, err := Match(testTicket(), []Candidate{weak, strong, placed, strongTwin}, Options{
		Placements: map[string]string{"p-0-placed": "placement-42"},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].MatchScore, results[i].MatchScore)
	}

	// Equal scores: unplaced candidates first, then ID ascending. The placed
	// candidate sorts last among the three equal-score profiles despite its
	// lexicographically smallest ID.
	assert.Equal(t, "p-a-strong", results[0].ID)
	assert.Equal(t, "p-b-strong", results[1].ID)
	assert.Equal(t, "p-0-placed", results[2].ID)
	assert.Equal(t, "placement-42", results[2].ExistingPlacement)
	assert.Equal(t, "p-weak", results[3].ID)
}

func TestMatch_ZeroSkillOverlap(t *testing.T) {
	candidate := testCandidate("p-001")
	candidate.Skills = []Skill{{Name: "Photoshop"}, {Name: "Illustrator"}}

	results, _, err := Match(testTicket(), []Candidate{candidate}, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].MatchDetails.SkillsMatch)
}

func TestMatch_NoSkillsSpecifiedOnTicket(t *testing.T) {
	ticket := testTicket()
	ticket.RequiredSkills = nil
	ticket.PreferredSkills = nil

	results, _, err := Match(ticket, []Candidate{testCandidate("p-001"), testCandidate("p-002")}, Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, 0.5, r.MatchDetails.SkillsMatch)
	}
}

func TestMatch_MissingRateDefaultsCompatible(t *testing.T) {
	candidate := testCandidate("p-001")
	candidate.HourlyRate = nil
	candidate.DailyRate = nil

	results, _, err := Match(testTicket(), []Candidate{candidate}, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].BudgetCompatible)
	assert.Equal(t, 0.5, results[0].MatchDetails.BudgetCompatibility)
}

func TestMatch_MalformedCandidateSkipped(t *testing.T) {
	malformed := Candidate{
		ID:                 "p-no-skills",
		Location:           "Berlin, Germany",
		AvailabilityStatus: "available",
		// Skills deliberately nil: the source record had no skill list.
	}
	noID := Candidate{
		Skills:             []Skill{{Name: "Go"}},
		AvailabilityStatus: "available",
	}

	results, skipped, err := Match(testTicket(), []Candidate{testCandidate("p-001"), malformed, noID}, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "p-001", results[0].ID)

	require.Len(t, skipped, 2)
	assert.Equal(t, "p-no-skills", skipped[0].ID)
	assert.Equal(t, "missing skill list", skipped[0].Reason)
	assert.Equal(t, "missing candidate id", skipped[1].Reason)
}

func TestMatch_EmptyPool(t *testing.T) {
	results, skipped, err := Match(testTicket(), nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, skipped)
}

func TestMatch_OptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative limit", Options{Limit: intPtr(-1)}},
		{"min score below range", Options{MinMatchScore: -0.1}},
		{"min score above range", Options{MinMatchScore: 1.1}},
		{"negative weight", Options{Weights: &Weights{Skills: -0.1, Experience: 0.3, Location: 0.3, Availability: 0.3, Budget: 0.2}}},
		{"weights not summing to one", Options{Weights: &Weights{Skills: 0.5, Experience: 0.5, Location: 0.5, Availability: 0.5, Budget: 0.5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, skipped, err := Match(testTicket(), []Candidate{testCandidate("p-001")}, tt.opts)
			assert.Error(t, err)
			assert.Nil(t, results)
			assert.Nil(t, skipped)
		})
	}
}

func TestSkillsMatch_RequiredWeightedOverPreferred(t *testing.T) {
	ticket := testTicket() // 2 required (weight 2.0 each), 1 preferred (1.0)

	requiredOnly := testCandidate("p-req")
	requiredOnly.Skills = []Skill{{Name: "go"}, {Name: "postgresql"}}

	preferredOnly := testCandidate("p-pref")
	preferredOnly.Skills = []Skill{{Name: "kubernetes"}}

	// Required-only: 4.0/5.0; preferred-only: 1.0/5.0
	assert.InDelta(t, 0.8, skillsMatch(ticket, requiredOnly), 1e-9)
	assert.InDelta(t, 0.2, skillsMatch(ticket, preferredOnly), 1e-9)
}

func TestExperienceMatch_LevelThresholds(t *testing.T) {
	ticket := testTicket()
	ticket.ExperienceLevel = "senior" // 6 years

	tests := []struct {
		name     string
		years    float64
		level    string
		expected float64
	}{
		{"meets requirement", 8, "", 1.0},
		{"exactly at requirement", 6, "", 1.0},
		{"halfway there", 3, "", 0.5},
		{"level label fallback", 0, "lead", 1.0},
		{"no experience data", 0, "", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := testCandidate("p-001")
			candidate.YearsOfExperience = tt.years
			candidate.ExperienceLevel = tt.level
			assert.InDelta(t, tt.expected, experienceMatch(ticket, candidate), 1e-9)
		})
	}
}

func TestLocationMatch(t *testing.T) {
	tests := []struct {
		name      string
		ticket    string
		candidate string
		expected  float64
	}{
		{"exact match case-insensitive", "Berlin, Germany", "berlin, germany", 1.0},
		{"candidate remote", "Berlin, Germany", "Remote", 1.0},
		{"ticket anywhere", "anywhere", "Munich, Germany", 1.0},
		{"same country partial", "Berlin, Germany", "Munich, Germany", 0.5},
		{"different country", "Berlin, Germany", "Vienna, Austria", 0.0},
		{"candidate location unknown", "Berlin, Germany", "", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, locationMatch(tt.ticket, tt.candidate))
		})
	}
}

func TestAvailabilityMatch_UnknownStatusNeutral(t *testing.T) {
	assert.Equal(t, 1.0, availabilityMatch("Available"))
	assert.Equal(t, 0.5, availabilityMatch("busy"))
	assert.Equal(t, 0.0, availabilityMatch(" unavailable "))
	assert.Equal(t, 0.5, availabilityMatch("on sabbatical"))
	assert.Equal(t, 0.5, availabilityMatch(""))
}

func TestBudgetCompatibility_OverBudgetDecay(t *testing.T) {
	budget := &BudgetRange{Min: 50, Max: 100, Currency: "EUR"}

	tests := []struct {
		name           string
		hourly         *float64
		daily          *float64
		expectedScore  float64
		expectedCompat bool
	}{
		{"within range", floatPtr(80), nil, 1.0, true},
		{"under range still compatible", floatPtr(30), nil, 1.0, true},
		{"25% over ceiling", floatPtr(125), nil, 0.75, true},
		{"50% over ceiling", floatPtr(150), nil, 0.5, true},
		{"double the ceiling", floatPtr(200), nil, 0.0, false},
		{"daily rate converted", nil, floatPtr(640), 1.0, true}, // 640/8 = 80/h
		{"no rate data", nil, nil, 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := Candidate{ID: "p-001", Skills: []Skill{}, HourlyRate: tt.hourly, DailyRate: tt.daily}
			score, compatible := budgetCompatibility(budget, candidate)
			assert.InDelta(t, tt.expectedScore, score, 1e-9)
			assert.Equal(t, tt.expectedCompat, compatible)
		})
	}
}

func TestSkill_UnmarshalJSON(t *testing.T) {
	var fromString Skill
	require.NoError(t, json.Unmarshal([]byte(`"Go"`), &fromString))
	assert.Equal(t, Skill{Name: "Go"}, fromString)

	var fromObject Skill
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Go","level":"expert"}`), &fromObject))
	assert.Equal(t, Skill{Name: "Go", Level: "expert"}, fromObject)

	var mixed []Skill
	require.NoError(t, json.Unmarshal([]byte(`["Go", {"name":"PostgreSQL","level":"advanced"}]`), &mixed))
	require.Len(t, mixed, 2)
	assert.Equal(t, "Go", mixed[0].Name)
	assert.Equal(t, "advanced", mixed[1].Level)

	var invalid Skill
	assert.Error(t, json.Unmarshal([]byte(`42`), &invalid))
}

func TestWeights_Validate(t *testing.T) {
	assert.NoError(t, DefaultWeights.Validate())
	assert.Error(t, Weights{Skills: 1.5, Experience: -0.5}.Validate())
	assert.Error(t, Weights{Skills: 0.9}.Validate())
}
