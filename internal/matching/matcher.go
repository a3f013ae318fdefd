// internal/matching/matcher.go
//
// Deterministic candidate/ticket scoring. Match is a pure function: it reads
// its inputs, allocates fresh results, and never touches storage, so it is
// safe to call concurrently.
package matching

import (
	"sort"
	"strings"
)

// Scoring constants. Required-skill matches count double relative to
// preferred ones, and missing data scores neutral rather than zero so the
// absence of a stated requirement never penalizes a candidate.
const (
	requiredSkillWeight  = 2.0
	preferredSkillWeight = 1.0

	neutralScore      = 0.5
	busyAvailability  = 0.5
	budgetCompatLevel = 0.5

	hoursPerDay = 8.0
)

// experienceLevelYears maps a ticket's experience-level label to the years a
// candidate needs for a full experience score.
var experienceLevelYears = map[string]float64{
	"junior":    1,
	"mid":       3,
	"mid-level": 3,
	"senior":    6,
	"lead":      9,
	"principal": 9,
}

// Match scores every well-formed candidate against the ticket, filters and
// sorts per options, and reports malformed candidates on the side instead of
// failing the batch. An empty pool yields an empty result, not an error.
func Match(ticket Ticket, candidates []Candidate, opts Options) ([]Result, []Skipped, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}

	weights := DefaultWeights
	if opts.Weights != nil {
		weights = *opts.Weights
	}

	results := make([]Result, 0, len(candidates))
	skipped := []Skipped{}

	for _, candidate := range candidates {
		if reason := malformedReason(candidate); reason != "" {
			skipped = append(skipped, Skipped{ID: candidate.ID, Reason: reason})
			continue
		}

		if opts.AvailabilityOnly && normalizeStatus(candidate.AvailabilityStatus) != "available" {
			continue
		}

		details := Details{
			SkillsMatch:       skillsMatch(ticket, candidate),
			ExperienceMatch:   experienceMatch(ticket, candidate),
			LocationMatch:     locationMatch(ticket.Location, candidate.Location),
			AvailabilityMatch: availabilityMatch(candidate.AvailabilityStatus),
		}

		budgetScore, compatible := budgetCompatibility(ticket.Budget, candidate)
		details.BudgetCompatibility = budgetScore

		score := weights.Skills*details.SkillsMatch +
			weights.Experience*details.ExperienceMatch +
			weights.Location*details.LocationMatch +
			weights.Availability*details.AvailabilityMatch +
			weights.Budget*details.BudgetCompatibility
		score = clamp01(score)

		if score < opts.MinMatchScore {
			continue
		}

		result := Result{
			Candidate:        candidate,
			MatchScore:       score,
			MatchDetails:     details,
			BudgetCompatible: compatible,
		}
		if opts.Placements != nil {
			result.ExistingPlacement = opts.Placements[candidate.ID]
		}

		results = append(results, result)
	}

	sortResults(results)

	if opts.Limit != nil && len(results) > *opts.Limit {
		results = results[:*opts.Limit]
	}

	return results, skipped, nil
}

// malformedReason returns a non-empty reason when the candidate record is
// missing fields required for scoring. A nil skill slice means the source
// record carried no skill list at all; an empty one is a valid zero-skill
// candidate.
func malformedReason(c Candidate) string {
	if strings.TrimSpace(c.ID) == "" {
		return "missing candidate id"
	}
	if c.Skills == nil {
		return "missing skill list"
	}
	return ""
}

// skillsMatch is the overlap ratio between candidate skills and the ticket's
// required+preferred skills, with required matches weighted double. A ticket
// naming no skills scores neutral for every candidate.
func skillsMatch(ticket Ticket, candidate Candidate) float64 {
	required := normalizeSkillSet(ticket.RequiredSkills)
	preferred := normalizeSkillSet(ticket.PreferredSkills)

	// Required wins when a skill appears in both lists.
	for name := range required {
		delete(preferred, name)
	}

	totalWeight := float64(len(required))*requiredSkillWeight + float64(len(preferred))*preferredSkillWeight
	if totalWeight == 0 {
		return neutralScore
	}

	candidateSkills := make(map[string]struct{}, len(candidate.Skills))
	for _, skill := range candidate.Skills {
		name := strings.ToLower(strings.TrimSpace(skill.Name))
		if name != "" {
			candidateSkills[name] = struct{}{}
		}
	}

	matchedWeight := 0.0
	for name := range required {
		if _, ok := candidateSkills[name]; ok {
			matchedWeight += requiredSkillWeight
		}
	}
	for name := range preferred {
		if _, ok := candidateSkills[name]; ok {
			matchedWeight += preferredSkillWeight
		}
	}

	return clamp01(matchedWeight / totalWeight)
}

// experienceMatch compares candidate years of experience against the years
// implied by the ticket's experience-level label. No stated requirement, or
// no candidate experience data, scores neutral.
func experienceMatch(ticket Ticket, candidate Candidate) float64 {
	requiredYears, ok := experienceLevelYears[strings.ToLower(strings.TrimSpace(ticket.ExperienceLevel))]
	if !ok || requiredYears <= 0 {
		return neutralScore
	}

	candidateYears := candidate.YearsOfExperience
	if candidateYears <= 0 {
		if levelYears, ok := experienceLevelYears[strings.ToLower(strings.TrimSpace(candidate.ExperienceLevel))]; ok {
			candidateYears = levelYears
		}
	}
	if candidateYears <= 0 {
		return neutralScore
	}

	if candidateYears >= requiredYears {
		return 1.0
	}
	return clamp01(candidateYears / requiredYears)
}

// locationMatch scores 1.0 for an exact case-insensitive match or when either
// side is remote/any, a partial score when the trailing country segment
// matches, else 0.
func locationMatch(ticketLocation, candidateLocation string) float64 {
	ticketLoc := strings.ToLower(strings.TrimSpace(ticketLocation))
	candidateLoc := strings.ToLower(strings.TrimSpace(candidateLocation))

	if isRemote(ticketLoc) || isRemote(candidateLoc) {
		return 1.0
	}
	if ticketLoc == "" || candidateLoc == "" {
		return neutralScore
	}
	if ticketLoc == candidateLoc {
		return 1.0
	}
	if trailingSegment(ticketLoc) != "" && trailingSegment(ticketLoc) == trailingSegment(candidateLoc) {
		return 0.5
	}
	return 0.0
}

func isRemote(location string) bool {
	switch location {
	case "remote", "any", "anywhere", "worldwide":
		return true
	}
	return false
}

// trailingSegment returns the last comma-separated part of a location string,
// conventionally the country.
func trailingSegment(location string) string {
	parts := strings.Split(location, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-1])
}

// availabilityMatch maps the status enum to a score. Unknown statuses score
// the busy partial, never silently 0 or 1.
func availabilityMatch(status string) float64 {
	switch normalizeStatus(status) {
	case "available":
		return 1.0
	case "busy":
		return busyAvailability
	case "unavailable":
		return 0.0
	default:
		return busyAvailability
	}
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// normalizeSkillSet lowercases, trims, and dedupes a skill name list.
func normalizeSkillSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set
}

// budgetCompatibility scores the candidate rate against the ticket budget and
// reports whether the candidate counts as budget-compatible. A candidate with
// no rate, or a ticket with no budget, cannot be proven incompatible: both
// score neutral and flag compatible by convention.
func budgetCompatibility(budget *BudgetRange, candidate Candidate) (float64, bool) {
	rate, hasRate := effectiveHourlyRate(candidate)
	if !hasRate || budget == nil || budget.Max <= 0 {
		return neutralScore, true
	}

	if rate <= budget.Max {
		return 1.0, true
	}

	// Linear decay with the fractional overshoot past the budget ceiling.
	score := clamp01(1.0 - (rate-budget.Max)/budget.Max)
	return score, score >= budgetCompatLevel
}

// effectiveHourlyRate prefers the hourly rate and falls back to the daily
// rate divided by a standard working day.
func effectiveHourlyRate(c Candidate) (float64, bool) {
	if c.HourlyRate != nil && *c.HourlyRate > 0 {
		return *c.HourlyRate, true
	}
	if c.DailyRate != nil && *c.DailyRate > 0 {
		return *c.DailyRate / hoursPerDay, true
	}
	return 0, false
}

// sortResults orders by score descending, candidates without an existing
// placement before those with one, then by candidate ID ascending so output
// ordering is fully deterministic.
func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].MatchScore != results[j].MatchScore {
			return results[i].MatchScore > results[j].MatchScore
		}
		iPlaced := results[i].ExistingPlacement != ""
		jPlaced := results[j].ExistingPlacement != ""
		if iPlaced != jPlaced {
			return !iPlaced
		}
		return results[i].ID < results[j].ID
	})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
