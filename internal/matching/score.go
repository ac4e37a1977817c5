// Package matching computes the deterministic fit score between a candidate
// profile and a job's structured requirements. No network calls, no side
// effects: the same inputs always produce the same score.
package matching

import (
	"math"
	"strings"
	"time"

	"github.com/philipposk/ThatJob/internal/types"
)

// Dimension weights for the overall score.
const (
	skillsWeight     = 0.4
	experienceWeight = 0.3
	educationWeight  = 0.2
	cultureWeight    = 0.1
)

// cultureFitPlaceholder is the fixed culture-fit value. A real computation
// against CompanyProfile culture/values can replace it as long as the
// result stays within [0,100]; see scoreCultureFit.
const cultureFitPlaceholder = 75

// daysPerYear is the year approximation used for experience durations.
const daysPerYear = 365

// Score computes the matching score using the current time for open-ended
// work experience.
func Score(profile *types.StructuredProfile, req *types.JobRequirements) types.MatchingScore {
	return ScoreAt(profile, req, time.Now())
}

// ScoreAt computes the matching score with an explicit "now", making the
// function fully deterministic for testing.
//
// A nil requirements set yields a zero score across every dimension: a job
// without extracted requirements is a valid, low-information state, not an
// error.
func ScoreAt(profile *types.StructuredProfile, req *types.JobRequirements, now time.Time) types.MatchingScore {
	if req == nil {
		return types.MatchingScore{
			CreatedAt: now,
			Details: types.MatchDetails{
				MatchingSkills:   []string{},
				MissingSkills:    []string{},
				EducationMatch:   false,
				CultureAlignment: []string{},
			},
		}
	}

	skillsMatch, matchingSkills, missingSkills := scoreSkills(profile.Skills, req.Skills)
	experienceMatch := scoreExperience(profile.Experience, req.ExperienceYears, now)
	educationMatch := scoreEducation(profile.Education, req.Education)
	cultureFit := scoreCultureFit()

	overall := roundHalfUp(
		float64(skillsMatch)*skillsWeight +
			float64(experienceMatch)*experienceWeight +
			float64(educationMatch)*educationWeight +
			float64(cultureFit)*cultureWeight,
	)

	return types.MatchingScore{
		Overall:         overall,
		SkillsMatch:     skillsMatch,
		ExperienceMatch: experienceMatch,
		EducationMatch:  educationMatch,
		CultureFit:      cultureFit,
		CreatedAt:       now,
		Details: types.MatchDetails{
			MatchingSkills:   matchingSkills,
			MissingSkills:    missingSkills,
			EducationMatch:   educationMatch == 100,
			CultureAlignment: []string{},
		},
	}
}

// skillsContain is the single containment predicate shared by the score and
// its explanation: case-insensitive substring match in either direction, so
// user skill "python" matches requirement "Senior Python" and vice versa.
// Both arguments must already be lowercased.
func skillsContain(userSkill, requiredSkill string) bool {
	return strings.Contains(userSkill, requiredSkill) || strings.Contains(requiredSkill, userSkill)
}

// scoreSkills returns the skills dimension plus the matching/missing skill
// lists. With no required skills the score is 0: there is nothing to
// measure against.
func scoreSkills(userSkills, requiredSkills []string) (int, []string, []string) {
	lowerUser := lowerAll(userSkills)
	lowerRequired := lowerAll(requiredSkills)

	matching := []string{}
	for _, us := range lowerUser {
		for _, rs := range lowerRequired {
			if skillsContain(us, rs) {
				matching = append(matching, us)
				break
			}
		}
	}

	missing := []string{}
	for _, rs := range lowerRequired {
		matched := false
		for _, us := range lowerUser {
			if skillsContain(us, rs) {
				matched = true
				break
			}
		}
		if !matched {
			missing = append(missing, rs)
		}
	}

	score := 0
	if len(lowerRequired) > 0 {
		score = roundHalfUp(float64(len(matching)) / float64(len(lowerRequired)) * 100)
	}
	return score, matching, missing
}

// scoreExperience compares total years of experience against the required
// threshold. No requirement means full credit.
func scoreExperience(experience []types.WorkExperience, requiredYears *float64, now time.Time) int {
	if requiredYears == nil || *requiredYears <= 0 {
		return 100
	}

	total := totalExperienceYears(experience, now)
	score := roundHalfUp(total / *requiredYears * 100)
	if score > 100 {
		score = 100
	}
	return score
}

// totalExperienceYears sums position durations using a 365-day year. An
// absent end date means the position is ongoing and runs to "now".
func totalExperienceYears(experience []types.WorkExperience, now time.Time) float64 {
	total := 0.0
	for _, exp := range experience {
		start, ok := parseDate(exp.StartDate)
		if !ok {
			continue
		}
		end := now
		if exp.EndDate != nil && *exp.EndDate != "" {
			if parsed, ok := parseDate(*exp.EndDate); ok {
				end = parsed
			}
		}
		if end.Before(start) {
			continue
		}
		total += end.Sub(start).Hours() / (24 * daysPerYear)
	}
	return total
}

// scoreEducation is boolean-as-100/0: 100 when any degree string contains
// any required keyword, vacuously 100 when no keywords are required.
func scoreEducation(education []types.EducationRecord, required []string) int {
	if len(required) == 0 {
		return 100
	}
	for _, edu := range education {
		degree := strings.ToLower(edu.Degree)
		for _, keyword := range required {
			if strings.Contains(degree, strings.ToLower(keyword)) {
				return 100
			}
		}
	}
	return 0
}

// scoreCultureFit returns the fixed placeholder. Extension point: compute a
// real value from CompanyProfile culture/values, keeping the [0,100] range.
func scoreCultureFit() int {
	return cultureFitPlaceholder
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006",
	time.RFC3339,
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}

// roundHalfUp rounds to the nearest integer with halves away from zero.
func roundHalfUp(v float64) int {
	return int(math.Round(v))
}
