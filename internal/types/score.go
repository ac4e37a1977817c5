package types

import (
	"time"

	"github.com/google/uuid"
)

// MatchingScore is a multi-dimensional assessment of how well a candidate
// profile fits a job's stated requirements. All dimensions are integers in
// [0,100]. Derived data: recomputed on demand, latest write wins.
type MatchingScore struct {
	ID              uuid.UUID    `json:"id"`
	UserID          uuid.UUID    `json:"user_id"`
	JobPostingID    uuid.UUID    `json:"job_posting_id"`
	Overall         int          `json:"overall_score"`
	SkillsMatch     int          `json:"skills_match"`
	ExperienceMatch int          `json:"experience_match"`
	EducationMatch  int          `json:"education_match"`
	CultureFit      int          `json:"culture_fit"`
	Details         MatchDetails `json:"match_details"`
	CreatedAt       time.Time    `json:"created_at"`
}

// MatchDetails explains the score: which skills matched, which are missing,
// whether any degree satisfied the education keywords.
type MatchDetails struct {
	MatchingSkills   []string `json:"matching_skills"`
	MissingSkills    []string `json:"missing_skills"`
	ExperienceGap    *string  `json:"experience_gap,omitempty"`
	EducationMatch   bool     `json:"education_match"`
	CultureAlignment []string `json:"culture_alignment"`
}
