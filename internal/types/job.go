package types

import (
	"time"

	"github.com/google/uuid"
)

// ExperienceLevel is the seniority band a job posting asks for.
type ExperienceLevel string

// Experience level constants.
const (
	LevelEntry  ExperienceLevel = "entry"
	LevelMid    ExperienceLevel = "mid"
	LevelSenior ExperienceLevel = "senior"
	LevelLead   ExperienceLevel = "lead"
)

// Valid reports whether the level is one of the known bands.
func (l ExperienceLevel) Valid() bool {
	switch l {
	case LevelEntry, LevelMid, LevelSenior, LevelLead:
		return true
	}
	return false
}

// JobPosting is an analyzed job advertisement. Requirements and CompanyInfo
// are nil when extraction produced nothing for them; a posting without
// requirements is a valid, low-information state.
type JobPosting struct {
	ID           uuid.UUID        `json:"id"`
	UserID       uuid.UUID        `json:"user_id"`
	URL          *string          `json:"url"`
	Title        *string          `json:"title"`
	Company      *string          `json:"company"`
	Description  *string          `json:"description"`
	Requirements *JobRequirements `json:"requirements"`
	CompanyInfo  *CompanyProfile  `json:"company_info"`
	CreatedAt    time.Time        `json:"created_at"`
}

// JobRequirements is the structured requirement set extracted from a posting.
type JobRequirements struct {
	Skills                  []string         `json:"skills"`
	ExperienceYears         *float64         `json:"experience_years,omitempty"`
	ExperienceLevel         *ExperienceLevel `json:"experience_level,omitempty"`
	Education               []string         `json:"education,omitempty"`
	Responsibilities        []string         `json:"responsibilities"`
	PreferredQualifications []string         `json:"preferred_qualifications,omitempty"`
}
