// Package types provides type definitions for structured data shared across
// the ThatJob services: extracted profiles, job postings, company research,
// matching scores and generated documents.
package types

import (
	"encoding/json"
	"time"
)

// FlexString decodes a JSON string or number into its string form. The
// model emits fields like GPA inconsistently ("3.8" or 3.8); the schema
// accepts both, so the decode target must too.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// StructuredProfile is the professional profile extracted from a user's
// materials. A profile is immutable once produced; a new extraction
// supersedes it rather than mutating it in place.
type StructuredProfile struct {
	Skills      []string          `json:"skills"`
	Experience  []WorkExperience  `json:"experience"`
	Education   []EducationRecord `json:"education"`
	Projects    []ProjectRecord   `json:"projects"`
	Summary     *string           `json:"summary"`
	LastUpdated time.Time         `json:"last_updated"`
}

// WorkExperience is a single position held by the user. Dates are kept as
// strings in the form the model emits them ("2021-03", "2021-03-01"); an
// empty EndDate means the position is ongoing.
type WorkExperience struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	StartDate   string   `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

// EducationRecord is one degree or diploma.
type EducationRecord struct {
	Degree      string      `json:"degree"`
	Institution string      `json:"institution"`
	Field       string      `json:"field"`
	StartDate   string      `json:"start_date"`
	EndDate     *string     `json:"end_date"`
	GPA         *FlexString `json:"gpa,omitempty"`
	Thesis      *string     `json:"thesis,omitempty"`
}

// ProjectRecord is a personal or professional project.
type ProjectRecord struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	URL          *string  `json:"url,omitempty"`
	StartDate    *string  `json:"start_date,omitempty"`
	EndDate      *string  `json:"end_date,omitempty"`
}

// EmptyProfile returns a profile with all sequences empty and no summary.
// This is the valid result for a user with no materials, not an error state.
func EmptyProfile(now time.Time) *StructuredProfile {
	return &StructuredProfile{
		Skills:      []string{},
		Experience:  []WorkExperience{},
		Education:   []EducationRecord{},
		Projects:    []ProjectRecord{},
		Summary:     nil,
		LastUpdated: now,
	}
}
