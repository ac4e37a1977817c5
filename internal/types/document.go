package types

import (
	"time"

	"github.com/google/uuid"
)

// AlignmentLevel controls how strongly generated content echoes company
// values and culture. It is a closed enumeration of five discrete tiers,
// not a continuous percentage.
type AlignmentLevel int

// The five alignment tiers.
const (
	AlignmentMinimal  AlignmentLevel = 10
	AlignmentLight    AlignmentLevel = 30
	AlignmentBalanced AlignmentLevel = 50
	AlignmentStrong   AlignmentLevel = 70
	AlignmentDeep     AlignmentLevel = 90
)

// AlignmentLevels lists every valid tier in ascending order.
func AlignmentLevels() []AlignmentLevel {
	return []AlignmentLevel{AlignmentMinimal, AlignmentLight, AlignmentBalanced, AlignmentStrong, AlignmentDeep}
}

// Valid reports whether the value is one of the enumerated tiers. Any other
// value must be rejected at the boundary before reaching the generator.
func (a AlignmentLevel) Valid() bool {
	switch a {
	case AlignmentMinimal, AlignmentLight, AlignmentBalanced, AlignmentStrong, AlignmentDeep:
		return true
	}
	return false
}

// Description returns the fixed semantic description of the tier, embedded in
// generation prompts.
func (a AlignmentLevel) Description() string {
	switch a {
	case AlignmentMinimal:
		return "Minimal company references, focus on skills"
	case AlignmentLight:
		return "Light references to company values where applicable"
	case AlignmentBalanced:
		return "Balanced approach between skills and company alignment"
	case AlignmentStrong:
		return "Strong value alignment throughout"
	case AlignmentDeep:
		return "Deep cultural alignment, all claims verifiable"
	}
	return ""
}

// DocumentType identifies what a generated document contains.
type DocumentType string

// Document type constants.
const (
	DocumentCV     DocumentType = "cv"
	DocumentCover  DocumentType = "cover_letter"
	DocumentBoth   DocumentType = "both"
	DocumentMerged DocumentType = "merged"
)

// Citation points a generated claim back to its source material, keeping
// generated content verifiable.
type Citation struct {
	Section    string     `json:"section"`
	Claim      string     `json:"claim"`
	Source     string     `json:"source"`
	Line       *int       `json:"line,omitempty"`
	MaterialID *uuid.UUID `json:"material_id,omitempty"`
}

// Draft is the result of a single generation call: content plus the
// citations backing it.
type Draft struct {
	Content   string     `json:"content"`
	Citations []Citation `json:"citations"`
}

// GeneratedDocument is a persisted generation result.
type GeneratedDocument struct {
	ID           uuid.UUID      `json:"id"`
	UserID       uuid.UUID      `json:"user_id"`
	JobPostingID *uuid.UUID     `json:"job_posting_id"`
	Type         DocumentType   `json:"type"`
	CVContent    *string        `json:"cv_content"`
	CoverContent *string        `json:"cover_content"`
	Alignment    AlignmentLevel `json:"alignment_score"`
	Citations    []Citation     `json:"citations"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
